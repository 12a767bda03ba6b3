package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cineroom/cineroom/internal/relay/repository"
)

// project returns the room position at now. A playing room advances from
// the stored snapshot; a paused room holds it.
func project(state repository.State, now time.Time) float64 {
	if !state.PlayState {
		return state.Timestamp
	}

	return state.Timestamp + now.Sub(time.Unix(0, state.LastUpdated)).Seconds()
}

type UpdatePlayStateParams struct {
	RoomHash  string
	SenderID  string
	PlayState bool
}

type UpdateStateResponse struct {
	State State
	Conns []*websocket.Conn
}

// UpdatePlayState applies a play/pause intent from a privileged member. The
// position is projected forward before the transition so pausing freezes the
// room where it actually is, not where the last action left it.
func (s service) UpdatePlayState(ctx context.Context, params *UpdatePlayStateParams) (UpdateStateResponse, error) {
	if err := s.checkCanControlPlayback(ctx, params.RoomHash, params.SenderID); err != nil {
		return UpdateStateResponse{}, err
	}

	state, err := s.roomRepo.GetState(ctx, params.RoomHash)
	if err != nil {
		return UpdateStateResponse{}, fmt.Errorf("failed to get state: %w", err)
	}

	now := s.now()
	return s.setState(ctx, params.RoomHash, &repository.SetStateParams{
		RoomHash:    params.RoomHash,
		Timestamp:   project(state, now),
		LastUpdated: now.UnixNano(),
		PlayState:   params.PlayState,
	})
}

type SeekParams struct {
	RoomHash string
	SenderID string
	Seconds  float64
}

// Seek applies an absolute seek from a privileged member. The play state is
// untouched: position and play state are independent axes.
func (s service) Seek(ctx context.Context, params *SeekParams) (UpdateStateResponse, error) {
	if err := s.checkCanControlPlayback(ctx, params.RoomHash, params.SenderID); err != nil {
		return UpdateStateResponse{}, err
	}

	state, err := s.roomRepo.GetState(ctx, params.RoomHash)
	if err != nil {
		return UpdateStateResponse{}, fmt.Errorf("failed to get state: %w", err)
	}

	return s.setState(ctx, params.RoomHash, &repository.SetStateParams{
		RoomHash:    params.RoomHash,
		Timestamp:   params.Seconds,
		LastUpdated: s.now().UnixNano(),
		PlayState:   state.PlayState,
	})
}

// GetState returns the current authoritative state, for the initial sync of
// a freshly connected member.
func (s service) GetState(ctx context.Context, roomHash string) (State, error) {
	state, err := s.roomRepo.GetState(ctx, roomHash)
	if err != nil {
		return State{}, fmt.Errorf("failed to get state: %w", err)
	}

	// a paused position does not age; reporting the pause moment as
	// last_updated would make consumers project the position forward across
	// the whole pause
	lastUpdated := time.Unix(0, state.LastUpdated)
	if !state.PlayState {
		lastUpdated = s.now()
	}

	return State{
		Timestamp:   state.Timestamp,
		LastUpdated: lastUpdated,
		PlayState:   state.PlayState,
	}, nil
}

func (s service) setState(ctx context.Context, roomHash string, params *repository.SetStateParams) (UpdateStateResponse, error) {
	if err := s.roomRepo.SetState(ctx, params); err != nil {
		return UpdateStateResponse{}, fmt.Errorf("failed to set state: %w", err)
	}

	conns, err := s.getConnsByRoomHash(ctx, roomHash)
	if err != nil {
		return UpdateStateResponse{}, fmt.Errorf("failed to get conns by room hash: %w", err)
	}

	return UpdateStateResponse{
		State: State{
			Timestamp:   params.Timestamp,
			LastUpdated: time.Unix(0, params.LastUpdated),
			PlayState:   params.PlayState,
		},
		Conns: conns,
	}, nil
}

func (s service) checkCanControlPlayback(ctx context.Context, roomHash, roomUserID string) error {
	roomUser, err := s.roomRepo.GetRoomUser(ctx, &repository.GetRoomUserParams{
		RoomHash:   roomHash,
		RoomUserID: roomUserID,
	})
	if err != nil {
		return fmt.Errorf("failed to get room user: %w", err)
	}

	if !roomUser.PlayPause {
		return ErrPermissionDenied
	}

	return nil
}
