package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cineroom/cineroom/internal/relay/repository"
)

const (
	RoleOwner = "owner"
	RoleGuest = "guest"
)

type CreateRoomParams struct {
	MovieID      int
	IsPrivate    bool
	Password     string
	GuestControl bool
	MaxUsers     int
}

type CreateRoomResponse struct {
	Room         Room
	RoomUser     RoomUser
	SessionToken string
}

func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	roomHash := s.generator.GenerateRandomString(roomHashLength)

	var passwordHash string
	if params.IsPrivate && params.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
		if err != nil {
			return CreateRoomResponse{}, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = string(hash)
	}

	maxUsers := params.MaxUsers
	if maxUsers <= 0 || maxUsers > s.membersLimit {
		maxUsers = s.membersLimit
	}

	now := s.now()
	if err := s.roomRepo.SetRoom(ctx, &repository.SetRoomParams{
		RoomHash:     roomHash,
		MovieID:      params.MovieID,
		PasswordHash: passwordHash,
		IsPrivate:    params.IsPrivate,
		GuestControl: params.GuestControl,
		MaxUsers:     maxUsers,
		CreatedAt:    now.Unix(),
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to set room: %w", err)
	}

	// rooms start paused at the beginning of the movie
	if err := s.roomRepo.SetState(ctx, &repository.SetStateParams{
		RoomHash:    roomHash,
		Timestamp:   0,
		LastUpdated: now.UnixNano(),
		PlayState:   false,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to set state: %w", err)
	}

	roomUser, err := s.addRoomUser(ctx, roomHash, RoleOwner, true)
	if err != nil {
		return CreateRoomResponse{}, err
	}

	sessionToken, err := s.generateSessionToken(roomHash, roomUser.ID)
	if err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	return CreateRoomResponse{
		Room: Room{
			RoomHash:     roomHash,
			MovieID:      params.MovieID,
			IsPrivate:    params.IsPrivate,
			GuestControl: params.GuestControl,
			MaxUsers:     maxUsers,
		},
		RoomUser:     roomUser,
		SessionToken: sessionToken,
	}, nil
}

type JoinRoomParams struct {
	RoomHash string
	Password string
}

type JoinRoomResponse struct {
	Room         Room
	RoomUser     RoomUser
	SessionToken string
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	room, err := s.roomRepo.GetRoom(ctx, params.RoomHash)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return JoinRoomResponse{}, ErrRoomNotFound
		}
		return JoinRoomResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	if room.IsPrivate && room.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(room.PasswordHash), []byte(params.Password)); err != nil {
			return JoinRoomResponse{}, ErrWrongPassword
		}
	}

	count, err := s.roomRepo.CountRoomUsers(ctx, params.RoomHash)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to count room users: %w", err)
	}
	if count >= room.MaxUsers {
		return JoinRoomResponse{}, ErrRoomFull
	}

	roomUser, err := s.addRoomUser(ctx, params.RoomHash, RoleGuest, room.GuestControl)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	sessionToken, err := s.generateSessionToken(params.RoomHash, roomUser.ID)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	return JoinRoomResponse{
		Room: Room{
			RoomHash:     params.RoomHash,
			MovieID:      room.MovieID,
			IsPrivate:    room.IsPrivate,
			GuestControl: room.GuestControl,
			MaxUsers:     room.MaxUsers,
		},
		RoomUser:     roomUser,
		SessionToken: sessionToken,
	}, nil
}

func (s service) addRoomUser(ctx context.Context, roomHash, role string, playPause bool) (RoomUser, error) {
	roomUserID := uuid.NewString()

	if err := s.roomRepo.SetRoomUser(ctx, &repository.SetRoomUserParams{
		RoomUserID: roomUserID,
		RoomHash:   roomHash,
		Role:       role,
		PlayPause:  playPause,
	}); err != nil {
		return RoomUser{}, fmt.Errorf("failed to set room user: %w", err)
	}

	if err := s.roomRepo.AddUserToRoom(ctx, roomHash, roomUserID); err != nil {
		return RoomUser{}, fmt.Errorf("failed to add user to room: %w", err)
	}

	return RoomUser{
		ID:         roomUserID,
		Role:       role,
		Privileges: Privileges{PlayPause: playPause},
	}, nil
}

type GetRoomUserParams struct {
	RoomHash   string
	RoomUserID string
}

func (s service) GetRoomUser(ctx context.Context, params *GetRoomUserParams) (RoomUser, error) {
	roomUser, err := s.roomRepo.GetRoomUser(ctx, &repository.GetRoomUserParams{
		RoomHash:   params.RoomHash,
		RoomUserID: params.RoomUserID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrRoomUserNotFound) {
			return RoomUser{}, ErrRoomUserNotFound
		}
		return RoomUser{}, fmt.Errorf("failed to get room user: %w", err)
	}

	return RoomUser{
		ID:         params.RoomUserID,
		Role:       roomUser.Role,
		Privileges: Privileges{PlayPause: roomUser.PlayPause},
	}, nil
}
