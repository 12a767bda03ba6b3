package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/cineroom/cineroom/internal/relay/repository"
)

type ConnectUserParams struct {
	Conn       *websocket.Conn
	RoomHash   string
	RoomUserID string
}

func (s service) ConnectUser(ctx context.Context, params *ConnectUserParams) error {
	if _, err := s.roomRepo.GetRoomUser(ctx, &repository.GetRoomUserParams{
		RoomHash:   params.RoomHash,
		RoomUserID: params.RoomUserID,
	}); err != nil {
		if errors.Is(err, repository.ErrRoomUserNotFound) {
			return ErrRoomUserNotFound
		}
		return fmt.Errorf("failed to get room user: %w", err)
	}

	if err := s.connRepo.Add(params.Conn, params.RoomUserID); err != nil {
		return fmt.Errorf("failed to add connection: %w", err)
	}

	return nil
}

type DisconnectUserParams struct {
	RoomUserID string
}

func (s service) DisconnectUser(ctx context.Context, params *DisconnectUserParams) error {
	if err := s.connRepo.RemoveByRoomUserID(params.RoomUserID); err != nil {
		return fmt.Errorf("failed to remove connection: %w", err)
	}

	return nil
}
