package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/cineroom/cineroom/internal/relay/repository/connection"
)

// getConnsByRoomHash resolves the live connections of a room's members.
// Members without an open connection are skipped, not an error.
func (s service) getConnsByRoomHash(ctx context.Context, roomHash string) ([]*websocket.Conn, error) {
	roomUserIDs, err := s.roomRepo.GetRoomUserIDs(ctx, roomHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get room user ids: %w", err)
	}

	conns := make([]*websocket.Conn, 0, len(roomUserIDs))
	for _, roomUserID := range roomUserIDs {
		conn, err := s.connRepo.GetConn(roomUserID)
		if err != nil {
			if errors.Is(err, connection.ErrNotFound) {
				continue
			}
			return nil, err
		}

		conns = append(conns, conn)
	}

	return conns, nil
}
