package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/cineroom/cineroom/internal/protocol"
	"github.com/cineroom/cineroom/internal/relay/service"
	"github.com/cineroom/cineroom/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsRequestIdMw())
	mux.Use(c.wsLoggingMw())

	mux.Handle(protocol.ActionPlayState, c.handlePlayState)
	mux.Handle(protocol.ActionSeek, c.handleSeek)

	return mux
}

func (c controller) connectRoom(w http.ResponseWriter, r *http.Request) {
	roomHash := chi.URLParam(r, "room-hash")

	if version := r.URL.Query().Get("version"); version != strconv.Itoa(protocol.Version) {
		c.logger.DebugContext(r.Context(), "unsupported protocol version", "version", version)
		w.WriteHeader(http.StatusUpgradeRequired)
		return
	}

	claims, err := c.roomService.ParseSessionToken(r.URL.Query().Get("token"))
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to parse session token", "error", err)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if claims.RoomHash != roomHash {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	if err := c.roomService.ConnectUser(r.Context(), &service.ConnectUserParams{
		Conn:       conn,
		RoomHash:   roomHash,
		RoomUserID: claims.RoomUserID,
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to connect user", "error", err)
		return
	}
	defer func() {
		if err := c.roomService.DisconnectUser(r.Context(), &service.DisconnectUserParams{
			RoomUserID: claims.RoomUserID,
		}); err != nil {
			c.logger.WarnContext(r.Context(), "failed to disconnect user", "error", err)
		}
	}()

	// a fresh member syncs from the current state before any action lands
	state, err := c.roomService.GetState(r.Context(), roomHash)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to get state", "error", err)
		return
	}
	if err := conn.WriteJSON(c.roomUpdate(state)); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write json", "error", err)
		return
	}

	ctx := context.WithValue(r.Context(), roomHashCtxKey, roomHash)
	ctx = context.WithValue(ctx, roomUserIdCtxKey, claims.RoomUserID)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(r.Context(), "failed to serve conn", "error", err)
		return
	}
}

func (c controller) handlePlayState(ctx context.Context, conn *websocket.Conn, raw json.RawMessage) error {
	var input protocol.PlayStateAction
	if err := json.Unmarshal(raw, &input); err != nil {
		c.logger.DebugContext(ctx, "failed to unmarshal play state action", "error", err)
		return nil
	}

	resp, err := c.roomService.UpdatePlayState(ctx, &service.UpdatePlayStateParams{
		RoomHash:  c.getRoomHashFromCtx(ctx),
		SenderID:  c.getRoomUserIdFromCtx(ctx),
		PlayState: input.ActionState,
	})
	if err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			c.logger.DebugContext(ctx, "play state action rejected", "error", err)
			return nil
		}
		return fmt.Errorf("failed to update play state: %w", err)
	}

	return c.broadcastRoomUpdate(ctx, resp.Conns, resp.State)
}

func (c controller) handleSeek(ctx context.Context, conn *websocket.Conn, raw json.RawMessage) error {
	var input protocol.SeekAction
	if err := json.Unmarshal(raw, &input); err != nil {
		c.logger.DebugContext(ctx, "failed to unmarshal seek action", "error", err)
		return nil
	}

	resp, err := c.roomService.Seek(ctx, &service.SeekParams{
		RoomHash: c.getRoomHashFromCtx(ctx),
		SenderID: c.getRoomUserIdFromCtx(ctx),
		Seconds:  input.ActionState,
	})
	if err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			c.logger.DebugContext(ctx, "seek action rejected", "error", err)
			return nil
		}
		return fmt.Errorf("failed to seek: %w", err)
	}

	return c.broadcastRoomUpdate(ctx, resp.Conns, resp.State)
}

func (c controller) roomUpdate(state service.State) protocol.RoomUpdate {
	return protocol.RoomUpdate{
		Type:        protocol.TypeRoomUpdate,
		Timestamp:   state.Timestamp,
		LastUpdated: state.LastUpdated,
		PlayState:   state.PlayState,
	}
}

// broadcastRoomUpdate fans the new state out to every live room connection.
// A single dead connection must not starve the rest of the room.
func (c controller) broadcastRoomUpdate(ctx context.Context, conns []*websocket.Conn, state service.State) error {
	update := c.roomUpdate(state)
	for _, conn := range conns {
		if err := conn.WriteJSON(update); err != nil {
			c.logger.DebugContext(ctx, "failed to write to conn", "error", err)
		}
	}

	return nil
}
