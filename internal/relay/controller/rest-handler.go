package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cineroom/cineroom/internal/relay/service"
	"github.com/cineroom/cineroom/pkg/rest"
)

type roomResponse struct {
	Room         service.Room     `json:"room"`
	RoomUser     service.RoomUser `json:"room_user"`
	SessionToken string           `json:"session_token"`
}

type createRoomInput struct {
	MovieID      int    `json:"movie_id" validate:"required"`
	IsPrivate    bool   `json:"is_private"`
	Password     string `json:"password"`
	GuestControl bool   `json:"guest_control"`
	MaxUsers     int    `json:"max_users"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var input createRoomInput
	if err := rest.ReadJSON(r, &input); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.logger.DebugContext(r.Context(), "failed to validate input", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	createRoomResponse, err := c.roomService.CreateRoom(r.Context(), &service.CreateRoomParams{
		MovieID:      input.MovieID,
		IsPrivate:    input.IsPrivate,
		Password:     input.Password,
		GuestControl: input.GuestControl,
		MaxUsers:     input.MaxUsers,
	})
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to create room", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to create room"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, roomResponse{
		Room:         createRoomResponse.Room,
		RoomUser:     createRoomResponse.RoomUser,
		SessionToken: createRoomResponse.SessionToken,
	})
}

type joinRoomInput struct {
	Password string `json:"password"`
}

func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
		return
	}

	var input joinRoomInput
	if err := rest.ReadJSON(r, &input); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	joinRoomResponse, err := c.roomService.JoinRoom(r.Context(), &service.JoinRoomParams{
		RoomHash: code,
		Password: input.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
		case errors.Is(err, service.ErrWrongPassword):
			rest.WriteJSON(w, http.StatusForbidden, rest.Envelope{"error": "wrong password"})
		case errors.Is(err, service.ErrRoomFull):
			rest.WriteJSON(w, http.StatusConflict, rest.Envelope{"error": "room is full"})
		default:
			c.logger.WarnContext(r.Context(), "failed to join room", "error", err)
			rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to join room"})
		}
		return
	}

	rest.WriteJSON(w, http.StatusOK, roomResponse{
		Room:         joinRoomResponse.Room,
		RoomUser:     joinRoomResponse.RoomUser,
		SessionToken: joinRoomResponse.SessionToken,
	})
}

func (c controller) getRoomUser(w http.ResponseWriter, r *http.Request) {
	roomHash := chi.URLParam(r, "room-hash")

	claims, err := c.roomService.ParseSessionToken(c.bearerToken(r))
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to parse session token", "error", err)
		rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": "invalid session token"})
		return
	}

	if claims.RoomHash != roomHash {
		rest.WriteJSON(w, http.StatusForbidden, rest.Envelope{"error": "token does not match room"})
		return
	}

	roomUser, err := c.roomService.GetRoomUser(r.Context(), &service.GetRoomUserParams{
		RoomHash:   roomHash,
		RoomUserID: claims.RoomUserID,
	})
	if err != nil {
		if errors.Is(err, service.ErrRoomUserNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room user not found"})
			return
		}
		c.logger.WarnContext(r.Context(), "failed to get room user", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to get room user"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"room_user": roomUser})
}

// streamToClient resolves a movie id to its stream manifest url. An unknown
// id is not an error; the response just carries an empty file_path.
func (c controller) streamToClient(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := strconv.Atoi(r.URL.Query().Get("tmdb_id"))
	if err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "invalid tmdb_id"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"file_path": c.library[tmdbID]})
}

func (c controller) bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}
