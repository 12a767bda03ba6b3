// Package api is the thin REST client for room lifecycle and stream
// resolution. Transport errors are wrapped and handled by callers at the
// boundary; they are never surfaced into render code.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cineroom/cineroom/internal/playback"
)

// ErrStreamUnavailable reports that no playable manifest exists for the
// movie. It is a hard failure for the room but not for the rest of the app.
var ErrStreamUnavailable = errors.New("stream unavailable")

type Room struct {
	RoomHash     string `json:"room_hash"`
	MovieID      int    `json:"movie_id"`
	IsPrivate    bool   `json:"is_private"`
	GuestControl bool   `json:"guest_control"`
	MaxUsers     int    `json:"max_users"`
}

type RoomUser struct {
	ID         string              `json:"id"`
	Role       string              `json:"role"`
	Privileges playback.Privileges `json:"privileges"`
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New builds a client for baseURL. token is the caller's bearer token; its
// storage and refresh are not this package's concern.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type CreateRoomParams struct {
	MovieID      int    `json:"movie_id"`
	IsPrivate    bool   `json:"is_private"`
	Password     string `json:"password,omitempty"`
	GuestControl bool   `json:"guest_control"`
	MaxUsers     int    `json:"max_users"`
}

type CreateRoomResponse struct {
	Room         Room     `json:"room"`
	RoomUser     RoomUser `json:"room_user"`
	SessionToken string   `json:"session_token"`
}

func (c *Client) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	var resp CreateRoomResponse
	if err := c.do(ctx, http.MethodPost, "/room/create/", params, &resp); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
	}

	return resp, nil
}

type JoinRoomParams struct {
	Password string `json:"password,omitempty"`
}

type JoinRoomResponse struct {
	Room         Room     `json:"room"`
	RoomUser     RoomUser `json:"room_user"`
	SessionToken string   `json:"session_token"`
}

func (c *Client) JoinRoom(ctx context.Context, code string, params *JoinRoomParams) (JoinRoomResponse, error) {
	var resp JoinRoomResponse
	if err := c.do(ctx, http.MethodPost, "/room/join/"+url.PathEscape(code)+"/", params, &resp); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to join room: %w", err)
	}

	return resp, nil
}

// GetRoomUser fetches the caller's per-room profile, privileges included.
// It is fetched once when the room view mounts and treated as immutable for
// the session.
func (c *Client) GetRoomUser(ctx context.Context, roomHash string) (RoomUser, error) {
	var resp struct {
		RoomUser RoomUser `json:"room_user"`
	}
	if err := c.do(ctx, http.MethodGet, "/room/"+url.PathEscape(roomHash)+"/room-user/", nil, &resp); err != nil {
		return RoomUser{}, fmt.Errorf("failed to get room user: %w", err)
	}

	return resp.RoomUser, nil
}

// GetStreamPath resolves the streaming manifest URL for a movie. A response
// without file_path means playback is unavailable.
func (c *Client) GetStreamPath(ctx context.Context, tmdbID int) (string, error) {
	var resp struct {
		FilePath string `json:"file_path"`
	}
	path := fmt.Sprintf("/movie/stream-to-client/?tmdb_id=%d", tmdbID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to get stream path: %w", err)
	}

	if resp.FilePath == "" {
		return "", ErrStreamUnavailable
	}

	return resp.FilePath, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
