package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoom(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/room/create/", r.URL.Path)

		var params CreateRoomParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, 603, params.MovieID)
		assert.True(t, params.GuestControl)

		json.NewEncoder(w).Encode(CreateRoomResponse{
			Room:         Room{RoomHash: "abc123def456", MovieID: 603, GuestControl: true, MaxUsers: 9},
			RoomUser:     RoomUser{ID: "user-1", Role: "owner"},
			SessionToken: "token-1",
		})
	}))
	defer ts.Close()

	client := New(ts.URL, "")
	resp, err := client.CreateRoom(context.Background(), &CreateRoomParams{MovieID: 603, GuestControl: true})
	require.NoError(t, err)

	assert.Equal(t, "abc123def456", resp.Room.RoomHash)
	assert.Equal(t, "owner", resp.RoomUser.Role)
	assert.Equal(t, "token-1", resp.SessionToken)
}

func TestJoinRoomSurfacesErrorEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "wrong password"})
	}))
	defer ts.Close()

	client := New(ts.URL, "")
	_, err := client.JoinRoom(context.Background(), "abc123def456", &JoinRoomParams{Password: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong password")
}

func TestGetRoomUserSendsBearerToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		require.Equal(t, "/room/abc123def456/room-user/", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"room_user": RoomUser{ID: "user-1", Role: "guest"},
		})
	}))
	defer ts.Close()

	client := New(ts.URL, "session-token")
	roomUser, err := client.GetRoomUser(context.Background(), "abc123def456")
	require.NoError(t, err)
	assert.Equal(t, "guest", roomUser.Role)
}

func TestGetStreamPath(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "603", r.URL.Query().Get("tmdb_id"))
		json.NewEncoder(w).Encode(map[string]string{"file_path": "http://cdn.example/movie.m3u8"})
	}))
	defer ts.Close()

	client := New(ts.URL, "session-token")
	path, err := client.GetStreamPath(context.Background(), 603)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example/movie.m3u8", path)
}

func TestGetStreamPathUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// an unknown movie is a 200 with an empty path, not an http error
		json.NewEncoder(w).Encode(map[string]string{"file_path": ""})
	}))
	defer ts.Close()

	client := New(ts.URL, "session-token")
	_, err := client.GetStreamPath(context.Background(), 99999)
	assert.ErrorIs(t, err, ErrStreamUnavailable)
}
