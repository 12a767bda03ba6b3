package app

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineroom/cineroom/internal/api"
	"github.com/cineroom/cineroom/internal/protocol"
	"github.com/cineroom/cineroom/internal/relay/controller"
	"github.com/cineroom/cineroom/internal/relay/repository/connection/inmemory"
	roomRedis "github.com/cineroom/cineroom/internal/relay/repository/redis"
	"github.com/cineroom/cineroom/internal/relay/service"
	"github.com/cineroom/cineroom/internal/session"
)

func newTestRelay(t *testing.T, library map[int]string) *httptest.Server {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	roomRepo := roomRedis.NewRepo(rc, time.Hour)
	connRepo := inmemory.NewRepo()
	roomService := service.NewService(roomRepo, connRepo, &service.Config{
		MembersLimit: 9,
		Secret:       "test-secret",
	})
	ctrl := controller.NewController(roomService, slog.Default(), library)

	ts := httptest.NewServer(ctrl.GetMux())
	t.Cleanup(ts.Close)

	return ts
}

func openSession(t *testing.T, ts *httptest.Server, token, roomHash string) (*session.Session, <-chan protocol.RoomUpdate) {
	t.Helper()

	updates := make(chan protocol.RoomUpdate, 16)
	s := session.New(&session.Config{
		BaseURL: "ws" + strings.TrimPrefix(ts.URL, "http"),
		Token:   token,
	}, func(u protocol.RoomUpdate) {
		updates <- u
	}, slog.Default())
	t.Cleanup(s.Close)

	require.NoError(t, s.Connect(context.Background(), roomHash))

	return s, updates
}

func nextUpdate(t *testing.T, updates <-chan protocol.RoomUpdate) protocol.RoomUpdate {
	t.Helper()
	select {
	case update := <-updates:
		return update
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for room update")
		return protocol.RoomUpdate{}
	}
}

func TestRelayRoomFlow(t *testing.T) {
	ts := newTestRelay(t, map[int]string{603: "http://cdn.example/matrix.m3u8"})
	ctx := context.Background()

	// owner creates a room over rest
	createResp, err := api.New(ts.URL, "").CreateRoom(ctx, &api.CreateRoomParams{MovieID: 603})
	require.NoError(t, err)
	roomHash := createResp.Room.RoomHash

	ownerAPI := api.New(ts.URL, createResp.SessionToken)

	ownerUser, err := ownerAPI.GetRoomUser(ctx, roomHash)
	require.NoError(t, err)
	assert.True(t, ownerUser.Privileges.PlayPause)

	streamPath, err := ownerAPI.GetStreamPath(ctx, 603)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example/matrix.m3u8", streamPath)

	_, err = ownerAPI.GetStreamPath(ctx, 99999)
	assert.ErrorIs(t, err, api.ErrStreamUnavailable)

	// guest joins over rest
	joinResp, err := api.New(ts.URL, "").JoinRoom(ctx, roomHash, &api.JoinRoomParams{})
	require.NoError(t, err)
	assert.False(t, joinResp.RoomUser.Privileges.PlayPause)

	// both members connect to the room channel and sync from the initial state
	ownerSess, ownerUpdates := openSession(t, ts, createResp.SessionToken, roomHash)
	initial := nextUpdate(t, ownerUpdates)
	assert.False(t, initial.PlayState)
	assert.Zero(t, initial.Timestamp)

	guestSess, guestUpdates := openSession(t, ts, joinResp.SessionToken, roomHash)
	nextUpdate(t, guestUpdates)

	// owner starts playback, the whole room hears it
	require.NoError(t, ownerSess.Send(protocol.NewPlayStateAction(true)))
	ownerPlay := nextUpdate(t, ownerUpdates)
	assert.True(t, ownerPlay.PlayState)
	guestPlay := nextUpdate(t, guestUpdates)
	assert.True(t, guestPlay.PlayState)

	// the guest's seek is rejected silently; the owner's goes through,
	// so the next update both sides see is the owner's target
	require.NoError(t, guestSess.Send(protocol.NewSeekAction(500, time.Now())))
	require.NoError(t, ownerSess.Send(protocol.NewSeekAction(300, time.Now())))

	ownerSeek := nextUpdate(t, ownerUpdates)
	assert.InDelta(t, 300, ownerSeek.Timestamp, 0.001)
	assert.True(t, ownerSeek.PlayState, "a seek must not change the play state")

	guestSeek := nextUpdate(t, guestUpdates)
	assert.InDelta(t, 300, guestSeek.Timestamp, 0.001)
}

func TestRelayRejectsWrongProtocolVersion(t *testing.T) {
	ts := newTestRelay(t, nil)
	ctx := context.Background()

	createResp, err := api.New(ts.URL, "").CreateRoom(ctx, &api.CreateRoomParams{MovieID: 603})
	require.NoError(t, err)

	target := "ws" + strings.TrimPrefix(ts.URL, "http") +
		"/ws/room/" + createResp.Room.RoomHash + "/?token=" + createResp.SessionToken + "&version=0"
	conn, resp, err := websocket.DefaultDialer.Dial(target, nil)
	if conn != nil {
		conn.Close()
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	require.Error(t, err, "an unsupported protocol version must refuse the handshake")
}

func TestRelayRejectsForeignToken(t *testing.T) {
	ts := newTestRelay(t, nil)
	ctx := context.Background()

	first, err := api.New(ts.URL, "").CreateRoom(ctx, &api.CreateRoomParams{MovieID: 603})
	require.NoError(t, err)
	second, err := api.New(ts.URL, "").CreateRoom(ctx, &api.CreateRoomParams{MovieID: 604})
	require.NoError(t, err)

	// a session token from one room must not open another room's channel
	target := "ws" + strings.TrimPrefix(ts.URL, "http") +
		"/ws/room/" + first.Room.RoomHash + "/?token=" + second.SessionToken + "&version=1"
	conn, resp, err := websocket.DefaultDialer.Dial(target, nil)
	if conn != nil {
		conn.Close()
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	require.Error(t, err)
}

func TestLoadLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"603": "http://cdn.example/matrix.m3u8"}`), 0o644))

	library, err := loadLibrary(path)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example/matrix.m3u8", library[603])

	empty, err := loadLibrary("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
