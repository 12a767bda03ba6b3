package playback

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineroom/cineroom/internal/player"
	"github.com/cineroom/cineroom/internal/protocol"
)

type fakePlayer struct {
	position float64
	duration float64
	paused   bool
	playErr  error

	seeks  []float64
	plays  int
	pauses int
}

func (p *fakePlayer) Position() (float64, error) { return p.position, nil }
func (p *fakePlayer) Duration() (float64, error) { return p.duration, nil }
func (p *fakePlayer) IsPaused() (bool, error)    { return p.paused, nil }

func (p *fakePlayer) Play() error {
	p.plays++
	if p.playErr != nil {
		return p.playErr
	}
	p.paused = false
	return nil
}

func (p *fakePlayer) Pause() error {
	p.pauses++
	p.paused = true
	return nil
}

func (p *fakePlayer) Seek(seconds float64) error {
	p.seeks = append(p.seeks, seconds)
	p.position = seconds
	return nil
}

func (p *fakePlayer) Close() error { return nil }

type fakeSender struct {
	actions []any
	err     error
}

func (s *fakeSender) Send(action any) error {
	if s.err != nil {
		return s.err
	}
	s.actions = append(s.actions, action)
	return nil
}

func newTestSynchronizer(p player.Player, sender Sender, canControl bool, now time.Time) *Synchronizer {
	gate := NewGate()
	gate.Load(Privileges{PlayPause: canControl})

	return NewSynchronizer(p, sender, gate, slog.Default(), &Config{
		Now: func() time.Time { return now },
	})
}

func TestApplyRoomStateCompensatesLatency(t *testing.T) {
	now := time.Now()
	p := &fakePlayer{position: 0, duration: 3600, paused: false}
	s := newTestSynchronizer(p, &fakeSender{}, true, now)

	s.ApplyRoomState(protocol.RoomUpdate{
		Type:        protocol.TypeRoomUpdate,
		Timestamp:   100,
		LastUpdated: now.Add(-2 * time.Second),
		PlayState:   true,
	})

	require.Len(t, p.seeks, 1)
	assert.InDelta(t, 102, p.seeks[0], 0.001, "seek target must include elapsed time since last_updated")
}

func TestApplyRoomStateSkipsDriftWithinTolerance(t *testing.T) {
	now := time.Now()
	p := &fakePlayer{position: 100.2, duration: 3600, paused: false}
	s := newTestSynchronizer(p, &fakeSender{}, true, now)

	s.ApplyRoomState(protocol.RoomUpdate{
		Type:        protocol.TypeRoomUpdate,
		Timestamp:   100,
		LastUpdated: now,
		PlayState:   true,
	})

	assert.Empty(t, p.seeks, "drift inside the tolerance band must not seek")
}

func TestApplyRoomStatePausesDespiteSyncedPosition(t *testing.T) {
	now := time.Now()
	p := &fakePlayer{position: 100, duration: 3600, paused: false}
	s := newTestSynchronizer(p, &fakeSender{}, true, now)

	s.ApplyRoomState(protocol.RoomUpdate{
		Type:        protocol.TypeRoomUpdate,
		Timestamp:   100,
		LastUpdated: now,
		PlayState:   false,
	})

	assert.Empty(t, p.seeks, "synced position must not seek")
	assert.Equal(t, 1, p.pauses, "pause must be applied even when the position is in sync")
}

func TestApplyRoomStatePlayIsIdempotent(t *testing.T) {
	now := time.Now()
	p := &fakePlayer{position: 100, duration: 3600, paused: false}
	s := newTestSynchronizer(p, &fakeSender{}, true, now)

	s.ApplyRoomState(protocol.RoomUpdate{
		Type:        protocol.TypeRoomUpdate,
		Timestamp:   100,
		LastUpdated: now,
		PlayState:   true,
	})

	assert.Zero(t, p.plays, "an already playing player must not be played again")
}

func TestApplyRoomStateRetriesRejectedPlay(t *testing.T) {
	now := time.Now()
	p := &fakePlayer{position: 100, duration: 3600, paused: true, playErr: player.ErrPlayRejected}
	s := newTestSynchronizer(p, &fakeSender{}, true, now)

	update := protocol.RoomUpdate{
		Type:        protocol.TypeRoomUpdate,
		Timestamp:   100,
		LastUpdated: now,
		PlayState:   true,
	}
	s.ApplyRoomState(update)
	s.ApplyRoomState(update)

	assert.Equal(t, 2, p.plays, "a rejected play must be retried on the next update")
}

func TestLocalControlsDeniedWithoutPrivilege(t *testing.T) {
	p := &fakePlayer{position: 100, duration: 3600, paused: true}
	sender := &fakeSender{}
	s := newTestSynchronizer(p, sender, false, time.Now())

	s.TogglePlay()
	s.SetPlaying(true)
	s.SeekTo(500)
	s.BeginSeek()
	s.EndSeek()

	assert.Zero(t, p.plays)
	assert.Empty(t, p.seeks)
	assert.Empty(t, sender.actions, "a denied control must not emit any action")
}

func TestSetPlayingIsOptimistic(t *testing.T) {
	p := &fakePlayer{position: 100, duration: 3600, paused: true}
	sender := &fakeSender{}
	s := newTestSynchronizer(p, sender, true, time.Now())

	s.SetPlaying(true)

	assert.Equal(t, 1, p.plays, "local intent must mutate the player immediately")
	require.Len(t, sender.actions, 1)
	action, ok := sender.actions[0].(protocol.PlayStateAction)
	require.True(t, ok)
	assert.Equal(t, protocol.ActionPlayState, action.ActionType)
	assert.True(t, action.ActionState)
}

func TestSeekGestureEmitsSingleAction(t *testing.T) {
	p := &fakePlayer{position: 100, duration: 1000, paused: false}
	sender := &fakeSender{}
	now := time.Now()
	s := newTestSynchronizer(p, sender, true, now)

	s.BeginSeek()
	s.MoveSeek(0.2)
	s.MoveSeek(0.5)
	s.MoveSeek(0.8)
	assert.Empty(t, p.seeks, "moves must not touch the player")
	assert.Empty(t, sender.actions, "moves must not emit actions")

	s.EndSeek()

	require.Len(t, p.seeks, 1)
	assert.InDelta(t, 800, p.seeks[0], 0.001)
	require.Len(t, sender.actions, 1)
	action, ok := sender.actions[0].(protocol.SeekAction)
	require.True(t, ok)
	assert.Equal(t, protocol.ActionSeek, action.ActionType)
	assert.InDelta(t, 800, action.ActionState, 0.001)
}

func TestMoveSeekClampsProgress(t *testing.T) {
	p := &fakePlayer{position: 100, duration: 1000, paused: false}
	s := newTestSynchronizer(p, &fakeSender{}, true, time.Now())

	s.BeginSeek()
	s.MoveSeek(1.7)

	assert.Equal(t, 1.0, s.Snapshot().Progress)
}

func TestDroppedActionDoesNotUndoLocalMutation(t *testing.T) {
	p := &fakePlayer{position: 100, duration: 3600, paused: true}
	sender := &fakeSender{err: errors.New("not connected")}
	s := newTestSynchronizer(p, sender, true, time.Now())

	s.SetPlaying(true)

	assert.Equal(t, 1, p.plays, "the optimistic mutation stands even when the send drops")
	assert.True(t, s.Snapshot().IsPlaying)
}

func TestVolumeAndMuteStayLocal(t *testing.T) {
	sender := &fakeSender{}
	s := newTestSynchronizer(&fakePlayer{duration: 3600}, sender, true, time.Now())

	s.SetVolume(0.5)
	s.SetMuted(true)

	state := s.Snapshot()
	assert.Equal(t, 0.5, state.Volume)
	assert.True(t, state.Muted)
	assert.Empty(t, sender.actions, "volume and mute are never transmitted")
}

func TestCloseStopsCallbacks(t *testing.T) {
	now := time.Now()
	p := &fakePlayer{position: 0, duration: 3600, paused: true}
	s := newTestSynchronizer(p, &fakeSender{}, true, now)

	s.Close()
	s.ApplyRoomState(protocol.RoomUpdate{
		Type:        protocol.TypeRoomUpdate,
		Timestamp:   100,
		LastUpdated: now.Add(-2 * time.Second),
		PlayState:   true,
	})
	s.SeekTo(500)

	assert.Empty(t, p.seeks, "a closed synchronizer must not touch the player")
	assert.Zero(t, p.plays)
}
