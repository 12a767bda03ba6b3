// Package playback reconciles a local media player against authoritative
// room state and gates locally-originated controls behind the room user's
// privileges.
package playback

import (
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/cineroom/cineroom/internal/player"
	"github.com/cineroom/cineroom/internal/protocol"
)

// DefaultTolerance is the drift hysteresis band. Corrections inside the band
// are skipped so normal network jitter and timer granularity do not turn
// every room update into a micro-seek.
const DefaultTolerance = 500 * time.Millisecond

// Sender transmits an outbound action to the relay. Implementations must
// drop, not queue, when no connection is open.
type Sender interface {
	Send(action any) error
}

// LocalPlaybackState is a derived cache for rendering. The player remains
// the source of truth for the actual position.
type LocalPlaybackState struct {
	IsPlaying bool
	Progress  float64
	Volume    float64
	Muted     bool
}

type Config struct {
	Tolerance time.Duration
	Now       func() time.Time
}

// Synchronizer applies inbound room updates to the local player and turns
// local user intents into optimistic player mutations plus outbound actions.
//
// Compensation trusts the local wall clock against the relay's last_updated
// with no offset correction; the tolerance band absorbs sub-second skew,
// larger skew degrades accuracy by exactly the clock offset.
type Synchronizer struct {
	player    player.Player
	sender    Sender
	gate      *Gate
	tolerance time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu           sync.Mutex
	local        LocalPlaybackState
	seeking      bool
	seekProgress float64
	closed       bool
}

func NewSynchronizer(p player.Player, sender Sender, gate *Gate, logger *slog.Logger, cfg *Config) *Synchronizer {
	s := &Synchronizer{
		player:    p,
		sender:    sender,
		gate:      gate,
		tolerance: DefaultTolerance,
		now:       time.Now,
		logger:    logger,
	}
	if cfg != nil {
		if cfg.Tolerance > 0 {
			s.tolerance = cfg.Tolerance
		}
		if cfg.Now != nil {
			s.now = cfg.Now
		}
	}
	s.local.Volume = 1

	return s
}

// ApplyRoomState reconciles the player against an authoritative broadcast.
// Position and play state are independent axes: a pause is never skipped
// just because the position is already in sync, and vice versa.
func (s *Synchronizer) ApplyRoomState(update protocol.RoomUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	compensated := update.Timestamp + s.now().Sub(update.LastUpdated).Seconds()

	position, err := s.player.Position()
	if err != nil {
		s.logger.Debug("skipping drift correction, position unavailable", "error", err)
	} else {
		drift := compensated - position
		if math.Abs(drift) > s.tolerance.Seconds() {
			if err := s.player.Seek(compensated); err != nil {
				s.logger.Warn("failed to correct drift", "error", err, "drift", drift)
			} else {
				s.logger.Debug("corrected drift", "drift", drift, "position", compensated)
			}
		}
	}

	paused, err := s.player.IsPaused()
	if err != nil {
		s.logger.Debug("skipping play state reconciliation", "error", err)
	} else if update.PlayState && paused {
		if err := s.player.Play(); err != nil {
			if errors.Is(err, player.ErrPlayRejected) {
				// recoverable: the next room update retries
				s.logger.Warn("playback requires a user gesture")
			} else {
				s.logger.Warn("failed to start playback", "error", err)
			}
		}
	} else if !update.PlayState && !paused {
		if err := s.player.Pause(); err != nil {
			s.logger.Warn("failed to pause playback", "error", err)
		}
	}

	s.local.IsPlaying = update.PlayState
	if !s.seeking {
		s.updateProgressLocked(compensated)
	}
}

// SetPlaying applies a local play/pause intent optimistically and emits the
// corresponding action. Denied by the gate it is a complete no-op; the next
// room update corrects the player if the relay disagrees.
func (s *Synchronizer) SetPlaying(playing bool) {
	if !s.gate.CanControlPlayback() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	var err error
	if playing {
		err = s.player.Play()
	} else {
		err = s.player.Pause()
	}
	if err != nil {
		s.logger.Warn("failed to apply local play state", "error", err)
		return
	}
	s.local.IsPlaying = playing

	s.send(protocol.NewPlayStateAction(playing))
}

func (s *Synchronizer) TogglePlay() {
	s.mu.Lock()
	playing := s.local.IsPlaying
	s.mu.Unlock()

	s.SetPlaying(!playing)
}

// SeekTo applies a local absolute seek optimistically and emits one seek
// action.
func (s *Synchronizer) SeekTo(seconds float64) {
	if !s.gate.CanControlPlayback() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seekLocked(seconds)
}

// BeginSeek starts a press-move-release seek gesture.
func (s *Synchronizer) BeginSeek() {
	if !s.gate.CanControlPlayback() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seeking = true
	s.seekProgress = s.local.Progress
}

// MoveSeek updates the visual position while the gesture is held. No player
// mutation and no outbound message happen until release.
func (s *Synchronizer) MoveSeek(progress float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seeking {
		return
	}

	s.seekProgress = math.Min(1, math.Max(0, progress))
	s.local.Progress = s.seekProgress
}

// EndSeek releases the gesture: the player seeks to the held position and
// exactly one seek action is emitted.
func (s *Synchronizer) EndSeek() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seeking {
		return
	}
	s.seeking = false

	duration, err := s.player.Duration()
	if err != nil {
		s.logger.Warn("failed to resolve seek target", "error", err)
		return
	}

	s.seekLocked(s.seekProgress * duration)
}

func (s *Synchronizer) seekLocked(seconds float64) {
	if s.closed {
		return
	}

	if err := s.player.Seek(seconds); err != nil {
		s.logger.Warn("failed to apply local seek", "error", err)
		return
	}
	s.updateProgressLocked(seconds)

	s.send(protocol.NewSeekAction(seconds, s.now()))
}

// SetVolume adjusts local volume only; it is never transmitted.
func (s *Synchronizer) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.local.Volume = math.Min(1, math.Max(0, volume))
}

// SetMuted toggles local mute only; it is never transmitted.
func (s *Synchronizer) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.local.Muted = muted
}

// Snapshot returns the current render state.
func (s *Synchronizer) Snapshot() LocalPlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.local
}

// Close makes every later callback a no-op so nothing dispatches into a torn
// down session.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
}

func (s *Synchronizer) send(action any) {
	if err := s.sender.Send(action); err != nil {
		// stale intents are worse than dropped ones: no queueing, no retry
		s.logger.Debug("dropped outbound action", "error", err)
	}
}

func (s *Synchronizer) updateProgressLocked(position float64) {
	duration, err := s.player.Duration()
	if err != nil || duration <= 0 {
		return
	}

	s.local.Progress = math.Min(1, math.Max(0, position/duration))
}
