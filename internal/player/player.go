// Package player abstracts the local media playback engine. The primary
// implementation drives mpv over its JSON-IPC socket.
package player

import "errors"

// ErrPlayRejected reports that the engine refused to start playback and a
// user gesture is required. It is recoverable: the next authoritative room
// update retries the play.
var ErrPlayRejected = errors.New("playback start rejected by player")

// Player is the media position/play-state abstraction the synchronizer
// reconciles against. The engine, not the caller, is the source of truth
// for the actual position.
type Player interface {
	// Position returns the current absolute playback position in seconds.
	Position() (float64, error)

	// Duration returns the total length of the loaded media in seconds.
	Duration() (float64, error)

	// IsPaused reports the engine's actual suspension state.
	IsPaused() (bool, error)

	// Play resumes playback. May return ErrPlayRejected.
	Play() error

	// Pause suspends playback.
	Pause() error

	// Seek moves playback to an absolute position in seconds.
	Seek(seconds float64) error

	// Close shuts the engine connection down and releases its resources.
	Close() error
}
