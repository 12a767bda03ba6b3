// Package protocol defines the canonical room channel schema. Exactly one
// message shape exists per direction; the version travels in the join
// handshake so the relay can refuse clients speaking an older variant.
package protocol

import "time"

const Version = 1

// Action types originated by clients.
const (
	ActionPlayState = "play_state"
	ActionSeek      = "seek"
)

// Broadcast types originated by the relay.
const (
	TypeRoomUpdate = "room_update"
)

type PlayStateAction struct {
	ActionType  string `json:"action_type"`
	ActionState bool   `json:"action_state"`
}

func NewPlayStateAction(playing bool) PlayStateAction {
	return PlayStateAction{
		ActionType:  ActionPlayState,
		ActionState: playing,
	}
}

type SeekAction struct {
	ActionType  string    `json:"action_type"`
	ActionState float64   `json:"action_state"`
	ActionTime  time.Time `json:"action_time"`
}

func NewSeekAction(seconds float64, at time.Time) SeekAction {
	return SeekAction{
		ActionType:  ActionSeek,
		ActionState: seconds,
		ActionTime:  at,
	}
}

// RoomUpdate is the authoritative room state broadcast. Timestamp is the
// position in seconds at the instant LastUpdated was captured on the relay
// clock; it must never be applied without compensating for the time elapsed
// since then.
type RoomUpdate struct {
	Type        string    `json:"type"`
	Timestamp   float64   `json:"timestamp"`
	LastUpdated time.Time `json:"last_updated"`
	PlayState   bool      `json:"play_state"`
}
