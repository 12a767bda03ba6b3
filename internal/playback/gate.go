package playback

import "sync"

// Privileges is the per-room-user authorization flags, fetched once when the
// room session starts and immutable for its lifetime.
type Privileges struct {
	PlayPause bool `json:"play_pause"`
}

// Gate authorizes locally-originated playback controls. Until Load is called
// every control is denied.
type Gate struct {
	mu         sync.RWMutex
	loaded     bool
	privileges Privileges
}

func NewGate() *Gate {
	return &Gate{}
}

func (g *Gate) Load(privileges Privileges) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.loaded = true
	g.privileges = privileges
}

func (g *Gate) CanControlPlayback() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.loaded && g.privileges.PlayPause
}
