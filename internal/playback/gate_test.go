package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateDeniesBeforeLoad(t *testing.T) {
	gate := NewGate()

	assert.False(t, gate.CanControlPlayback(), "controls must be denied until privileges are loaded")
}

func TestGateAllowsAfterLoad(t *testing.T) {
	gate := NewGate()
	gate.Load(Privileges{PlayPause: true})

	assert.True(t, gate.CanControlPlayback())
}

func TestGateDeniesWithoutPrivilege(t *testing.T) {
	gate := NewGate()
	gate.Load(Privileges{PlayPause: false})

	assert.False(t, gate.CanControlPlayback())
}
