package player

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopReapsProcess(t *testing.T) {
	cmd := exec.Command("sleep", "60")
	require.NoError(t, cmd.Start())

	Stop(cmd)

	assert.NotNil(t, cmd.ProcessState, "the process must be waited on, not just killed")
	assert.True(t, cmd.ProcessState.Exited() || cmd.ProcessState.ExitCode() == -1)
}

func TestStopNilProcess(t *testing.T) {
	assert.NotPanics(t, func() {
		Stop(nil)
		Stop(&exec.Cmd{})
	})
}
