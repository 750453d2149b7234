package shell

import (
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"

	"github.com/kastheco/playpen/log"
	"github.com/kastheco/playpen/shell/shelltest"
)

func TestMain(m *testing.M) {
	log.Initialize(false)
	code := m.Run()
	log.Close()
	os.Exit(code)
}

// These tests run without a controlling terminal, so Run takes the plain
// stdio path and the executor seam sees every command.

func TestRun_PropagatesExitCode(t *testing.T) {
	r := NewRunner()

	code, err := r.Run("sh", []string{"-c", "exit 3"}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestRun_ZeroOnSuccess(t *testing.T) {
	r := NewRunner()

	code, err := r.Run("true", nil, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestRun_MissingProgram(t *testing.T) {
	r := NewRunner()

	code, err := r.Run("definitely-not-a-real-program", nil, t.TempDir())
	assert.Equal(t, -1, code)
	assert.Error(t, err)
}

func TestRun_SetsWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	var gotDir string

	mock := shelltest.NewMockExecutor()
	mock.RunFunc = func(cmd *exec.Cmd) error {
		gotDir = cmd.Dir
		return nil
	}

	r := NewRunnerWithDeps(mock, shelltest.MockPtyFactory{})
	code, err := r.Run("anything", nil, dir)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, dir, gotDir)
}

func TestRunOnPty_RawModeFailureReapsChild(t *testing.T) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		t.Skip("needs a non-terminal stdin so raw mode fails")
	}
	r := NewRunner()
	cmd := exec.Command("sleep", "30")

	code, err := r.runOnPty(cmd)
	require.Error(t, err)
	assert.ErrorContains(t, err, "raw mode")
	assert.Equal(t, -1, code)
	require.NotNil(t, cmd.ProcessState, "the started child must be waited on")
}

func TestExitCode(t *testing.T) {
	code, err := exitCode(nil)
	assert.Equal(t, 0, code)
	assert.NoError(t, err)

	plain := errors.New("spawn failed")
	code, err = exitCode(plain)
	assert.Equal(t, -1, code)
	assert.ErrorIs(t, err, plain)
}
