package shelltest

import (
	"os"
	"os/exec"
)

// MockCmdExec intercepts command execution for tests.
type MockCmdExec struct {
	RunFunc    func(cmd *exec.Cmd) error
	OutputFunc func(cmd *exec.Cmd) ([]byte, error)
}

func (e MockCmdExec) Run(cmd *exec.Cmd) error {
	return e.RunFunc(cmd)
}

func (e MockCmdExec) Output(cmd *exec.Cmd) ([]byte, error) {
	return e.OutputFunc(cmd)
}

// NewMockExecutor returns a *MockCmdExec with no-op defaults.
// Callers may override RunFunc and OutputFunc before use.
func NewMockExecutor() *MockCmdExec {
	return &MockCmdExec{
		RunFunc: func(cmd *exec.Cmd) error {
			return nil
		},
		OutputFunc: func(cmd *exec.Cmd) ([]byte, error) {
			return nil, nil
		},
	}
}

// MockPtyFactory hands out temp files instead of real PTYs.
type MockPtyFactory struct{}

func (f MockPtyFactory) Start(_ *exec.Cmd) (*os.File, error) {
	return os.CreateTemp("", "playpen-pty-*")
}

func (f MockPtyFactory) Close() {}
