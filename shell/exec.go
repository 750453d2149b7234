package shell

import "os/exec"

// Executor abstracts running commands so tests can intercept them.
type Executor interface {
	Run(cmd *exec.Cmd) error
	Output(cmd *exec.Cmd) ([]byte, error)
}

type osExecutor struct{}

func (osExecutor) Run(cmd *exec.Cmd) error {
	return cmd.Run()
}

func (osExecutor) Output(cmd *exec.Cmd) ([]byte, error) {
	return cmd.Output()
}

// MakeExecutor returns the real command executor.
func MakeExecutor() Executor {
	return osExecutor{}
}
