package shell

import (
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// PtyFactory abstracts PTY allocation so tests can substitute a plain
// file for the master side.
type PtyFactory interface {
	// Start launches cmd with its controlling terminal on a fresh PTY and
	// returns the master side.
	Start(cmd *exec.Cmd) (*os.File, error)
	Close()
}

type ptyFactory struct{}

func (ptyFactory) Start(cmd *exec.Cmd) (*os.File, error) {
	return pty.Start(cmd)
}

func (ptyFactory) Close() {}

// MakePtyFactory returns the real PTY factory.
func MakePtyFactory() PtyFactory {
	return ptyFactory{}
}
