// Package shell runs the caller's command inside an active scratch
// space: interactively on a PTY when stdin is a terminal, with plain
// stdio passthrough otherwise.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/kastheco/playpen/log"
)

// Runner launches programs in a working directory. Zero value is not
// usable; construct with NewRunner or NewRunnerWithDeps.
type Runner struct {
	cmdExec    Executor
	ptyFactory PtyFactory
}

// NewRunner returns a Runner backed by the real executor and PTY.
func NewRunner() *Runner {
	return &Runner{cmdExec: MakeExecutor(), ptyFactory: MakePtyFactory()}
}

// NewRunnerWithDeps returns a Runner with injected dependencies for testing.
func NewRunnerWithDeps(cmdExec Executor, ptyFactory PtyFactory) *Runner {
	return &Runner{cmdExec: cmdExec, ptyFactory: ptyFactory}
}

// Run executes program with args in dir and returns its exit code. When
// stdin is a terminal the command gets a PTY, raw-mode stdin, and window
// size propagation; otherwise stdio is passed through unchanged.
func (r *Runner) Run(program string, args []string, dir string) (int, error) {
	cmd := exec.Command(program, args...)
	cmd.Dir = dir

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return exitCode(r.cmdExec.Run(cmd))
	}

	return r.runOnPty(cmd)
}

func (r *Runner) runOnPty(cmd *exec.Cmd) (int, error) {
	ptmx, err := r.ptyFactory.Start(cmd)
	if err != nil {
		return -1, fmt.Errorf("failed to start %s on a pty: %w", cmd.Path, err)
	}
	defer func() {
		_ = ptmx.Close()
		r.ptyFactory.Close()
	}()

	// Track terminal resizes for the lifetime of the command. The initial
	// signal primes the PTY with the current window size.
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, unix.SIGWINCH)
	defer func() {
		signal.Stop(winch)
		close(winch)
	}()
	go func() {
		for range winch {
			if err := pty.InheritSize(os.Stdin, ptmx); err != nil {
				log.WarningLog.Printf("failed to resize pty: %v", err)
			}
		}
	}()
	winch <- unix.SIGWINCH

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		// The child already started on the PTY; kill and reap it so the
		// early return does not leave it behind.
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return -1, fmt.Errorf("failed to put terminal in raw mode: %w", err)
	}
	defer func() {
		if err := term.Restore(int(os.Stdin.Fd()), oldState); err != nil {
			log.ErrorLog.Printf("failed to restore terminal state: %v", err)
		}
	}()

	go func() {
		_, _ = io.Copy(ptmx, os.Stdin)
	}()
	_, _ = io.Copy(os.Stdout, ptmx)

	return exitCode(cmd.Wait())
}

// exitCode maps a command error to its exit code. A non-exec error
// (command not found, pty trouble) reports as -1 with the error intact.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
