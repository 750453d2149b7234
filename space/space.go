// Package space provides a process-wide, mutually exclusive scratch
// environment: a fresh temporary working directory plus checkpoint and
// restore of all environment variables. It is meant for tests and other
// short-lived work that has to mutate global process state without
// trampling concurrent users of the same process.
//
// A Space is a pseudo-sandbox, not a sandbox: nothing stops code from
// reaching around the accessors and mutating globals directly, and only
// one Space can be active per process at a time.
package space

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
)

// ErrActive is returned by the fail-fast entry points when another space
// is currently active. Recoverable: wait for it to exit, or retry.
var ErrActive = errors.New("another scratch space is active")

// Space is a live scratch environment. The process working directory is
// the scratch directory for as long as the Space is active, and every
// environment variable mutation made while it is active is rolled back
// by Exit.
//
// A Space that is never Exited is torn down by the garbage collector
// eventually, with any teardown errors discarded. That is a caveat, not
// a guarantee; call Exit.
type Space struct {
	dir    string
	snap   snapshot
	tok    *token
	exited bool
}

// Enter acquires the process-wide scratch slot, blocking until it is
// free, then switches the process into a new scratch directory. The wait
// is indefinite and has no cancellation; entering again from a goroutine
// that already holds an active Space deadlocks it. Use EnterContext when
// the wait must be bounded.
func Enter() (*Space, error) {
	return defaultDomain.Enter()
}

// TryEnter is Enter except that it fails immediately with ErrActive when
// another space is active, touching no process state.
func TryEnter() (*Space, error) {
	return defaultDomain.TryEnter()
}

// EnterContext is Enter with a cancellable wait. If ctx is done before
// the slot frees up, the attempt is abandoned with ctx's error and no
// process state has been touched.
func EnterContext(ctx context.Context) (*Space, error) {
	return defaultDomain.EnterContext(ctx)
}

// EnterWithEnv enters a space and applies the given variable overrides
// before returning, so the caller sees entry and overrides as one step.
func EnterWithEnv(vars ...EnvVar) (*Space, error) {
	s, err := Enter()
	if err != nil {
		return nil, err
	}
	s.SetEnv(vars...)
	return s, nil
}

// TryEnterWithEnv is EnterWithEnv over TryEnter.
func TryEnterWithEnv(vars ...EnvVar) (*Space, error) {
	s, err := TryEnter()
	if err != nil {
		return nil, err
	}
	s.SetEnv(vars...)
	return s, nil
}

// EnterContextWithEnv is EnterWithEnv over EnterContext.
func EnterContextWithEnv(ctx context.Context, vars ...EnvVar) (*Space, error) {
	s, err := EnterContext(ctx)
	if err != nil {
		return nil, err
	}
	s.SetEnv(vars...)
	return s, nil
}

// Scoped enters a space, runs fn inside it, and exits on every path out
// of fn, including panics. The returned error joins fn's error with any
// teardown errors.
func Scoped(fn func(*Space) error) error {
	s, err := Enter()
	if err != nil {
		return err
	}
	return s.runScoped(fn)
}

// ScopedContext is Scoped over EnterContext. Cancellation only bounds
// the wait to enter; once fn is running it is not interrupted.
func ScopedContext(ctx context.Context, fn func(*Space) error) error {
	s, err := EnterContext(ctx)
	if err != nil {
		return err
	}
	return s.runScoped(fn)
}

// runScoped tears down on every path out of fn. A panic in fn still
// exits the space before propagating.
func (s *Space) runScoped(fn func(*Space) error) (err error) {
	defer func() {
		err = errors.Join(err, s.Exit())
	}()
	return fn(s)
}

// Enter blocks until this domain is free, then activates a space in it.
func (d *Domain) Enter() (*Space, error) {
	return newSpace(d.acquire())
}

// TryEnter activates a space if the domain is free, or fails fast with
// ErrActive.
func (d *Domain) TryEnter() (*Space, error) {
	tok := d.tryAcquire()
	if tok == nil {
		return nil, ErrActive
	}
	return newSpace(tok)
}

// EnterContext blocks until the domain is free or ctx is done.
func (d *Domain) EnterContext(ctx context.Context) (*Space, error) {
	tok, err := d.acquireContext(ctx)
	if err != nil {
		return nil, err
	}
	return newSpace(tok)
}

// newSpace owns tok from here on: on any setup failure it releases the
// token before propagating, so a failed entry never leaves the domain
// locked and never lets a half-built Space escape.
func newSpace(tok *token) (*Space, error) {
	snap := captureSnapshot()

	dir, err := os.MkdirTemp("", "playpen-")
	if err != nil {
		tok.release()
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	if err := os.Chdir(dir); err != nil {
		rmErr := os.RemoveAll(dir)
		tok.release()
		return nil, errors.Join(fmt.Errorf("failed to enter scratch directory: %w", err), rmErr)
	}

	s := &Space{dir: dir, snap: snap, tok: tok}
	runtime.SetFinalizer(s, func(abandoned *Space) {
		_ = abandoned.Exit()
	})
	return s, nil
}

// Dir returns the scratch directory root. It is also the process working
// directory until the caller chdirs away or the space exits.
func (s *Space) Dir() string {
	return s.dir
}

// SetEnv applies set/unset instructions against the live environment.
// Whatever they do is rolled back at exit.
func (s *Space) SetEnv(vars ...EnvVar) {
	applyEnv(vars)
}

// Exit tears the space down: restore the environment table, return to
// the saved working directory, remove the scratch directory, release the
// scratch slot. Every step runs regardless of earlier failures and all
// errors come back joined; the slot is always released, so a failed Exit
// never leaves the process permanently locked.
//
// Exit is terminal. Calling it on an already-exited space is an error.
func (s *Space) Exit() error {
	if s.exited {
		return errors.New("scratch space already exited")
	}
	s.exited = true
	runtime.SetFinalizer(s, nil)

	var errs []error

	s.snap.restoreEnv()

	if s.snap.wd == "" {
		errs = append(errs, errors.New("no saved working directory to restore"))
	} else if err := os.Chdir(s.snap.wd); err != nil {
		errs = append(errs, fmt.Errorf("failed to restore working directory: %w", err))
	}

	if err := os.RemoveAll(s.dir); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove scratch directory: %w", err))
	}

	s.tok.release()

	return errors.Join(errs...)
}
