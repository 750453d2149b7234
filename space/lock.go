package space

import "context"

// Domain serializes entry into scratch spaces. It is a single
// mutual-exclusion resource with three acquisition modes: blocking
// (Enter), fail-fast (TryEnter), and context-aware (EnterContext). All
// three modes contend for the same slot, so a space entered through any
// one of them blocks out the other two until it exits.
//
// The package-level Enter functions share one process-wide Domain, which
// is the right choice for almost all callers: the working directory and
// environment table being guarded are process-global, so two domains
// cannot actually isolate two spaces from each other. NewDomain exists so
// the locking behaviour itself can be tested without going through the
// hidden package state.
type Domain struct {
	slot chan struct{}
}

// NewDomain returns a fresh exclusion domain with no holder.
func NewDomain() *Domain {
	return &Domain{slot: make(chan struct{}, 1)}
}

// defaultDomain guards the one real process: its cwd and environment.
var defaultDomain = NewDomain()

// token is proof that the holder owns the domain's slot. Only this
// package can mint one, and release is idempotent so teardown can run it
// unconditionally as its final step.
type token struct {
	domain   *Domain
	released bool
}

// acquire blocks the calling goroutine until the domain is free. It
// never fails; a goroutine that already holds the token deadlocks itself.
func (d *Domain) acquire() *token {
	d.slot <- struct{}{}
	return &token{domain: d}
}

// tryAcquire returns nil immediately if the domain is held.
func (d *Domain) tryAcquire() *token {
	select {
	case d.slot <- struct{}{}:
		return &token{domain: d}
	default:
		return nil
	}
}

// acquireContext blocks until the domain is free or ctx is done. On
// cancellation no shared state has been touched, so there is nothing to
// clean up and the lock is never considered acquired.
func (d *Domain) acquireContext(ctx context.Context) (*token, error) {
	select {
	case d.slot <- struct{}{}:
		return &token{domain: d}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *token) release() {
	if t.released {
		return
	}
	t.released = true
	<-t.domain.slot
}
