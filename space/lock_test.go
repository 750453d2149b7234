package space

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAcquire_FailsWhileHeld(t *testing.T) {
	d := NewDomain()

	tok := d.tryAcquire()
	require.NotNil(t, tok)

	assert.Nil(t, d.tryAcquire(), "second acquisition should fail while held")

	tok.release()
	tok2 := d.tryAcquire()
	require.NotNil(t, tok2, "domain should be free again after release")
	tok2.release()
}

func TestAcquire_BlocksUntilRelease(t *testing.T) {
	d := NewDomain()
	tok := d.acquire()

	acquired := make(chan *token)
	go func() {
		acquired <- d.acquire()
	}()

	select {
	case <-acquired:
		t.Fatal("acquire returned while the domain was held")
	case <-time.After(50 * time.Millisecond):
	}

	tok.release()

	select {
	case tok2 := <-acquired:
		tok2.release()
	case <-time.After(2 * time.Second):
		t.Fatal("acquire did not return after release")
	}
}

func TestAcquireContext_Cancelled(t *testing.T) {
	d := NewDomain()
	tok := d.acquire()
	defer tok.release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := d.acquireContext(ctx)
	assert.Nil(t, got)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The abandoned wait must not have consumed the slot.
	tok.release()
	tok2 := d.tryAcquire()
	require.NotNil(t, tok2)
	tok2.release()
}

func TestAcquireContext_SucceedsWhenFree(t *testing.T) {
	d := NewDomain()

	tok, err := d.acquireContext(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tok)
	tok.release()
}

func TestTokenRelease_Idempotent(t *testing.T) {
	d := NewDomain()
	tok := d.acquire()

	tok.release()
	tok.release() // second release must not free someone else's slot

	tok2 := d.tryAcquire()
	require.NotNil(t, tok2)
	assert.Nil(t, d.tryAcquire(), "double release must not create a second slot")
	tok2.release()
}

func TestCrossModeExclusion(t *testing.T) {
	// Blocking, fail-fast, and context acquisition share one domain: a
	// token obtained through any mode blocks the other two.
	d := NewDomain()

	tok := d.acquire()
	assert.Nil(t, d.tryAcquire())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := d.acquireContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	tok.release()

	tok2, err := d.acquireContext(context.Background())
	require.NoError(t, err)
	assert.Nil(t, d.tryAcquire())
	tok2.release()
}
