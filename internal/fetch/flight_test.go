package fetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/collab/internal/github"
)

// waiters returns the number of callers waiting on key.
func waiters(g *flightGroup, key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.calls[key]; ok {
		return c.waiters
	}
	return 0
}

func TestFlightGroup_CancelOneWaiterKeepsCall(t *testing.T) {
	g := newFlightGroup()
	release := make(chan struct{})
	callCanceled := make(chan bool, 1)

	fn := func(ctx context.Context) (any, error) {
		select {
		case <-release:
			callCanceled <- false
			return "done", nil
		case <-ctx.Done():
			callCanceled <- true
			return nil, ctx.Err()
		}
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := g.do(ctxA, "k", fn)
		errA <- err
	}()

	var valB any
	var errB error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		valB, errB = g.do(context.Background(), "k", fn)
	}()

	require.Eventually(t, func() bool { return waiters(g, "k") == 2 }, time.Second, time.Millisecond)

	cancelA()
	err := <-errA
	assert.True(t, github.IsCanceled(err))
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	wg.Wait()
	require.NoError(t, errB)
	assert.Equal(t, "done", valB)
	assert.False(t, <-callCanceled, "the shared call must survive while a waiter remains")
	assert.Equal(t, 0, g.inflight())
}

func TestFlightGroup_LastWaiterCancelsCall(t *testing.T) {
	g := newFlightGroup()
	callCanceled := make(chan struct{})

	fn := func(ctx context.Context) (any, error) {
		<-ctx.Done()
		close(callCanceled)
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := g.do(ctx, "k", fn)
		errc <- err
	}()

	require.Eventually(t, func() bool { return waiters(g, "k") == 1 }, time.Second, time.Millisecond)
	cancel()

	assert.True(t, github.IsCanceled(<-errc))
	select {
	case <-callCanceled:
	case <-time.After(time.Second):
		t.Fatal("call was not canceled after its last waiter left")
	}
	assert.Equal(t, 0, g.inflight())
}

func TestFlightGroup_CanceledBeforeStart(t *testing.T) {
	g := newFlightGroup()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := g.do(ctx, "k", func(context.Context) (any, error) {
		called = true
		return nil, nil
	})
	assert.True(t, github.IsCanceled(err))
	assert.False(t, called)
}

func TestFlightGroup_FinishedCallIsDetached(t *testing.T) {
	g := newFlightGroup()
	boom := errors.New("boom")

	_, err := g.do(context.Background(), "k", func(context.Context) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	// A finished call is detached; the next caller runs fn again.
	v, err := g.do(context.Background(), "k", func(context.Context) (any, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
