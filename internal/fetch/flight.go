package fetch

import (
	"context"
	"fmt"
	"sync"

	"github.com/matsen/collab/internal/github"
)

// flightGroup collapses concurrent loads of the same key into one call.
//
// Unlike x/sync/singleflight, the shared call runs under its own context that
// is canceled only when every waiter has given up, so one caller's
// cancellation never fails a request another caller still needs.
type flightGroup struct {
	mu    sync.Mutex
	calls map[string]*flightCall
}

type flightCall struct {
	done    chan struct{}
	val     any
	err     error
	waiters int
	cancel  context.CancelFunc
}

func newFlightGroup() *flightGroup {
	return &flightGroup{calls: make(map[string]*flightCall)}
}

// do runs fn once per key among overlapping callers and returns its result.
// A caller whose ctx ends stops waiting and receives a cancellation error.
func (g *flightGroup) do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", github.ErrCanceled, err)
	}

	g.mu.Lock()
	c, ok := g.calls[key]
	if !ok {
		callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		c = &flightCall{done: make(chan struct{}), cancel: cancel}
		g.calls[key] = c
		go g.run(callCtx, key, c, fn)
	}
	c.waiters++
	g.mu.Unlock()

	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		g.leave(key, c)
		return nil, fmt.Errorf("%w: %w", github.ErrCanceled, ctx.Err())
	}
}

func (g *flightGroup) run(ctx context.Context, key string, c *flightCall, fn func(context.Context) (any, error)) {
	c.val, c.err = fn(ctx)
	c.cancel()

	g.mu.Lock()
	if g.calls[key] == c {
		delete(g.calls, key)
	}
	g.mu.Unlock()
	close(c.done)
}

// leave drops a waiter. The last waiter to leave cancels the call and
// detaches it so later callers start a fresh one.
func (g *flightGroup) leave(key string, c *flightCall) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c.waiters--
	if c.waiters > 0 {
		return
	}
	c.cancel()
	if g.calls[key] == c {
		delete(g.calls, key)
	}
}

// inflight returns the number of calls currently running (for testing).
func (g *flightGroup) inflight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}
