package engine

import "sync/atomic"

// cancelToken is the cooperative cancellation flag every worker checks at
// its loop head (§5). Grounded on a chess-engine example's Lazy SMP
// stopFlag (a shared *atomic.Bool workers poll rather than a channel or
// context), generalized here to also auto-fire from a duration timer.
type cancelToken struct {
	stopped atomic.Bool
}

func newCancelToken() *cancelToken { return &cancelToken{} }

func (c *cancelToken) cancel() { c.stopped.Store(true) }

func (c *cancelToken) cancelled() bool { return c.stopped.Load() }
