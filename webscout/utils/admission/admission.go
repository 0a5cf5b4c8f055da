// Package admission bounds the number of concurrent outbound network
// calls across every gateway that shares a Gate.
package admission

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// DefaultPermits is the process-wide outbound concurrency limit unless
// configured otherwise.
const DefaultPermits = 32

// Gate is a counting gate over outbound calls. A permit is held only for
// the duration of the call; exhaustion blocks the caller until a permit
// frees. Cache hits never touch the gate.
type Gate struct {
	sem     *semaphore.Weighted
	permits int64
	active  atomic.Int64
}

// NewGate returns a gate with the given permit count, falling back to
// DefaultPermits for non-positive values.
func NewGate(permits int) *Gate {
	if permits <= 0 {
		permits = DefaultPermits
	}
	return &Gate{
		sem:     semaphore.NewWeighted(int64(permits)),
		permits: int64(permits),
	}
}

// Acquire blocks until a permit is available or ctx is done. The only
// error it returns is the context's; the returned release func must be
// called exactly once.
func (g *Gate) Acquire(ctx context.Context) (func(), error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	g.active.Add(1)
	return func() {
		g.active.Add(-1)
		g.sem.Release(1)
	}, nil
}

// Active reports the number of permits currently held.
func (g *Gate) Active() int64 { return g.active.Load() }

// Permits reports the configured limit.
func (g *Gate) Permits() int64 { return g.permits }
