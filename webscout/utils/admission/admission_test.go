package admission

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGateBoundsConcurrency(t *testing.T) {
	const permits = 4
	g := NewGate(permits)

	var active, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := g.Acquire(context.Background())
			require.NoError(t, err)
			defer release()

			now := active.Add(1)
			for {
				p := peak.Load()
				if now <= p || peak.CompareAndSwap(p, now) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, peak.Load(), int64(permits))
	require.Equal(t, int64(0), g.Active())
}

func TestAcquireRespectsContext(t *testing.T) {
	g := NewGate(1)
	release, err := g.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = g.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReleaseFreesPermit(t *testing.T) {
	g := NewGate(1)
	release, err := g.Acquire(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), g.Active())
	release()
	require.Equal(t, int64(0), g.Active())

	release2, err := g.Acquire(context.Background())
	require.NoError(t, err)
	release2()
}

func TestNonPositivePermitsFallBack(t *testing.T) {
	g := NewGate(0)
	require.Equal(t, int64(DefaultPermits), g.Permits())
	g = NewGate(-5)
	require.Equal(t, int64(DefaultPermits), g.Permits())
}
