// Package retry provides the exponential-backoff policy shared by the
// search gateway and the content extractor.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a retried call: exponential backoff between attempts and
// a total elapsed-time budget per call class. The zero value is unusable;
// construct one with SearchPolicy, ScrapePolicy or explicit fields.
type Policy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// SearchPolicy is the budget for aggregator queries.
func SearchPolicy() Policy {
	return Policy{
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxElapsedTime:  4 * time.Second,
	}
}

// ScrapePolicy is the budget for page fetches.
func ScrapePolicy() Policy {
	return Policy{
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxElapsedTime:  6 * time.Second,
	}
}

// Do runs fn until it succeeds, the elapsed-time budget is exhausted, or
// ctx is done. transient is the per-call-site classifier: errors it
// rejects abort immediately, everything else is retried. Once ctx itself
// is done no error retries, which is how caller cancellation is told
// apart from a per-request timeout inside fn. The last error is returned
// when retries run out.
func (p Policy) Do(ctx context.Context, fn func() error, transient func(error) bool) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = p.MaxElapsedTime
	return backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		if transient != nil && transient(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(b, ctx))
}
