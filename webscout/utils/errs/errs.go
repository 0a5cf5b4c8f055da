// Package errs defines the failure taxonomy shared by the search gateway
// and the content extractor.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of the search or scrape path.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidInput marks a malformed URL or disallowed scheme.
	// Never retried.
	KindInvalidInput
	// KindUpstreamUnavailable marks an aggregator that stayed unreachable
	// after the retry budget ran out.
	KindUpstreamUnavailable
	// KindUpstreamRejected marks a non-retryable aggregator response.
	KindUpstreamRejected
	// KindFetchFailed marks a page fetch that exhausted its retry budget.
	KindFetchFailed
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindUpstreamUnavailable:
		return "upstream unavailable"
	case KindUpstreamRejected:
		return "upstream rejected"
	case KindFetchFailed:
		return "fetch failed"
	default:
		return "unknown error"
	}
}

// Error carries a Kind alongside the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with a kind and operation name.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsKind reports whether any error in err's chain carries kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// StatusError reports a non-success response from an upstream server.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("upstream status %d", e.StatusCode)
}

// TransientHTTP is the shared retry classifier: 5xx responses, transport
// failures, client timeouts and unparseable bodies are worth another
// attempt, every other HTTP status is not. Caller cancellation needs no
// case here: the retry loop stops on its own once the call's context is
// done.
func TransientHTTP(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return true
}
