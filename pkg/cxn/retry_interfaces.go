package cxn

import (
	"context"
	"time"
)

// Prober answers whether a live connection to a target can be established.
//
// Probe re-tests reality on every call. It returns (false, nil) when the
// target is unreachable in an expected way (refused, timed out, rejected
// credentials) and a non-nil error only for failures that are not
// connection failures.
type Prober interface {
	Probe(ctx context.Context) (bool, error)
}

// FailureClassifier decides whether a driver error is an expected
// connection failure (reported as "not connected") or a defect that must
// propagate.
type FailureClassifier interface {
	IsConnectionFailure(err error) bool
}

// FailureClassifierFunc adapts a function to FailureClassifier.
type FailureClassifierFunc func(err error) bool

// IsConnectionFailure calls f(err).
func (f FailureClassifierFunc) IsConnectionFailure(err error) bool {
	return f(err)
}

// BackoffStrategy calculates the delay before the next retry attempt.
type BackoffStrategy interface {
	// NextDelay returns the duration to wait before the next attempt.
	// attempt is zero-indexed (0 = first retry, 1 = second retry, etc.)
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the maximum number of retry attempts (0 = no retries, -1 = unlimited)
	MaxAttempts() int
}
