package retry

import (
	"context"
	"strconv"
	"time"

	"github.com/vvka-141/cxn/pkg/cxn"
)

const (
	msgConnected    = "Ok"
	msgNoConnection = "No connection"
	msgRetrying     = "Retrying in %s seconds..."
)

// Result summarizes one controller run.
type Result struct {
	// Connected is true when a probe succeeded.
	Connected bool

	// Attempts is the number of probes evaluated.
	Attempts int

	// Delays are the sleeps taken between probes, in order.
	Delays []time.Duration

	// Elapsed is the wall time of the whole run.
	Elapsed time.Duration
}

// ExitCode applies the failure disposition: success is always 0, a failed
// run is 1 with terminate and 0 without.
func (r *Result) ExitCode(terminate bool) int {
	if r.Connected || !terminate {
		return cxn.ExitSuccess
	}
	return cxn.ExitNoConnection
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Controller polls a prober according to a backoff strategy.
//
// A Controller holds no per-run state; Run may be called repeatedly.
type Controller struct {
	strategy  cxn.BackoffStrategy
	logger    cxn.Logger
	sleep     SleepFunc
	now       func() time.Time
	onAttempt func(attempt int, connected bool)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithSleep replaces the timer-based sleep, mainly for tests.
func WithSleep(fn SleepFunc) ControllerOption {
	return func(c *Controller) {
		c.sleep = fn
	}
}

// WithClock replaces time.Now for elapsed-time accounting.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.now = now
	}
}

// WithOnAttempt registers a callback invoked after every probe.
// attempt is zero-based.
func WithOnAttempt(fn func(attempt int, connected bool)) ControllerOption {
	return func(c *Controller) {
		c.onAttempt = fn
	}
}

// NewController creates a controller. Panics if strategy or logger is nil.
func NewController(strategy cxn.BackoffStrategy, logger cxn.Logger, opts ...ControllerOption) *Controller {
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	c := &Controller{
		strategy: strategy,
		logger:   logger,
		sleep:    sleepContext,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run probes until success or until the strategy allows no more retries.
//
// A failed run is not an error: the Result reports it and ExitCode decides
// the disposition. Errors are returned only for probe failures that are not
// connection failures and for context cancellation; the partial Result is
// returned alongside them.
func (c *Controller) Run(ctx context.Context, prober cxn.Prober) (*Result, error) {
	start := c.now()
	result := &Result{}
	defer func() {
		result.Elapsed = c.now().Sub(start)
	}()

	maxAttempts := c.strategy.MaxAttempts()

	for attempt := 0; ; attempt++ {
		connected, err := prober.Probe(ctx)
		result.Attempts++
		if err != nil {
			return result, err
		}
		if c.onAttempt != nil {
			c.onAttempt(attempt, connected)
		}
		if connected {
			result.Connected = true
			c.logger.Info(msgConnected)
			return result, nil
		}

		// maxAttempts < 0 retries indefinitely
		if maxAttempts >= 0 && attempt >= maxAttempts {
			break
		}

		delay := c.strategy.NextDelay(attempt)
		c.logger.Info(msgRetrying, formatSeconds(delay))
		if err := c.sleep(ctx, delay); err != nil {
			return result, err
		}
		result.Delays = append(result.Delays, delay)
	}

	c.logger.Info(msgNoConnection)
	return result, nil
}

// sleepContext waits for d, returning early with ctx.Err() on cancellation.
func sleepContext(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func formatSeconds(d time.Duration) string {
	if d%time.Second == 0 {
		return strconv.FormatInt(int64(d/time.Second), 10)
	}
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
