// Package retry drives repeated connectivity probes with exponential backoff.
//
// A Controller polls a cxn.Prober until it reports a connection, the
// backoff strategy's attempt budget runs out, or the context is cancelled.
// The default ExponentialBackoff sleeps 1s, 2s, 4s, 8s, ... between probes
// with no jitter and no ceiling.
//
// # Example Usage
//
//	strategy := retry.NewExponentialBackoff(cxn.UnlimitedAttempts)
//	controller := retry.NewController(strategy, logger)
//
//	result, err := controller.Run(ctx, prober)
//	if err != nil {
//	    return err
//	}
//	os.Exit(result.ExitCode(terminate))
//
// # Attempt Budget
//
// BackoffStrategy.MaxAttempts counts retries after the first probe:
// 0 means a single probe, a positive n allows n sleeps and n+1 probes, and
// cxn.UnlimitedAttempts retries until success or cancellation.
//
// # Log Lines
//
// The Controller emits "Ok", "No connection" and "Retrying in N seconds..."
// verbatim through the cxn.Logger; scripts match on these strings.
package retry
