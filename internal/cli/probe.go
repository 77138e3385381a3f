package cli

import (
	"github.com/spf13/cobra"

	"github.com/vvka-141/cxn/internal/driver"
	"github.com/vvka-141/cxn/internal/logging"
	"github.com/vvka-141/cxn/internal/metrics"
	"github.com/vvka-141/cxn/internal/provider"
	"github.com/vvka-141/cxn/internal/retry"
	"github.com/vvka-141/cxn/pkg/cxn"
)

// Swapped in tests.
var (
	kindRegistry               = provider.DefaultRegistry()
	driverLoader driver.Loader = driver.NewBuildInfoLoader()
	sleepFunc    retry.SleepFunc
	jitterFunc   func() float64
)

func runProbe(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd, args[0])
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(s.verbose,
		logging.WithOutput(cmd.ErrOrStderr()),
		logging.WithFormat(s.logFormat),
	)
	provider.SetDriverLogger(logger)
	defer provider.SetDriverLogger(nil)

	kind, err := kindRegistry.Get(s.kind)
	if err != nil {
		return err
	}

	p, err := provider.New(kind, s.url, driverLoader,
		provider.WithTimeout(s.timeout),
		provider.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	logger.Verbose("probing %s %s with %s (timeout %s)", kind.Name, p.Target().Redacted(), p.Module(), s.timeout)
	if !s.backoff && cmd.Flags().Changed("retries") {
		logger.Verbose("--retries has no effect without --backoff")
	}

	opts := []retry.ControllerOption{
		retry.WithOnAttempt(func(attempt int, connected bool) {
			logger.Verbose("attempt %d: connected=%t", attempt+1, connected)
		}),
	}
	if sleepFunc != nil {
		opts = append(opts, retry.WithSleep(sleepFunc))
	}
	controller := retry.NewController(s.strategy(), logger, opts...)

	result, runErr := controller.Run(cmd.Context(), p)

	if s.metricsFile != "" {
		recorder := metrics.NewRecorder()
		recorder.Observe(kind.Name, p.Target().Address(kind.DefaultPort), result)
		if err := recorder.WriteTextfile(s.metricsFile); err != nil {
			if runErr != nil {
				logger.Error("%v", err)
			} else {
				runErr = err
			}
		}
	}

	if runErr != nil {
		return runErr
	}
	if result.ExitCode(s.terminate) != cxn.ExitSuccess {
		return cxn.ErrNoConnection
	}
	return nil
}
