package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vvka-141/cxn/internal/config"
	"github.com/vvka-141/cxn/internal/logging"
	"github.com/vvka-141/cxn/internal/retry"
	"github.com/vvka-141/cxn/pkg/cxn"
)

const envPrefix = "CXN"

// settings are the resolved inputs of one probe run.
type settings struct {
	kind        string
	target      string
	url         string
	terminate   bool
	backoff     bool
	retries     int
	maxDelay    time.Duration
	jitter      float64
	timeout     time.Duration
	verbose     bool
	logFormat   string
	metricsFile string
}

// strategy returns the backoff for this run. Without --backoff the retry
// budget is ignored and a single attempt is made.
func (s *settings) strategy() *retry.ExponentialBackoff {
	if !s.backoff {
		return retry.NoBackoff()
	}
	opts := []retry.BackoffOption{
		retry.WithMaxDelay(s.maxDelay),
		retry.WithJitter(s.jitter),
	}
	if jitterFunc != nil {
		opts = append(opts, retry.WithJitterFunc(jitterFunc))
	}
	return retry.NewExponentialBackoff(s.retries, opts...)
}

// newViper binds the command's flags and CXN_* environment variables.
// Dashes in flag names become underscores: --log-format reads CXN_LOG_FORMAT.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	return v, nil
}

// resolveSettings merges flags, environment and cxn.yaml for name, which is
// either a kind or a configured target. Configured targets take precedence.
func resolveSettings(cmd *cobra.Command, name string) (*settings, error) {
	v, err := newViper(cmd)
	if err != nil {
		return nil, err
	}

	if path := v.GetString("env-file"); path != "" {
		// Existing environment variables win over the file.
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("%w: load env file %s: %w", cxn.ErrUsage, path, err)
		}
	}

	projectCfg, err := loadProjectConfig(v.GetString("config"))
	if err != nil {
		return nil, err
	}
	if projectCfg != nil {
		if err := v.MergeConfigMap(projectCfg.Settings()); err != nil {
			return nil, fmt.Errorf("apply %s: %w", config.ConfigFileName, err)
		}
	}

	s := &settings{
		kind:        name,
		url:         strings.TrimSpace(v.GetString("url")),
		terminate:   v.GetBool("terminate"),
		backoff:     v.GetBool("backoff"),
		retries:     v.GetInt("retries"),
		maxDelay:    v.GetDuration("max-delay"),
		jitter:      v.GetFloat64("jitter"),
		timeout:     v.GetDuration("timeout"),
		verbose:     v.GetBool("verbose"),
		logFormat:   v.GetString("log-format"),
		metricsFile: v.GetString("metrics-file"),
	}

	if projectCfg != nil {
		if err := applyTarget(cmd, v, projectCfg, s); err != nil {
			return nil, err
		}
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// applyTarget fills kind, URL and timeout from a configured target.
// An explicit URL or timeout from flags or environment still wins.
func applyTarget(cmd *cobra.Command, v *viper.Viper, projectCfg *config.ProjectConfig, s *settings) error {
	if _, ok := projectCfg.Targets[s.kind]; !ok {
		return nil
	}
	t, err := projectCfg.Target(s.kind)
	if err != nil {
		return err
	}

	s.target = s.kind
	s.kind = t.Kind
	if !v.IsSet("url") {
		s.url = t.URL
	}
	if t.Timeout != "" && !cmd.Flags().Changed("timeout") && os.Getenv(envPrefix+"_TIMEOUT") == "" {
		d, err := time.ParseDuration(t.Timeout)
		if err != nil {
			return fmt.Errorf("target %q: timeout: %w", s.target, err)
		}
		s.timeout = d
	}
	return nil
}

func (s *settings) validate() error {
	if s.url == "" {
		return fmt.Errorf("%w: no URL for %q: pass -u/--url, set %s_URL or define the target in %s",
			cxn.ErrUsage, s.kind, envPrefix, config.ConfigFileName)
	}
	if s.retries < cxn.UnlimitedAttempts {
		return fmt.Errorf("%w: --retries must be %d (unlimited) or greater, got %d", cxn.ErrUsage, cxn.UnlimitedAttempts, s.retries)
	}
	if s.maxDelay < 0 {
		return fmt.Errorf("%w: --max-delay must not be negative, got %s", cxn.ErrUsage, s.maxDelay)
	}
	if s.jitter < 0 || s.jitter > 1 {
		return fmt.Errorf("%w: --jitter must be between 0 and 1, got %g", cxn.ErrUsage, s.jitter)
	}
	if s.timeout < 0 {
		return fmt.Errorf("%w: --timeout must not be negative, got %s", cxn.ErrUsage, s.timeout)
	}
	if err := logging.ValidateFormat(s.logFormat); err != nil {
		return fmt.Errorf("%w: %w", cxn.ErrUsage, err)
	}
	return nil
}

// loadProjectConfig loads an explicit config file, or ./cxn.yaml when it
// exists. Returns nil config if no file applies (not an error).
func loadProjectConfig(path string) (*config.ProjectConfig, error) {
	if path != "" {
		projectCfg, err := config.LoadFile(path)
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("%w: config file %s not found", cxn.ErrUsage, path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		return projectCfg, nil
	}

	projectCfg, err := config.Load(".")
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil // Config file not found is not an error
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	return projectCfg, nil
}
