package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ConsoleLogger writes log messages to stderr through logrus.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	entry *log.Entry
}

// ConsoleOption configures a ConsoleLogger.
type ConsoleOption func(*log.Logger)

// WithOutput redirects log output, mainly for tests.
func WithOutput(w io.Writer) ConsoleOption {
	return func(l *log.Logger) {
		l.SetOutput(w)
	}
}

// WithFormat selects the text or JSON formatter.
func WithFormat(format string) ConsoleOption {
	return func(l *log.Logger) {
		if strings.EqualFold(format, FormatJSON) {
			l.SetFormatter(&log.JSONFormatter{})
		}
	}
}

// NewConsoleLogger creates a new ConsoleLogger.
// If verbose is true, Verbose() calls will produce output at debug level.
// If verbose is false, Verbose() calls are dropped.
func NewConsoleLogger(verbose bool, opts ...ConsoleOption) *ConsoleLogger {
	logger := log.New()
	logger.SetOutput(os.Stderr)

	formatter := new(log.TextFormatter)
	formatter.DisableTimestamp = true
	logger.SetFormatter(formatter)

	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}

	for _, opt := range opts {
		opt(logger)
	}

	return &ConsoleLogger{entry: log.NewEntry(logger)}
}

// ValidateFormat reports whether format names a supported formatter.
func ValidateFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported log format %q (expected %s or %s)", format, FormatText, FormatJSON)
	}
}

// WithFields returns a logger that attaches fields to every line.
func (l *ConsoleLogger) WithFields(fields map[string]interface{}) *ConsoleLogger {
	return &ConsoleLogger{entry: l.entry.WithFields(log.Fields(fields))}
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}
