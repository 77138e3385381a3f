package cxn

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	p, err := provider.New(kind, rawURL, loader)
//	if errors.Is(err, cxn.ErrUnsupportedScheme) {
//	    // Wrong URL for this kind of resource
//	}
var (
	// ErrInvalidFormat indicates the URL does not have the scheme://host[:port][/path] shape.
	ErrInvalidFormat = errors.New("invalid URL format")

	// ErrUnsupportedScheme indicates the URL scheme is not accepted by the resource kind.
	ErrUnsupportedScheme = errors.New("unsupported scheme")

	// ErrPortOutOfRange indicates the URL port lies outside 0-65535.
	ErrPortOutOfRange = errors.New("port out of range")

	// ErrDependency indicates the driver for a resource kind cannot be used.
	ErrDependency = errors.New("dependency error")

	// ErrModuleNotInstalled indicates the driver module is not linked into the binary.
	ErrModuleNotInstalled = errors.New("module not installed")

	// ErrVersionUnknown indicates the driver module exposes no version.
	ErrVersionUnknown = errors.New("module version unknown")

	// ErrVersionUnsatisfied indicates the driver version fails the requirement.
	ErrVersionUnsatisfied = errors.New("module version unsatisfied")

	// ErrUnknownKind indicates no provider is registered under the requested name.
	ErrUnknownKind = errors.New("unknown resource kind")

	// ErrNoConnection indicates the target stayed unreachable and the caller
	// asked for failures to terminate the process.
	ErrNoConnection = errors.New("no connection")

	// ErrProbe indicates a driver failed in a way that is not a connection failure.
	ErrProbe = errors.New("probe failed")

	// ErrUsage indicates the command line or settings are incomplete or contradictory.
	ErrUsage = errors.New("usage error")
)

// FormatError reports a URL that does not match scheme://host[:port][/path].
type FormatError struct {
	URL string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("Invalid URL format: %q", e.URL)
}

func (e *FormatError) Unwrap() error { return ErrInvalidFormat }

// SchemeError reports a scheme that the resource kind does not speak.
type SchemeError struct {
	Scheme  string
	Allowed []string
}

func (e *SchemeError) Error() string {
	return fmt.Sprintf("Protocol %s is not supported (expected one of: %s)", e.Scheme, strings.Join(e.Allowed, ", "))
}

func (e *SchemeError) Unwrap() error { return ErrUnsupportedScheme }

// PortError reports a port outside the inclusive range 0-65535.
type PortError struct {
	Port string
}

func (e *PortError) Error() string {
	return fmt.Sprintf("Port out of range 0-65535: %s", e.Port)
}

func (e *PortError) Unwrap() error { return ErrPortOutOfRange }

// DependencyError reports a driver that is missing, unversioned or too old/new.
// Reason is one of ErrModuleNotInstalled, ErrVersionUnknown or ErrVersionUnsatisfied.
type DependencyError struct {
	Module      string
	Requirement string
	Installed   string
	Reason      error
	Err         error
}

func (e *DependencyError) Error() string {
	var msg string
	switch {
	case errors.Is(e.Reason, ErrModuleNotInstalled):
		msg = fmt.Sprintf("required module %q is not installed", e.Module)
	case errors.Is(e.Reason, ErrVersionUnknown):
		msg = fmt.Sprintf("unable to determine version of module %q", e.Module)
	case errors.Is(e.Reason, ErrVersionUnsatisfied):
		msg = fmt.Sprintf("installed version %s does not satisfy requirement %q", e.Installed, e.Requirement)
	default:
		msg = fmt.Sprintf("module %q cannot be used", e.Module)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the generic ErrDependency and the specific reason.
func (e *DependencyError) Unwrap() []error {
	errs := []error{ErrDependency}
	if e.Reason != nil {
		errs = append(errs, e.Reason)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrNoConnection):
		return ExitNoConnection
	case errors.Is(err, ErrInvalidFormat),
		errors.Is(err, ErrUnsupportedScheme),
		errors.Is(err, ErrPortOutOfRange):
		return ExitTargetError
	case errors.Is(err, ErrDependency):
		return ExitDependencyError
	case errors.Is(err, ErrProbe):
		return ExitProbeError
	case errors.Is(err, ErrUnknownKind),
		errors.Is(err, ErrUsage):
		return ExitUsageError
	}

	// cobra reports flag and argument problems as plain errors
	errStr := err.Error()
	for _, pattern := range []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"requires at least",
		"invalid argument",
		"flag needs an argument",
		"required flag",
	} {
		if strings.Contains(errStr, pattern) {
			return ExitUsageError
		}
	}

	return ExitGeneralError
}
