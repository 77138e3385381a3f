package cxn

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success (or lenient failure without --terminate)
//   - 1: No connection with --terminate, or unclassified error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Connected, or not connected in lenient mode
	ExitNoConnection    = 1  // Not connected and terminate-on-failure was requested
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags, unknown kind)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitTargetError     = 10 // Malformed URL, unsupported scheme or port out of range
	ExitDependencyError = 11 // Driver missing, unversioned or version-incompatible
	ExitProbeError      = 12 // Driver failed in a way that is not a connection failure
)

// UnlimitedAttempts is the retry budget sentinel meaning "retry until connected".
const UnlimitedAttempts = -1

const (
	// DefaultInitialDelay is the delay before the first retry.
	DefaultInitialDelay = 1 * time.Second

	// DefaultMultiplier is the factor applied to the delay after every retry.
	DefaultMultiplier = 2.0

	// DefaultProbeTimeout bounds a single connection attempt.
	DefaultProbeTimeout = 10 * time.Second

	// MinPort and MaxPort bound a valid TCP port.
	MinPort = 0
	MaxPort = 65535
)
