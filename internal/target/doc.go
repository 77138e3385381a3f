// Package target validates resource URLs before any network I/O happens.
//
// Accepted shape: scheme://[userinfo@]host[:port][/path][?query][#fragment]
//
// Validation runs in a fixed order: structure (FormatError), scheme
// membership (SchemeError), then port range (PortError).
package target
