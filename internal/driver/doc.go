// Package driver resolves the driver module a resource kind depends on.
//
// Go links drivers statically, so "loading" a driver means finding its
// module in the binary's build information and reading the version that
// was compiled in. The Loader interface keeps that lookup behind a single
// call so tests can substitute a StaticLoader.
package driver
