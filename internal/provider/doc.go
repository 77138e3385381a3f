// Package provider turns a resource kind and a target URL into a
// connectivity probe.
//
// A Kind is a plain record: its name, accepted schemes, driver requirement,
// connect function and failure classifier. New validates the URL against
// the kind's schemes, resolves the driver module through a driver.Loader,
// checks the module version against the requirement, and returns a Provider
// whose Probe method opens and closes one connection per call.
//
// Probe never caches: every call re-tests the target. Connection failures
// recognised by the kind's classifier (or by IsNetworkFailure) yield
// (false, nil); anything else is returned wrapped in cxn.ErrProbe.
//
// # Adding a kind
//
//	registry, err := provider.NewRegistry(provider.Redis(), &provider.Kind{
//	    Name:        "memcached",
//	    Requirement: "github.com/bradfitz/gomemcache",
//	    Schemes:     []string{"memcached"},
//	    DefaultPort: 11211,
//	    Connect:     dialMemcached,
//	})
package provider
