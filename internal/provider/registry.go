package provider

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vvka-141/cxn/pkg/cxn"
)

// Registry maps kind names and aliases to kinds. It is immutable after
// construction.
type Registry struct {
	byName map[string]*Kind
	kinds  []*Kind
}

// NewRegistry builds a registry from kinds. Names and aliases are
// case-insensitive and must be unique.
func NewRegistry(kinds ...*Kind) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Kind)}
	for _, k := range kinds {
		if k == nil || k.Name == "" {
			return nil, fmt.Errorf("registry: kind without a name")
		}
		if len(k.Schemes) == 0 {
			return nil, fmt.Errorf("registry: kind %q accepts no schemes", k.Name)
		}
		for _, key := range append([]string{k.Name}, k.Aliases...) {
			key = strings.ToLower(key)
			if prev, dup := r.byName[key]; dup {
				return nil, fmt.Errorf("registry: %q registered by both %q and %q", key, prev.Name, k.Name)
			}
			r.byName[key] = k
		}
		r.kinds = append(r.kinds, k)
	}
	sort.Slice(r.kinds, func(i, j int) bool { return r.kinds[i].Name < r.kinds[j].Name })
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error.
func MustNewRegistry(kinds ...*Kind) *Registry {
	r, err := NewRegistry(kinds...)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultRegistry returns a registry of every built-in kind.
func DefaultRegistry() *Registry {
	return MustNewRegistry(
		Postgres(),
		Redis(),
		AMQP(),
		NATS(),
		Kafka(),
		GRPC(),
	)
}

// Get returns the kind registered under name or one of its aliases.
func (r *Registry) Get(name string) (*Kind, error) {
	k, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", cxn.ErrUnknownKind, name, strings.Join(r.Names(), ", "))
	}
	return k, nil
}

// Names returns the canonical kind names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.kinds))
	for i, k := range r.kinds {
		names[i] = k.Name
	}
	return names
}

// Kinds returns the registered kinds sorted by name.
func (r *Registry) Kinds() []*Kind {
	out := make([]*Kind, len(r.kinds))
	copy(out, r.kinds)
	return out
}
