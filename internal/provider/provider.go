package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vvka-141/cxn/internal/driver"
	"github.com/vvka-141/cxn/internal/logging"
	"github.com/vvka-141/cxn/internal/requirement"
	"github.com/vvka-141/cxn/internal/target"
	"github.com/vvka-141/cxn/pkg/cxn"
)

// ConnectFunc opens and releases one connection to t.
// A nil return means the target accepted the connection.
type ConnectFunc func(ctx context.Context, t *cxn.Target) error

// Kind describes one resource kind that cxn can probe.
type Kind struct {
	// Name is the canonical registry key, e.g. "postgres".
	Name string

	// Aliases are alternative registry keys.
	Aliases []string

	// Description is a one-line summary for listings.
	Description string

	// Requirement names the driver module and its version constraints,
	// e.g. "github.com/jackc/pgx/v5>=5.0.0,<6".
	Requirement string

	// Schemes are the URL schemes the kind accepts (case-sensitive).
	Schemes []string

	// DefaultPort is used when the URL carries no port.
	DefaultPort int

	// Connect performs the connect-and-release handshake.
	Connect ConnectFunc

	// Classifier recognises driver errors that mean "not reachable".
	// Generic network failures are recognised regardless.
	Classifier cxn.FailureClassifier
}

// IsConnectionFailure reports whether err is an expected connection failure
// for this kind.
func (k *Kind) IsConnectionFailure(err error) bool {
	if err == nil {
		return false
	}
	if k.Classifier != nil && k.Classifier.IsConnectionFailure(err) {
		return true
	}
	return IsNetworkFailure(err)
}

// Provider probes one validated target with a resolved driver.
//
// A Provider holds no connection between probes and is safe to reuse.
type Provider struct {
	kind        *Kind
	requirement *requirement.Requirement
	module      *driver.Module
	target      *cxn.Target
	timeout     time.Duration
	logger      cxn.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithTimeout bounds every probe. Zero leaves probes bounded only by the
// caller's context.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.timeout = d
	}
}

// WithLogger sets the logger used for probe diagnostics.
func WithLogger(l cxn.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// New validates rawURL for kind and resolves the kind's driver.
//
// URL problems are returned unchanged from the validator (*cxn.FormatError,
// *cxn.SchemeError, *cxn.PortError). Driver problems are *cxn.DependencyError.
// No network I/O happens here.
func New(kind *Kind, rawURL string, loader driver.Loader, opts ...Option) (*Provider, error) {
	if kind == nil {
		return nil, fmt.Errorf("provider: nil kind")
	}
	if kind.Connect == nil {
		return nil, fmt.Errorf("provider: kind %q has no connect function", kind.Name)
	}
	if loader == nil {
		return nil, fmt.Errorf("provider: nil loader")
	}

	t, err := target.Parse(rawURL, kind.Schemes)
	if err != nil {
		return nil, err
	}

	req, err := requirement.Parse(kind.Requirement)
	if err != nil {
		return nil, &cxn.DependencyError{Module: kind.Requirement, Requirement: kind.Requirement, Err: err}
	}

	module, err := loadModule(req, loader)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		kind:        kind,
		requirement: req,
		module:      module,
		target:      t,
		timeout:     cxn.DefaultProbeTimeout,
		logger:      logging.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// loadModule resolves the driver and enforces the version constraints.
func loadModule(req *requirement.Requirement, loader driver.Loader) (*driver.Module, error) {
	module, err := loader.Load(req.Module)
	if err != nil {
		// Without constraints the version is never consulted.
		if req.Unconstrained() && errors.Is(err, cxn.ErrVersionUnknown) {
			return &driver.Module{Path: req.Module}, nil
		}
		var depErr *cxn.DependencyError
		if errors.As(err, &depErr) {
			depErr.Requirement = req.String()
			return nil, depErr
		}
		return nil, &cxn.DependencyError{Module: req.Module, Requirement: req.String(), Reason: cxn.ErrModuleNotInstalled, Err: err}
	}

	if req.Unconstrained() {
		return module, nil
	}

	ok, err := req.Satisfies(module.Version)
	if err != nil {
		return nil, &cxn.DependencyError{
			Module:      req.Module,
			Requirement: req.String(),
			Installed:   module.Version,
			Reason:      cxn.ErrVersionUnknown,
			Err:         err,
		}
	}
	if !ok {
		return nil, &cxn.DependencyError{
			Module:      req.Module,
			Requirement: req.String(),
			Installed:   module.Version,
			Reason:      cxn.ErrVersionUnsatisfied,
		}
	}
	return module, nil
}

// Probe attempts one connection and reports whether it succeeded.
//
// Expected connection failures, including the per-probe timeout, return
// (false, nil). Cancellation of ctx itself returns ctx.Err(). Any other
// driver error is returned wrapped in cxn.ErrProbe.
func (p *Provider) Probe(ctx context.Context) (bool, error) {
	attemptCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	err := p.kind.Connect(attemptCtx, p.target)
	if err == nil {
		p.logger.Verbose("%s probe of %s succeeded", p.kind.Name, p.target.Redacted())
		return true, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}

	if errors.Is(err, context.DeadlineExceeded) || p.kind.IsConnectionFailure(err) {
		p.logger.Verbose("%s probe of %s failed: %v", p.kind.Name, p.target.Redacted(), err)
		return false, nil
	}

	return false, fmt.Errorf("%s probe of %s: %w: %w", p.kind.Name, p.target.Redacted(), cxn.ErrProbe, err)
}

// Kind returns the resource kind.
func (p *Provider) Kind() *Kind {
	return p.kind
}

// Target returns the validated target descriptor.
func (p *Provider) Target() *cxn.Target {
	return p.target
}

// Module returns the resolved driver module.
func (p *Provider) Module() *driver.Module {
	return p.module
}

// Requirement returns the parsed driver requirement.
func (p *Provider) Requirement() *requirement.Requirement {
	return p.requirement
}

// Timeout returns the per-probe timeout.
func (p *Provider) Timeout() time.Duration {
	return p.timeout
}

// URL returns the target URL as supplied.
func (p *Provider) URL() string {
	return p.target.Raw
}
