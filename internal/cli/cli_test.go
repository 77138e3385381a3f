package cli

import (
	"bytes"
	"context"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/vvka-141/cxn/internal/driver"
	"github.com/vvka-141/cxn/internal/provider"
	"github.com/vvka-141/cxn/pkg/cxn"
)

const stubModule = "example.com/stubdriver"

// stubService scripts connect outcomes for the "stub" kind and records
// what each attempt saw.
type stubService struct {
	mu       sync.Mutex
	outcomes []error
	targets  []*cxn.Target
	timeouts []time.Duration
}

func (s *stubService) connect(ctx context.Context, t *cxn.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.targets = append(s.targets, t)
	if deadline, ok := ctx.Deadline(); ok {
		s.timeouts = append(s.timeouts, time.Until(deadline))
	}

	attempt := len(s.targets) - 1
	if attempt < len(s.outcomes) {
		return s.outcomes[attempt]
	}
	return s.outcomes[len(s.outcomes)-1]
}

func (s *stubService) attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.targets)
}

func (s *stubService) lastTarget() *cxn.Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.targets) == 0 {
		return nil
	}
	return s.targets[len(s.targets)-1]
}

// refused is a connection failure recognised for every kind.
var refused error = syscall.ECONNREFUSED

// useStub installs a registry holding only the stub kind, a loader that
// provides its driver and a sleep that records delays without waiting.
func useStub(t *testing.T, outcomes ...error) (*stubService, *[]time.Duration) {
	t.Helper()

	if len(outcomes) == 0 {
		outcomes = []error{nil}
	}
	svc := &stubService{outcomes: outcomes}
	var slept []time.Duration

	origRegistry, origLoader, origSleep := kindRegistry, driverLoader, sleepFunc
	t.Cleanup(func() {
		kindRegistry, driverLoader, sleepFunc = origRegistry, origLoader, origSleep
	})

	kindRegistry = provider.MustNewRegistry(&provider.Kind{
		Name:        "stub",
		Aliases:     []string{"fake"},
		Description: "Stub service",
		Requirement: stubModule + ">=1.0.0,<2",
		Schemes:     []string{"stub"},
		DefaultPort: 7000,
		Connect:     svc.connect,
	})
	driverLoader = driver.StaticLoader{stubModule: "v1.2.0"}
	sleepFunc = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}

	return svc, &slept
}

// runCLI executes a fresh root command with args.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	if args == nil {
		// cobra falls back to os.Args when given nil
		args = []string{}
	}

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
