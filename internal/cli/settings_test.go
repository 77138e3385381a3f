package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/cxn/pkg/cxn"
)

func writeProjectConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cxn.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConfig_NamedTarget(t *testing.T) {
	svc, slept := useStub(t, refused)
	t.Setenv("STUB_HOST", "db.internal")
	path := writeProjectConfig(t, `backoff: true
retries: 1
terminate: true
targets:
  db:
    kind: stub
    url: stub://app@${STUB_HOST}:7200/app
`)

	_, _, err := runCLI(t, "db", "--config", path)
	require.ErrorIs(t, err, cxn.ErrNoConnection)

	assert.Equal(t, 2, svc.attempts())
	assert.Len(t, *slept, 1)
	assert.Equal(t, "db.internal", svc.lastTarget().Host)
	assert.Equal(t, 7200, svc.lastTarget().Port)
}

func TestConfig_FlagsBeatConfig(t *testing.T) {
	svc, _ := useStub(t, refused)
	path := writeProjectConfig(t, `terminate: true
targets:
  db:
    kind: stub
    url: stub://from-config
`)

	_, _, err := runCLI(t, "db", "--config", path, "--terminate=false", "-u", "stub://from-flag")
	require.NoError(t, err)
	assert.Equal(t, "from-flag", svc.lastTarget().Host)
}

func TestConfig_EnvironmentBeatsConfig(t *testing.T) {
	svc, _ := useStub(t, refused)
	t.Setenv("CXN_TERMINATE", "false")
	path := writeProjectConfig(t, `terminate: true
`)

	_, _, err := runCLI(t, "stub", "--config", path, "-u", "stub://h")
	require.NoError(t, err)
	assert.Equal(t, 1, svc.attempts())
}

func TestConfig_TargetTimeout(t *testing.T) {
	svc, _ := useStub(t, nil)
	path := writeProjectConfig(t, `timeout: 5s
targets:
  db:
    kind: stub
    url: stub://h
    timeout: 100ms
`)

	_, _, err := runCLI(t, "db", "--config", path)
	require.NoError(t, err)
	require.Len(t, svc.timeouts, 1)
	assert.LessOrEqual(t, svc.timeouts[0], 100*time.Millisecond)
}

func TestConfig_KindNameWithConfigDefaults(t *testing.T) {
	svc, slept := useStub(t, refused, nil)
	path := writeProjectConfig(t, `backoff: true
`)

	_, _, err := runCLI(t, "stub", "--config", path, "-u", "stub://h")
	require.NoError(t, err)
	assert.Equal(t, 2, svc.attempts())
	assert.Equal(t, []time.Duration{time.Second}, *slept)
}

func TestConfig_ExplicitFileMissing(t *testing.T) {
	useStub(t, nil)

	_, _, err := runCLI(t, "stub", "-u", "stub://h", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, cxn.ErrUsage)
	assert.Equal(t, cxn.ExitUsageError, cxn.ExitCodeForError(err))
}

func TestConfig_InvalidFile(t *testing.T) {
	useStub(t, nil)
	path := writeProjectConfig(t, "targets:\n  db:\n    url: stub://h\n")

	_, _, err := runCLI(t, "db", "--config", path)
	assert.ErrorContains(t, err, `target "db": kind is required`)
}

func TestEnvFile(t *testing.T) {
	svc, _ := useStub(t, nil)
	require.Empty(t, os.Getenv("CXN_URL"))
	t.Cleanup(func() { os.Unsetenv("CXN_URL") })

	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("CXN_URL=stub://from-dotenv:7300\n"), 0644))

	_, _, err := runCLI(t, "stub", "--env-file", envPath)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", svc.lastTarget().Host)
}

func TestEnvFile_Missing(t *testing.T) {
	useStub(t, nil)

	_, _, err := runCLI(t, "stub", "-u", "stub://h", "--env-file", filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorIs(t, err, cxn.ErrUsage)
}

func TestSettings_Strategy(t *testing.T) {
	tests := []struct {
		name        string
		s           settings
		maxAttempts int
	}{
		{"no backoff", settings{backoff: false, retries: 5}, 0},
		{"unbounded", settings{backoff: true, retries: cxn.UnlimitedAttempts}, cxn.UnlimitedAttempts},
		{"bounded", settings{backoff: true, retries: 3}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.maxAttempts, tt.s.strategy().MaxAttempts())
		})
	}
}

func TestSettings_StrategyTuning(t *testing.T) {
	s := settings{backoff: true, retries: 3, maxDelay: 5 * time.Second, jitter: 0.2}
	b := s.strategy()
	assert.Equal(t, 5*time.Second, b.MaxDelay())
	assert.Equal(t, 0.2, b.Jitter())

	// Tuning applies only with backoff
	s.backoff = false
	assert.Zero(t, s.strategy().MaxDelay())
	assert.Zero(t, s.strategy().Jitter())
}
