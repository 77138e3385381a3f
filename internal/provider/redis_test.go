package provider

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/cxn/internal/target"
)

// callerKey marks dials made on behalf of the caller's context. The pool
// redials in the background with its own context after a failure; those
// dials carry no marker.
type callerKey struct{}

type verboseRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *verboseRecorder) Verbose(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *verboseRecorder) Info(format string, args ...interface{})  {}
func (r *verboseRecorder) Error(format string, args ...interface{}) {}

func (r *verboseRecorder) joined() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.lines, "\n")
}

// countingRedisOptions returns client options for rawURL whose dialer counts
// calls made with ctx, the context it also returns.
func countingRedisOptions(t *testing.T, rawURL string, dials *atomic.Int32) (*goredis.Options, context.Context) {
	t.Helper()
	tg, err := target.Parse(rawURL, Redis().Schemes)
	require.NoError(t, err)
	opts, err := redisOptions(tg)
	require.NoError(t, err)

	var d net.Dialer
	opts.Dialer = func(ctx context.Context, network, addr string) (net.Conn, error) {
		if ctx.Value(callerKey{}) != nil {
			dials.Add(1)
		}
		return d.DialContext(ctx, network, addr)
	}
	return opts, context.WithValue(context.Background(), callerKey{}, true)
}

func TestRedis_SingleDialAgainstClosedPort(t *testing.T) {
	var dials atomic.Int32
	opts, ctx := countingRedisOptions(t, fmt.Sprintf("redis://127.0.0.1:%d", closedPort(t)), &dials)

	err := pingRedis(ctx, opts)
	require.Error(t, err)
	assert.True(t, Redis().IsConnectionFailure(err), "got %v", err)
	assert.Equal(t, int32(1), dials.Load())
}

func TestRedis_DriverLinesGoToLogger(t *testing.T) {
	rec := &verboseRecorder{}
	SetDriverLogger(rec)
	t.Cleanup(func() { SetDriverLogger(nil) })

	var dials atomic.Int32
	opts, ctx := countingRedisOptions(t, fmt.Sprintf("redis://127.0.0.1:%d", closedPort(t)), &dials)

	require.Error(t, pingRedis(ctx, opts))
	assert.Contains(t, rec.joined(), "connection pool: failed to dial after 1 attempts")
}
