package provider

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vvka-141/cxn/internal/logging"
	"github.com/vvka-141/cxn/pkg/cxn"
)

func init() {
	SetDriverLogger(nil)
}

// Redis returns the Redis kind, probed with a PING.
func Redis() *Kind {
	return &Kind{
		Name:        "redis",
		Description: "Redis server (PING)",
		Requirement: "github.com/redis/go-redis/v9>=9.0.0,<10",
		Schemes:     []string{"redis", "rediss"},
		DefaultPort: 6379,
		Connect:     connectRedis,
		Classifier:  cxn.FailureClassifierFunc(isRedisFailure),
	}
}

// SetDriverLogger routes lines that drivers log on their own (go-redis pool
// messages) to l at verbose level. Nil discards them.
//
// Driver loggers are process-wide; the last call wins.
func SetDriverLogger(l cxn.Logger) {
	if l == nil {
		l = logging.NewNullLogger()
	}
	goredis.SetLogger(&redisLogger{logger: l})
}

// redisLogger adapts cxn.Logger to the go-redis internal logger.
type redisLogger struct {
	logger cxn.Logger
}

func (r *redisLogger) Printf(_ context.Context, format string, v ...interface{}) {
	r.logger.Verbose(format, v...)
}

func connectRedis(ctx context.Context, t *cxn.Target) error {
	opts, err := redisOptions(t)
	if err != nil {
		return err
	}
	return pingRedis(ctx, opts)
}

// redisOptions parses the target into client options that make exactly one
// dial and one PING; the controller owns retries.
func redisOptions(t *cxn.Target) (*goredis.Options, error) {
	opts, err := goredis.ParseURL(t.Raw)
	if err != nil {
		return nil, err
	}
	opts.MaxRetries = -1
	opts.DialerRetries = 1
	opts.DialerRetryTimeout = time.Millisecond
	opts.PoolSize = 1
	return opts, nil
}

func pingRedis(ctx context.Context, opts *goredis.Options) error {
	client := goredis.NewClient(opts)
	defer client.Close()

	return client.Ping(ctx).Err()
}

// isRedisFailure treats server replies (NOAUTH, WRONGPASS, LOADING) and a
// closed client as failures.
func isRedisFailure(err error) bool {
	var redisErr goredis.Error
	if errors.As(err, &redisErr) {
		return true
	}
	return errors.Is(err, goredis.ErrClosed)
}
