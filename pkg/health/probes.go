package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// MaxGoroutines returns a liveness probe that fails once the process
// goroutine count crosses limit. Catches slow goroutine leaks before
// they exhaust memory.
func MaxGoroutines(limit int) ProbeFunc {
	return func(_ context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("%d goroutines running, limit is %d", n, limit)
		}
		return nil
	}
}

// Pinger is satisfied by pgxpool.Pool and database/sql DB handles.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabasePing returns a readiness probe that pings the given
// connection pool.
func DatabasePing(p Pinger) ProbeFunc {
	return func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return errors.Wrap(err, "ping database")
		}
		return nil
	}
}
