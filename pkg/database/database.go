package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/appwire/framework/pkg/container"
)

const (
	pingAttempts = 3
	pingBackoff  = 500 * time.Millisecond
)

// Open connects according to the database settings, applies the pool
// limits and verifies the connection with a few pings before handing it
// out.
func Open(ctx context.Context, s container.DatabaseSettings) (*sql.DB, error) {
	db, err := sql.Open(s.Driver, s.DSN)
	if err != nil {
		return nil, ErrOpen.WithDetail("driver", s.Driver).WithCause(err)
	}

	db.SetMaxOpenConns(s.MaxOpenConns)
	db.SetMaxIdleConns(s.MaxIdleConns)
	db.SetConnMaxLifetime(s.ConnMaxLifetime)

	var lastErr error
	for attempt := 0; attempt < pingAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				_ = db.Close()
				return nil, ctx.Err()
			case <-time.After(pingBackoff):
			}
		}
		if lastErr = db.PingContext(ctx); lastErr == nil {
			return db, nil
		}
	}
	_ = db.Close()
	return nil, ErrUnreachable.
		WithDetail("driver", s.Driver).
		WithDetail("attempts", pingAttempts).
		WithCause(lastErr)
}

// Hook wires the database into a container lifecycle: connect on start,
// close on stop. With no DSN configured the hook declines and the
// container runs without a database.
func Hook() container.Hook {
	return container.NamedHook("database", func(ctx context.Context, c *container.Container) (any, container.ReleaseFunc, error) {
		s := c.Settings().Database
		if s.DSN == "" {
			return nil, nil, nil
		}
		db, err := Open(ctx, s)
		if err != nil {
			return nil, nil, err
		}
		c.Logger().Info("database connected", "driver", s.Driver)
		return db, func(context.Context) error { return db.Close() }, nil
	})
}
