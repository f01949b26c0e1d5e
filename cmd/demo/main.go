// Command demo wires the framework end to end: a container with a sqlite
// store, a queue consumer ingesting sensor state over the configured
// broker, and an HTTP API reading it back.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/appwire/framework/pkg/container"
	"github.com/appwire/framework/pkg/contracts"
	"github.com/appwire/framework/pkg/database"
	"github.com/appwire/framework/pkg/errors"
	"github.com/appwire/framework/pkg/httpserver"
	"github.com/appwire/framework/pkg/inject"
	"github.com/appwire/framework/pkg/logger"
	"github.com/appwire/framework/pkg/providers"
	"github.com/appwire/framework/pkg/queue"
	"github.com/appwire/framework/pkg/queue/broker/memory"
	redisbroker "github.com/appwire/framework/pkg/queue/broker/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.New(container.Options{
		Meta: container.Meta{
			Name:    "demo",
			Title:   "Framework demo",
			Version: "0.1.0",
		},
		ConfigFile: configFile(),
		EnvFile:    envFile(),
		Settings: &container.Settings{
			Database: container.DatabaseSettings{Driver: "sqlite3", DSN: "file:demo.db?cache=shared"},
		},
		Hooks: []container.Hook{
			database.Hook(),
			container.NamedHook("schema", ensureSchema),
			brokerHook(),
		},
		Tasks: []container.TaskSource{
			container.TaskFactory(ingestTask),
		},
		Providers: []container.Provider{
			providers.AuthProvider(),
			providers.CORSProvider(),
		},
		Logger: mustLogger(),
	})
	if err != nil {
		return err
	}

	srv := httpserver.New(c)
	if err := routes(srv); err != nil {
		return err
	}
	return srv.Run(ctx)
}

func configFile() string {
	if path := os.Getenv("DEMO_CONFIG"); path != "" {
		return path
	}
	return ""
}

func envFile() string {
	if _, err := os.Stat(".env"); err == nil {
		return ".env"
	}
	return ""
}

func mustLogger() contracts.Logger {
	log, err := logger.New(logger.WithLevel(logger.ParseLevel(os.Getenv("DEMO_LOG_LEVEL"))), logger.WithColor())
	if err != nil {
		panic(err)
	}
	return log
}

func ensureSchema(ctx context.Context, c *container.Container) (any, container.ReleaseFunc, error) {
	db, err := container.HookAs[*sql.DB](c)
	if err != nil {
		return nil, nil, err
	}
	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS readings (
		sensor TEXT NOT NULL,
		state  TEXT NOT NULL,
		at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return nil, nil, err
	}
	return nil, nil, nil
}

// brokerHook owns the broker for the lifetime of the container and closes
// it on the way down.
func brokerHook() container.Hook {
	return container.NamedHook("broker", func(ctx context.Context, c *container.Container) (any, container.ReleaseFunc, error) {
		s := c.Settings().Queue
		var broker contracts.Broker
		switch s.Broker {
		case "redis":
			rb := redisbroker.New(redisbroker.Options{
				Addr:     s.RedisAddr,
				Password: s.RedisPassword,
				DB:       s.RedisDB,
			})
			if err := rb.Ping(ctx); err != nil {
				return nil, nil, err
			}
			broker = rb
		default:
			broker = memory.New()
		}
		return broker, func(context.Context) error { return broker.Close() }, nil
	})
}

// ingestTask subscribes the consumer once the broker hook has run.
func ingestTask(c *container.Container) (*container.Task, error) {
	broker, err := container.HookAs[contracts.Broker](c)
	if err != nil {
		return nil, err
	}
	consumer := queue.NewConsumer(broker,
		queue.WithLogger(c.Logger()),
		queue.WithPrefix(c.Settings().Queue.Prefix),
	)

	err = consumer.Subscribe("pub.{id}.state", func(id string, data []byte) error {
		db, err := container.HookAs[*sql.DB](c)
		if err != nil {
			return err
		}
		_, err = db.Exec("INSERT INTO readings (sensor, state) VALUES (?, ?)", id, string(data))
		if err == nil {
			c.Logger().Info("reading stored", "sensor", id)
		}
		return err
	}, inject.WithParams("id"))
	if err != nil {
		return nil, err
	}
	return consumer.Task("ingest"), nil
}

type reading struct {
	Sensor string `json:"sensor"`
	State  string `json:"state"`
}

func routes(srv *httpserver.Server) error {
	if err := srv.Get("/healthz", func(c *container.Container) (any, error) {
		return map[string]any{"started": c.Started(), "name": c.Meta().Name}, nil
	}); err != nil {
		return err
	}

	return srv.Get("/sensors/{id}/readings", func(c *container.Container, id string, limit string) (any, error) {
		db, err := container.HookAs[*sql.DB](c)
		if err != nil {
			return nil, err
		}
		rows, err := db.Query(
			"SELECT sensor, state FROM readings WHERE sensor = ? ORDER BY at DESC LIMIT ?",
			id, limit,
		)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		out := []reading{}
		for rows.Next() {
			var r reading
			if err := rows.Scan(&r.Sensor, &r.State); err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		if len(out) == 0 {
			return nil, errors.ErrLookup.WithDetail("entity", "sensor "+id)
		}
		return out, nil
	}, inject.WithParams("", "id"), inject.WithDefaults(httpserver.Query{Key: "limit", Default: "50"}))
}
