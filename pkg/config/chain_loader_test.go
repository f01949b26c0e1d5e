package config

import (
	"testing"

	"github.com/appwire/framework/pkg/errors"
)

type staticLoader struct {
	values map[string]any
	err    error
}

func (l *staticLoader) Load() (map[string]any, error) {
	return l.values, l.err
}

func TestChainLoader_LaterLoadersOverride(t *testing.T) {
	chain := NewChainLoader(
		&staticLoader{values: map[string]any{
			"server": map[string]any{"host": "file-host", "port": 8080},
		}},
		&staticLoader{values: map[string]any{
			"server": map[string]any{"host": "env-host"},
		}},
	)

	values, err := chain.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := NewMapConfig(values)
	if got := cfg.GetString("server.host"); got != "env-host" {
		t.Errorf("later layer should win, got %q", got)
	}
	if got := cfg.GetInt("server.port"); got != 8080 {
		t.Errorf("untouched keys should survive the merge, got %d", got)
	}
}

func TestChainLoader_SkipsFailingLoaders(t *testing.T) {
	chain := NewChainLoader(
		&staticLoader{err: ErrNoConfigSource},
		&staticLoader{values: map[string]any{"key": "value"}},
	)

	values, err := chain.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values["key"] != "value" {
		t.Error("surviving loader output should be used")
	}
}

func TestChainLoader_AllFail(t *testing.T) {
	chain := NewChainLoader(
		&staticLoader{err: ErrNoConfigSource},
		&staticLoader{err: ErrNoConfigSource},
	)

	_, err := chain.Load()
	if !errors.Is(err, ErrNoConfigSource) {
		t.Errorf("expected ErrNoConfigSource, got %v", err)
	}
}

func TestChainLoader_DeepMerge(t *testing.T) {
	chain := NewChainLoader(
		&staticLoader{values: map[string]any{
			"database": map[string]any{"driver": "sqlite3", "dsn": ":memory:"},
		}},
		&staticLoader{values: map[string]any{
			"database": map[string]any{"dsn": "file:app.db"},
		}},
	)

	values, err := chain.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := NewMapConfig(values)
	if cfg.GetString("database.driver") != "sqlite3" {
		t.Error("nested keys from earlier layers should be preserved")
	}
	if cfg.GetString("database.dsn") != "file:app.db" {
		t.Error("nested keys from later layers should override")
	}
}
