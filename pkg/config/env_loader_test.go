package config

import (
	"testing"
)

func TestEnvConfigLoader_NestedKeys(t *testing.T) {
	t.Setenv("APPTEST_SERVER__HOST", "127.0.0.1")
	t.Setenv("APPTEST_SERVER__PORT", "9090")
	t.Setenv("APPTEST_SERVER__DEBUG", "true")
	t.Setenv("OTHER_SERVER__HOST", "ignored")

	loader := NewEnvConfigLoader("APPTEST")
	values, err := loader.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := NewMapConfig(values)
	if got := cfg.GetString("server.host"); got != "127.0.0.1" {
		t.Errorf("unexpected host: %q", got)
	}
	if got := cfg.GetInt("server.port"); got != 9090 {
		t.Errorf("numeric values should be coerced, got %d", got)
	}
	if !cfg.GetBool("server.debug") {
		t.Error("boolean values should be coerced")
	}
	if cfg.Has("other") || cfg.Has("server.other") {
		t.Error("variables outside the prefix must be ignored")
	}
}

func TestEnvConfigLoader_EmptyEnvironment(t *testing.T) {
	loader := NewEnvConfigLoader("DEFINITELY_UNSET_PREFIX")
	values, err := loader.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("expected empty map, got %v", values)
	}
}
