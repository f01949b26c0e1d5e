package config

import (
	"testing"
)

func newTestConfig() *MapConfig {
	return &MapConfig{values: map[string]any{
		"name":  "demo",
		"count": 3,
		"ratio": 0.5,
		"flag":  true,
		"tags":  []any{"a", "b"},
		"csv":   "x, y, z",
		"server": map[string]any{
			"host": "localhost",
			"port": "8080",
		},
	}}
}

func TestMapConfig_Lookups(t *testing.T) {
	cfg := newTestConfig()

	if !cfg.Has("server.host") {
		t.Error("nested key should exist")
	}
	if cfg.Has("server.missing") {
		t.Error("missing key should not exist")
	}
	if cfg.GetString("name") != "demo" {
		t.Error("unexpected name")
	}
	if cfg.GetString("missing", "fallback") != "fallback" {
		t.Error("default should be returned for missing keys")
	}
	if cfg.GetInt("count") != 3 {
		t.Error("unexpected count")
	}
	if cfg.GetInt("server.port") != 8080 {
		t.Error("string ports should convert")
	}
	if cfg.GetFloat64("ratio") != 0.5 {
		t.Error("unexpected ratio")
	}
	if !cfg.GetBool("flag") {
		t.Error("unexpected flag")
	}
}

func TestMapConfig_StringSlice(t *testing.T) {
	cfg := newTestConfig()

	tags := cfg.GetStringSlice("tags")
	if len(tags) != 2 || tags[0] != "a" || tags[1] != "b" {
		t.Errorf("unexpected tags: %v", tags)
	}

	csv := cfg.GetStringSlice("csv")
	if len(csv) != 3 || csv[1] != "y" {
		t.Errorf("comma strings should split and trim, got %v", csv)
	}
}

func TestMapConfig_GetSub(t *testing.T) {
	cfg := newTestConfig()

	sub, ok := cfg.GetSub("server")
	if !ok {
		t.Fatal("server section should exist")
	}
	if sub.GetString("host") != "localhost" {
		t.Error("sub config should expose nested values")
	}

	if _, ok := cfg.GetSub("name"); ok {
		t.Error("scalar values are not sections")
	}
}
