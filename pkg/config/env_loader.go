package config

import (
	"os"
	"strconv"
	"strings"
)

// envConfigLoader reads prefixed environment variables into a nested map.
// PREFIX_SERVER__PORT=8080 becomes {"server": {"port": 8080}}.
type envConfigLoader struct {
	prefix string
}

func (l *envConfigLoader) Load() (map[string]any, error) {
	values := make(map[string]any)

	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, l.prefix) {
			continue
		}

		parts := strings.SplitN(env, "=", 2)
		key := parts[0]
		value := parts[1]

		configKey := strings.ToLower(strings.TrimPrefix(key, l.prefix))
		configKey = strings.TrimPrefix(configKey, "_")
		configKey = strings.ReplaceAll(configKey, "__", ".")

		setNested(values, configKey, coerce(value))
	}

	return values, nil
}

func coerce(value string) any {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

func setNested(m map[string]any, key string, value any) {
	keys := strings.Split(key, ".")
	last := len(keys) - 1

	current := m
	for i, k := range keys {
		if i == last {
			current[k] = value
			continue
		}
		if _, ok := current[k]; !ok {
			current[k] = make(map[string]any)
		}
		next, ok := current[k].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[k] = next
		}
		current = next
	}
}
