package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// dotenvConfigLoader reads .env style files without mutating the process
// environment. Keys follow the same PREFIX_SECTION__FIELD convention as the
// environment loader.
type dotenvConfigLoader struct {
	prefix string
	paths  []string
}

func (l *dotenvConfigLoader) Load() (map[string]any, error) {
	for _, path := range l.paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}

		pairs, err := godotenv.Read(path)
		if err != nil {
			return nil, ErrParseDotenv.
				WithDetail("path", path).
				WithDetail("reason", err.Error()).
				WithCause(err)
		}

		values := make(map[string]any)
		for key, value := range pairs {
			if !strings.HasPrefix(key, l.prefix) {
				continue
			}
			configKey := strings.ToLower(strings.TrimPrefix(key, l.prefix))
			configKey = strings.TrimPrefix(configKey, "_")
			configKey = strings.ReplaceAll(configKey, "__", ".")
			setNested(values, configKey, coerce(value))
		}

		return values, nil
	}

	return nil, ErrNoConfigSource
}
