package container

import (
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/appwire/framework/pkg/config"
	"github.com/appwire/framework/pkg/contracts"
	"github.com/appwire/framework/pkg/errors"
)

type ServerSettings struct {
	Host     string
	Port     int
	Debug    bool
	RootPath string
}

type LoggingSettings struct {
	Level  string
	JSON   bool
	Colors bool
}

type DatabaseSettings struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type QueueSettings struct {
	Broker        string
	Prefix        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type AuthSettings struct {
	Enabled  bool
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

type CORSSettings struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
	MaxAge           int
}

// Settings is the container's typed configuration, assembled from defaults,
// an optional config file, environment variables and an explicit override,
// in that order of increasing precedence.
type Settings struct {
	Server   ServerSettings
	Logging  LoggingSettings
	Database DatabaseSettings
	Queue    QueueSettings
	Auth     AuthSettings
	CORS     CORSSettings
}

func defaultSettings() *Settings {
	return &Settings{
		Server: ServerSettings{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Colors: true,
		},
		Database: DatabaseSettings{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Queue: QueueSettings{
			Broker: "memory",
		},
		Auth: AuthSettings{
			TTL: time.Hour,
		},
		CORS: CORSSettings{
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:       600,
		},
	}
}

func loadSettings(opts Options) (*Settings, error) {
	s := defaultSettings()
	merged := map[string]any{}

	if opts.ConfigFile != "" {
		values, err := fileLoader(opts.ConfigFile).Load()
		if err != nil && !errors.Is(err, config.ErrNoConfigSource) {
			return nil, ErrSettingsLoad.WithDetail("source", opts.ConfigFile).WithCause(err)
		}
		if err == nil {
			if err := config.Merge(merged, values); err != nil {
				return nil, ErrSettingsLoad.WithDetail("source", opts.ConfigFile).WithCause(err)
			}
		}
	}

	prefix := opts.EnvPrefix
	if prefix == "" {
		prefix = "APP"
	}
	if opts.EnvFile != "" {
		values, err := config.NewDotenvConfigLoader(prefix, opts.EnvFile).Load()
		if err != nil && !errors.Is(err, config.ErrNoConfigSource) {
			return nil, ErrSettingsLoad.WithDetail("source", opts.EnvFile).WithCause(err)
		}
		if err == nil {
			if err := config.Merge(merged, values); err != nil {
				return nil, ErrSettingsLoad.WithDetail("source", opts.EnvFile).WithCause(err)
			}
		}
	}
	if values, err := config.NewEnvConfigLoader(prefix).Load(); err == nil {
		if err := config.Merge(merged, values); err != nil {
			return nil, ErrSettingsLoad.WithDetail("source", "environment").WithCause(err)
		}
	}

	s.apply(config.NewMapConfig(merged))
	if opts.Settings != nil {
		overlay(s, opts.Settings)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func fileLoader(path string) config.Loader {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return config.NewJSONConfigLoader(path)
	}
	return config.NewYamlConfigLoader(path)
}

func (s *Settings) apply(cfg contracts.Config) {
	s.Server.Host = cfg.GetString("server.host", s.Server.Host)
	s.Server.Port = cfg.GetInt("server.port", s.Server.Port)
	s.Server.Debug = cfg.GetBool("server.debug", s.Server.Debug)
	s.Server.RootPath = cfg.GetString("server.root_path", s.Server.RootPath)

	s.Logging.Level = cfg.GetString("logging.level", s.Logging.Level)
	s.Logging.JSON = cfg.GetBool("logging.json", s.Logging.JSON)
	s.Logging.Colors = cfg.GetBool("logging.colors", s.Logging.Colors)

	s.Database.Driver = cfg.GetString("database.driver", s.Database.Driver)
	s.Database.DSN = cfg.GetString("database.dsn", s.Database.DSN)
	s.Database.MaxOpenConns = cfg.GetInt("database.max_open_conns", s.Database.MaxOpenConns)
	s.Database.MaxIdleConns = cfg.GetInt("database.max_idle_conns", s.Database.MaxIdleConns)
	if v := cfg.GetInt("database.conn_max_lifetime", -1); v >= 0 {
		s.Database.ConnMaxLifetime = time.Duration(v) * time.Second
	}

	s.Queue.Broker = cfg.GetString("queue.broker", s.Queue.Broker)
	s.Queue.Prefix = cfg.GetString("queue.prefix", s.Queue.Prefix)
	s.Queue.RedisAddr = cfg.GetString("queue.redis_addr", s.Queue.RedisAddr)
	s.Queue.RedisPassword = cfg.GetString("queue.redis_password", s.Queue.RedisPassword)
	s.Queue.RedisDB = cfg.GetInt("queue.redis_db", s.Queue.RedisDB)

	s.Auth.Enabled = cfg.GetBool("auth.enabled", s.Auth.Enabled)
	s.Auth.Secret = cfg.GetString("auth.secret", s.Auth.Secret)
	s.Auth.Issuer = cfg.GetString("auth.issuer", s.Auth.Issuer)
	s.Auth.Audience = cfg.GetString("auth.audience", s.Auth.Audience)
	if v := cfg.GetInt("auth.ttl", -1); v >= 0 {
		s.Auth.TTL = time.Duration(v) * time.Second
	}

	if cfg.Has("cors.allow_origins") {
		s.CORS.AllowOrigins = cfg.GetStringSlice("cors.allow_origins")
	}
	if cfg.Has("cors.allow_methods") {
		s.CORS.AllowMethods = cfg.GetStringSlice("cors.allow_methods")
	}
	if cfg.Has("cors.allow_headers") {
		s.CORS.AllowHeaders = cfg.GetStringSlice("cors.allow_headers")
	}
	s.CORS.AllowCredentials = cfg.GetBool("cors.allow_credentials", s.CORS.AllowCredentials)
	s.CORS.MaxAge = cfg.GetInt("cors.max_age", s.CORS.MaxAge)
}

// overlay copies non-zero fields of src over dst, recursing into sections.
func overlay(dst, src *Settings) {
	mergeNonZero(reflect.ValueOf(dst).Elem(), reflect.ValueOf(src).Elem())
}

func mergeNonZero(dst, src reflect.Value) {
	for i := 0; i < src.NumField(); i++ {
		sf := src.Field(i)
		if sf.Kind() == reflect.Struct {
			mergeNonZero(dst.Field(i), sf)
			continue
		}
		if !sf.IsZero() {
			dst.Field(i).Set(sf)
		}
	}
}

var logLevels = map[string]struct{}{
	"trace": {}, "debug": {}, "info": {}, "warn": {}, "error": {}, "critical": {},
}

func (s *Settings) validate() error {
	if s.Server.Port < 1 || s.Server.Port > 65535 {
		return ErrSettingsInvalid.WithDetail("reason", "server port out of range")
	}
	if _, ok := logLevels[strings.ToLower(s.Logging.Level)]; !ok {
		return ErrSettingsInvalid.WithDetail("reason", "unknown logging level")
	}
	switch s.Queue.Broker {
	case "memory":
	case "redis":
		if s.Queue.RedisAddr == "" {
			return ErrSettingsInvalid.WithDetail("reason", "redis broker requires an address")
		}
	default:
		return ErrSettingsInvalid.WithDetail("reason", "unknown queue broker")
	}
	if s.Auth.Enabled && s.Auth.Secret == "" {
		return ErrSettingsInvalid.WithDetail("reason", "auth enabled without a secret")
	}
	return nil
}
