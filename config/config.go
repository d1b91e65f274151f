// Package config loads transformlab settings from a TOML file, environment
// variables and command-line flags, in that order of precedence (flags win).
//
// Example file:
//
//	[log]
//	level = "debug"
//
//	[engine]
//	clamp_factors = false
//	id_scheme = "sequential"
//
//	[persistence]
//	driver = "sqlite"
//	autosave = true
//	[persistence.sqlite]
//	path = "var/transformlab.db"
//
//	[server]
//	addr = ":8080"
//	metrics = true
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/katalvlaran/transformlab/engine"
	"github.com/katalvlaran/transformlab/persist"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TRANSFORMLAB_"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the full application configuration.
type Config struct {
	Log         Log         `toml:"log"`
	Engine      Engine      `toml:"engine"`
	Persistence Persistence `toml:"persistence"`
	Server      Server      `toml:"server"`
}

// Log configures the logger.
type Log struct {
	Level string `toml:"level"`
}

// Engine configures engine behavior.
type Engine struct {
	ClampFactors bool   `toml:"clamp_factors"`
	IDScheme     string `toml:"id_scheme"`
}

// Persistence selects the snapshot backend.
type Persistence struct {
	persist.Config
	Autosave    bool     `toml:"autosave"`
	SaveTimeout Duration `toml:"save_timeout"`
}

// Server configures the HTTP facade.
type Server struct {
	Addr            string   `toml:"addr"`
	Metrics         bool     `toml:"metrics"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Duration is a time.Duration that reads "5s"-style strings from TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v

	return nil
}

// MarshalText writes the duration in Go syntax.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings: info logging, uuid ids, in-memory
// persistence, server on :8080 with metrics.
func Default() Config {
	return Config{
		Log:    Log{Level: "info"},
		Engine: Engine{IDScheme: "uuid"},
		Persistence: Persistence{
			Config:      persist.Config{Driver: persist.Memory},
			Autosave:    true,
			SaveTimeout: Duration{10 * time.Second},
		},
		Server: Server{
			Addr:            ":8080",
			Metrics:         true,
			ShutdownTimeout: Duration{5 * time.Second},
		},
	}
}

// Load reads path over Default. An empty path returns Default. Unknown keys
// are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: %s: unknown key %q", ErrInvalid, path, undecoded[0].String())
	}

	return cfg, nil
}

// ApplyEnv overrides cfg from TRANSFORMLAB_* variables read through getenv
// (os.Getenv when nil).
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	str := func(dst *string, key string) {
		if v := getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	boolean := func(dst *bool, key string) error {
		v := getenv(EnvPrefix + key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q: %v", ErrInvalid, EnvPrefix, key, v, err)
		}
		*dst = b
		return nil
	}

	str(&c.Log.Level, "LOG_LEVEL")
	str(&c.Engine.IDScheme, "ID_SCHEME")
	if err := boolean(&c.Engine.ClampFactors, "CLAMP_FACTORS"); err != nil {
		return err
	}

	var driver string
	str(&driver, "PERSIST_DRIVER")
	if driver != "" {
		c.Persistence.Driver = persist.Driver(strings.ToLower(driver))
	}
	if err := boolean(&c.Persistence.Autosave, "AUTOSAVE"); err != nil {
		return err
	}
	str(&c.Persistence.File.Path, "FILE_PATH")
	str(&c.Persistence.SQLite.Path, "SQLITE_PATH")
	str(&c.Persistence.Postgres.DSN, "POSTGRES_DSN")
	str(&c.Persistence.Redis.Addr, "REDIS_ADDR")
	str(&c.Persistence.Redis.Password, "REDIS_PASSWORD")
	str(&c.Persistence.Mongo.URI, "MONGO_URI")
	str(&c.Persistence.S3.Bucket, "S3_BUCKET")
	str(&c.Persistence.S3.Region, "S3_REGION")
	str(&c.Persistence.S3.Endpoint, "S3_ENDPOINT")

	str(&c.Server.Addr, "ADDR")

	return boolean(&c.Server.Metrics, "METRICS")
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	if _, err := engine.ParseIDScheme(c.Engine.IDScheme); err != nil {
		return fmt.Errorf("%w: engine.id_scheme: %v", ErrInvalid, err)
	}
	if err := c.Persistence.Config.Validate(); err != nil {
		return fmt.Errorf("%w: persistence: %v", ErrInvalid, err)
	}
	if c.Persistence.SaveTimeout.Duration < 0 {
		return fmt.Errorf("%w: persistence.save_timeout must not be negative", ErrInvalid)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr required", ErrInvalid)
	}

	return nil
}

// LogLevel returns the parsed log level (info on error).
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}

	return lvl
}

// EngineOptions translates the engine section into engine options.
func (c Config) EngineOptions() ([]engine.Option, error) {
	idFn, err := engine.ParseIDScheme(c.Engine.IDScheme)
	if err != nil {
		return nil, err
	}
	opts := []engine.Option{engine.WithIDScheme(idFn)}
	if c.Engine.ClampFactors {
		opts = append(opts, engine.WithClampFactors())
	}

	return opts, nil
}
