package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/transformlab/config"
	"github.com/katalvlaran/transformlab/persist"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transformlab.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, persist.Memory, cfg.Persistence.Driver)
	require.Equal(t, log.InfoLevel, cfg.LogLevel())
	require.Equal(t, 10*time.Second, cfg.Persistence.SaveTimeout.Duration)

	opts, err := cfg.EngineOptions()
	require.NoError(t, err)
	require.Len(t, opts, 1)

	same, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, cfg, same)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
[log]
level = "debug"

[engine]
clamp_factors = true
id_scheme = "sequential"

[persistence]
driver = "sqlite"
autosave = false
save_timeout = "3s"

[persistence.sqlite]
path = "var/state.db"

[server]
addr = "127.0.0.1:9090"
metrics = false
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, log.DebugLevel, cfg.LogLevel())
	require.True(t, cfg.Engine.ClampFactors)
	require.Equal(t, persist.SQLite, cfg.Persistence.Driver)
	require.Equal(t, "var/state.db", cfg.Persistence.SQLite.Path)
	require.False(t, cfg.Persistence.Autosave)
	require.Equal(t, 3*time.Second, cfg.Persistence.SaveTimeout.Duration)
	require.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	require.False(t, cfg.Server.Metrics)
	// untouched keys keep their defaults
	require.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout.Duration)

	opts, err := cfg.EngineOptions()
	require.NoError(t, err)
	require.Len(t, opts, 2)
}

func TestLoadRejects(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	_, err = config.Load(writeFile(t, "[server]\nport = 80\n"))
	require.ErrorIs(t, err, config.ErrInvalid)

	_, err = config.Load(writeFile(t, "[persistence]\nsave_timeout = \"soon\"\n"))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"TRANSFORMLAB_LOG_LEVEL":      "warn",
		"TRANSFORMLAB_PERSIST_DRIVER": "FILE",
		"TRANSFORMLAB_FILE_PATH":      "state.toml",
		"TRANSFORMLAB_ADDR":           ":1234",
		"TRANSFORMLAB_CLAMP_FACTORS":  "true",
	}
	cfg := config.Default()
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))
	require.NoError(t, cfg.Validate())
	require.Equal(t, log.WarnLevel, cfg.LogLevel())
	require.Equal(t, persist.File, cfg.Persistence.Driver)
	require.Equal(t, "state.toml", cfg.Persistence.File.Path)
	require.Equal(t, ":1234", cfg.Server.Addr)
	require.True(t, cfg.Engine.ClampFactors)

	env["TRANSFORMLAB_METRICS"] = "maybe"
	require.ErrorIs(t, cfg.ApplyEnv(func(k string) string { return env[k] }), config.ErrInvalid)

	t.Setenv("TRANSFORMLAB_ID_SCHEME", "sequential")
	cfg = config.Default()
	require.NoError(t, cfg.ApplyEnv(nil))
	require.Equal(t, "sequential", cfg.Engine.IDScheme)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*config.Config){
		"level":   func(c *config.Config) { c.Log.Level = "loud" },
		"scheme":  func(c *config.Config) { c.Engine.IDScheme = "snowflake" },
		"driver":  func(c *config.Config) { c.Persistence.Driver = "zip" },
		"file":    func(c *config.Config) { c.Persistence.Driver = persist.File },
		"addr":    func(c *config.Config) { c.Server.Addr = "" },
		"timeout": func(c *config.Config) { c.Persistence.SaveTimeout.Duration = -time.Second },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
		})
	}
}
