package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := NewViper()
	v.Set(KeyHome, t.TempDir())

	cfg, err := Load(v)
	require.NoError(t, err)

	d := Default()
	require.Equal(t, d.Addr, cfg.Addr)
	require.Equal(t, "socket", cfg.Transport)
	require.Equal(t, "goleveldb", cfg.DBBackend)
	require.Equal(t, LogFormatPlain, cfg.LogFormat)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	require.Equal(t, zerolog.InfoLevel, lvl)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "config"), 0o755))
	require.NoError(t, os.WriteFile(FilePath(home), []byte(
		"addr = \"tcp://0.0.0.0:36658\"\nlog-level = \"warn\"\nlog-format = \"json\"\n",
	), 0o644))

	t.Setenv("FLIPPERD_LOG_LEVEL", "debug")
	v := NewViper()
	v.Set(KeyHome, home)

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, "tcp://0.0.0.0:36658", cfg.Addr)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, LogFormatJSON, cfg.LogFormat)
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*Config){
		"transport":  func(c *Config) { c.Transport = "http" },
		"log level":  func(c *Config) { c.LogLevel = "loud" },
		"log format": func(c *Config) { c.LogFormat = "xml" },
		"home":       func(c *Config) { c.Home = "" },
		"addr":       func(c *Config) { c.Addr = "" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		require.Error(t, cfg.Validate(), name)
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "error"
	cfg.LogFormat = LogFormatJSON

	var buf bytes.Buffer
	logger, err := cfg.Logger(&buf)
	require.NoError(t, err)

	logger.Info("hidden")
	require.Zero(t, buf.Len())
	logger.Error("shown", "k", "v")
	require.Contains(t, buf.String(), `"message":"shown"`)
}
