// Package config resolves node settings from flags, FLIPPERD_* environment
// variables and an optional <home>/config/app.toml, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "FLIPPERD"

	KeyHome      = "home"
	KeyAddr      = "addr"
	KeyTransport = "transport"
	KeyDBBackend = "db-backend"
	KeyLogLevel  = "log-level"
	KeyLogFormat = "log-format"

	LogFormatPlain = "plain"
	LogFormatJSON  = "json"
)

type Config struct {
	Home      string `mapstructure:"home"`
	Addr      string `mapstructure:"addr"`
	Transport string `mapstructure:"transport"`
	DBBackend string `mapstructure:"db-backend"`
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
}

func Default() Config {
	return Config{
		Home:      ".flipper",
		Addr:      "tcp://127.0.0.1:26658",
		Transport: "socket",
		DBBackend: string(dbm.GoLevelDBBackend),
		LogLevel:  zerolog.InfoLevel.String(),
		LogFormat: LogFormatPlain,
	}
}

// NewViper returns a viper instance seeded with defaults and bound to the
// FLIPPERD_ environment (FLIPPERD_LOG_LEVEL sets log-level).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault(KeyHome, d.Home)
	v.SetDefault(KeyAddr, d.Addr)
	v.SetDefault(KeyTransport, d.Transport)
	v.SetDefault(KeyDBBackend, d.DBBackend)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	return v
}

// FilePath is the optional config file under home.
func FilePath(home string) string {
	return filepath.Join(home, "config", "app.toml")
}

// Load reads the config file (if present) into v and returns the validated
// result.
func Load(v *viper.Viper) (Config, error) {
	path := FilePath(v.GetString(KeyHome))
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("stat %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Home == "" {
		return fmt.Errorf("%s must not be empty", KeyHome)
	}
	if c.Addr == "" {
		return fmt.Errorf("%s must not be empty", KeyAddr)
	}
	switch c.Transport {
	case "socket", "grpc":
	default:
		return fmt.Errorf("invalid %s %q (socket|grpc)", KeyTransport, c.Transport)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case LogFormatPlain, LogFormatJSON:
	default:
		return fmt.Errorf("invalid %s %q (%s|%s)", KeyLogFormat, c.LogFormat, LogFormatPlain, LogFormatJSON)
	}
	return nil
}

func (c Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid %s %q: %w", KeyLogLevel, c.LogLevel, err)
	}
	return lvl, nil
}

// Logger builds the node logger writing to w.
func (c Config) Logger(w io.Writer) (log.Logger, error) {
	lvl, err := c.Level()
	if err != nil {
		return nil, err
	}
	opts := []log.Option{log.LevelOption(lvl)}
	if c.LogFormat == LogFormatJSON {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(w, opts...), nil
}
