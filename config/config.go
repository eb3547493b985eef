// Package config loads the gallery server configuration from defaults, an
// optional YAML file, GALLERY_* environment variables and command flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "GALLERY"

type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	Content struct {
		Path   string `mapstructure:"path"`
		Strict bool   `mapstructure:"strict"`
		Watch  bool   `mapstructure:"watch"`
	} `mapstructure:"content"`
	Assets struct {
		Dir   string `mapstructure:"dir"`
		Probe bool   `mapstructure:"probe"`
	} `mapstructure:"assets"`
	Session struct {
		IdleTTL time.Duration `mapstructure:"idle_ttl"`
	} `mapstructure:"session"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// Defaults are used when neither the config file, the environment nor a
// flag sets a key.
var Defaults = map[string]any{
	"server.addr":      "0.0.0.0:8080",
	"content.path":     "content.yaml",
	"content.strict":   false,
	"content.watch":    true,
	"assets.dir":       "public",
	"assets.probe":     false,
	"session.idle_ttl": 30 * time.Minute,
	"log.level":        "info",
}

// FlagKeys maps command flag names to config keys.
var FlagKeys = map[string]string{
	"addr":      "server.addr",
	"content":   "content.path",
	"strict":    "content.strict",
	"watch":     "content.watch",
	"assets":    "assets.dir",
	"probe":     "assets.probe",
	"idle-ttl":  "session.idle_ttl",
	"log-level": "log.level",
}

// Load resolves the configuration. file may be empty, in which case a
// gallery.yaml in the working directory is read when present. flags may be
// nil; only flags the user changed override lower layers.
func Load(file string, flags *pflag.FlagSet) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults {
		v.SetDefault(key, value)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("gallery")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return c, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, fmt.Errorf("unable to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("unable to decode config: %w", err)
	}
	return c, nil
}

// SlogLevel parses log.level. Unknown values fall back to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
