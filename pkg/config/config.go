// Package config loads notiq settings from a .notiq file, a .env file, and
// NOTIQ_ prefixed environment variables.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	Path     string      `mapstructure:"path" yaml:"path"`
	Log      LogConfig   `mapstructure:"log" yaml:"log"`
	Upcoming Upcoming    `mapstructure:"upcoming" yaml:"upcoming"`
	Places   PlaceConfig `mapstructure:"places" yaml:"places"`
}

// LogConfig selects the zap logger setup.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// Upcoming controls the "coming up" window.
type Upcoming struct {
	Days int `mapstructure:"days" yaml:"days"`
}

// PlaceConfig configures the location search and study place services.
type PlaceConfig struct {
	SearchURL string        `mapstructure:"search_url" yaml:"search_url"`
	FetchURL  string        `mapstructure:"fetch_url" yaml:"fetch_url"`
	Rate      float64       `mapstructure:"rate" yaml:"rate"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Refresh   string        `mapstructure:"refresh" yaml:"refresh"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
}

const (
	DefaultPath      = "~/.notiq.db"
	DefaultSearchURL = "https://nominatim.openstreetmap.org/search"
)

// BasePath is the expanded diskv directory.
func (c *Config) BasePath() string {
	if p, err := homedir.Expand(c.Path); err == nil {
		return p
	}
	return c.Path
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("path", DefaultPath)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("upcoming.days", 3)
	v.SetDefault("places.search_url", DefaultSearchURL)
	v.SetDefault("places.fetch_url", "")
	v.SetDefault("places.rate", 1.0)
	v.SetDefault("places.timeout", 15*time.Second)
	v.SetDefault("places.refresh", "@every 1h")
	v.SetDefault("places.user_agent", "notiq/dev")
}

// Load reads configuration. A missing config file is not an error.
func Load() (*Config, error) {
	// .env only seeds the environment; values already set win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(".notiq") // .yaml is implicit
	v.SetEnvPrefix("NOTIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("NOTIQ_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	return decode(v)
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, _ := decode(v)
	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.Upcoming.Days <= 0 {
		cfg.Upcoming.Days = 3
	}
	return cfg, nil
}

// ConfigFile reports the file viper would read, or "" when none was found.
func ConfigFile() string {
	v := viper.New()
	v.SetConfigName(".notiq")
	if override := os.Getenv("NOTIQ_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		return ""
	}
	return v.ConfigFileUsed()
}
