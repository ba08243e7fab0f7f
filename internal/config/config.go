// Package config loads git-age settings from defaults, an optional config
// file, GITAGE_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/thiagokokada/git-age/internal/git"
)

const (
	configName = ".git-age"
	configType = "yaml"
	envPrefix  = "GITAGE"
)

const (
	KeyJobs    = "jobs"
	KeyBackend = "backend"
	KeyColor   = "color"
	KeyVerbose = "verbose"
)

type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

var (
	ErrInvalidJobs  = errors.New("jobs must not be negative")
	ErrInvalidColor = errors.New("color must be one of auto, always, never")
)

type Config struct {
	Jobs    int    `mapstructure:"jobs"`
	Backend string `mapstructure:"backend"`
	Color   string `mapstructure:"color"`
	Verbose bool   `mapstructure:"verbose"`
}

// Load resolves the configuration. Values set on flags win over the
// environment, which wins over the config file, which wins over defaults.
// If configPath is empty, .git-age.yaml is looked up in the working directory
// and $HOME; a missing file is not an error.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for _, key := range []string{KeyJobs, KeyBackend, KeyColor, KeyVerbose} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", key, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault(KeyJobs, 0)
	v.SetDefault(KeyBackend, string(git.KindCLI))
	v.SetDefault(KeyColor, string(ColorAuto))
	v.SetDefault(KeyVerbose, false)
}

func (c *Config) Validate() error {
	if c.Jobs < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidJobs, c.Jobs)
	}
	if _, err := c.Kind(); err != nil {
		return err
	}
	if _, err := c.ColorMode(); err != nil {
		return err
	}
	return nil
}

// Workers returns the worker pool size, defaulting to one per CPU.
func (c *Config) Workers() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return runtime.NumCPU()
}

func (c *Config) Kind() (git.Kind, error) {
	return git.ParseKind(c.Backend)
}

func (c *Config) ColorMode() (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(c.Color))); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	default:
		return "", fmt.Errorf("%w (got %q)", ErrInvalidColor, c.Color)
	}
}
