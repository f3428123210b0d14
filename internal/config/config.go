// Package config loads regsync settings with viper.
//
// Precedence, lowest first: the embedded config.yaml, a regsync.yaml found in
// $HOME/.config/regsync or the working directory (or the file given
// explicitly), then REGSYNC_* environment variables.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var defaults []byte

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "REGSYNC"

// Config is the full set of settings.
type Config struct {
	Project     string       `mapstructure:"project"`
	ChainsDir   string       `mapstructure:"chains_dir"`
	ProjectsDir string       `mapstructure:"projects_dir"`
	Store       StoreConfig  `mapstructure:"store"`
	Loader      LoaderConfig `mapstructure:"loader"`
	Log         LogConfig    `mapstructure:"log"`

	// File is the config file that was merged over the defaults, if any.
	File string `mapstructure:"-"`
}

type StoreConfig struct {
	URL             string        `mapstructure:"url"`
	AuthToken       string        `mapstructure:"auth_token"`
	ConnectAttempts uint          `mapstructure:"connect_attempts"`
	ConnectDelay    time.Duration `mapstructure:"connect_delay"`
}

type LoaderConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Load reads the configuration. If file is empty the search paths are tried
// and a missing file is fine; an explicit file must exist.
func Load(file string) (*Config, error) {
	v, err := withDefaults()
	if err != nil {
		return nil, err
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("regsync")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "regsync"))
		}
		v.AddConfigPath(".")
	}

	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// withDefaults returns a viper instance whose defaults come from config.yaml.
// The defaults are parsed by a separate instance so that the config type stays
// unset and the search below only matches files with a known extension.
func withDefaults() (*viper.Viper, error) {
	d := viper.New()
	d.SetConfigType("yaml")
	if err := d.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("failed to read default config: %w", err)
	}

	v := viper.New()
	for _, key := range d.AllKeys() {
		v.SetDefault(key, d.Get(key))
	}
	return v, nil
}

// Validate checks values that have no usable zero.
func (c *Config) Validate() error {
	var errs []error
	if c.Store.URL == "" {
		errs = append(errs, errors.New("store.url must be set"))
	}
	if c.Store.ConnectAttempts < 1 {
		errs = append(errs, errors.New("store.connect_attempts must be at least 1"))
	}
	if c.Loader.Concurrency < 1 {
		errs = append(errs, errors.New("loader.concurrency must be at least 1"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
