// Package config loads ekr settings from a yaml file, EKR_* environment
// variables and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jlrickert/ekr/pkg/internal"
	"github.com/jlrickert/ekr/pkg/log"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment variables, e.g. EKR_VAULT.
	EnvPrefix = "EKR"

	// LocalFileName is looked up in the working directory.
	LocalFileName = ".ekr.yaml"

	// UserFileName is looked up in the user config directory.
	UserFileName = "config.yaml"
)

// ErrInvalidConfig is returned when a loaded value fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all runtime configuration for ekr.
type Config struct {
	Vault          string        `mapstructure:"vault" yaml:"vault"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level"`
	LogJSON        bool          `mapstructure:"log_json" yaml:"log_json"`
	LogFile        string        `mapstructure:"log_file" yaml:"log_file,omitempty"`
	IncludeHeading bool          `mapstructure:"include_heading" yaml:"include_heading"`
	Concurrency    int           `mapstructure:"concurrency" yaml:"concurrency"`
	IgnoreDirs     []string      `mapstructure:"ignore_dirs" yaml:"ignore_dirs"`
	MetricsAddr    string        `mapstructure:"metrics_addr" yaml:"metrics_addr,omitempty"`
	WatchDebounce  time.Duration `mapstructure:"watch_debounce" yaml:"watch_debounce"`
}

// FlagNames maps config keys to the command line flags that override them.
var FlagNames = map[string]string{
	"vault":           "vault",
	"log_level":       "log-level",
	"log_json":        "log-json",
	"log_file":        "log-file",
	"include_heading": "heading",
	"concurrency":     "jobs",
	"metrics_addr":    "metrics-addr",
	"watch_debounce":  "debounce",
}

// Options controls where Load looks for settings.
type Options struct {
	// Fs is the filesystem config files are read from. Defaults to the OS.
	Fs afero.Fs

	// WorkDir is searched for LocalFileName.
	WorkDir string

	// UserDir is searched for UserFileName. Defaults to the platform config
	// directory for "ekr".
	UserDir string

	// File, when set, is the only config file read and must exist.
	File string

	// Flags are bound to the keys in FlagNames. Flags that were not set on
	// the command line do not override file or environment values.
	Flags *pflag.FlagSet
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("vault", ".")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_json", false)
	v.SetDefault("log_file", "")
	v.SetDefault("include_heading", false)
	v.SetDefault("concurrency", 1)
	v.SetDefault("ignore_dirs", []string{})
	v.SetDefault("metrics_addr", "")
	v.SetDefault("watch_debounce", 500*time.Millisecond)
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Load resolves the configuration. It returns the path of the config file
// that was read, or "" when none was found.
func Load(opts Options) (Config, string, error) {
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	v := viper.New()
	v.SetFs(fsys)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if opts.Flags != nil {
		for key, name := range FlagNames {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, "", fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	file, err := findFile(fsys, opts)
	if err != nil {
		return Config{}, "", err
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, file, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, file, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, file, err
	}
	return cfg, file, nil
}

func findFile(fsys afero.Fs, opts Options) (string, error) {
	if opts.File != "" {
		ok, err := afero.Exists(fsys, opts.File)
		if err != nil {
			return "", fmt.Errorf("stat config %s: %w", opts.File, err)
		}
		if !ok {
			return "", fmt.Errorf("config file %s: %w", opts.File, afero.ErrFileNotFound)
		}
		return opts.File, nil
	}

	var candidates []string
	if opts.WorkDir != "" {
		candidates = append(candidates, filepath.Join(opts.WorkDir, LocalFileName))
	}
	userDir := opts.UserDir
	if userDir == "" {
		if dir, err := internal.GetConfigDir("ekr"); err == nil {
			userDir = dir
		}
	}
	if userDir != "" {
		candidates = append(candidates, filepath.Join(userDir, UserFileName))
	}

	for _, c := range candidates {
		if ok, _ := afero.Exists(fsys, c); ok {
			return c, nil
		}
	}
	return "", nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, c.Concurrency)
	}
	if c.WatchDebounce <= 0 {
		return fmt.Errorf("%w: watch_debounce must be positive, got %s", ErrInvalidConfig, c.WatchDebounce)
	}
	if c.Vault == "" {
		return fmt.Errorf("%w: vault must not be empty", ErrInvalidConfig)
	}
	return nil
}
