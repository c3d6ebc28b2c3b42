package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"handlebot/internal/idioms"

	"gopkg.in/yaml.v3"
)

// Config holds the idioms tool configuration.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Merge   MergeConfig   `yaml:"merge"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig locates the merge sources and destination.
type PathsConfig struct {
	Polyphones string `yaml:"polyphones"` // idiom -> pinyin mapping (json or yaml)
	Idioms     string `yaml:"idioms"`     // one idiom per line
	Output     string `yaml:"output"`
}

// MergeConfig tunes the merge itself.
type MergeConfig struct {
	SkipBlank bool `yaml:"skip_blank"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			Polyphones: "data/polyphones.json",
			Idioms:     "data/idioms.txt",
			Output:     "data/all_idioms.txt",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Defaults if config file doesn't exist
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ErrExists is returned by Init when the config file is already present.
var ErrExists = errors.New("config file already exists")

// Init writes c as a YAML config file at path, creating parent directories.
// An existing file is only replaced when overwrite is set.
func (c *Config) Init(path string, overwrite bool) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("failed to create config: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	return f.Close()
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if p := os.Getenv("IDIOMS_POLYPHONES"); p != "" {
		c.Paths.Polyphones = p
	}
	if p := os.Getenv("IDIOMS_LIST"); p != "" {
		c.Paths.Idioms = p
	}
	if p := os.Getenv("IDIOMS_OUTPUT"); p != "" {
		c.Paths.Output = p
	}
	if v := os.Getenv("IDIOMS_SKIP_BLANK"); v != "" {
		skip, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid IDIOMS_SKIP_BLANK %q: %w", v, err)
		}
		c.Merge.SkipBlank = skip
	}
	if lvl := os.Getenv("IDIOMS_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	return nil
}

// Options converts the configuration into merge options.
func (c *Config) Options() idioms.Options {
	return idioms.Options{
		PolyphonesPath: c.Paths.Polyphones,
		IdiomsPath:     c.Paths.Idioms,
		OutputPath:     c.Paths.Output,
		SkipBlank:      c.Merge.SkipBlank,
	}
}
