// Package config loads the Taskdeck client configuration from
// ~/.taskdeck/config.yaml, with environment variables taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is used when neither the config file nor the environment
// names a backend.
const DefaultAPIURL = "https://api.taskdeck.dev"

// Config is the full client configuration.
type Config struct {
	APIURL string `yaml:"api_url"`
	Log    Log    `yaml:"log"`
}

// Log controls the slog setup. The TUI owns the terminal, so logs go to a
// file (or nowhere), never to stdout.
type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	File   string `yaml:"file"`   // empty = discard
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL: DefaultAPIURL,
		Log:    Log{Level: "info", Format: "text"},
	}
}

// Path returns the default config file location, ~/.taskdeck/config.yaml.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config.Path: get home dir: %w", err)
	}
	return filepath.Join(home, ".taskdeck", "config.yaml"), nil
}

// Load reads the config file at path, falling back to defaults when the
// file is absent, then applies environment overrides. A present-but-broken
// file is an error: silently ignoring a config the user wrote hides typos.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file is fine; defaults apply.
	case err != nil:
		return Config{}, fmt.Errorf("config.Load: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config.Load: parse %s: %w", path, err)
		}
		if cfg.APIURL == "" {
			cfg.APIURL = DefaultAPIURL
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TASKDECK_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("TASKDECK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TASKDECK_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
