package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the persistent CLI settings. Every field can be overridden
// by the matching analyze flag; the file only sets defaults.
type Config struct {
	GitHubToken    string `toml:"github_token"`
	Concurrency    int    `toml:"concurrency"`
	Format         string `toml:"format"`
	OutputDir      string `toml:"output_dir"`
	RedisAddr      string `toml:"redis_addr"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Retries        int    `toml:"retries"`
	RetryBaseMS    int    `toml:"retry_base_ms"`
	Browser        bool   `toml:"browser"`
	ChromeBinary   string `toml:"chrome_binary"`
}

// defaultConfig returns the built-in settings used when no file exists.
func defaultConfig() Config {
	return Config{
		Concurrency:    5,
		Format:         "text",
		OutputDir:      "reports",
		TimeoutSeconds: 30,
		Retries:        3,
		RetryBaseMS:    1000,
	}
}

// configPath is the default config file location.
func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "pypilens", "config.toml"), nil
}

// cacheDir is the default response-cache location.
func cacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return filepath.Join(dir, "pypilens"), nil
}

// loadConfig reads the config file at path, falling back to the default
// location when path is empty. A missing file is not an error; defaults
// apply. The GITHUB_TOKEN environment variable fills an empty token.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		var err error
		path, err = configPath()
		if err != nil {
			return cfg, err
		}
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}
	return cfg, nil
}
