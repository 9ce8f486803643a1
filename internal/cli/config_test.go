package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}
	if cfg.Concurrency != 5 {
		t.Errorf("concurrency = %d, want 5", cfg.Concurrency)
	}
	if cfg.Format != "text" {
		t.Errorf("format = %q, want text", cfg.Format)
	}
	if cfg.Retries != 3 {
		t.Errorf("retries = %d, want 3", cfg.Retries)
	}
	if cfg.GitHubToken != "" {
		t.Errorf("token = %q, want empty", cfg.GitHubToken)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
github_token = "tok_file"
concurrency = 12
format = "json"
redis_addr = "localhost:6379"
browser = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GitHubToken != "tok_file" {
		t.Errorf("token = %q", cfg.GitHubToken)
	}
	if cfg.Concurrency != 12 {
		t.Errorf("concurrency = %d", cfg.Concurrency)
	}
	if cfg.Format != "json" {
		t.Errorf("format = %q", cfg.Format)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("redis = %q", cfg.RedisAddr)
	}
	if !cfg.Browser {
		t.Error("browser should be enabled")
	}
	// Unset keys keep their defaults.
	if cfg.Retries != 3 {
		t.Errorf("retries = %d, want default 3", cfg.Retries)
	}
}

func TestLoadConfigEnvToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "tok_env")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GitHubToken != "tok_env" {
		t.Errorf("token = %q, want env value", cfg.GitHubToken)
	}
}

func TestLoadConfigFileTokenBeatsEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "tok_env")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`github_token = "tok_file"`), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GitHubToken != "tok_file" {
		t.Errorf("token = %q, want file value", cfg.GitHubToken)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not = [valid"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := loadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}
