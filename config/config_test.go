package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCreds(t *testing.T, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.toml")
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCredentialsFile(t *testing.T) {
	path := writeCreds(t, `
[openai]
api_key = "sk-test"

[embedding]
api_key = "generic"
`, 0400)

	creds, err := LoadCredentialsFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got := creds.GetAPIKey("openai"); got != "sk-test" {
		t.Errorf("openai key = %q, want sk-test", got)
	}
	if got := creds.GetAPIKey("google"); got != "generic" {
		t.Errorf("unmatched provider should fall back to [embedding], got %q", got)
	}
}

func TestLoadCredentialsFile_InsecurePermissions(t *testing.T) {
	path := writeCreds(t, `[openai]
api_key = "sk-test"
`, 0644)

	_, err := LoadCredentialsFile(path)
	if !errors.Is(err, ErrInsecurePermissions) {
		t.Errorf("expected ErrInsecurePermissions, got %v", err)
	}
}

func TestCredentials_EnvFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("CUSTOM_PROVIDER_API_KEY", "custom-env")

	var creds *Credentials
	if got := creds.GetAPIKey("openai"); got != "from-env" {
		t.Errorf("nil credentials should use env, got %q", got)
	}
	if got := creds.GetAPIKey("custom-provider"); got != "custom-env" {
		t.Errorf("unknown provider env var not derived, got %q", got)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SEMSEARCH_EMBED_PROVIDER", "ollama")
	t.Setenv("SEMSEARCH_ADDR", ":9000")
	t.Setenv("SEMSEARCH_INDEX_PATH", "/tmp/custom.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Provider != "ollama" {
		t.Errorf("provider = %q, want ollama", cfg.Provider)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("addr = %q, want :9000", cfg.Addr)
	}
	if cfg.IndexPath != "/tmp/custom.json" {
		t.Errorf("index path = %q", cfg.IndexPath)
	}
	if cfg.JobCachePath != DefaultJobCachePath {
		t.Errorf("unset path should default, got %q", cfg.JobCachePath)
	}
}
