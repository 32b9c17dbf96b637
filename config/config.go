// Package config loads service settings from environment variables and API
// keys from a credentials.toml file in standard locations. A missing key is
// not a startup error; embedding calls fail with a configuration error when
// the key is actually needed.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// Defaults for unset environment variables.
const (
	DefaultProvider     = "openai"
	DefaultAddr         = ":8085"
	DefaultIndexPath    = "data/index.json"
	DefaultJobCachePath = "data/jobs.json"
	DefaultLexicalPath  = "data/lexical.bleve"
)

// ErrInsecurePermissions is returned when the credentials file is readable
// by group or others.
var ErrInsecurePermissions = fmt.Errorf("credentials file has insecure permissions")

// Config holds the resolved service settings.
type Config struct {
	// Provider selects the embedding backend: openai, google or ollama.
	Provider string

	// Model is the embedding model name; empty uses the provider default.
	Model string

	// Addr is the HTTP listen address.
	Addr string

	// IndexPath is where the vector index persists.
	IndexPath string

	// JobCachePath is where the job embedding cache persists.
	JobCachePath string

	// LexicalPath is the Bleve index directory. Empty disables keyword mode.
	LexicalPath string

	// OllamaBaseURL points at a local Ollama server when Provider is ollama.
	OllamaBaseURL string

	creds *Credentials
}

// Load resolves configuration from the environment and the first available
// credentials file.
func Load() (*Config, error) {
	creds, path, err := LoadCredentials()
	if err != nil {
		return nil, fmt.Errorf("loading credentials from %s: %w", path, err)
	}

	return &Config{
		Provider:      envOr("SEMSEARCH_EMBED_PROVIDER", DefaultProvider),
		Model:         os.Getenv("SEMSEARCH_EMBED_MODEL"),
		Addr:          envOr("SEMSEARCH_ADDR", DefaultAddr),
		IndexPath:     envOr("SEMSEARCH_INDEX_PATH", DefaultIndexPath),
		JobCachePath:  envOr("SEMSEARCH_JOBCACHE_PATH", DefaultJobCachePath),
		LexicalPath:   envOr("SEMSEARCH_LEXICAL_PATH", DefaultLexicalPath),
		OllamaBaseURL: envOr("SEMSEARCH_OLLAMA_URL", "http://localhost:11434"),
		creds:         creds,
	}, nil
}

// APIKey returns the key for the configured provider, or for an explicit
// provider name. Priority: [provider] toml section > [embedding] section >
// environment variable.
func (c *Config) APIKey(provider string) string {
	if provider == "" {
		provider = c.Provider
	}
	return c.creds.GetAPIKey(provider)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Credentials holds API keys loaded from credentials.toml.
type Credentials struct {
	// Embedding is the generic key used when no provider section matches.
	Embedding *ProviderCreds

	providers map[string]*ProviderCreds
}

// ProviderCreds holds the credentials of a single provider section.
type ProviderCreds struct {
	APIKey string `toml:"api_key"`
}

// StandardPaths returns the credential file locations in priority order.
func StandardPaths() []string {
	paths := []string{"credentials.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "semsearch", "credentials.toml"),
			filepath.Join(home, ".semsearch", "credentials.toml"),
		)
	}
	return paths
}

// LoadCredentials loads the first available credentials file. No file found
// is not an error; env vars still apply.
func LoadCredentials() (*Credentials, string, error) {
	for _, path := range StandardPaths() {
		if _, err := os.Stat(path); err == nil {
			creds, err := LoadCredentialsFile(path)
			if err != nil {
				return nil, path, err
			}
			return creds, path, nil
		}
	}
	return nil, "", nil
}

// LoadCredentialsFile loads credentials from one file. The file must be
// owner read-only (0400) on Unix.
func LoadCredentialsFile(path string) (*Credentials, error) {
	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if mode := info.Mode().Perm(); mode != 0400 {
			return nil, fmt.Errorf("%w: %s has mode %04o (must be 0400)",
				ErrInsecurePermissions, path, mode)
		}
	}

	var rawData map[string]interface{}
	if _, err := toml.DecodeFile(path, &rawData); err != nil {
		return nil, err
	}

	creds := &Credentials{providers: make(map[string]*ProviderCreds)}
	for key, value := range rawData {
		section, ok := value.(map[string]interface{})
		if !ok {
			continue
		}
		apiKey, _ := section["api_key"].(string)
		if apiKey == "" {
			continue
		}
		pc := &ProviderCreds{APIKey: apiKey}
		if key == "embedding" {
			creds.Embedding = pc
		} else {
			creds.providers[key] = pc
		}
	}
	return creds, nil
}

// GetAPIKey returns the key for a provider, falling back to the generic
// [embedding] section and then the provider's environment variable.
func (c *Credentials) GetAPIKey(provider string) string {
	if c != nil {
		if pc, ok := c.providers[provider]; ok && pc.APIKey != "" {
			return pc.APIKey
		}
		if c.Embedding != nil && c.Embedding.APIKey != "" {
			return c.Embedding.APIKey
		}
	}
	return os.Getenv(envVarForProvider(provider))
}

func envVarForProvider(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "google":
		return "GOOGLE_API_KEY"
	default:
		return strings.ToUpper(strings.ReplaceAll(provider, "-", "_")) + "_API_KEY"
	}
}
