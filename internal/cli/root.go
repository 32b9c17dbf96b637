// Package cli defines the semsearchd command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alumnet/semsearch/config"
	"github.com/alumnet/semsearch/embedding"
	"github.com/alumnet/semsearch/errors"
	"github.com/alumnet/semsearch/jobcache"
	"github.com/alumnet/semsearch/lexical"
	"github.com/alumnet/semsearch/logging"
	"github.com/alumnet/semsearch/recommend"
	"github.com/alumnet/semsearch/search"
	"github.com/alumnet/semsearch/vectorindex"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "semsearchd",
	Short: "semsearchd — semantic indexing and retrieval for the alumni platform",
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func newLogger() *logging.Logger {
	log := logging.New()
	if debug {
		log.SetLevel(logging.LevelDebug)
	}
	return log
}

// app holds the wired service graph shared by the commands.
type app struct {
	cfg      *config.Config
	log      *logging.Logger
	provider embedding.Provider
	index    *vectorindex.Index
	cache    *jobcache.Cache
	lexical  *lexical.Index
	searcher *search.Service
	engine   *recommend.Engine
}

// buildApp assembles the service graph from configuration. withLexical
// controls whether the Bleve index is opened; one-shot commands that never
// use keyword mode skip it to avoid touching the index directory.
func buildApp(ctx context.Context, withLexical bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := newLogger()

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		provider: provider,
		index:    vectorindex.New(cfg.IndexPath, log),
		cache:    jobcache.New(cfg.JobCachePath, log),
	}

	if withLexical && cfg.LexicalPath != "" {
		lex, err := lexical.New(cfg.LexicalPath)
		if err != nil {
			return nil, err
		}
		a.lexical = lex
	}

	a.searcher = search.New(search.Config{
		Provider: provider,
		Index:    a.index,
		Lexical:  a.lexical,
		Logger:   log,
	})
	a.engine = recommend.New(recommend.Config{
		Searcher: a.searcher,
		Cache:    a.cache,
		Provider: provider,
		Logger:   log,
	})
	return a, nil
}

func buildProvider(cfg *config.Config) (embedding.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return embedding.NewOpenAIProvider(embedding.OpenAIConfig{
			APIKey: cfg.APIKey("openai"),
			Model:  cfg.Model,
		}), nil
	case "google":
		return embedding.NewGoogleProvider(embedding.GoogleConfig{
			APIKey: cfg.APIKey("google"),
			Model:  cfg.Model,
		}), nil
	case "ollama":
		return embedding.NewOllamaProvider(embedding.OllamaConfig{
			BaseURL: cfg.OllamaBaseURL,
			Model:   cfg.Model,
		}), nil
	case "mock":
		return embedding.NewMockProvider(64), nil
	default:
		return nil, errors.ConfigMissing(fmt.Sprintf("unknown embedding provider %q", cfg.Provider))
	}
}

func (a *app) close() {
	if a.lexical != nil {
		if err := a.lexical.Close(); err != nil {
			a.log.Warn("lexical_close_failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
