// Package recommend builds personalized suggestions on top of the search
// service and the job cache: job recommendations from a member profile and
// job matches for pasted resume text.
package recommend

import (
	"context"
	"strings"
	"time"

	"github.com/alumnet/semsearch/embedding"
	"github.com/alumnet/semsearch/errors"
	"github.com/alumnet/semsearch/jobcache"
	"github.com/alumnet/semsearch/logging"
	"github.com/alumnet/semsearch/search"
	"github.com/alumnet/semsearch/vectorindex"
)

const (
	// jobRecommendationTopK is how many indexed jobs a profile query returns.
	jobRecommendationTopK = 12

	// resumeSuggestionTopN is how many cached jobs a resume match returns.
	resumeSuggestionTopN = 10
)

// Profile is the subset of a member profile used for query synthesis.
type Profile struct {
	Name       string   `json:"name"`
	Title      string   `json:"title"`
	Company    string   `json:"company"`
	Skills     []string `json:"skills"`
	Bio        string   `json:"bio"`
	Location   string   `json:"location"`
	Department string   `json:"department"`
}

// QueryText flattens the profile into one embedding query, skipping empty
// fields.
func (p Profile) QueryText() string {
	parts := make([]string, 0, 7)
	for _, field := range []string{
		p.Name,
		p.Title,
		p.Company,
		strings.Join(p.Skills, ", "),
		p.Bio,
		p.Location,
		p.Department,
	} {
		if field != "" {
			parts = append(parts, field)
		}
	}
	return strings.Join(parts, ". ")
}

// Engine produces recommendations.
type Engine struct {
	searcher *search.Service
	cache    *jobcache.Cache
	provider embedding.Provider
	log      *logging.Logger
}

// Config assembles an Engine.
type Config struct {
	Searcher *search.Service
	Cache    *jobcache.Cache
	Provider embedding.Provider
	Logger   *logging.Logger
}

// New creates a recommendation engine.
func New(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = logging.New()
	}
	return &Engine{
		searcher: cfg.Searcher,
		cache:    cfg.Cache,
		provider: cfg.Provider,
		log:      log.WithComponent("recommend"),
	}
}

// RecommendJobs searches the vector index for jobs similar to the profile.
// A profile with no usable fields is invalid.
func (e *Engine) RecommendJobs(ctx context.Context, profile Profile) ([]search.Result, error) {
	query := profile.QueryText()
	if query == "" {
		return nil, errors.InvalidInput("profile has no fields to build a query from")
	}

	return e.searcher.Search(ctx, query, search.Options{
		TopK: jobRecommendationTopK,
		Type: vectorindex.TypeJob,
	})
}

// SuggestJobsForResume matches free resume text against the cached job
// collection. Missing cache embeddings are computed first in one bounded
// pass, then every cached job is ranked against the resume embedding.
// Only positive-scoring jobs are returned, at most ten.
func (e *Engine) SuggestJobsForResume(ctx context.Context, resumeText string) ([]jobcache.Match, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, errors.InvalidInput("resume text must not be empty")
	}

	start := time.Now()

	if _, err := e.cache.FillMissing(ctx, e.provider, jobcache.DefaultFillConcurrency); err != nil {
		return nil, err
	}

	vec, err := embedding.EmbedOne(ctx, e.provider, resumeText)
	if err != nil {
		return nil, err
	}

	matches := e.cache.Rank(vec, resumeSuggestionTopN)
	e.log.SearchCompleted("resume", vectorindex.TypeJob, len(matches), time.Since(start))
	return matches, nil
}
