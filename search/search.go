// Package search implements the semantic search service: it turns text into
// embeddings, queries the vector index, and enriches hits with documents
// fetched from the owning collections.
package search

import (
	"context"
	"time"

	"github.com/alumnet/semsearch/embedding"
	"github.com/alumnet/semsearch/errors"
	"github.com/alumnet/semsearch/lexical"
	"github.com/alumnet/semsearch/logging"
	"github.com/alumnet/semsearch/vectorindex"
)

// Search modes. Semantic embeds the query and searches the vector index;
// keyword matches document text in the lexical index. Keyword is an explicit
// mode, never a fallback for embedding failures.
const (
	ModeSemantic = "semantic"
	ModeKeyword  = "keyword"
)

// DocumentSource fetches the authoritative document for an entity ID.
// Implementations live in the CRUD layer; lookups are best-effort.
type DocumentSource interface {
	Fetch(ctx context.Context, id string) (map[string]interface{}, error)
}

// Options configures one search call.
type Options struct {
	// TopK caps the number of hits. Defaults to 10.
	TopK int

	// Type restricts hits to one entity type. Empty matches all.
	Type string

	// Mode selects semantic (default) or keyword search.
	Mode string
}

// Result is one enriched search hit. Doc is nil when the entity's source is
// unregistered or its lookup failed; the hit itself is always kept.
type Result struct {
	Key   string                 `json:"key"`
	ID    string                 `json:"id"`
	Type  string                 `json:"type"`
	Meta  vectorindex.Meta       `json:"meta"`
	Score float32                `json:"score"`
	Doc   map[string]interface{} `json:"doc,omitempty"`
}

// IndexRequest describes one document to embed and store.
type IndexRequest struct {
	ID   string           `json:"id"`
	Type string           `json:"type"`
	Text string           `json:"text"`
	Meta vectorindex.Meta `json:"meta"`
}

func (r IndexRequest) validate() error {
	if r.ID == "" {
		return errors.InvalidInput("document id must not be empty")
	}
	if r.Type == "" {
		return errors.InvalidInput("document type must not be empty")
	}
	if r.Text == "" {
		return errors.InvalidInput("document text must not be empty")
	}
	return nil
}

// Service coordinates the embedding provider, the vector index and the
// optional lexical index.
type Service struct {
	provider embedding.Provider
	index    *vectorindex.Index
	lexical  *lexical.Index
	sources  map[string]DocumentSource
	log      *logging.Logger
}

// Config assembles a Service. Lexical may be nil, in which case keyword
// mode is unavailable.
type Config struct {
	Provider embedding.Provider
	Index    *vectorindex.Index
	Lexical  *lexical.Index
	Logger   *logging.Logger
}

// New creates a search service.
func New(cfg Config) *Service {
	log := cfg.Logger
	if log == nil {
		log = logging.New()
	}
	return &Service{
		provider: cfg.Provider,
		index:    cfg.Index,
		lexical:  cfg.Lexical,
		sources:  make(map[string]DocumentSource),
		log:      log.WithComponent("search"),
	}
}

// RegisterSource attaches a document source for one entity type.
func (s *Service) RegisterSource(entityType string, src DocumentSource) {
	s.sources[entityType] = src
}

// Search runs a query. An empty query is invalid; an embedding failure
// aborts the call and surfaces as-is. Zero hits is a valid empty result.
func (s *Service) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	if query == "" {
		return nil, errors.InvalidInput("search query must not be empty")
	}

	start := time.Now()

	if opts.Mode == ModeKeyword {
		results, err := s.searchKeyword(query, opts)
		if err != nil {
			return nil, err
		}
		s.log.SearchCompleted(ModeKeyword, opts.Type, len(results), time.Since(start))
		return s.enrich(ctx, results), nil
	}

	vec, err := embedding.EmbedOne(ctx, s.provider, query)
	if err != nil {
		return nil, err
	}

	hits := s.index.SearchByVector(vec, vectorindex.SearchOptions{
		TopK: opts.TopK,
		Type: opts.Type,
	})

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{Key: h.Key, ID: h.ID, Type: h.Type, Meta: h.Meta, Score: h.Score}
	}

	s.log.SearchCompleted(ModeSemantic, opts.Type, len(results), time.Since(start))
	return s.enrich(ctx, results), nil
}

func (s *Service) searchKeyword(query string, opts Options) ([]Result, error) {
	if s.lexical == nil {
		return nil, errors.ConfigMissing("keyword search is not configured")
	}
	hits, err := s.lexical.Search(query, opts.Type, opts.TopK)
	if err != nil {
		return nil, err
	}
	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{Key: h.Key, ID: h.ID, Type: h.Type, Meta: h.Meta, Score: h.Score}
	}
	return results, nil
}

// enrich attaches source documents to hits. Failures are logged and leave
// Doc nil; they never drop the hit or fail the search.
func (s *Service) enrich(ctx context.Context, results []Result) []Result {
	for i := range results {
		src, ok := s.sources[results[i].Type]
		if !ok {
			continue
		}
		doc, err := src.Fetch(ctx, results[i].ID)
		if err != nil {
			s.log.Warn("enrichment_failed", map[string]interface{}{
				"key":   results[i].Key,
				"error": err.Error(),
			})
			continue
		}
		results[i].Doc = doc
	}
	return results
}

// Index embeds and stores one document, durably saved before returning.
func (s *Service) Index(ctx context.Context, req IndexRequest) error {
	return s.IndexBulk(ctx, []IndexRequest{req})
}

// IndexBulk embeds a batch of documents in one provider call, upserts them
// all, and saves the index once. Duplicate keys within the batch resolve
// last-writer-wins.
func (s *Service) IndexBulk(ctx context.Context, reqs []IndexRequest) error {
	if len(reqs) == 0 {
		return errors.InvalidInput("index batch must not be empty")
	}
	for _, req := range reqs {
		if err := req.validate(); err != nil {
			return err
		}
	}

	start := time.Now()

	texts := make([]string, len(reqs))
	for i, req := range reqs {
		texts[i] = req.Text
	}
	vectors, err := s.provider.Embed(ctx, texts)
	if err != nil {
		return err
	}

	records := make([]vectorindex.Record, len(reqs))
	for i, req := range reqs {
		records[i] = vectorindex.Record{
			ID:     req.ID,
			Type:   req.Type,
			Vector: vectors[i],
			Meta:   req.Meta,
		}
	}
	s.index.BulkUpsert(records)

	if s.lexical != nil {
		for _, req := range reqs {
			doc := lexical.Document{
				ID:       req.ID,
				Type:     req.Type,
				Text:     req.Text,
				Name:     req.Meta.Name,
				Title:    req.Meta.Title,
				Company:  req.Meta.Company,
				Location: req.Meta.Location,
				URL:      req.Meta.URL,
			}
			if err := s.lexical.Upsert(doc); err != nil {
				s.log.Warn("lexical_index_failed", map[string]interface{}{
					"key":   vectorindex.DeriveKey(req.Type, req.ID),
					"error": err.Error(),
				})
			}
		}
	}

	if err := s.index.Save(); err != nil {
		return err
	}

	s.log.Indexed(len(reqs), time.Since(start))
	return nil
}
