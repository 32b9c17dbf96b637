// Package jobcache holds the secondary persisted collection of job postings
// and their lazily computed embeddings. Entries are created by an external
// ingestion step; embeddings are filled in by an explicit bounded-concurrency
// pass and the whole collection is rewritten to disk in one save.
package jobcache

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alumnet/semsearch/embedding"
	"github.com/alumnet/semsearch/errors"
	"github.com/alumnet/semsearch/logging"
	"github.com/alumnet/semsearch/vectorindex"
)

// DefaultFillConcurrency bounds parallel embedding calls during a fill pass.
const DefaultFillConcurrency = 4

// Job is one cached job posting.
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Embedding   []float32 `json:"embedding,omitempty"`
}

// NeedsEmbedding reports whether the job's embedding is still missing.
func (j *Job) NeedsEmbedding() bool {
	return len(j.Embedding) == 0
}

// Text returns the string embedded for this job.
func (j *Job) Text() string {
	text := j.Title
	if j.Company != "" {
		text += " at " + j.Company
	}
	if j.Description != "" {
		text += ". " + j.Description
	}
	return text
}

// Match pairs a job with its similarity to a query embedding.
type Match struct {
	Job   Job     `json:"job"`
	Score float32 `json:"score"`

	// MatchScore is Score scaled to 0-100 for display.
	MatchScore int `json:"matchScore"`
}

// Cache is the persisted job collection. Like the vector index it is
// synchronized with disk only at explicit Save calls, written atomically.
type Cache struct {
	mu   sync.RWMutex
	jobs []*Job
	path string
	log  *logging.Logger
}

// New creates a Cache persisted at path, loading any existing collection.
// Missing or corrupt files degrade to an empty cache with a logged warning.
func New(path string, log *logging.Logger) *Cache {
	if log == nil {
		log = logging.New()
	}
	c := &Cache{
		path: path,
		log:  log.WithComponent("jobcache"),
	}
	c.load()
	return c
}

func (c *Cache) load() {
	if c.path == "" {
		return
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.PersistenceWarning(c.path, err)
		}
		return
	}

	var jobs []*Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		c.log.PersistenceWarning(c.path, err)
		return
	}
	for _, j := range jobs {
		if j == nil || j.ID == "" {
			continue
		}
		c.jobs = append(c.jobs, j)
	}
}

// Jobs returns a snapshot of the cached jobs.
func (c *Cache) Jobs() []Job {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Job, len(c.jobs))
	for i, j := range c.jobs {
		out[i] = *j
	}
	return out
}

// Len returns the number of cached jobs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.jobs)
}

// Replace swaps the whole collection, deduplicating by job ID with
// last-writer-wins. Used by the ingestion path.
func (c *Cache) Replace(jobs []Job) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byID := make(map[string]int, len(jobs))
	var next []*Job
	for i := range jobs {
		j := jobs[i]
		if j.ID == "" {
			continue
		}
		if pos, ok := byID[j.ID]; ok {
			next[pos] = &j
			continue
		}
		byID[j.ID] = len(next)
		next = append(next, &j)
	}
	c.jobs = next
}

// FillMissing computes embeddings for every job that lacks one, with at
// most concurrency provider calls in flight, then writes the whole cache
// to disk once. Returns the number of embeddings computed.
func (c *Cache) FillMissing(ctx context.Context, provider embedding.Provider, concurrency int) (int, error) {
	if concurrency <= 0 {
		concurrency = DefaultFillConcurrency
	}

	c.mu.RLock()
	var pending []*Job
	for _, j := range c.jobs {
		if j.NeedsEmbedding() {
			pending = append(pending, j)
		}
	}
	total := len(c.jobs)
	c.mu.RUnlock()

	if len(pending) == 0 {
		return 0, nil
	}

	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	vectors := make([][]float32, len(pending))
	for i, job := range pending {
		g.Go(func() error {
			vec, err := embedding.EmbedOne(gctx, provider, job.Text())
			if err != nil {
				return errors.Wrapf(err, "embedding job %s", job.ID)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	for i, job := range pending {
		job.Embedding = vectors[i]
	}
	c.mu.Unlock()

	if err := c.Save(); err != nil {
		return len(pending), err
	}

	c.log.CacheFilled(len(pending), total, time.Since(start))
	return len(pending), nil
}

// Rank scores every embedded job against the query vector, drops
// non-positive scores, and returns the topN matches sorted by descending
// score with MatchScore scaled to 0-100.
func (c *Cache) Rank(query []float32, topN int) []Match {
	if topN <= 0 {
		topN = 10
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	matches := make([]Match, 0, len(c.jobs))
	for _, j := range c.jobs {
		if j.NeedsEmbedding() {
			continue
		}
		score := vectorindex.Cosine(query, j.Embedding)
		if score <= 0 {
			continue
		}
		matches = append(matches, Match{
			Job:        *j,
			Score:      score,
			MatchScore: matchScore(score),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}

// matchScore scales a cosine score to an integer 0-100.
func matchScore(score float32) int {
	scaled := int(math.Round(float64(score) * 100))
	if scaled < 0 {
		return 0
	}
	if scaled > 100 {
		return 100
	}
	return scaled
}

// Save rewrites the whole collection to disk atomically.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}

	c.mu.RLock()
	jobs := make([]*Job, len(c.jobs))
	copy(jobs, c.jobs)
	data, err := json.Marshal(jobs)
	c.mu.RUnlock()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrCodePersistence, "failed to encode job cache")
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrCodePersistence, "failed to create cache directory")
	}

	tmp, err := os.CreateTemp(dir, ".jobs-*.json")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrCodePersistence, "failed to create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrCodePersistence, "failed to write job cache")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrCodePersistence, "failed to close job cache file")
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrCodePersistence, "failed to replace job cache file")
	}

	return nil
}
