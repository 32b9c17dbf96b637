package vectorindex

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/alumnet/semsearch/errors"
	"github.com/alumnet/semsearch/logging"
)

// Index is an in-memory keyed vector collection with explicit disk
// persistence. Upserts are last-writer-wins by key with no versioning;
// concurrent writers for the same key race and the final state is whichever
// upsert completed last.
//
// The in-memory state and the persisted file are synchronized only at
// explicit Save calls. Saves write atomically (temp file, then rename).
type Index struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string // insertion order; fixes tie-breaking in searches
	path    string
	log     *logging.Logger
}

// SearchOptions configures a similarity search.
type SearchOptions struct {
	// TopK caps the number of hits returned. Defaults to 10.
	TopK int

	// Type restricts hits to records of one entity type. Empty matches all.
	Type string
}

// New creates an Index persisted at path. If path is empty the index is
// memory-only. A missing, unreadable or corrupt file never fails
// construction: the index degrades to empty and logs a warning.
func New(path string, log *logging.Logger) *Index {
	if log == nil {
		log = logging.New()
	}
	idx := &Index{
		records: make(map[string]*Record),
		path:    path,
		log:     log.WithComponent("vectorindex"),
	}
	idx.load()
	return idx
}

// load reads the persisted collection, skipping records that are missing
// required fields.
func (idx *Index) load() {
	if idx.path == "" {
		return
	}

	data, err := os.ReadFile(idx.path)
	if err != nil {
		if !os.IsNotExist(err) {
			idx.log.PersistenceWarning(idx.path, err)
		}
		return
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		idx.log.PersistenceWarning(idx.path, err)
		return
	}

	skipped := 0
	for i := range records {
		if !records[i].valid() {
			skipped++
			continue
		}
		rec := records[i]
		rec.Key = rec.key()
		idx.upsertLocked(rec)
	}
	if skipped > 0 {
		idx.log.Warn("skipped_invalid_records", map[string]interface{}{
			"path":    idx.path,
			"skipped": skipped,
		})
	}
}

// Upsert inserts or overwrites a record by its key. Re-indexing an existing
// key replaces the record in place and keeps its original iteration
// position.
func (idx *Index) Upsert(rec Record) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	rec.Key = rec.key()
	idx.upsertLocked(rec)
}

// BulkUpsert performs sequential upserts. For duplicate keys within the
// batch, the last record wins. Returns the number of records processed.
func (idx *Index) BulkUpsert(records []Record) int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i := range records {
		rec := records[i]
		rec.Key = rec.key()
		idx.upsertLocked(rec)
	}
	return len(records)
}

func (idx *Index) upsertLocked(rec Record) {
	if existing, ok := idx.records[rec.Key]; ok {
		*existing = rec
		return
	}
	if dim := idx.dimensionLocked(); dim > 0 && len(rec.Vector) != dim {
		idx.log.Warn("dimension_mismatch", map[string]interface{}{
			"key":      rec.Key,
			"got":      len(rec.Vector),
			"expected": dim,
		})
	}
	idx.records[rec.Key] = &rec
	idx.order = append(idx.order, rec.Key)
}

// dimensionLocked returns the vector length of the first stored record, or
// zero for an empty index.
func (idx *Index) dimensionLocked() int {
	for _, key := range idx.order {
		return len(idx.records[key].Vector)
	}
	return 0
}

// Get returns the record stored under key.
func (idx *Index) Get(key string) (Record, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	rec, ok := idx.records[key]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Len returns the number of stored records.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records)
}

// SearchByVector returns the TopK records most similar to query by cosine
// similarity, sorted by descending score. Ties keep insertion order. An
// empty or fully filtered store yields an empty slice, never an error.
// Records whose vector length differs from the query score zero.
func (idx *Index) SearchByVector(query []float32, opts SearchOptions) []Hit {
	topK := opts.TopK
	if topK <= 0 {
		topK = 10
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	hits := make([]Hit, 0, len(idx.order))
	for _, key := range idx.order {
		rec := idx.records[key]
		if opts.Type != "" && rec.Type != opts.Type {
			continue
		}
		hits = append(hits, Hit{
			Key:   rec.Key,
			ID:    rec.ID,
			Type:  rec.Type,
			Meta:  rec.Meta,
			Score: Cosine(query, rec.Vector),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// Save writes the full collection to the configured path, creating the
// directory if absent. The write goes to a temp file first and is renamed
// into place so a crashed save never truncates the previous snapshot.
func (idx *Index) Save() error {
	if idx.path == "" {
		return nil
	}

	idx.mu.RLock()
	records := make([]Record, 0, len(idx.order))
	for _, key := range idx.order {
		records = append(records, *idx.records[key])
	}
	idx.mu.RUnlock()

	data, err := json.Marshal(records)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrCodePersistence, "failed to encode index")
	}

	dir := filepath.Dir(idx.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrCodePersistence, "failed to create index directory")
	}

	tmp, err := os.CreateTemp(dir, ".index-*.json")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrCodePersistence, "failed to create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrCodePersistence, "failed to write index")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrCodePersistence, "failed to close index file")
	}
	if err := os.Rename(tmpName, idx.path); err != nil {
		os.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrCodePersistence, "failed to replace index file")
	}

	return nil
}

// Clear empties the in-memory collection and removes the persisted file if
// present.
func (idx *Index) Clear() error {
	idx.mu.Lock()
	idx.records = make(map[string]*Record)
	idx.order = nil
	idx.mu.Unlock()

	if idx.path == "" {
		return nil
	}
	if err := os.Remove(idx.path); err != nil && !os.IsNotExist(err) {
		return errors.WrapWithCode(err, errors.ErrCodePersistence, "failed to remove index file")
	}
	return nil
}

// Cosine computes the cosine similarity of two vectors. A zero-norm vector
// or a length mismatch yields 0, never NaN or an error.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
