// Package vectorindex provides the persisted in-memory vector index at the
// heart of the semantic search engine: a keyed collection of embedded
// documents with cosine-similarity top-K search and JSON disk persistence.
package vectorindex

// Entity types commonly stored in the index. The type tag is open-ended;
// these constants cover the alumni platform's own collections.
const (
	TypeUser = "user"
	TypeJob  = "job"
	TypeNews = "news"
)

// Meta holds the small set of display fields carried alongside a record.
// The authoritative document lives in the CRUD layer; Meta only exists so
// search results can be rendered without an extra lookup.
type Meta struct {
	Name     string `json:"name,omitempty"`
	Title    string `json:"title,omitempty"`
	Company  string `json:"company,omitempty"`
	Location string `json:"location,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Record is the stored unit of the index.
type Record struct {
	// Key uniquely identifies the record, canonically "{type}:{id}".
	Key string `json:"key"`

	// ID is the opaque identifier of the source entity. It is never
	// interpreted, only round-tripped.
	ID string `json:"id"`

	// Type classifies the entity ("user", "job", "news", ...).
	Type string `json:"type"`

	// Vector is the embedding. All vectors stored together are expected to
	// share one length; a mismatched vector scores zero in searches.
	Vector []float32 `json:"vector"`

	// Meta holds display fields for rendering hits.
	Meta Meta `json:"meta"`
}

// DeriveKey returns the canonical key for a type and id.
func DeriveKey(entityType, id string) string {
	return entityType + ":" + id
}

// key returns the record's explicit key, or the derived canonical key.
func (r Record) key() string {
	if r.Key != "" {
		return r.Key
	}
	return DeriveKey(r.Type, r.ID)
}

// valid reports whether a loaded record has the fields the index requires.
func (r Record) valid() bool {
	return r.ID != "" && r.Type != "" && len(r.Vector) > 0
}

// Hit is a single search result.
type Hit struct {
	Key   string  `json:"key"`
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	Meta  Meta    `json:"meta"`
	Score float32 `json:"score"`
}
