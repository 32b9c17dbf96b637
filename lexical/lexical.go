// Package lexical provides keyword search over indexed documents using
// Bleve. It backs the search service's keyword mode, which operates on
// document text directly and never calls an embedding provider.
package lexical

import (
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/alumnet/semsearch/errors"
	"github.com/alumnet/semsearch/vectorindex"
)

// Document is the unit stored in the lexical index. Text holds the same
// string that was embedded for the vector index so both modes see one
// representation of the entity.
type Document struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Text     string `json:"text"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	URL      string `json:"url"`
}

// Hit is one keyword search result with a score normalized to 0-1.
type Hit struct {
	Key   string           `json:"key"`
	ID    string           `json:"id"`
	Type  string           `json:"type"`
	Meta  vectorindex.Meta `json:"meta"`
	Score float32          `json:"score"`
}

// Index wraps a Bleve index on disk.
type Index struct {
	index bleve.Index
}

// New opens the Bleve index at path, creating it if absent.
func New(path string) (*Index, error) {
	var idx bleve.Index
	var err error

	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		idx, err = bleve.New(path, buildMapping())
	} else {
		idx, err = bleve.Open(path)
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodePersistence, "failed to open lexical index")
	}

	return &Index{index: idx}, nil
}

func buildMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name

	keywordFieldMapping := bleve.NewKeywordFieldMapping()

	storedFieldMapping := bleve.NewTextFieldMapping()
	storedFieldMapping.Analyzer = standard.Name
	storedFieldMapping.IncludeInAll = false

	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	docMapping.AddFieldMappingsAt("type", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("name", storedFieldMapping)
	docMapping.AddFieldMappingsAt("title", storedFieldMapping)
	docMapping.AddFieldMappingsAt("company", storedFieldMapping)
	docMapping.AddFieldMappingsAt("location", storedFieldMapping)
	docMapping.AddFieldMappingsAt("url", keywordFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// Upsert indexes a document under its canonical key, replacing any
// previous version.
func (l *Index) Upsert(doc Document) error {
	key := vectorindex.DeriveKey(doc.Type, doc.ID)
	if err := l.index.Index(key, doc); err != nil {
		return errors.WrapWithCode(err, errors.ErrCodePersistence, "failed to index document")
	}
	return nil
}

// Delete removes the document stored under the type and id.
func (l *Index) Delete(entityType, id string) error {
	if err := l.index.Delete(vectorindex.DeriveKey(entityType, id)); err != nil {
		return errors.WrapWithCode(err, errors.ErrCodePersistence, "failed to delete document")
	}
	return nil
}

// Search runs a keyword match query over document text, optionally
// filtered to one entity type, and returns up to limit hits.
func (l *Index) Search(queryText, entityType string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}

	matchQuery := bleve.NewMatchQuery(queryText)
	matchQuery.SetField("text")

	var searchQuery query.Query = matchQuery
	if entityType != "" {
		typeQuery := bleve.NewTermQuery(entityType)
		typeQuery.SetField("type")

		boolQuery := bleve.NewBooleanQuery()
		boolQuery.AddMust(matchQuery)
		boolQuery.AddMust(typeQuery)
		searchQuery = boolQuery
	}

	searchReq := bleve.NewSearchRequest(searchQuery)
	searchReq.Size = limit
	searchReq.Fields = []string{"id", "type", "name", "title", "company", "location", "url"}

	result, err := l.index.Search(searchReq)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodePersistence, "keyword search failed")
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, match := range result.Hits {
		hit := Hit{
			Key:   match.ID,
			Score: normalizeScore(match.Score),
		}
		if v, ok := match.Fields["id"].(string); ok {
			hit.ID = v
		}
		if v, ok := match.Fields["type"].(string); ok {
			hit.Type = v
		}
		if v, ok := match.Fields["name"].(string); ok {
			hit.Meta.Name = v
		}
		if v, ok := match.Fields["title"].(string); ok {
			hit.Meta.Title = v
		}
		if v, ok := match.Fields["company"].(string); ok {
			hit.Meta.Company = v
		}
		if v, ok := match.Fields["location"].(string); ok {
			hit.Meta.Location = v
		}
		if v, ok := match.Fields["url"].(string); ok {
			hit.Meta.URL = v
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

// normalizeScore maps a BM25 score to 0-1 so keyword and similarity
// scores share a range.
func normalizeScore(score float64) float32 {
	if score <= 1 {
		return float32(score)
	}
	return float32(1 - 1/(1+score))
}

// Close releases the underlying Bleve index.
func (l *Index) Close() error {
	return l.index.Close()
}
