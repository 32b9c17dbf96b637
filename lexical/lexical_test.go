package lexical

import (
	"path/filepath"
	"testing"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(filepath.Join(t.TempDir(), "lexical.bleve"))
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestIndex_SearchMatchesText(t *testing.T) {
	idx := newTestIndex(t)

	docs := []Document{
		{ID: "u1", Type: "user", Text: "Ada Lovelace. Software Engineer at Initech", Name: "Ada Lovelace"},
		{ID: "j1", Type: "job", Text: "Backend Engineer at Globex. Go and Postgres", Title: "Backend Engineer", Company: "Globex"},
		{ID: "n1", Type: "news", Text: "Annual alumni gathering in Boston"},
	}
	for _, d := range docs {
		if err := idx.Upsert(d); err != nil {
			t.Fatalf("upsert %s failed: %v", d.ID, err)
		}
	}

	hits, err := idx.Search("engineer", "", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits for %q, got %d", "engineer", len(hits))
	}
	for _, h := range hits {
		if h.Score < 0 || h.Score > 1 {
			t.Errorf("score out of range: %f", h.Score)
		}
	}
}

func TestIndex_SearchTypeFilter(t *testing.T) {
	idx := newTestIndex(t)

	idx.Upsert(Document{ID: "u1", Type: "user", Text: "engineer in London"})
	idx.Upsert(Document{ID: "j1", Type: "job", Text: "engineer wanted in London", Title: "Engineer"})

	hits, err := idx.Search("engineer", "job", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 job hit, got %d", len(hits))
	}
	if hits[0].ID != "j1" || hits[0].Type != "job" {
		t.Errorf("expected job j1, got %s %s", hits[0].Type, hits[0].ID)
	}
	if hits[0].Meta.Title != "Engineer" {
		t.Errorf("expected stored title in meta, got %+v", hits[0].Meta)
	}
}

func TestIndex_UpsertReplaces(t *testing.T) {
	idx := newTestIndex(t)

	idx.Upsert(Document{ID: "u1", Type: "user", Text: "python developer"})
	idx.Upsert(Document{ID: "u1", Type: "user", Text: "go developer"})

	hits, err := idx.Search("python", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("replaced document should not match old text, got %d hits", len(hits))
	}

	hits, err = idx.Search("go", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Errorf("expected 1 hit for new text, got %d", len(hits))
	}
}

func TestIndex_Delete(t *testing.T) {
	idx := newTestIndex(t)

	idx.Upsert(Document{ID: "u1", Type: "user", Text: "rust developer"})
	if err := idx.Delete("user", "u1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	hits, err := idx.Search("rust", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("deleted document should not match, got %d hits", len(hits))
	}
}

func TestNormalizeScore(t *testing.T) {
	if got := normalizeScore(0.5); got != 0.5 {
		t.Errorf("score below 1 should pass through, got %f", got)
	}
	if got := normalizeScore(9); got <= 0.5 || got >= 1 {
		t.Errorf("large score should normalize into (0.5,1), got %f", got)
	}
}
