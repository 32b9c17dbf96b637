package jobcache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alumnet/semsearch/embedding"
)

func seedJobs() []Job {
	return []Job{
		{ID: "j1", Title: "Backend Engineer", Company: "Initech",
			Description: "Go services and storage"},
		{ID: "j2", Title: "Data Scientist", Company: "Globex",
			Embedding: []float32{0.1, 0.2, 0.3, 0.4}},
		{ID: "j3", Title: "Site Reliability Engineer", Company: "Hooli"},
	}
}

func TestCache_FillMissing(t *testing.T) {
	// Three cached jobs, one already embedded. A fill pass must embed the
	// other two and persist exactly three entries, all with vectors.
	path := filepath.Join(t.TempDir(), "jobs.json")
	c := New(path, nil)
	c.Replace(seedJobs())

	computed, err := c.FillMissing(context.Background(), embedding.NewMockProvider(4), 2)
	if err != nil {
		t.Fatalf("fill failed: %v", err)
	}
	if computed != 2 {
		t.Errorf("expected 2 embeddings computed, got %d", computed)
	}

	for _, j := range c.Jobs() {
		if j.NeedsEmbedding() {
			t.Errorf("job %s still missing embedding after fill", j.ID)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cache file not written: %v", err)
	}
	var persisted []Job
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("cache file is not a JSON array: %v", err)
	}
	if len(persisted) != 3 {
		t.Fatalf("expected 3 persisted entries, got %d", len(persisted))
	}
	for _, j := range persisted {
		if len(j.Embedding) != 4 {
			t.Errorf("persisted job %s has vector length %d, want 4", j.ID, len(j.Embedding))
		}
	}
}

func TestCache_FillMissingNoPending(t *testing.T) {
	c := New("", nil)
	c.Replace([]Job{{ID: "j1", Title: "x", Embedding: []float32{1}}})

	computed, err := c.FillMissing(context.Background(), embedding.NewMockProvider(1), 0)
	if err != nil {
		t.Fatalf("fill failed: %v", err)
	}
	if computed != 0 {
		t.Errorf("expected no work, got %d", computed)
	}
}

func TestCache_FillMissingIsIdempotent(t *testing.T) {
	c := New("", nil)
	c.Replace(seedJobs())

	if _, err := c.FillMissing(context.Background(), embedding.NewMockProvider(4), 2); err != nil {
		t.Fatal(err)
	}
	computed, err := c.FillMissing(context.Background(), embedding.NewMockProvider(4), 2)
	if err != nil {
		t.Fatal(err)
	}
	if computed != 0 {
		t.Errorf("second fill should be a no-op, computed %d", computed)
	}
}

func TestCache_Rank(t *testing.T) {
	c := New("", nil)
	c.Replace([]Job{
		{ID: "close", Title: "a", Embedding: []float32{1, 0}},
		{ID: "mid", Title: "b", Embedding: []float32{0.7, 0.7}},
		{ID: "opposite", Title: "c", Embedding: []float32{-1, 0}},
		{ID: "unembedded", Title: "d"},
	})

	matches := c.Rank([]float32{1, 0}, 10)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Job.ID != "close" {
		t.Errorf("expected closest job first, got %s", matches[0].Job.ID)
	}
	if matches[0].MatchScore != 100 {
		t.Errorf("expected match score 100, got %d", matches[0].MatchScore)
	}
	for _, m := range matches {
		if m.Score <= 0 {
			t.Errorf("non-positive score %f should have been dropped", m.Score)
		}
	}
}

func TestCache_RankTopN(t *testing.T) {
	c := New("", nil)
	c.Replace([]Job{
		{ID: "a", Title: "a", Embedding: []float32{1, 0}},
		{ID: "b", Title: "b", Embedding: []float32{0.9, 0.1}},
		{ID: "c", Title: "c", Embedding: []float32{0.5, 0.5}},
	})

	matches := c.Rank([]float32{1, 0}, 2)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Job.ID != "a" || matches[1].Job.ID != "b" {
		t.Errorf("unexpected ranking: %s, %s", matches[0].Job.ID, matches[1].Job.ID)
	}
}

func TestCache_ReplaceDeduplicates(t *testing.T) {
	c := New("", nil)
	c.Replace([]Job{
		{ID: "j1", Title: "old"},
		{ID: "j1", Title: "new"},
		{ID: "", Title: "dropped"},
	})

	jobs := c.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job after dedup, got %d", len(jobs))
	}
	if jobs[0].Title != "new" {
		t.Errorf("expected last writer to win, got %q", jobs[0].Title)
	}
}

func TestCache_LoadDegradesOnCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	c := New(path, nil)
	if c.Len() != 0 {
		t.Errorf("corrupt file should degrade to empty cache, got %d jobs", c.Len())
	}
}

func TestJob_Text(t *testing.T) {
	j := Job{Title: "Backend Engineer", Company: "Initech", Description: "Go services"}
	want := "Backend Engineer at Initech. Go services"
	if got := j.Text(); got != want {
		t.Errorf("text = %q, want %q", got, want)
	}

	bare := Job{Title: "Backend Engineer"}
	if got := bare.Text(); got != "Backend Engineer" {
		t.Errorf("text = %q, want bare title", got)
	}
}
