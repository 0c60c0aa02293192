package vectorstore

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"

	"github.com/mohsalah/askdoc/internal/chunker"
)

// mockEmbedder returns deterministic embeddings based on text content.
// Shared characters contribute to the same vector positions, so similar
// texts produce similar vectors.
type mockEmbedder struct {
	dims int
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		results[i] = m.deterministicVector(text)
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

func (m *mockEmbedder) deterministicVector(text string) []float32 {
	vec := make([]float32, m.dims)
	for i, ch := range text {
		idx := (int(ch) + i) % m.dims
		vec[idx] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

// failingEmbedder simulates an embedding provider outage.
type failingEmbedder struct{ mockEmbedder }

func (f *failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("provider unavailable")
}

func testChunks() []chunker.Chunk {
	return []chunker.Chunk{
		{Text: "The billing module charges customer cards at the end of each month", Index: 0},
		{Text: "Employees may work remotely up to three days per week", Index: 1},
		{Text: "The data retention policy keeps backups for ninety days", Index: 2},
	}
}

func TestStore_BuildAndSearch(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir(), &mockEmbedder{dims: 64})

	ix, err := store.Build(ctx, "u1", testChunks())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ix.Count() != 3 {
		t.Errorf("Count: got %d, want 3", ix.Count())
	}
	if ix.UserID() != "u1" {
		t.Errorf("UserID: got %q", ix.UserID())
	}

	results, err := ix.Search(ctx, "how many remote days per week can employees work", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Text != "Employees may work remotely up to three days per week" {
		t.Errorf("top result: got %q", results[0].Text)
	}
	if results[0].Position != 1 {
		t.Errorf("top result position: got %d, want 1", results[0].Position)
	}
}

func TestStore_BuildEmptyChunkSet(t *testing.T) {
	store := New(t.TempDir(), &mockEmbedder{dims: 8})

	if _, err := store.Build(context.Background(), "u1", nil); !errors.Is(err, ErrNoChunks) {
		t.Errorf("got %v, want ErrNoChunks", err)
	}
	if store.Exists("u1") {
		t.Error("no index file should be persisted for a failed build")
	}
}

func TestStore_BuildEmbedFailureLeavesNoArtifact(t *testing.T) {
	store := New(t.TempDir(), &failingEmbedder{})

	_, err := store.Build(context.Background(), "u1", testChunks())
	if err == nil {
		t.Fatal("expected build failure")
	}
	if store.Exists("u1") {
		t.Error("failed build must not persist a partial index")
	}
}

func TestStore_PersistLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	embedder := &mockEmbedder{dims: 64}

	store := New(dir, embedder)
	if _, err := store.Build(ctx, "u1", testChunks()); err != nil {
		t.Fatalf("Build: %v", err)
	}

	// A fresh store simulates a process restart.
	reloaded, err := New(dir, embedder).Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.Count() != 3 {
		t.Errorf("Count after reload: got %d, want 3", reloaded.Count())
	}

	results, err := reloaded.Search(ctx, "backups retention ninety days", 1)
	if err != nil {
		t.Fatalf("Search after reload: %v", err)
	}
	if len(results) != 1 || results[0].Position != 2 {
		t.Errorf("reloaded search: got %+v", results)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store := New(t.TempDir(), &mockEmbedder{dims: 8})

	if _, err := store.Load(context.Background(), "ghost"); !errors.Is(err, ErrNoIndex) {
		t.Errorf("got %v, want ErrNoIndex", err)
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir(), &mockEmbedder{dims: 16})

	if _, err := store.Build(ctx, "u1", testChunks()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !store.Exists("u1") {
		t.Fatal("index file should exist after build")
	}

	if err := store.Delete("u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.Exists("u1") {
		t.Error("index file should be gone after delete")
	}

	// Deleting again is a no-op.
	if err := store.Delete("u1"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestStore_RebuildReplacesIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := New(dir, &mockEmbedder{dims: 32})

	if _, err := store.Build(ctx, "u1", testChunks()); err != nil {
		t.Fatalf("first Build: %v", err)
	}

	ix, err := store.Build(ctx, "u1", []chunker.Chunk{{Text: "replacement document", Index: 0}})
	if err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if ix.Count() != 1 {
		t.Errorf("Count after rebuild: got %d, want 1", ix.Count())
	}

	reloaded, err := store.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.Count() != 1 {
		t.Errorf("persisted index not replaced: count %d", reloaded.Count())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected a single index file, found %d entries", len(entries))
	}
}
