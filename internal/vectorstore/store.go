// Package vectorstore builds and persists per-user similarity indexes
// over embedded document chunks, backed by chromem-go.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/mohsalah/askdoc/internal/chunker"
	"github.com/mohsalah/askdoc/internal/embeddings"
)

const collectionName = "document"

var (
	// ErrNoChunks is returned when a build is attempted on an empty
	// chunk set.
	ErrNoChunks = errors.New("no chunks to index")

	// ErrNoIndex is returned when no persisted index exists for a user.
	ErrNoIndex = errors.New("no index found for user")
)

// Result pairs a retrieved chunk with its original position and
// similarity score.
type Result struct {
	Text       string
	Position   int
	Similarity float32
}

// Index is an opaque handle to one user's searchable index. At most one
// handle per user exists at a time; a rebuild replaces it.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	userID     string
}

// UserID returns the user the index is bound to.
func (ix *Index) UserID() string { return ix.userID }

// Count returns the number of indexed chunks.
func (ix *Index) Count() int { return ix.collection.Count() }

// Search returns the top-k chunks most similar to the query text.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 {
		k = 5
	}

	// chromem-go requires nResults <= collection size.
	count := ix.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := ix.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]Result, len(results))
	for i, r := range results {
		pos, _ := strconv.Atoi(r.Metadata["position"])
		out[i] = Result{
			Text:       r.Content,
			Position:   pos,
			Similarity: r.Similarity,
		}
	}
	return out, nil
}

// Store builds, persists, and loads per-user indexes under a directory.
// Index files are named vectorstore_{userId}.gob.gz.
type Store struct {
	dir       string
	embedder  embeddings.Embedder
	embedFunc chromem.EmbeddingFunc
}

// New creates a Store persisting under dir.
func New(dir string, embedder embeddings.Embedder) *Store {
	return &Store{
		dir:       dir,
		embedder:  embedder,
		embedFunc: embeddings.ToChromemFunc(embedder),
	}
}

func (s *Store) path(userID string) string {
	return filepath.Join(s.dir, "vectorstore_"+userID+".gob.gz")
}

// Build embeds the chunk set and constructs a fresh index for the user,
// persisting it on success. Nothing is persisted if embedding or
// construction fails.
func (s *Store) Build(ctx context.Context, userID string, chunks []chunker.Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, s.embedFunc)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:       fmt.Sprintf("chunk-%06d", c.Index),
			Content:  c.Text,
			Metadata: map[string]string{"position": strconv.Itoa(c.Index)},
		}
	}

	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating vectorstore directory: %w", err)
	}
	if err := db.ExportToFile(s.path(userID), true, ""); err != nil {
		return nil, fmt.Errorf("persisting index: %w", err)
	}

	return &Index{db: db, collection: col, userID: userID}, nil
}

// Load restores a user's persisted index. Returns ErrNoIndex if the user
// has none.
func (s *Store) Load(ctx context.Context, userID string) (*Index, error) {
	path := s.path(userID)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoIndex
		}
		return nil, fmt.Errorf("checking index file: %w", err)
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(path, ""); err != nil {
		return nil, fmt.Errorf("importing index: %w", err)
	}

	col := db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return nil, fmt.Errorf("collection %q not found after import", collectionName)
	}
	return &Index{db: db, collection: col, userID: userID}, nil
}

// Exists reports whether a persisted index file exists for the user.
func (s *Store) Exists(userID string) bool {
	_, err := os.Stat(s.path(userID))
	return err == nil
}

// Delete removes the user's persisted index file. Removing an absent
// index is a no-op.
func (s *Store) Delete(userID string) error {
	if err := os.Remove(s.path(userID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing index file: %w", err)
	}
	return nil
}
