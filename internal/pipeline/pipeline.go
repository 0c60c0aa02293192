// Package pipeline orchestrates the per-user document lifecycle:
// encrypted upload, text extraction, chunking, index building and
// retrieval-augmented question answering. All operations on the same
// user are serialized; operations on different users run concurrently.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mohsalah/askdoc/internal/cache"
	"github.com/mohsalah/askdoc/internal/chunker"
	"github.com/mohsalah/askdoc/internal/crypto"
	"github.com/mohsalah/askdoc/internal/db"
	"github.com/mohsalah/askdoc/internal/extract"
	"github.com/mohsalah/askdoc/internal/llm"
	"github.com/mohsalah/askdoc/internal/vectorstore"
)

// Messages returned to callers on success. They mirror the responses
// the HTTP surface exposes, so the CLI and server stay consistent.
const (
	MsgUploaded  = "File uploaded & text extracted"
	MsgProcessed = "File has been processed successfully"
	MsgFlushed   = "User data flushed successfully"
)

// Options carries the dependencies of an Orchestrator. Zero-value
// fields fall back to sensible defaults where one exists.
type Options struct {
	DataDir string

	Crypto   *crypto.Store
	PDF      extract.Extractor
	Plain    extract.Extractor
	Splitter *chunker.Splitter
	Cache    *cache.Cache
	Vectors  *vectorstore.Store
	Registry *db.DB
	LLM      llm.Provider

	TopK            int
	SplitsTTL       time.Duration
	RetrieverTTL    time.Duration
	AllowedPatterns []string
}

// Orchestrator wires the pipeline stages together and owns the
// per-user locking discipline.
type Orchestrator struct {
	dataDir  string
	crypto   *crypto.Store
	pdf      extract.Extractor
	plain    extract.Extractor
	splitter *chunker.Splitter
	cache    *cache.Cache
	vectors  *vectorstore.Store
	registry *db.DB
	llm      llm.Provider

	topK         int
	splitsTTL    time.Duration
	retrieverTTL time.Duration
	patterns     []string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an Orchestrator from opts.
func New(opts Options) *Orchestrator {
	if opts.Plain == nil {
		opts.Plain = extract.PlainText{}
	}
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if len(opts.AllowedPatterns) == 0 {
		opts.AllowedPatterns = []string{"*.pdf", "*.txt"}
	}
	return &Orchestrator{
		dataDir:      opts.DataDir,
		crypto:       opts.Crypto,
		pdf:          opts.PDF,
		plain:        opts.Plain,
		splitter:     opts.Splitter,
		cache:        opts.Cache,
		vectors:      opts.Vectors,
		registry:     opts.Registry,
		llm:          opts.LLM,
		topK:         opts.TopK,
		splitsTTL:    opts.SplitsTTL,
		retrieverTTL: opts.RetrieverTTL,
		patterns:     opts.AllowedPatterns,
		locks:        make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing operations for userID,
// creating it on first use.
func (o *Orchestrator) userLock(userID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		o.locks[userID] = l
	}
	return l
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidInput)
	}
	if strings.ContainsAny(userID, `/\`) || strings.Contains(userID, "..") {
		return fmt.Errorf("%w: user id must not contain path elements", ErrInvalidInput)
	}
	return nil
}

func (o *Orchestrator) allowed(filename string) bool {
	name := strings.ToLower(filepath.Base(filename))
	for _, pat := range o.patterns {
		if ok, err := doublestar.Match(pat, name); err == nil && ok {
			return true
		}
	}
	return false
}

func (o *Orchestrator) userDir(userID string) string {
	return filepath.Join(o.dataDir, userID)
}

func (o *Orchestrator) splitsPath(userID string) string {
	return filepath.Join(o.userDir(userID), "splits_"+userID+".json")
}

func (o *Orchestrator) extractorFor(filename string) extract.Extractor {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") && o.pdf != nil {
		return o.pdf
	}
	return o.plain
}

// SubmitDocument validates, encrypts and stores an upload for userID,
// then extracts its text, chunks it and caches the chunk set. Any
// previously derived state for the user is discarded first, so a new
// upload always starts a fresh lifecycle.
func (o *Orchestrator) SubmitDocument(ctx context.Context, userID, filename string, data []byte) (string, error) {
	if err := validateUserID(userID); err != nil {
		return "", err
	}
	filename = filepath.Base(filename)
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return "", fmt.Errorf("%w: missing filename", ErrInvalidInput)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	if !o.allowed(filename) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filename)
	}

	l := o.userLock(userID)
	l.Lock()
	defer l.Unlock()

	// A new upload invalidates everything derived from the old one.
	o.cache.DeleteUser(userID)

	dir := o.userDir(userID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating user directory: %w", err)
	}
	blob, err := o.crypto.Encrypt(data)
	if err != nil {
		return "", fmt.Errorf("encrypting upload: %w", err)
	}
	encPath := filepath.Join(dir, filename+".enc")
	if err := os.WriteFile(encPath, blob, 0o600); err != nil {
		return "", fmt.Errorf("writing encrypted upload: %w", err)
	}

	// Read the persisted blob back so disk stays the source of truth
	// for everything downstream.
	stored, err := os.ReadFile(encPath)
	if err != nil {
		return "", fmt.Errorf("reading encrypted upload: %w", err)
	}
	plain, err := o.crypto.Decrypt(stored)
	if err != nil {
		return "", fmt.Errorf("decrypting upload: %w", err)
	}

	text, err := o.extractorFor(filename).Extract(ctx, plain)
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", filename, err)
	}

	chunks := o.splitter.Split(text)
	if err := o.persistChunks(userID, chunks); err != nil {
		return "", err
	}
	o.cache.Set(cache.SplitsKey(userID), chunks, o.splitsTTL)

	if o.registry != nil {
		if err := o.registry.RecordUpload(ctx, userID, filename); err != nil {
			return "", fmt.Errorf("recording upload: %w", err)
		}
	}
	log.Printf("user %s uploaded %s (%d chunks)", userID, filename, len(chunks))
	return MsgUploaded, nil
}

func (o *Orchestrator) persistChunks(userID string, chunks []chunker.Chunk) error {
	buf, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("encoding chunks: %w", err)
	}
	if err := os.WriteFile(o.splitsPath(userID), buf, 0o600); err != nil {
		return fmt.Errorf("writing chunks: %w", err)
	}
	return nil
}

// loadChunks returns the user's chunk set, preferring the cache and
// falling back to the persisted copy. A disk hit repopulates the cache.
func (o *Orchestrator) loadChunks(userID string) ([]chunker.Chunk, error) {
	if v, ok := o.cache.Get(cache.SplitsKey(userID)); ok {
		if chunks, ok := v.([]chunker.Chunk); ok {
			return chunks, nil
		}
	}
	buf, err := os.ReadFile(o.splitsPath(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("reading chunks: %w", err)
	}
	var chunks []chunker.Chunk
	if err := json.Unmarshal(buf, &chunks); err != nil {
		return nil, fmt.Errorf("decoding chunks: %w", err)
	}
	o.cache.Set(cache.SplitsKey(userID), chunks, o.splitsTTL)
	return chunks, nil
}

// BuildIndex embeds the user's chunk set into a fresh vector index,
// persists it and caches the live handle for querying.
func (o *Orchestrator) BuildIndex(ctx context.Context, userID string) (string, error) {
	if err := validateUserID(userID); err != nil {
		return "", err
	}

	l := o.userLock(userID)
	l.Lock()
	defer l.Unlock()

	chunks, err := o.loadChunks(userID)
	if err != nil {
		return "", err
	}
	ix, err := o.vectors.Build(ctx, userID, chunks)
	if err != nil {
		return "", fmt.Errorf("building index for %s: %w", userID, err)
	}
	o.cache.Set(cache.RetrieverKey(userID), ix, o.retrieverTTL)

	if o.registry != nil {
		ok, err := o.registry.MarkIndexed(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("marking indexed: %w", err)
		}
		if !ok {
			log.Printf("user %s indexed without a registry row", userID)
		}
	}
	log.Printf("user %s index built over %d chunks", userID, len(chunks))
	return MsgProcessed, nil
}

// retriever returns the user's index handle, preferring the cached one
// and reloading from disk on a miss.
func (o *Orchestrator) retriever(ctx context.Context, userID string) (*vectorstore.Index, error) {
	if v, ok := o.cache.Get(cache.RetrieverKey(userID)); ok {
		if ix, ok := v.(*vectorstore.Index); ok {
			return ix, nil
		}
	}
	ix, err := o.vectors.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, vectorstore.ErrNoIndex) {
			return nil, ErrNoIndex
		}
		return nil, fmt.Errorf("loading index for %s: %w", userID, err)
	}
	o.cache.Set(cache.RetrieverKey(userID), ix, o.retrieverTTL)
	return ix, nil
}

// Flush removes every artifact held for userID: cached state, the
// encrypted upload directory, the persisted index and the registry
// row. Flushing an unknown user succeeds and is a no-op.
func (o *Orchestrator) Flush(ctx context.Context, userID string) (string, error) {
	if err := validateUserID(userID); err != nil {
		return "", err
	}

	l := o.userLock(userID)
	l.Lock()
	defer l.Unlock()

	o.cache.DeleteUser(userID)
	if err := os.RemoveAll(o.userDir(userID)); err != nil {
		return "", fmt.Errorf("removing uploads for %s: %w", userID, err)
	}
	if err := o.vectors.Delete(userID); err != nil {
		return "", fmt.Errorf("removing index for %s: %w", userID, err)
	}
	if o.registry != nil {
		if err := o.registry.Delete(ctx, userID); err != nil {
			return "", fmt.Errorf("removing registry row: %w", err)
		}
	}
	log.Printf("user %s flushed", userID)
	return MsgFlushed, nil
}
