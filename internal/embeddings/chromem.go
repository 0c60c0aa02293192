package embeddings

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

// ToChromemFunc adapts an Embedder to the per-document callback
// chromem-go invokes while a user's index is built and queried. A
// missing vector is an error here: chromem would otherwise store the
// chunk without one and drop it from every search.
func ToChromemFunc(e Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vecs, err := e.Embed(ctx, []string{text})
		if err != nil {
			return nil, fmt.Errorf("embedding document: %w", err)
		}
		if len(vecs) != 1 {
			return nil, fmt.Errorf("embedder %s returned %d vectors for one input", e.Name(), len(vecs))
		}
		return vecs[0], nil
	}
}
