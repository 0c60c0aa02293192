// Package extract converts raw document byte streams into plain text.
//
// PDF documents go through two passes: structural text extraction via
// pdftotext, then an optical pass that rasterizes pages and runs text
// recognition on each. The final text is the native pass followed by the
// optical pass, never merged or deduplicated.
package extract

import (
	"context"
	"os/exec"
)

// Extractor converts a decrypted document byte stream into plain text.
// An empty result means "no content", not an error.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// CommandRunner executes an external tool and returns its stdout. It
// exists so extraction tools can be mocked in tests.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PlainText handles text documents by passing their bytes through.
type PlainText struct{}

func (PlainText) Extract(_ context.Context, data []byte) (string, error) {
	return string(data), nil
}
