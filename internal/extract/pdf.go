package extract

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// ErrPDFToolNotFound is returned when the pdftotext binary is missing.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CheckAvailable verifies the pdftotext tool can be found.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns guidance for installing the PDF tooling.
func InstallInstructions() string {
	return `PDF extraction requires poppler (pdftotext, pdftoppm) and tesseract:
  macOS:  brew install poppler tesseract
  Debian: apt install poppler-utils tesseract-ocr`
}

// Rasterizer renders each page of a PDF file to an image, returning the
// image paths in page order.
type Rasterizer interface {
	RasterizePages(ctx context.Context, pdfPath, outDir string) ([]string, error)
}

// Recognizer extracts text from a single page image.
type Recognizer interface {
	RecognizeText(ctx context.Context, imagePath string) (string, error)
}

// PDF extracts text from PDF byte streams.
type PDF struct {
	runner     CommandRunner
	rasterizer Rasterizer
	recognizer Recognizer
	ocrEnabled bool
}

// NewPDF creates a PDF extractor using the system pdftotext, pdftoppm,
// and tesseract tools. The optical pass can be disabled for deployments
// without OCR tooling.
func NewPDF(ocrEnabled bool) *PDF {
	runner := execRunner{}
	return &PDF{
		runner:     runner,
		rasterizer: &popplerRasterizer{runner: runner},
		recognizer: &tesseractRecognizer{runner: runner},
		ocrEnabled: ocrEnabled,
	}
}

// NewPDFWithTools creates a PDF extractor with injected tool
// implementations, for tests.
func NewPDFWithTools(runner CommandRunner, rasterizer Rasterizer, recognizer Recognizer, ocrEnabled bool) *PDF {
	return &PDF{
		runner:     runner,
		rasterizer: rasterizer,
		recognizer: recognizer,
		ocrEnabled: ocrEnabled,
	}
}

// Extract runs the native pass and, when enabled, the optical pass.
// Output is native text followed by optical text in page order. Both
// passes empty yields an empty string.
func (e *PDF) Extract(ctx context.Context, data []byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "askdoc-pdf-")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "document.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return "", fmt.Errorf("writing temp pdf: %w", err)
	}

	native, err := e.runner.Run(ctx, "pdftotext", pdfPath, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}

	var optical string
	if e.ocrEnabled {
		optical, err = e.opticalPass(ctx, pdfPath, tmpDir)
		if err != nil {
			return "", err
		}
	}

	return string(native) + optical, nil
}

// opticalPass rasterizes the document and recognizes each page.
// Recognition failures on individual pages are logged and skipped so one
// bad page does not abort the document; a rasterization failure aborts
// the pass because no pages can be recovered at all.
func (e *PDF) opticalPass(ctx context.Context, pdfPath, tmpDir string) (string, error) {
	pages, err := e.rasterizer.RasterizePages(ctx, pdfPath, tmpDir)
	if err != nil {
		return "", fmt.Errorf("rasterizing pages: %w", err)
	}

	var sb strings.Builder
	for _, page := range pages {
		text, err := e.recognizer.RecognizeText(ctx, page)
		if err != nil {
			log.Printf("extract: ocr failed on %s, skipping page: %v", filepath.Base(page), err)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// popplerRasterizer shells out to pdftoppm.
type popplerRasterizer struct {
	runner CommandRunner
}

func (r *popplerRasterizer) RasterizePages(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	prefix := filepath.Join(outDir, "page")
	if _, err := r.runner.Run(ctx, "pdftoppm", "-png", "-r", "150", pdfPath, prefix); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w", err)
	}

	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("listing page images: %w", err)
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(pages)
	return pages, nil
}

// tesseractRecognizer shells out to tesseract.
type tesseractRecognizer struct {
	runner CommandRunner
}

func (r *tesseractRecognizer) RecognizeText(ctx context.Context, imagePath string) (string, error) {
	out, err := r.runner.Run(ctx, "tesseract", imagePath, "stdout")
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}
