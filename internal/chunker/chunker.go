// Package chunker splits extracted document text into bounded, overlapping
// segments suitable for embedding.
package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 1000

	// DefaultOverlap is the number of characters shared between
	// consecutive chunks.
	DefaultOverlap = 0
)

// separators are tried in order: paragraph, line, sentence, word, and
// finally a hard character cut.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunk is one segment of a document. Index preserves original order so
// context can be reconstructed downstream.
type Chunk struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// Splitter produces deterministic chunk sequences: the same text, chunk
// size, and overlap always yield the same result.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New creates a Splitter. Non-positive sizes fall back to defaults; the
// overlap is clamped below the chunk size.
func New(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split chunks text. Empty or whitespace-only input yields an empty
// sequence, not an error.
func (s *Splitter) Split(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	parts := s.split(text, separators)
	chunks := make([]Chunk, 0, len(parts))
	for _, p := range parts {
		chunks = append(chunks, Chunk{Text: p, Index: len(chunks)})
	}
	return chunks
}

// split breaks text at the coarsest separator present, recursing into
// oversized pieces with the finer separators, then merges pieces back into
// chunks no longer than chunkSize.
func (s *Splitter) split(text string, seps []string) []string {
	if utf8.RuneCountInString(text) <= s.chunkSize {
		t := strings.TrimSpace(text)
		if t == "" {
			return nil
		}
		return []string{t}
	}

	sep := ""
	var rest []string
	for i, sp := range seps {
		if sp == "" {
			break
		}
		if strings.Contains(text, sp) {
			sep, rest = sp, seps[i+1:]
			break
		}
	}
	if sep == "" {
		return s.hardCut(text)
	}

	// SplitAfter keeps each separator attached to its piece, so no
	// characters are lost when pieces are recombined.
	var pieces []string
	for _, part := range strings.SplitAfter(text, sep) {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) > s.chunkSize {
			pieces = append(pieces, s.split(part, rest)...)
		} else {
			pieces = append(pieces, part)
		}
	}
	return s.merge(pieces)
}

// merge greedily packs pieces into chunks of at most chunkSize runes,
// carrying the configured overlap of trailing pieces into the next chunk.
func (s *Splitter) merge(pieces []string) []string {
	var out []string
	var window []string
	winLen := 0
	fresh := 0

	flush := func() {
		if fresh == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(window, ""))
		if joined != "" {
			out = append(out, joined)
		}
		fresh = 0

		if s.overlap == 0 {
			window = nil
			winLen = 0
			return
		}
		tail := 0
		tl := 0
		for i := len(window) - 1; i >= 0; i-- {
			n := utf8.RuneCountInString(window[i])
			if tl+n > s.overlap {
				break
			}
			tl += n
			tail++
		}
		window = append([]string(nil), window[len(window)-tail:]...)
		winLen = tl
	}

	for _, p := range pieces {
		n := utf8.RuneCountInString(p)
		if winLen > 0 && winLen+n > s.chunkSize {
			flush()
			// The retained overlap may still leave no room.
			if winLen > 0 && winLen+n > s.chunkSize {
				window = nil
				winLen = 0
			}
		}
		window = append(window, p)
		winLen += n
		fresh++
	}
	flush()
	return out
}

// hardCut falls back to fixed-width slicing when no structural boundary
// exists. Slicing is rune-indexed so multi-byte characters are never
// split, which would leak invalid UTF-8 into chunks.
func (s *Splitter) hardCut(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.overlap
	var out []string
	for i := 0; i < len(runes); i += step {
		end := i + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		piece := strings.TrimSpace(string(runes[i:end]))
		if piece != "" {
			out = append(out, piece)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
