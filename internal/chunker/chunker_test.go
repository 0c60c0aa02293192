package chunker

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"
)

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

func TestSplit_EmptyInput(t *testing.T) {
	s := New(1000, 0)
	for _, input := range []string{"", "   ", "\n\n\t  \n"} {
		if got := s.Split(input); len(got) != 0 {
			t.Errorf("Split(%q): got %d chunks, want 0", input, len(got))
		}
	}
}

func TestSplit_SingleSmallChunk(t *testing.T) {
	s := New(1000, 0)
	chunks := s.Split("Hello world. This is a test.")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != "Hello world. This is a test." {
		t.Errorf("chunk text: got %q", chunks[0].Text)
	}
	if chunks[0].Index != 0 {
		t.Errorf("chunk index: got %d, want 0", chunks[0].Index)
	}
}

func TestSplit_ParagraphBoundary(t *testing.T) {
	paraA := strings.Repeat("a", 600)
	paraB := strings.Repeat("b", 600)
	s := New(1000, 0)

	chunks := s.Split(paraA + "\n\n" + paraB)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].Text != paraA {
		t.Errorf("chunk 0: got %d bytes ending %q", len(chunks[0].Text), chunks[0].Text[len(chunks[0].Text)-5:])
	}
	if chunks[1].Text != paraB {
		t.Errorf("chunk 1: got %d bytes", len(chunks[1].Text))
	}
}

func TestSplit_LengthBound(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString("The quick brown fox jumps over the lazy dog. ")
		if i%7 == 0 {
			sb.WriteString("\n\n")
		}
	}
	text := sb.String()

	for _, size := range []int{50, 100, 1000} {
		s := New(size, 0)
		for _, c := range s.Split(text) {
			if len(c.Text) > size {
				t.Errorf("size %d: chunk of %d bytes exceeds bound", size, len(c.Text))
			}
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("Sentence one. Sentence two is longer. ", 100)
	s := New(120, 20)

	first := texts(s.Split(text))
	for run := 0; run < 3; run++ {
		again := texts(s.Split(text))
		if len(again) != len(first) {
			t.Fatalf("run %d: got %d chunks, want %d", run, len(again), len(first))
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("run %d: chunk %d differs", run, i)
			}
		}
	}
}

func TestSplit_ReconstructionNoOverlap(t *testing.T) {
	text := "First paragraph with several words.\n\nSecond paragraph. It has two sentences.\n\n" +
		strings.Repeat("Filler sentence to force multiple chunks. ", 20)
	s := New(80, 0)

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	joined := strings.Join(texts(chunks), "")
	if stripSpace(joined) != stripSpace(text) {
		t.Error("reassembled chunks do not reproduce the original content")
	}
}

func TestSplit_Overlap(t *testing.T) {
	s := New(10, 5)
	chunks := texts(s.Split("aaaa bbbb cccc dddd eeee"))

	want := []string{"aaaa bbbb", "bbbb cccc", "cccc dddd", "dddd eeee"}
	if len(chunks) != len(want) {
		t.Fatalf("got %v, want %v", chunks, want)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: got %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestSplit_HardCut(t *testing.T) {
	// No separators at all: one long token.
	text := strings.Repeat("x", 2500)
	s := New(1000, 0)

	chunks := s.Split(text)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	total := 0
	for _, c := range chunks {
		if len(c.Text) > 1000 {
			t.Errorf("chunk exceeds bound: %d", len(c.Text))
		}
		total += len(c.Text)
	}
	if total != 2500 {
		t.Errorf("total chars: got %d, want 2500", total)
	}
}

func TestSplit_HardCutMultiByte(t *testing.T) {
	// One long run of multi-byte runes, no separators: cuts must land on
	// rune boundaries, never inside one.
	text := strings.Repeat("世", 2500)
	s := New(1000, 0)

	chunks := s.Split(text)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	total := 0
	for i, c := range chunks {
		if !utf8.ValidString(c.Text) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
		n := utf8.RuneCountInString(c.Text)
		if n > 1000 {
			t.Errorf("chunk %d exceeds bound: %d runes", i, n)
		}
		total += n
	}
	if total != 2500 {
		t.Errorf("total runes: got %d, want 2500", total)
	}
	if joined := strings.Join(texts(chunks), ""); joined != text {
		t.Error("reassembled chunks do not reproduce the original content")
	}
}

func TestSplit_MultiByteSurvivesJSONRoundTrip(t *testing.T) {
	text := strings.Repeat("世界", 400) + "\n\n" + strings.Repeat("🙂", 300)
	s := New(250, 0)

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	buf, err := json.Marshal(chunks)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back []Chunk
	if err := json.Unmarshal(buf, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != len(chunks) {
		t.Fatalf("got %d chunks after round trip, want %d", len(back), len(chunks))
	}
	for i := range chunks {
		if back[i] != chunks[i] {
			t.Errorf("chunk %d differs after JSON round trip", i)
		}
	}
}

func TestNew_ClampsArguments(t *testing.T) {
	s := New(0, -3)
	if s.chunkSize != DefaultChunkSize || s.overlap != DefaultOverlap {
		t.Errorf("got size=%d overlap=%d", s.chunkSize, s.overlap)
	}

	s = New(100, 100)
	if s.overlap >= s.chunkSize {
		t.Errorf("overlap %d not clamped below chunk size %d", s.overlap, s.chunkSize)
	}
}
