package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func indexedOrchestrator(t *testing.T, model *fakeLLM) *Orchestrator {
	t.Helper()
	o := newTestOrchestrator(t, model)
	ctx := context.Background()
	if _, err := o.SubmitDocument(ctx, "alice", "a.txt", []byte(sampleDoc)); err != nil {
		t.Fatalf("SubmitDocument() error = %v", err)
	}
	if _, err := o.BuildIndex(ctx, "alice"); err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	return o
}

func TestAskEmptyAnswerFallsBack(t *testing.T) {
	model := &fakeLLM{content: "  \n"}
	o := indexedOrchestrator(t, model)

	answer, err := o.Ask(context.Background(), "alice", "What about refunds?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer != NoAnswerResponse {
		t.Errorf("Ask() = %q, want fallback %q", answer, NoAnswerResponse)
	}
}

func TestAskStripsEndOfTurnMarker(t *testing.T) {
	model := &fakeLLM{content: "Within five business days.<|im_end|>"}
	o := indexedOrchestrator(t, model)

	answer, err := o.Ask(context.Background(), "alice", "How fast are refunds?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer != "Within five business days." {
		t.Errorf("Ask() = %q", answer)
	}
}

func TestAskValidation(t *testing.T) {
	o := indexedOrchestrator(t, &fakeLLM{content: "ok"})
	ctx := context.Background()

	if _, err := o.Ask(ctx, "alice", "   "); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Ask() with blank question error = %v, want ErrInvalidInput", err)
	}
	if _, err := o.Ask(ctx, "", "question?"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Ask() with blank user error = %v, want ErrInvalidInput", err)
	}
}

func TestAskProviderError(t *testing.T) {
	wantErr := errors.New("model unavailable")
	o := indexedOrchestrator(t, &fakeLLM{err: wantErr})

	_, err := o.Ask(context.Background(), "alice", "question?")
	if !errors.Is(err, wantErr) {
		t.Errorf("Ask() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestGenerateQuestions(t *testing.T) {
	model := &fakeLLM{content: "How do retries work?\n\nWhen are invoices sent?<|im_end|>\nWhat is the refund window?\n"}
	o := indexedOrchestrator(t, model)

	got, err := o.GenerateQuestions(context.Background(), "alice", sampleDoc, 5)
	if err != nil {
		t.Fatalf("GenerateQuestions() error = %v", err)
	}
	want := []string{
		"How do retries work?",
		"When are invoices sent?",
		"What is the refund window?",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GenerateQuestions() = %q, want %q", got, want)
	}
	if model.last.MaxTokens != 250 {
		t.Errorf("MaxTokens = %d, want 250", model.last.MaxTokens)
	}
	if model.last.Temperature != 0.5 {
		t.Errorf("Temperature = %v, want 0.5", model.last.Temperature)
	}
}

func TestGenerateQuestionsCapped(t *testing.T) {
	model := &fakeLLM{content: "q1\nq2\nq3\nq4\nq5\nq6\nq7"}
	o := indexedOrchestrator(t, model)

	got, err := o.GenerateQuestions(context.Background(), "alice", sampleDoc, 3)
	if err != nil {
		t.Fatalf("GenerateQuestions() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len(questions) = %d, want 3", len(got))
	}
}

func TestGenerateQuestionsWithoutIndex(t *testing.T) {
	o := newTestOrchestrator(t, &fakeLLM{})
	_, err := o.GenerateQuestions(context.Background(), "nobody", "text", 5)
	if !errors.Is(err, ErrNoIndex) {
		t.Errorf("GenerateQuestions() error = %v, want ErrNoIndex", err)
	}
}

func TestParseQuestions(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		n    int
		want []string
	}{
		{"empty", "", 5, nil},
		{"only markers", "<|im_end|>\n  \n", 5, nil},
		{"numbered lines kept verbatim", "1. First?\n2. Second?", 5, []string{"1. First?", "2. Second?"}},
		{"cap applies", "a\nb\nc", 2, []string{"a", "b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseQuestions(tc.raw, tc.n)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("parseQuestions(%q, %d) = %q, want %q", tc.raw, tc.n, got, tc.want)
			}
		})
	}
}
