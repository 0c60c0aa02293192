package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohsalah/askdoc/internal/llm"
)

// NoAnswerResponse is returned when the model produces no usable
// answer for a question.
const NoAnswerResponse = "Sorry, I couldn't find an answer to your question."

// endOfTurnMarker shows up in the raw output of some chat models and
// is stripped before results are returned.
const endOfTurnMarker = "<|im_end|>"

const answerSystemPrompt = "You answer questions about a document. " +
	"Use only the provided excerpts. If the excerpts do not contain " +
	"the answer, say you don't know."

// Ask answers a question about the user's indexed document. The top
// matching chunks are retrieved and handed to the model as context.
func (o *Orchestrator) Ask(ctx context.Context, userID, question string) (string, error) {
	if err := validateUserID(userID); err != nil {
		return "", err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: empty question", ErrInvalidInput)
	}

	ix, err := o.retriever(ctx, userID)
	if err != nil {
		return "", err
	}
	results, err := ix.Search(ctx, question, o.topK)
	if err != nil {
		return "", fmt.Errorf("searching index: %w", err)
	}

	excerpts := make([]string, 0, len(results))
	for _, r := range results {
		excerpts = append(excerpts, r.Text)
	}

	resp, err := o.llm.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: answerSystemPrompt},
			{Role: llm.RoleUser, Content: fmt.Sprintf("Excerpts:\n%s\n\nQuestion: %s",
				strings.Join(excerpts, "\n\n"), question)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("completing answer: %w", err)
	}

	answer := cleanModelOutput(resp.Content)
	if answer == "" {
		return NoAnswerResponse, nil
	}
	return answer, nil
}

// GenerateQuestions asks the model for up to n questions a reader
// might ask about the user's document. documentText seeds the
// retrieval so the questions stay grounded in the indexed content.
func (o *Orchestrator) GenerateQuestions(ctx context.Context, userID, documentText string, n int) ([]string, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = 5
	}

	ix, err := o.retriever(ctx, userID)
	if err != nil {
		return nil, err
	}
	seed := strings.TrimSpace(documentText)
	if seed == "" {
		seed = "the main topics of the document"
	}
	results, err := ix.Search(ctx, seed, o.topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	excerpts := make([]string, 0, len(results))
	for _, r := range results {
		excerpts = append(excerpts, r.Text)
	}

	resp, err := o.llm.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You suggest questions a reader could ask about a document. Respond with one question per line and nothing else."},
			{Role: llm.RoleUser, Content: fmt.Sprintf("Provide %d relevant questions from these document excerpts:\n%s",
				n, strings.Join(excerpts, "\n\n"))},
		},
		MaxTokens:   250,
		Temperature: 0.5,
	})
	if err != nil {
		return nil, fmt.Errorf("completing questions: %w", err)
	}
	return parseQuestions(resp.Content, n), nil
}

// cleanModelOutput strips end-of-turn markers and surrounding
// whitespace from raw model text.
func cleanModelOutput(s string) string {
	s = strings.ReplaceAll(s, endOfTurnMarker, "")
	return strings.TrimSpace(s)
}

// parseQuestions splits raw model output into at most n non-empty
// lines, each cleaned of markers and whitespace.
func parseQuestions(raw string, n int) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = cleanModelOutput(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}
