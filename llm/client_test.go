package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"goc-doc-qa/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want models.Kind
	}{
		{"openai api error", &openai.APIError{HTTPStatusCode: 429, Message: "rate limit"}, models.KindRemote},
		{"openai request error", &openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")}, models.KindRemote},
		{"google api error", &googleapi.Error{Code: 400, Message: "context too long"}, models.KindRemote},
		{"canceled", fmt.Errorf("wrapped: %w", context.Canceled), models.KindNetwork},
		{"truncated", io.ErrUnexpectedEOF, models.KindNetwork},
		{"other", errors.New("boom"), models.KindRemote},
		{"already classified", models.E(models.KindDecode, "x", errors.New("bad")), models.KindDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := models.KindOf(Classify("op", tt.err)); got != tt.want {
				t.Fatalf("unexpected kind: got %v want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyPassesThroughEOF(t *testing.T) {
	if err := Classify("op", io.EOF); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if err := Classify("op", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), "anthropic", "key", "")
	if models.KindOf(err) != models.KindConfig {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestNewGeminiFailureReturnsNilClient(t *testing.T) {
	c, err := New(context.Background(), "gemini", "", "")
	if !errors.Is(err, models.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if c != nil {
		t.Fatalf("expected nil client on failure, got %T", c)
	}
}

func TestNewDefaultsToOpenAI(t *testing.T) {
	c, err := New(context.Background(), "", "key", "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := c.(*OpenAI); !ok {
		t.Fatalf("unexpected client type %T", c)
	}
}

func TestResponseTextJoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("The "), genai.Text("sky")}},
		}},
	}
	if got := responseText(resp); got != "The sky" {
		t.Fatalf("unexpected text: %q", got)
	}
	if got := responseText(&genai.GenerateContentResponse{}); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}
