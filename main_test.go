package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goc-doc-qa/llm"
	"goc-doc-qa/logger"
	"goc-doc-qa/models"
	"goc-doc-qa/qa"
)

type sliceStream struct {
	fragments []string
}

func (s *sliceStream) Recv() (string, error) {
	if len(s.fragments) == 0 {
		return "", io.EOF
	}
	f := s.fragments[0]
	s.fragments = s.fragments[1:]
	return f, nil
}

func (s *sliceStream) Close() error { return nil }

type countingClient struct {
	calls int
}

func (c *countingClient) Stream(_ context.Context, _ string, _ []llm.Message) (llm.Stream, error) {
	c.calls++
	return &sliceStream{fragments: []string{"The ", "sky ", "is blue."}}, nil
}

func writeDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sky.md")
	if err := os.WriteFile(path, []byte("The sky is blue."), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestRunOnceStreamsAnswer(t *testing.T) {
	client := &countingClient{}
	answerer := qa.New(client, "gpt-3.5-turbo", logger.Nop())
	opener := newOpener(&Config{}, logger.Nop())

	var out strings.Builder
	if err := runOnce(context.Background(), answerer, opener, writeDoc(t), "What color is the sky?", &out); err != nil {
		t.Fatalf("runOnce returned error: %v", err)
	}
	if out.String() != "The sky is blue.\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 remote call, got %d", client.calls)
	}
}

func TestRunOnceWithoutDocumentMakesNoCall(t *testing.T) {
	client := &countingClient{}
	answerer := qa.New(client, "gpt-3.5-turbo", logger.Nop())
	opener := newOpener(&Config{}, logger.Nop())

	err := runOnce(context.Background(), answerer, opener, "", "What color is the sky?", io.Discard)
	if !errors.Is(err, models.ErrNoDocument) {
		t.Fatalf("expected ErrNoDocument, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("expected no remote calls, got %d", client.calls)
	}
}

func TestOpenerNotionRequiresKey(t *testing.T) {
	opener := newOpener(&Config{}, logger.Nop())
	_, err := opener(context.Background(), "notion:0123456789abcdef")
	if models.KindOf(err) != models.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOpenerRejectsUnsupportedFile(t *testing.T) {
	opener := newOpener(&Config{}, logger.Nop())
	_, err := opener(context.Background(), "slides.pptx")
	if !errors.Is(err, models.ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile, got %v", err)
	}
}
