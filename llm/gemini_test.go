package llm

import (
	"errors"
	"io"
	"strings"
	"testing"

	"goc-doc-qa/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

type fakeIterator struct {
	responses []*genai.GenerateContentResponse
	err       error
	calls     int
}

func (f *fakeIterator) Next() (*genai.GenerateContentResponse, error) {
	f.calls++
	if len(f.responses) == 0 {
		if f.err != nil {
			return nil, f.err
		}
		return nil, iterator.Done
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	return r, nil
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, genai.Text(p))
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGeminiStreamDeliversFragmentsInOrder(t *testing.T) {
	it := &fakeIterator{responses: []*genai.GenerateContentResponse{
		textResponse("The "),
		{},
		textResponse("sky ", "is blue."),
	}}

	got := drain(t, &geminiStream{it: it})
	if strings.Join(got, "|") != "The |sky is blue." {
		t.Fatalf("unexpected fragments: %q", got)
	}
}

func TestGeminiStreamDoneStaysEOF(t *testing.T) {
	it := &fakeIterator{}
	s := &geminiStream{it: it}

	for i := 0; i < 2; i++ {
		if _, err := s.Recv(); err != io.EOF {
			t.Fatalf("expected io.EOF, got %v", err)
		}
	}
	if it.calls != 1 {
		t.Fatalf("iterator should not be advanced after Done, calls=%d", it.calls)
	}
}

func TestGeminiStreamErrorMidStream(t *testing.T) {
	it := &fakeIterator{
		responses: []*genai.GenerateContentResponse{textResponse("The ")},
		err:       &googleapi.Error{Code: 429, Message: "resource exhausted"},
	}
	s := &geminiStream{it: it}

	frag, err := s.Recv()
	if err != nil || frag != "The " {
		t.Fatalf("unexpected first fragment %q (err=%v)", frag, err)
	}

	_, err = s.Recv()
	if models.KindOf(err) != models.KindRemote {
		t.Fatalf("unexpected kind %v for %v", models.KindOf(err), err)
	}
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		t.Fatalf("expected wrapped googleapi error, got %v", err)
	}

	if _, err := s.Recv(); err != io.EOF {
		t.Fatalf("expected io.EOF after error, got %v", err)
	}
	if it.calls != 2 {
		t.Fatalf("iterator should not be advanced after an error, calls=%d", it.calls)
	}
}

func TestGeminiStreamRecvAfterClose(t *testing.T) {
	it := &fakeIterator{responses: []*genai.GenerateContentResponse{textResponse("unread")}}
	s := &geminiStream{it: it}

	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if _, err := s.Recv(); err != io.EOF {
		t.Fatalf("expected io.EOF after Close, got %v", err)
	}
	if it.calls != 0 {
		t.Fatalf("iterator should not be advanced after Close, calls=%d", it.calls)
	}
}

type blockingIterator struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingIterator) Next() (*genai.GenerateContentResponse, error) {
	close(b.entered)
	<-b.release
	return textResponse("late"), nil
}

func TestGeminiStreamCloseDuringRecv(t *testing.T) {
	it := &blockingIterator{entered: make(chan struct{}), release: make(chan struct{})}
	s := &geminiStream{it: it}

	done := make(chan error, 1)
	go func() {
		// 받은 조각은 버리고 그다음 Recv가 EOF 인지만 봅니다
		if _, err := s.Recv(); err != nil {
			done <- err
			return
		}
		_, err := s.Recv()
		done <- err
	}()

	<-it.entered
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	close(it.release)

	if err := <-done; err != io.EOF {
		t.Fatalf("expected io.EOF after Close, got %v", err)
	}
}
