package llm

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"

	"goc-doc-qa/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Gemini Gemini API의 스트리밍 생성을 사용하는 클라이언트
type Gemini struct {
	client *genai.Client
}

// NewGemini 새로운 Gemini 클라이언트를 생성합니다
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, models.E(models.KindConfig, "gemini", models.ErrMissingCredential)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, models.E(models.KindConfig, "gemini", err)
	}

	return &Gemini{client: client}, nil
}

// Stream 메시지 본문을 하나의 프롬프트로 보내고 응답 스트림을 반환합니다
func (g *Gemini) Stream(ctx context.Context, model string, msgs []Message) (Stream, error) {
	parts := make([]genai.Part, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, genai.Text(m.Content))
	}

	return &geminiStream{it: g.client.GenerativeModel(model).GenerateContentStream(ctx, parts...)}, nil
}

// Close 클라이언트를 닫습니다
func (g *Gemini) Close() error {
	return g.client.Close()
}

// responseIterator *genai.GenerateContentResponseIterator 가 구현합니다
type responseIterator interface {
	Next() (*genai.GenerateContentResponse, error)
}

// geminiStream Close는 Recv와 다른 고루틴에서 불릴 수 있습니다
type geminiStream struct {
	it   responseIterator
	done atomic.Bool
}

func (s *geminiStream) Recv() (string, error) {
	for {
		if s.done.Load() {
			return "", io.EOF
		}

		resp, err := s.it.Next()
		if errors.Is(err, iterator.Done) {
			s.done.Store(true)
			return "", io.EOF
		}
		if err != nil {
			s.done.Store(true)
			return "", Classify("gemini stream", err)
		}

		if text := responseText(resp); text != "" {
			return text, nil
		}
	}
}

// Close 이터레이터는 별도로 닫을 자원이 없습니다
func (s *geminiStream) Close() error {
	s.done.Store(true)
	return nil
}

// responseText 첫 번째 후보의 텍스트 파트를 이어붙입니다
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
