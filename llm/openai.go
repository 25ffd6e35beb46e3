package llm

import (
	"context"
	"errors"
	"io"

	"github.com/sashabaranov/go-openai"
)

// OpenAI OpenAI 호환 chat completions 엔드포인트를 사용하는 클라이언트
type OpenAI struct {
	client *openai.Client
}

// NewOpenAI 새로운 OpenAI 클라이언트를 생성합니다
// baseURL이 비어있으면 api.openai.com을 사용합니다
func NewOpenAI(apiKey, baseURL string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAI{client: openai.NewClientWithConfig(cfg)}
}

// Stream stream=true로 요청을 보내고 응답 스트림을 반환합니다
func (o *OpenAI) Stream(ctx context.Context, model string, msgs []Message) (Stream, error) {
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(msgs)),
		Stream:   true,
	}
	for _, m := range msgs {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	stream, err := o.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, Classify("openai", err)
	}

	return &openAIStream{stream: stream}, nil
}

type openAIStream struct {
	stream *openai.ChatCompletionStream
}

// Recv role만 담긴 첫 조각처럼 내용이 빈 조각은 건너뜁니다
func (s *openAIStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", Classify("openai stream", err)
		}

		var text string
		for _, choice := range resp.Choices {
			text += choice.Delta.Content
		}
		if text != "" {
			return text, nil
		}
	}
}

func (s *openAIStream) Close() error {
	return s.stream.Close()
}
