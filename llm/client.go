package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"

	"goc-doc-qa/models"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	RoleUser = "user"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Message role/content 형태의 채팅 메시지
type Message struct {
	Role    string
	Content string
}

// Stream 한 번만 순회할 수 있는 응답 조각 스트림
//
// Recv는 다음 조각을 도착 순서대로 돌려주고, 정상 종료 시 io.EOF를 반환합니다.
// 그 외의 오류는 *models.Error로 분류되어 있습니다.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Client 스트리밍 채팅 완성 요청을 여는 인터페이스
type Client interface {
	Stream(ctx context.Context, model string, msgs []Message) (Stream, error)
}

// New 설정된 provider에 맞는 클라이언트를 생성합니다
func New(ctx context.Context, provider, apiKey, baseURL string) (Client, error) {
	switch strings.ToLower(provider) {
	case "", ProviderOpenAI:
		return NewOpenAI(apiKey, baseURL), nil
	case ProviderGemini:
		g, err := NewGemini(ctx, apiKey)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, models.E(models.KindConfig, "provider", fmt.Errorf("지원하지 않는 provider: %q", provider))
	}
}

// Classify 원격 호출 오류를 network / remote 로 분류합니다
func Classify(op string, err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}
	if models.KindOf(err) != models.KindUnknown {
		return err
	}

	var (
		apiErr    *openai.APIError
		reqErr    *openai.RequestError
		googleErr *googleapi.Error
		urlErr    *url.Error
		netErr    net.Error
	)

	switch {
	case errors.As(err, &apiErr), errors.As(err, &reqErr), errors.As(err, &googleErr):
		return models.E(models.KindRemote, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.As(err, &urlErr), errors.As(err, &netErr):
		return models.E(models.KindNetwork, op, err)
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
			return models.E(models.KindNetwork, op, err)
		}
	}

	return models.E(models.KindRemote, op, err)
}
