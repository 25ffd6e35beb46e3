package qa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"goc-doc-qa/llm"
	"goc-doc-qa/models"
	"goc-doc-qa/prompt"

	"go.uber.org/zap"
)

// Answerer 문서와 질문으로 스트리밍 답변을 요청하는 구조체
type Answerer struct {
	client llm.Client
	model  string
	log    *zap.Logger
}

// New 새로운 Answerer를 생성합니다
func New(client llm.Client, model string, log *zap.Logger) *Answerer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Answerer{
		client: client,
		model:  model,
		log:    log,
	}
}

// Ask 문서와 질문을 검증하고 새 스트리밍 요청을 엽니다
// 캐시는 없으며 호출할 때마다 원격 요청이 하나씩 나갑니다
func (a *Answerer) Ask(ctx context.Context, doc *models.Document, question string) (llm.Stream, error) {
	if doc.Empty() {
		return nil, models.E(models.KindValidation, "", models.ErrNoDocument)
	}

	msg, err := prompt.Build(doc.Content, question)
	if err != nil {
		return nil, err
	}
	msgs := []llm.Message{msg}

	a.log.Info("completion request",
		zap.String("model", a.model),
		zap.String("document", doc.Name),
		zap.String("source", doc.Source),
		zap.Int("prompt_bytes", prompt.Size(msgs)),
	)

	stream, err := a.client.Stream(ctx, a.model, msgs)
	if err != nil {
		a.log.Error("completion request failed", zap.Error(err), zap.Stringer("kind", models.KindOf(err)))
		return nil, fmt.Errorf("답변 생성 실패: %w", err)
	}

	return stream, nil
}

// Consume 스트림을 끝까지 읽으면서 조각이 도착할 때마다 누적 텍스트로 emit을 호출합니다
// 오류가 나면 그때까지 받은 텍스트와 함께 오류를 반환합니다
func Consume(stream llm.Stream, emit func(partial string)) (string, error) {
	defer stream.Close()

	var b strings.Builder
	for {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return b.String(), err
		}

		b.WriteString(frag)
		if emit != nil {
			emit(b.String())
		}
	}
}

// WriteTo 조각이 도착하는 즉시 w에 씁니다
func WriteTo(stream llm.Stream, w io.Writer) (string, error) {
	written := 0
	var werr error
	full, err := Consume(stream, func(partial string) {
		if werr != nil {
			return
		}
		_, werr = io.WriteString(w, partial[written:])
		written = len(partial)
	})
	if err != nil {
		return full, err
	}
	return full, werr
}
