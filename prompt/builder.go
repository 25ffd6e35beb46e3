package prompt

import (
	"fmt"
	"strings"

	"goc-doc-qa/llm"
	"goc-doc-qa/models"
)

// Instruction 모델의 역할을 지정하는 고정 문장
const Instruction = "You are an expert at answering questions based on a provided document."

// Delimiter 문서 본문 앞뒤에 들어가는 구분자
const Delimiter = "---"

// Build 문서와 질문으로 user 메시지 하나를 구성합니다
//
// 문서는 잘라내거나 이스케이프하지 않습니다. 모델의 컨텍스트 한도를 넘는 문서는
// 원격 API가 돌려주는 오류로만 드러납니다.
func Build(document, question string) (llm.Message, error) {
	if document == "" {
		return llm.Message{}, models.E(models.KindValidation, "", models.ErrNoDocument)
	}
	if strings.TrimSpace(question) == "" {
		return llm.Message{}, models.E(models.KindValidation, "", models.ErrNoQuestion)
	}

	content := fmt.Sprintf("%s\n\nHere is the document:\n\n%s\n\n%s\n\n%s\n\nBased on the document, please answer the following question: %s",
		Instruction, Delimiter, document, Delimiter, question)

	return llm.Message{Role: llm.RoleUser, Content: content}, nil
}

// Size 구성된 프롬프트의 바이트 길이
func Size(msgs []llm.Message) int {
	n := 0
	for _, m := range msgs {
		n += len(m.Content)
	}
	return n
}
