package models

// Document 질문의 근거가 되는 문서 (요청 단위로만 존재하며 저장하지 않습니다)
type Document struct {
	Name    string            // 파일 이름 또는 Notion 페이지 제목
	Source  string            // "file" 또는 "notion"
	Content string            // 디코딩된 본문 텍스트 (가공하지 않음)
	Meta    map[string]string // 메타데이터 (경로, 페이지 ID, URL 등)
}

// Empty 본문이 비어있는지 확인합니다
func (d *Document) Empty() bool {
	return d == nil || d.Content == ""
}
