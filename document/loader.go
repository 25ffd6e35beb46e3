package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"goc-doc-qa/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Supported 허용하는 파일 확장자
var Supported = []string{".txt", ".md"}

// Load 로컬 파일을 읽어서 Document로 변환합니다
// 크기 제한은 두지 않습니다 (파일 전체를 메모리로 읽음)
func Load(path string) (*models.Document, error) {
	if !IsSupported(path) {
		return nil, models.E(models.KindValidation, filepath.Base(path), models.ErrUnsupportedFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.E(models.KindDecode, "파일 읽기 실패", err)
	}

	doc, err := Decode(filepath.Base(path), data)
	if err != nil {
		return nil, err
	}
	doc.Meta["path"] = path

	return doc, nil
}

// Decode 바이트를 UTF-8 텍스트로 디코딩합니다
func Decode(name string, data []byte) (*models.Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		return nil, models.E(models.KindDecode, name, fmt.Errorf("UTF-8 텍스트가 아닙니다"))
	}

	return &models.Document{
		Name:    name,
		Source:  "file",
		Content: string(data),
		Meta: map[string]string{
			"bytes": fmt.Sprintf("%d", len(data)),
		},
	}, nil
}

// IsSupported 확장자가 .txt 또는 .md 인지 확인합니다
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range Supported {
		if ext == s {
			return true
		}
	}
	return false
}
