package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultPath 기본 로그 파일 경로 (작업 디렉터리 기준)
const DefaultPath = "logs/docqa.log"

// New 파일로만 기록하는 JSON 로거를 생성합니다
// 표준 출력은 TUI가 사용하므로 로그를 쓰지 않습니다
func New(path string) (*zap.Logger, error) {
	if path == "" {
		path = DefaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("로그 디렉터리 생성 실패: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("로거 생성 실패: %w", err)
	}

	return log.Named("docqa"), nil
}

// Nop 아무것도 기록하지 않는 로거
func Nop() *zap.Logger {
	return zap.NewNop()
}
