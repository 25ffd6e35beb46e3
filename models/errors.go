package models

import (
	"errors"
	"fmt"
)

// Kind 오류 분류
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindValidation
	KindDecode
	KindNetwork
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindValidation:
		return "validation"
	case KindDecode:
		return "decode"
	case KindNetwork:
		return "network"
	case KindRemote:
		return "remote"
	default:
		return "unknown"
	}
}

var (
	ErrMissingCredential = errors.New("API key not found")
	ErrNoDocument        = errors.New("no document loaded")
	ErrNoQuestion        = errors.New("question is empty")
	ErrUnsupportedFile   = errors.New("unsupported file type (only .txt and .md are accepted)")
)

// Error 분류가 붙은 오류
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E 오류에 분류를 붙입니다. err가 nil이면 nil을 반환합니다
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf 오류 체인에서 가장 바깥쪽 분류를 찾습니다
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
