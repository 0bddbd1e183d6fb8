package service

import (
	"github.com/pkg/errors"
)

// Kind 业务错误类别
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstream
)

// Error 业务错误，Message 可直接返回给调用方
type Error struct {
	Kind    Kind
	Message string
	Status  int // 仅 KindUpstream 使用，上游返回的状态码
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// Upstream 上游返回非 2xx，状态码透传给调用方
func Upstream(status int, msg string) error {
	return &Error{Kind: KindUpstream, Message: msg, Status: status}
}

// KindOf 返回错误类别，非业务错误视为内部错误
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
