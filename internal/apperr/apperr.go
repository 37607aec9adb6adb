package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so handlers and callers can react without
// string-matching messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindConsistency
	KindAlreadyDeleted
	KindInvalidDate
)

// Error is the one error type the services return. Code is a stable
// machine-readable identifier ("customer_not_found", "insufficient_stock").
type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return "application error"
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two *Errors by kind and code, so tests can compare
// against a template without caring about the wrapped cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Kind != KindUnknown && t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

func newf(kind Kind, code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Err: fmt.Errorf(format, args...)}
}

func Validation(code, format string, args ...interface{}) *Error {
	return newf(KindValidation, code, format, args...)
}

func NotFound(code, format string, args ...interface{}) *Error {
	return newf(KindNotFound, code, format, args...)
}

func Conflict(code, format string, args ...interface{}) *Error {
	return newf(KindConflict, code, format, args...)
}

func Consistency(code, format string, args ...interface{}) *Error {
	return newf(KindConsistency, code, format, args...)
}

func AlreadyDeleted(code, format string, args ...interface{}) *Error {
	return newf(KindAlreadyDeleted, code, format, args...)
}

func InvalidDate(format string, args ...interface{}) *Error {
	return newf(KindInvalidDate, "invalid_date_format", format, args...)
}

// KindOf extracts the classification, KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf extracts the machine code, "" for foreign errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HTTPStatus maps a failure to the status every handler uses. Unknown
// errors are internal: they are store/driver failures, not caller mistakes.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidDate:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindAlreadyDeleted:
		return http.StatusConflict
	case KindConsistency:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
