// Package apperr carries the error taxonomy shared by every service.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrCode string

const (
	// CodeValidation marks malformed input. Never retried.
	CodeValidation ErrCode = "VALIDATION"
	// CodeOutOfStock means no unit was available at reservation time.
	CodeOutOfStock ErrCode = "OUT_OF_STOCK"
	// CodeInvalidTransition means the requested lifecycle event is not
	// legal from the loan's current status (stale client or logic bug).
	CodeInvalidTransition ErrCode = "INVALID_TRANSITION"
	// CodeInvariantViolation is an internal consistency breach, e.g. a
	// release that would push availability past the total. A defect.
	CodeInvariantViolation ErrCode = "INVARIANT_VIOLATION"
	// CodeTransient covers storage/network unavailability; safe to retry.
	CodeTransient ErrCode = "TRANSIENT"

	CodeNotFound  ErrCode = "NOT_FOUND"
	CodeForbidden ErrCode = "FORBIDDEN"
)

type codedError struct {
	code ErrCode
	msg  string
	err  error
}

func (e *codedError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.msg, e.err)
	}
	if e.msg == "" {
		return string(e.code)
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

func (e *codedError) Unwrap() error { return e.err }
func (e *codedError) Code() ErrCode { return e.code }

func New(code ErrCode, msg string) error {
	return &codedError{code: code, msg: msg}
}

func Wrap(code ErrCode, msg string, err error) error {
	return &codedError{code: code, msg: msg, err: err}
}

// CodeOf extracts the error code, or "" for plain errors.
func CodeOf(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

func Is(err error, code ErrCode) bool { return CodeOf(err) == code }

// HTTPStatus is the status the API surfaces this code with. Uncoded errors
// map to 500.
func (c ErrCode) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeOutOfStock, CodeInvalidTransition:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
