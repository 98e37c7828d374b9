package lifecycle

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping. The HTTP layer maps
// validation→400, conflict→409 and not_found→404; everything else is a 500.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
)

// Error is a classified domain error whose message is safe to surface.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// ErrorKind returns the string classification, mirroring the classifier
// convention used for status mapping.
func (e *Error) ErrorKind() string { return string(e.Kind) }

// Validationf builds a validation error.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a state-conflict error naming the violated precondition.
func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the classification from an error chain, or "" when the
// error carries none.
func KindOf(err error) Kind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}
