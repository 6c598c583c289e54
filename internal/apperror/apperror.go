// Package apperror defines the error kinds returned by the storefront
// services. Every error carries a machine-checkable Kind and a message that
// is safe to show to the caller.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error at the request boundary.
type Kind string

const (
	KindInternal          Kind = "internal"
	KindNotFound          Kind = "not_found"
	KindAuthorization     Kind = "authorization"
	KindUnauthenticated   Kind = "unauthenticated"
	KindValidation        Kind = "validation"
	KindConflict          Kind = "conflict"
	KindEmptyCart         Kind = "empty_cart"
	KindInvalidTransition Kind = "invalid_transition"
	KindAlreadyPaid       Kind = "already_paid"
	KindAlreadyCancelled  Kind = "already_cancelled"
	KindCheckoutFailed    Kind = "checkout_failed"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels usable with errors.Is. They match any *Error of the same kind.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrAuthorization     = &Error{Kind: KindAuthorization}
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrEmptyCart         = &Error{Kind: KindEmptyCart}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrAlreadyPaid       = &Error{Kind: KindAlreadyPaid}
	ErrAlreadyCancelled  = &Error{Kind: KindAlreadyCancelled}
	ErrCheckoutFailed    = &Error{Kind: KindCheckoutFailed}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// New returns an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error of the given kind that wraps err.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(KindAuthorization, format, args...)
}

func Invalid(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message for err. Internal errors get a
// generic message so storage details are not leaked.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Message != "" {
			return appErr.Message
		}
		return string(appErr.Kind)
	}
	return "internal error"
}
