// Package apperr defines the typed failures returned by the business
// operations. Each failure carries a Kind the request layer maps to a status
// code and a message meant for the user.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation          Kind = "validation"
	KindInvalidTransition   Kind = "invalid_transition"
	KindEditNotAllowed      Kind = "edit_not_allowed"
	KindMissingPrice        Kind = "missing_price"
	KindMissingReason       Kind = "missing_reason"
	KindInsufficientFunds   Kind = "insufficient_funds"
	KindDuplicateIdentifier Kind = "duplicate_identifier"
	KindNotFound            Kind = "not_found"
	KindNoCodesLeft         Kind = "no_codes_left"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind, so errors.Is(err, ErrNotFound) holds for any
// not_found error regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrInvalidTransition   = &Error{Kind: KindInvalidTransition}
	ErrEditNotAllowed      = &Error{Kind: KindEditNotAllowed}
	ErrMissingPrice        = &Error{Kind: KindMissingPrice}
	ErrMissingReason       = &Error{Kind: KindMissingReason}
	ErrInsufficientFunds   = &Error{Kind: KindInsufficientFunds}
	ErrDuplicateIdentifier = &Error{Kind: KindDuplicateIdentifier}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrNoCodesLeft         = &Error{Kind: KindNoCodesLeft}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

func NotFound(entity string, id any) *Error {
	return New(KindNotFound, "%s %v not found", entity, id)
}

func InvalidTransition(entity string, from, to any) *Error {
	return New(KindInvalidTransition, "%s cannot go from %v to %v", entity, from, to)
}

func EditNotAllowed(entity string, status any) *Error {
	return New(KindEditNotAllowed, "%s cannot be modified while %v", entity, status)
}

func InsufficientFunds(balance, amount fmt.Stringer) *Error {
	return New(KindInsufficientFunds, "insufficient funds: balance %s, required %s", balance, amount)
}

// KindOf returns the kind of err, or "" for errors that did not come from here.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPStatus maps a kind to the status code the request layer answers with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindMissingPrice, KindMissingReason:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindEditNotAllowed, KindInsufficientFunds:
		return http.StatusConflict
	case KindDuplicateIdentifier, KindNoCodesLeft:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
