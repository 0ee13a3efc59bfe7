// Package apperr is the error taxonomy shared by the ledger services and the
// HTTP layer. Every failure a caller can act on carries a Code; the HTTP layer
// turns the code into a status through MetadataFor.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeInvalidTransition   Code = "INVALID_TRANSITION"
	CodeIneligibleRequester Code = "INELIGIBLE_REQUESTER"
	CodeInsufficientPoints  Code = "INSUFFICIENT_POINTS"
	CodeInsufficientFunds   Code = "INSUFFICIENT_FUNDS"
	CodeNotFound            Code = "NOT_FOUND"
	CodeForbidden           Code = "FORBIDDEN"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeConflict            Code = "CONFLICT"
	CodeIdempotency         Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimited         Code = "RATE_LIMITED"
	CodeInternal            Code = "INTERNAL_ERROR"
)

type Metadata struct {
	HTTPStatus    int
	PublicMessage string
	// Exposed reports whether the error's own message may be shown to clients.
	Exposed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:          {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed", Exposed: true},
	CodeInvalidTransition:   {HTTPStatus: http.StatusBadRequest, PublicMessage: "state transition not allowed", Exposed: true},
	CodeIneligibleRequester: {HTTPStatus: http.StatusForbidden, PublicMessage: "requester is not eligible", Exposed: true},
	CodeInsufficientPoints:  {HTTPStatus: http.StatusBadRequest, PublicMessage: "not enough points", Exposed: true},
	CodeInsufficientFunds:   {HTTPStatus: http.StatusBadRequest, PublicMessage: "insufficient balance", Exposed: true},
	CodeNotFound:            {HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found", Exposed: true},
	CodeForbidden:           {HTTPStatus: http.StatusForbidden, PublicMessage: "access denied", Exposed: true},
	CodeUnauthorized:        {HTTPStatus: http.StatusUnauthorized, PublicMessage: "authentication required", Exposed: true},
	CodeConflict:            {HTTPStatus: http.StatusConflict, PublicMessage: "conflicting update, reload and retry", Exposed: true},
	CodeIdempotency:         {HTTPStatus: http.StatusConflict, PublicMessage: "idempotency key reused", Exposed: true},
	CodeRateLimited:         {HTTPStatus: http.StatusTooManyRequests, PublicMessage: "too many requests", Exposed: false},
	CodeInternal:            {HTTPStatus: http.StatusInternalServerError, PublicMessage: "internal error", Exposed: false},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the first *Error in err's chain, or nil.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf returns the code of err, CodeInternal for untyped errors.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}

func Is(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}
