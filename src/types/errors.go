package types

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KIND_VALIDATION          ErrorKind = "validation"
	KIND_UNAUTHENTICATED     ErrorKind = "unauthenticated"
	KIND_ACCESS_DENIED       ErrorKind = "access_denied"
	KIND_NOT_FOUND           ErrorKind = "not_found"
	KIND_ALREADY_REQUESTED   ErrorKind = "already_requested"
	KIND_GATEWAY_UNAVAILABLE ErrorKind = "gateway_unavailable"
	KIND_GATEWAY_ERROR       ErrorKind = "gateway_error"
	KIND_CONFLICT            ErrorKind = "conflict"
	KIND_PAYMENT_INCOMPLETE  ErrorKind = "payment_incomplete"
)

// AppError is a domain failure classified by Kind. errors.Is matches any
// AppError of the same Kind, so callers compare against the sentinels below.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation         = &AppError{Kind: KIND_VALIDATION, Message: "validation failed"}
	ErrUnauthenticated    = &AppError{Kind: KIND_UNAUTHENTICATED, Message: "please login first"}
	ErrAccessDenied       = &AppError{Kind: KIND_ACCESS_DENIED, Message: "access denied"}
	ErrNotFound           = &AppError{Kind: KIND_NOT_FOUND, Message: "not found"}
	ErrAlreadyRequested   = &AppError{Kind: KIND_ALREADY_REQUESTED, Message: "you have already sent a viewing request for this room"}
	ErrGatewayUnavailable = &AppError{Kind: KIND_GATEWAY_UNAVAILABLE, Message: "payment gateway is not configured"}
	ErrGatewayError       = &AppError{Kind: KIND_GATEWAY_ERROR, Message: "payment gateway error"}
	ErrPaymentInProgress  = &AppError{Kind: KIND_ALREADY_REQUESTED, Message: "a payment for this room is already in progress"}
	ErrConflict           = &AppError{Kind: KIND_CONFLICT, Message: "the resource was changed by another request, please retry"}
	ErrPaymentIncomplete  = &AppError{Kind: KIND_PAYMENT_INCOMPLETE, Message: "payment has not completed"}
)

func NewValidationError(msg string) *AppError {
	return &AppError{Kind: KIND_VALIDATION, Message: msg}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{Kind: KIND_NOT_FOUND, Message: msg}
}

func NewAccessDeniedError(msg string) *AppError {
	return &AppError{Kind: KIND_ACCESS_DENIED, Message: msg}
}

func NewGatewayError(err error) *AppError {
	return &AppError{Kind: KIND_GATEWAY_ERROR, Message: "payment gateway error", Err: err}
}

// KindOf returns the Kind of the first AppError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *AppError
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
