package service

import (
	"errors"
	"log"
	"net/http"
)

// Kind classifies failures surfaced to callers.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindDuplicateIdentity
	KindInvalidRole
	KindInvalidCredentials
	KindInvalidOTP
	KindInvalidToken
	KindRateLimited
)

// Error is the only error type AuthService returns. Message is safe to show to
// clients; Err carries the detail for logs.
type Error struct {
	Kind    Kind
	Message string
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

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidRole        = &Error{Kind: KindInvalidRole, Message: "Invalid role"}
	ErrDuplicateIdentity  = &Error{Kind: KindDuplicateIdentity, Message: "An account with this email or phone already exists"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "Invalid credentials"}
	ErrInvalidPIN         = &Error{Kind: KindInvalidCredentials, Message: "Invalid PIN."}
	ErrInvalidOTP         = &Error{Kind: KindInvalidOTP, Message: "Invalid or expired OTP"}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken, Message: "Invalid or expired token"}
	ErrRateLimited        = &Error{Kind: KindRateLimited, Message: "Too many attempts, please try again later"}
	ErrRoleNotSupported   = &Error{Kind: KindValidation, Message: "This operation is not available for this role"}
	ErrUnexpected         = &Error{Kind: KindUnexpected, Message: "Something went wrong, please try again"}
)

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// unexpected logs the underlying fault and hides it behind the generic message.
func unexpected(op string, err error) *Error {
	log.Printf("%s failed: %v", op, err)
	return &Error{Kind: KindUnexpected, Message: ErrUnexpected.Message, Err: err}
}

// StatusCode maps an error returned by AuthService to an HTTP status.
func StatusCode(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation, KindDuplicateIdentity, KindInvalidRole, KindInvalidOTP:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindInvalidToken:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-safe message for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ErrUnexpected.Message
}
