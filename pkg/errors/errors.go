package editor_errors

import (
	"errors"
)

// Common errors
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrRateLimited   = errors.New("rate limited")
	ErrAlreadyExists = errors.New("already exists")
)

// ValidationReason names the rule a credential submission failed.
type ValidationReason string

const (
	ReasonPasswordMismatch ValidationReason = "password mismatch"
	ReasonLength           ValidationReason = "length"
	ReasonDuplicate        ValidationReason = "duplicate"
)

// ValidationError is a user input error. It is reported back to the client
// and never logged as a failure.
type ValidationError struct {
	Reason ValidationReason
}

func NewValidationError(reason ValidationReason) *ValidationError {
	return &ValidationError{Reason: reason}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + string(e.Reason)
}

// Is lets errors.Is match the sentinel family: every ValidationError is
// ErrInvalidInput, a duplicate is also ErrAlreadyExists.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return true
	case ErrAlreadyExists:
		return e.Reason == ReasonDuplicate
	}
	return false
}

// AuthenticationError means the credentials did not resolve to an identity.
// It deliberately does not say whether the username or the password was wrong.
type AuthenticationError struct{}

func (e *AuthenticationError) Error() string {
	return "authentication failed"
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrUnauthorized
}

const (
	MessagePasswordMismatch = "Passwords don't match!"
	MessageLength           = "Names and passwords need to be less than 30 characters, you need to have a password!"
	MessageDuplicate        = "Username already exists!"
	MessageBadCredentials   = "Bad username or password!"
	MessageRateLimited      = "Too many attempts, please try again later."
	MessageCSRFFailed       = "CSRF verification failed."
	MessageBadRequest       = "Could not read the submitted form."
	MessageInternal         = "Something went wrong, please try again."
)

// UserMessage returns the text shown to the user for err and whether err is
// an expected, user-facing failure. Unexpected errors get the generic message.
func UserMessage(err error) (string, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		switch vErr.Reason {
		case ReasonPasswordMismatch:
			return MessagePasswordMismatch, true
		case ReasonLength:
			return MessageLength, true
		case ReasonDuplicate:
			return MessageDuplicate, true
		}
	}

	var aErr *AuthenticationError
	if errors.As(err, &aErr) {
		return MessageBadCredentials, true
	}

	if errors.Is(err, ErrRateLimited) {
		return MessageRateLimited, true
	}

	return MessageInternal, false
}
