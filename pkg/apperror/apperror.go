package apperror

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an application error so callers can branch on it
// without inspecting messages.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindRateLimited
	KindProvider
	KindSecondary
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindProvider:
		return "provider"
	case KindSecondary:
		return "secondary"
	default:
		return "internal"
	}
}

// Error represents an application error
type Error struct {
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	Err       error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`
	// ResetAt is set for rate-limited errors only
	ResetAt time.Time `json:"reset_at,omitempty"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Error constructors
func Validation(message string) *Error {
	return &Error{
		Kind:      KindValidation,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func NotFound(resource string) *Error {
	return &Error{
		Kind:      KindNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Timestamp: time.Now(),
	}
}

func RateLimited(resetAt time.Time) *Error {
	return &Error{
		Kind:      KindRateLimited,
		Message:   "rate limit exceeded",
		Timestamp: time.Now(),
		ResetAt:   resetAt,
	}
}

func Provider(message string, err error) *Error {
	return &Error{
		Kind:      KindProvider,
		Message:   message,
		Err:       err,
		Timestamp: time.Now(),
	}
}

func Secondary(operation string, err error) *Error {
	return &Error{
		Kind:      KindSecondary,
		Message:   fmt.Sprintf("%s failed after successful send", operation),
		Err:       err,
		Timestamp: time.Now(),
	}
}

func Internal(err error) *Error {
	return &Error{
		Kind:      KindInternal,
		Message:   "internal error",
		Err:       err,
		Timestamp: time.Now(),
	}
}

// KindOf returns the kind of err, or KindInternal when err carries
// no application error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
