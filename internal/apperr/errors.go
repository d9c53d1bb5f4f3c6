// Package apperr defines the error taxonomy shared by all social services.
// Every fallible operation returns one of these kinds so that callers (and
// the HTTP layer) can discriminate failures without string matching.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a service failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotAuthenticated
	KindProfileNotFound
	KindUsernameTaken
	KindAlreadyRegistered
	KindSelfFollow
	KindAlreadyFollowing
	KindNotFollowing
	KindFollowNotPermitted
	KindStoreUnavailable
	KindTimeout
	KindInvalidData
)

// String returns the stable name of the kind, used in API error payloads.
func (k Kind) String() string {
	switch k {
	case KindNotAuthenticated:
		return "not_authenticated"
	case KindProfileNotFound:
		return "profile_not_found"
	case KindUsernameTaken:
		return "username_taken"
	case KindAlreadyRegistered:
		return "already_registered"
	case KindSelfFollow:
		return "self_follow"
	case KindAlreadyFollowing:
		return "already_following"
	case KindNotFollowing:
		return "not_following"
	case KindFollowNotPermitted:
		return "follow_not_permitted"
	case KindStoreUnavailable:
		return "store_unavailable"
	case KindTimeout:
		return "timeout"
	case KindInvalidData:
		return "invalid_data"
	default:
		return "unknown"
	}
}

// Error is a classified service error. Err, when set, carries the
// underlying cause for logging; Message is safe to return to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error with a caller-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, or KindUnknown if err was not
// produced by this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// FromStore classifies an error surfaced by the record store. Context
// deadline and cancellation map to Timeout; everything else is a backend
// failure the caller must see as-is.
func FromStore(err error, operation string) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Wrap(KindTimeout, operation+" timed out", err)
	}
	return Wrap(KindStoreUnavailable, operation+" failed", err)
}
