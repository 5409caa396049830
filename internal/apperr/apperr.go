// Package apperr defines the error taxonomy shared by services, repositories
// and handlers. Every failure a caller can act on is classified by Kind and
// names the offending field, so transport code maps errors without matching
// on message strings.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindStateConflict
	KindInsufficientFunds
	KindConcurrencyConflict
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStateConflict:
		return "state_conflict"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindConcurrencyConflict:
		return "concurrency_conflict"
	case KindInternal:
		return "internal"
	}
	return "unknown"
}

type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
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

// Validation rejects malformed or semantically invalid input.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NotFound covers missing entities. Entities outside the caller's
// organisation are reported as not found, never as forbidden.
func NotFound(field, message string) *Error {
	return &Error{Kind: KindNotFound, Field: field, Message: message}
}

// StateConflict rejects an operation the entity's current state does not
// permit, such as transferring through a locked wallet or cancelling a
// settled transaction.
func StateConflict(field, message string) *Error {
	return &Error{Kind: KindStateConflict, Field: field, Message: message}
}

// InsufficientFunds rejects a transfer exceeding the sender's balance.
func InsufficientFunds(message string) *Error {
	return &Error{Kind: KindInsufficientFunds, Field: "amount", Message: message}
}

// ConcurrencyConflict signals that an operation lost against concurrent
// writers even after internal retries. Safe for the caller to retry.
func ConcurrencyConflict(message string, err error) *Error {
	return &Error{Kind: KindConcurrencyConflict, Message: message, Err: err}
}

// Internal wraps storage or infrastructure faults. The message is safe to
// surface; the wrapped cause is not.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf classifies any error. Unclassified non-nil errors report
// KindInternal; nil reports KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
