// Package apperr defines the small set of domain error kinds that services
// return and the API layer translates into HTTP responses.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidCredentials
	KindNoToken
	KindInvalidToken
	KindTokenExpired
	KindForbidden
	KindNotFound
	KindAlreadyLiked
	KindNotLiked
	KindUpstreamUnavailable
	KindRateLimited
)

var kindNames = map[Kind]string{
	KindInternal:            "internal",
	KindValidation:          "validation",
	KindInvalidCredentials:  "invalid_credentials",
	KindNoToken:             "no_token",
	KindInvalidToken:        "invalid_token",
	KindTokenExpired:        "token_expired",
	KindForbidden:           "forbidden",
	KindNotFound:            "not_found",
	KindAlreadyLiked:        "already_liked",
	KindNotLiked:            "not_liked",
	KindUpstreamUnavailable: "upstream_unavailable",
	KindRateLimited:         "rate_limited",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// FieldError is a single failed input check.
type FieldError struct {
	Param string `json:"param,omitempty"`
	Msg   string `json:"msg"`
}

// Error is a domain failure with a client-safe message.
type Error struct {
	Kind   Kind
	Msg    string
	Fields []FieldError
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap creates an Error that keeps cause for logging.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, cause: cause}
}

// Validation builds a KindValidation error from field errors. Msg is the
// first field's message.
func Validation(fields ...FieldError) *Error {
	msg := "Invalid input"
	if len(fields) > 0 {
		msg = fields[0].Msg
	}
	return &Error{Kind: KindValidation, Msg: msg, Fields: fields}
}

func NotFound(msg string) *Error  { return New(KindNotFound, msg) }
func Forbidden(msg string) *Error { return New(KindForbidden, msg) }

// KindOf reports the Kind of err; errors that are not *Error are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is a domain error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
