// Package apperr defines the error kinds shared by the playlist pipeline.
//
// Every error produced by a pipeline stage carries a Kind. Callers decide
// whether to degrade or propagate by matching the kind with errors.Is against
// the exported sentinels:
//
//	if errors.Is(err, apperr.ErrNoResults) { ... }
package apperr

import (
	"errors"
	"strings"
)

// Kind classifies a pipeline failure.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindConfig means required credentials are missing.
	KindConfig
	// KindUpstreamAuth means a token exchange or user authorization was rejected.
	KindUpstreamAuth
	// KindUpstreamRequest means an upstream call timed out or returned non-2xx.
	KindUpstreamRequest
	// KindParse means the AI response was not valid structured output.
	KindParse
	// KindNoResults means no tracks matched.
	KindNoResults
	// KindValidation means the caller's input was malformed.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config error"
	case KindUpstreamAuth:
		return "upstream auth error"
	case KindUpstreamRequest:
		return "upstream request error"
	case KindParse:
		return "parse error"
	case KindNoResults:
		return "no results"
	case KindValidation:
		return "validation error"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is matching. They only compare by Kind.
var (
	ErrConfig          = &Error{Kind: KindConfig}
	ErrUpstreamAuth    = &Error{Kind: KindUpstreamAuth}
	ErrUpstreamRequest = &Error{Kind: KindUpstreamRequest}
	ErrParse           = &Error{Kind: KindParse}
	ErrNoResults       = &Error{Kind: KindNoResults}
	ErrValidation      = &Error{Kind: KindValidation}
)

// Error is a classified pipeline error.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "catalog.search".
	Op string
	// Msg is a human-readable detail safe to show to end users.
	Msg string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain,
// or KindUnknown if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the user-facing message of the first *Error in err's chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// Config reports missing configuration.
func Config(op, msg string) error {
	return &Error{Kind: KindConfig, Op: op, Msg: msg}
}

// UpstreamAuth wraps a rejected token exchange or authorization.
func UpstreamAuth(op string, err error) error {
	return &Error{Kind: KindUpstreamAuth, Op: op, Err: err}
}

// UpstreamRequest wraps a failed upstream call.
func UpstreamRequest(op string, err error) error {
	return &Error{Kind: KindUpstreamRequest, Op: op, Err: err}
}

// Parse wraps a malformed upstream response.
func Parse(op, msg string, err error) error {
	return &Error{Kind: KindParse, Op: op, Msg: msg, Err: err}
}

// NoResults reports an empty result set. cause may be nil.
func NoResults(op, msg string, cause error) error {
	return &Error{Kind: KindNoResults, Op: op, Msg: msg, Err: cause}
}

// Validation reports malformed input.
func Validation(op, msg string) error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}
