package core

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure so the HTTP boundary can map it to a
// status code without string matching.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindEmptyContent
	KindNotFound
	KindUpstreamFailure
	KindPartialDelete
	KindInconsistent
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindEmptyContent:
		return "empty_content"
	case KindNotFound:
		return "not_found"
	case KindUpstreamFailure:
		return "upstream_failure"
	case KindPartialDelete:
		return "partial_delete"
	case KindInconsistent:
		return "inconsistent"
	default:
		return "unknown"
	}
}

// Error is a tagged pipeline error. Err may be nil for purely local failures.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the taxonomy kind of err, or KindUnknown for errors that did
// not originate in a pipeline.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

func errInvalidInput(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

func errEmptyContent(format string, args ...any) error {
	return &Error{Kind: KindEmptyContent, Msg: fmt.Sprintf(format, args...)}
}

func errNotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func errUpstream(err error, format string, args ...any) error {
	return &Error{Kind: KindUpstreamFailure, Msg: fmt.Sprintf(format, args...), Err: err}
}

func errPartialDelete(format string, args ...any) error {
	return &Error{Kind: KindPartialDelete, Msg: fmt.Sprintf(format, args...)}
}

func errInconsistent(format string, args ...any) error {
	return &Error{Kind: KindInconsistent, Msg: fmt.Sprintf(format, args...)}
}
