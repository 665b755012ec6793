package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork is a transport-level failure: timeout, DNS, connection reset.
	ErrNetwork = errors.New("network error")
	// ErrFetch is a non-success response or a malformed response body.
	ErrFetch = errors.New("fetch error")
	// ErrValidation is a create/update rejected for missing or invalid fields.
	ErrValidation = errors.New("validation error")
	// ErrMutation is a mark-sold/update/delete that failed after submission.
	ErrMutation = errors.New("mutation error")

	ErrAdvertisementNotFound = errors.New("advertisement not found")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrUserUnknown           = errors.New("user is not resolvable")
	ErrMissingPhoto          = errors.New("exactly one photo is required")
)

// ErrorKind classifies every failure a caller of the catalog can observe.
type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"
	KindFetch      ErrorKind = "fetch"
	KindValidation ErrorKind = "validation"
	KindMutation   ErrorKind = "mutation"
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindFetch:
		return ErrFetch
	case KindValidation:
		return ErrValidation
	case KindMutation:
		return ErrMutation
	}
	return nil
}

// RequestError is the single error shape the catalog layer returns.
// errors.Is matches the sentinel of Kind and, through Unwrap, every kind further down the chain.
type RequestError struct {
	Kind       ErrorKind
	Op         string
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Method != "" {
		msg += fmt.Sprintf(" (%s %s", e.Method, e.Path)
		if e.StatusCode != 0 {
			msg += fmt.Sprintf(" -> %d", e.StatusCode)
		}
		msg += ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Retag wraps err under a new kind and op, keeping transport details of the innermost RequestError.
func Retag(err error, kind ErrorKind, op string) error {
	if err == nil {
		return nil
	}
	out := &RequestError{Kind: kind, Op: op, Err: err}
	var inner *RequestError
	if errors.As(err, &inner) {
		out.Method = inner.Method
		out.Path = inner.Path
		out.StatusCode = inner.StatusCode
	}
	return out
}

// KindOf returns the outermost kind of err, or "" when err is not a catalog error.
func KindOf(err error) ErrorKind {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind
	}
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrMutation):
		return KindMutation
	case errors.Is(err, ErrFetch):
		return KindFetch
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	}
	return ""
}

// StatusCodeOf returns the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
