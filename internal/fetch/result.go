package fetch

import "errors"

// ErrMissingAPIKey is returned by fetchers that were configured without a key.
var ErrMissingAPIKey = errors.New("missing API key")

// Status describes how a fetch ended.
type Status int

const (
	StatusOK Status = iota
	StatusEmpty
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Result is what every fetcher hands back to the session. A fetcher never
// returns an error on its own; failures are folded into a Failed result so
// callers can tell "nothing to report" apart from "could not ask".
type Result[T any] struct {
	Items  []T
	Status Status
	Err    error
}

// OK wraps a successful round-trip. No items means StatusEmpty.
func OK[T any](items []T) Result[T] {
	if len(items) == 0 {
		return Result[T]{Items: []T{}, Status: StatusEmpty}
	}
	return Result[T]{Items: items, Status: StatusOK}
}

// Failed wraps a transport, parse or configuration failure.
func Failed[T any](err error) Result[T] {
	return Result[T]{Items: []T{}, Status: StatusFailed, Err: err}
}

// Reason returns a short explanation for a failed result.
func (r Result[T]) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
