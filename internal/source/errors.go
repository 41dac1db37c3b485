package source

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why a single provider attempt failed.
type Kind string

const (
	// KindUnavailable covers network and transport failures, including timeouts.
	KindUnavailable Kind = "source_unavailable"
	// KindNoData means the payload parsed but yielded zero usable bars.
	KindNoData Kind = "no_data"
	// KindFormat means the payload did not match the provider's known schema.
	KindFormat Kind = "upstream_format"
)

// Error is the typed failure of one provider attempt.
type Error struct {
	Source string
	Kind   Kind
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Source, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(src string, kind Kind, err error) *Error {
	return &Error{Source: src, Kind: kind, Err: err}
}

func unavailable(src string, err error) *Error { return newError(src, KindUnavailable, err) }
func noData(src string) *Error                 { return newError(src, KindNoData, errors.New("no usable bars")) }
func formatErr(src string, err error) *Error   { return newError(src, KindFormat, err) }

// Attempt records one tried provider and its outcome; kept even after a
// later provider succeeds so callers can inspect the fallback history.
type Attempt struct {
	Source string `json:"source"`
	Error  string `json:"error,omitempty"`
}

// AllSourcesFailed aggregates every attempted provider's failure. The
// resolver never discards intermediate errors.
type AllSourcesFailed struct {
	Ticker   string
	Attempts []Attempt
}

func (e *AllSourcesFailed) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Source, a.Error))
	}
	return fmt.Sprintf("all sources failed for %s [%s]", e.Ticker, strings.Join(parts, "; "))
}
