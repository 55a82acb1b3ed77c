package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies resolution failures.
type ErrorKind string

const (
	KindInvalidInput        ErrorKind = "invalid_input"
	KindTimeout             ErrorKind = "timeout"
	KindNetworkError        ErrorKind = "network_error"
	KindUnresolvedShortLink ErrorKind = "unresolved_short_link"
)

// ResolutionError is the typed error returned by the resolution pipeline.
type ResolutionError struct {
	Kind ErrorKind
	URL  string
	Err  error
}

func (e *ResolutionError) Error() string {
	msg := string(e.Kind)
	if e.URL != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.URL)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Is matches the kind sentinels below, so errors.Is(err, ErrTimeout) works
// for any *ResolutionError of kind timeout.
func (e *ResolutionError) Is(target error) bool {
	t, ok := target.(*ResolutionError)
	if !ok {
		return false
	}
	return t.URL == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrInvalidInput        = &ResolutionError{Kind: KindInvalidInput}
	ErrTimeout             = &ResolutionError{Kind: KindTimeout}
	ErrNetwork             = &ResolutionError{Kind: KindNetworkError}
	ErrUnresolvedShortLink = &ResolutionError{Kind: KindUnresolvedShortLink}
)

// Store errors
var (
	ErrNotFound   = errors.New("link not found")
	ErrIDConflict = errors.New("link id already taken")
)

// NewResolutionError builds a ResolutionError for url.
func NewResolutionError(kind ErrorKind, url string, err error) *ResolutionError {
	return &ResolutionError{Kind: kind, URL: url, Err: err}
}

// KindOf returns the kind of a ResolutionError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
