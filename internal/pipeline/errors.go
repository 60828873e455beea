package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrNoOpener is returned by RunWithSession when no OpenFunc is given.
	ErrNoOpener = errors.New("no browser session opener")

	// ErrBadStatus is wrapped by LoadError when the main document did not
	// answer with HTTP 200.
	ErrBadStatus = errors.New("unexpected HTTP status")
)

// LoadError is returned by NavigateStep when the page cannot be evaluated.
type LoadError struct {
	// StatusCode is the HTTP status of the main document, 0 if none.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *LoadError) Error() string {
	return "load page: " + e.reason()
}

// Unwrap returns the cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Description is the text of the CRITICAL issue recorded for the page.
func (e *LoadError) Description() string {
	return "Page failed to load: " + e.reason()
}

func (e *LoadError) reason() string {
	if errors.Is(e.Err, ErrBadStatus) {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}
