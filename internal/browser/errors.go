package browser

import "errors"

// Browser session errors.
// Navigation failures are wrapped around ErrNavigation so that callers can
// tell a page that could not be reached apart from a broken session.
var (
	// ErrStart is returned when the browser process cannot be launched or the
	// remote endpoint cannot be attached.
	ErrStart = errors.New("failed to start browser")

	// ErrNavigation is returned when the browser could not load a URL at all,
	// for example on DNS or TLS errors. HTTP error statuses are not errors;
	// they are reported in Response.StatusCode.
	ErrNavigation = errors.New("navigation failed")

	// ErrNoResponse is returned when navigation finished without a main
	// document response.
	ErrNoResponse = errors.New("no response received")

	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("browser session is closed")

	// ErrStaleElement is returned when an element handle does not belong to
	// the session it is used with.
	ErrStaleElement = errors.New("element handle is not valid for this session")

	// ErrUnknownWaitUntil is returned by ParseWaitUntil for unknown names.
	ErrUnknownWaitUntil = errors.New("unknown navigation wait condition")

	// ErrInvalidRemoteURL is returned when the remote DevTools URL is not a
	// ws:// or wss:// URL.
	ErrInvalidRemoteURL = errors.New("invalid remote browser URL: expected ws:// or wss://")
)
