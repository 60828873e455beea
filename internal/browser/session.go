package browser

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultNavigationTimeout bounds a single navigation when NavigateOptions
// does not set a timeout.
const DefaultNavigationTimeout = 30 * time.Second

// WaitUntil selects when a navigation is considered complete.
type WaitUntil int

const (
	// WaitLoad completes on the document load event.
	WaitLoad WaitUntil = iota

	// WaitNetworkIdle completes once the network has been quiet for a short
	// window after the load event.
	WaitNetworkIdle
)

// String returns the name of the completion signal.
func (w WaitUntil) String() string {
	switch w {
	case WaitLoad:
		return "load"
	case WaitNetworkIdle:
		return "networkidle"
	default:
		return "unknown"
	}
}

// ParseWaitUntil converts "load" or "networkidle" into a WaitUntil.
// Matching is case-insensitive.
func ParseWaitUntil(name string) (WaitUntil, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "load":
		return WaitLoad, nil
	case "networkidle":
		return WaitNetworkIdle, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownWaitUntil, name)
	}
}

// NavigateOptions configures Session.Navigate.
type NavigateOptions struct {
	// WaitUntil is the completion signal to wait for.
	WaitUntil WaitUntil

	// Timeout bounds the whole navigation including the wait.
	// Zero means DefaultNavigationTimeout.
	Timeout time.Duration
}

// Response describes the main document response of a navigation.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// URL is the final URL after redirects.
	URL string
}

// ScreenshotOptions configures Session.Screenshot.
type ScreenshotOptions struct {
	// FullPage captures the whole scrollable page instead of the viewport.
	FullPage bool
}

// Element is a handle to a DOM node returned by QuerySelector.
// Handles are only valid until the next navigation.
type Element struct {
	// Selector is the CSS selector the element was found with.
	Selector string

	// Index is the position of the element among the selector's matches.
	Index int

	// ref is the implementation specific node reference.
	ref any
}

// NewElement creates an element handle. Session implementations use ref to
// find the underlying node again.
func NewElement(selector string, index int, ref any) *Element {
	return &Element{Selector: selector, Index: index, ref: ref}
}

// Ref returns the implementation specific node reference.
func (e *Element) Ref() any {
	return e.ref
}

// Session is a controllable browser tab.
//
// Every blocking operation takes a context and returns when the browser
// answers, the context is done, or its own timeout elapses. Implementations
// must not keep work running in the background after a call returns.
type Session interface {
	// Navigate loads url and waits for the requested completion signal.
	// A non-nil error means no usable response was received.
	Navigate(ctx context.Context, url string, opts NavigateOptions) (*Response, error)

	// Evaluate runs a JavaScript expression in the page and decodes its
	// JSON-serializable result into out. out may be nil.
	Evaluate(ctx context.Context, expression string, out any) error

	// QuerySelector returns the first element matching selector, or nil when
	// nothing matches.
	QuerySelector(ctx context.Context, selector string) (*Element, error)

	// QuerySelectorAll returns every element matching selector in document order.
	QuerySelectorAll(ctx context.Context, selector string) ([]*Element, error)

	// Click performs a pointer click on the element.
	Click(ctx context.Context, el *Element) error

	// IsVisible reports whether the element is rendered: it has a non-zero
	// height and is neither display:none nor visibility:hidden.
	IsVisible(ctx context.Context, el *Element) (bool, error)

	// Screenshot writes a PNG image of the page to path.
	Screenshot(ctx context.Context, path string, opts ScreenshotOptions) error

	// Close releases the session. It is safe to call more than once.
	Close() error
}

// OpenFunc acquires a new session.
type OpenFunc func(ctx context.Context) (Session, error)
