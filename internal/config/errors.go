package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate(), usually wrapped with the
// offending value, so callers match them with errors.Is().
var (
	// ErrNoBaseURL is returned when neither the config file nor --base-url
	// names the site under test.
	ErrNoBaseURL = errors.New("no base URL specified: set base_url in the config file or use --base-url")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute
	// http or https URL.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrNoPages is returned when the catalog is empty.
	ErrNoPages = errors.New("no pages specified: list pages in the config file or pass paths as arguments")

	// ErrInvalidPageName is returned when a page name is not safe to use as
	// a file name.
	ErrInvalidPageName = errors.New("invalid page name: use lower-case letters, digits, '.', '-' and '_'")

	// ErrDuplicatePageName is returned when two pages share a name.
	// Their screenshots would overwrite each other.
	ErrDuplicatePageName = errors.New("duplicate page name")

	// ErrInvalidViewport is returned when a viewport dimension is not positive.
	ErrInvalidViewport = errors.New("invalid viewport: width, height and scale must be positive")

	// ErrInvalidWaitUntil is returned when wait_until is neither
	// "networkidle" nor "load".
	ErrInvalidWaitUntil = errors.New("invalid wait_until: use networkidle or load")

	// ErrInvalidTimeout is returned when the navigation or page timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when the settle delay or a menu wait is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrUnknownCheck is returned when disabled_checks names something that
	// is not a built-in check.
	ErrUnknownCheck = errors.New("unknown check")

	// ErrInvalidFailOn is returned when --fail-on is not a severity label.
	ErrInvalidFailOn = errors.New("invalid --fail-on severity: use CRITICAL, HIGH, MEDIUM or LOW")

	// ErrInvalidRemoteBrowser is returned when the remote browser address
	// is not a ws:// or wss:// URL.
	ErrInvalidRemoteBrowser = errors.New("invalid remote browser URL: must be ws:// or wss://")
)
