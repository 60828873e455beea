package check

import "errors"

var (
	// ErrNoSnapshot is returned by checks that need a page snapshot when
	// none could be collected.
	ErrNoSnapshot = errors.New("page state snapshot is not available")

	// ErrNoMenuProbe is returned by menu checks when the menu was not probed.
	ErrNoMenuProbe = errors.New("menu probe result is not available")
)
