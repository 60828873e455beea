package model

import "errors"

var (
	// ErrUnknownSeverity is returned when a severity label or value is not one
	// of LOW, MEDIUM, HIGH or CRITICAL.
	ErrUnknownSeverity = errors.New("unknown severity")

	// ErrMissingIssue is returned when a failed CheckResult is decoded without an issue.
	ErrMissingIssue = errors.New("failed check has no issue")

	// ErrUnexpectedIssue is returned when a passed CheckResult is decoded with an issue.
	ErrUnexpectedIssue = errors.New("passed check carries an issue")
)
