package database

import "errors"

var (
	// ErrNotFound is returned when the database file does not exist and
	// Options.CreateIfNotExists is false.
	ErrNotFound = errors.New("database not found")

	// ErrRunNotFound is returned when no run matches the requested ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrCorruptRun is returned when a stored report is inconsistent, for
	// example when its summary no longer matches its pages.
	ErrCorruptRun = errors.New("stored run is corrupt")
)
