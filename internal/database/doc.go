// Package database stores the history of runs in SQLite.
//
// Each finished run is saved as one row holding its summary counts and the
// complete report as JSON, so `history` can list runs without decoding them
// and `show` can re-render any past run. Runs are never compared with each
// other.
//
// The driver is modernc.org/sqlite, which needs no cgo. The database is a
// single file under the XDG data directory.
package database
