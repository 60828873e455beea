package model

import (
	"fmt"
	"strings"
)

// Severity represents how badly a failed check affects mobile visitors.
// Levels are ordered, so comparisons such as s >= SeverityHigh are meaningful.
//
// The zero value is not a valid severity; it prints as "UNKNOWN" and is
// rejected when unmarshaling.
type Severity int

const (
	// SeverityLow indicates cosmetic problems that rarely block a visitor.
	// Examples: short hero section, small footer links, crowded tap targets.
	SeverityLow Severity = iota + 1

	// SeverityMedium indicates problems that make a page noticeably harder to use.
	// Examples: small text, undersized buttons, form inputs that are hard to tap.
	SeverityMedium

	// SeverityHigh indicates problems that break part of the mobile experience.
	// Examples: missing hamburger menu, images wider than the viewport.
	SeverityHigh

	// SeverityCritical indicates the page cannot be used, or could not be evaluated at all.
	// Examples: horizontal scrolling, page failed to load.
	SeverityCritical
)

// String returns the upper-case label of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is one of the four defined levels.
func (s Severity) Valid() bool {
	return s >= SeverityLow && s <= SeverityCritical
}

// Severities returns all severity levels, most severe first.
// This is the order used by every report section.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

// ParseSeverity converts a label such as "critical" or "HIGH" into a Severity.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseSeverity(label string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "LOW":
		return SeverityLow, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "HIGH":
		return SeverityHigh, nil
	case "CRITICAL":
		return SeverityCritical, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSeverity, label)
	}
}

// MarshalText encodes the severity as its label.
// Implementing encoding.TextMarshaler makes severities readable both as
// JSON values and as JSON object keys (counts_by_severity).
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeverity, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity label.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
