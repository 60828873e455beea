package check

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/nao1215/mobileqa/internal/browser"
	"github.com/nao1215/mobileqa/internal/menu"
)

// snapshotScript measures the rendered page in a single evaluation.
//
//go:embed snapshot.js
var snapshotScript string

// Rect is an element's bounding box in CSS pixels, relative to the viewport.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.Left >= r.Left && o.Top >= r.Top && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// TextElement is a visible text-bearing element.
type TextElement struct {
	Tag      string  `json:"tag"`
	Text     string  `json:"text"`
	FontSize float64 `json:"font_size"`
}

// Box is an element with its bounding box.
type Box struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
	Rect
}

// Image is an <img> element.
type Image struct {
	Src          string  `json:"src"`
	NaturalWidth float64 `json:"natural_width"`
	Width        float64 `json:"width"`
}

// Grid is a grid or card container with at least two children.
type Grid struct {
	Index    int  `json:"index"`
	Children int  `json:"children"`
	First    Rect `json:"first"`
	Second   Rect `json:"second"`
}

// FormControl is an input, textarea or select inside a form.
type FormControl struct {
	Form int    `json:"form"`
	Type string `json:"type"`
	Rect
}

// Footer holds the links of the page footer.
type Footer struct {
	Links []Box `json:"links"`
}

// Snapshot is the raw measurement of a rendered page.
// Lists are capped by the page script, so a pathological page cannot
// produce an unbounded snapshot.
type Snapshot struct {
	ScrollWidth    float64 `json:"scroll_width"`
	ClientWidth    float64 `json:"client_width"`
	ViewportWidth  float64 `json:"viewport_width"`
	ViewportHeight float64 `json:"viewport_height"`

	Texts        []TextElement `json:"texts"`
	TapTargets   []Box         `json:"tap_targets"`
	Hero         *Box          `json:"hero"`
	Images       []Image       `json:"images"`
	Grids        []Grid        `json:"grids"`
	FormControls []FormControl `json:"form_controls"`
	Footer       *Footer       `json:"footer"`
	Clickables   []Box         `json:"clickables"`

	// HTML is the serialized DOM after scripts ran.
	HTML string `json:"html"`
}

// Collect evaluates the snapshot script in the current page.
func Collect(ctx context.Context, session browser.Session) (*Snapshot, error) {
	var snap Snapshot
	if err := session.Evaluate(ctx, snapshotScript, &snap); err != nil {
		return nil, fmt.Errorf("failed to collect page state: %w", err)
	}
	return &snap, nil
}

// PageState is everything the checks may look at for one page.
type PageState struct {
	// URL is the page address.
	URL string

	// Snapshot holds the page measurements. Nil when collection failed.
	Snapshot *Snapshot

	// SnapshotErr is the collection error, if any.
	SnapshotErr error

	// Menu is the menu probe outcome. Nil when the probe did not run.
	Menu *menu.Result

	markupOnce sync.Once
	parsed     *Markup
	parseErr   error
}

// snapshot returns the snapshot or an error explaining why there is none.
func (s *PageState) snapshot() (*Snapshot, error) {
	if s == nil || s.Snapshot == nil {
		if s != nil && s.SnapshotErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoSnapshot, s.SnapshotErr)
		}
		return nil, ErrNoSnapshot
	}
	return s.Snapshot, nil
}

func (s *PageState) menuResult() (*menu.Result, error) {
	if s == nil || s.Menu == nil {
		return nil, ErrNoMenuProbe
	}
	return s.Menu, nil
}
