package check

import (
	"fmt"
	"math"

	"github.com/nao1215/mobileqa/internal/model"
)

// TextCheck fails when visible text is rendered below the minimum font size.
type TextCheck struct {
	base
	minFontSize float64
}

// NewTextCheck creates a TextCheck.
func NewTextCheck(t Thresholds) *TextCheck {
	return &TextCheck{
		base:        base{name: NameTextReadable, severity: model.SeverityMedium},
		minFontSize: t.MinFontSize,
	}
}

// Evaluate implements Check.
func (c *TextCheck) Evaluate(state *PageState) (Outcome, error) {
	snap, err := state.snapshot()
	if err != nil {
		return Outcome{}, err
	}

	var small []model.Sample
	for _, el := range snap.Texts {
		if el.Text != "" && el.FontSize < c.minFontSize {
			small = append(small, model.Sample{Tag: el.Tag, Text: el.Text, FontSize: el.FontSize})
		}
	}
	if len(small) == 0 {
		return Pass(), nil
	}
	return Fail(fmt.Sprintf("Found %d elements with font-size < %gpx", len(small), c.minFontSize),
		evidence(small, textSampleLimit, nil)), nil
}

// TapTargetCheck fails when a visible button is smaller than the minimum
// tap target in either dimension.
type TapTargetCheck struct {
	base
	minSize float64
}

// NewTapTargetCheck creates a TapTargetCheck.
func NewTapTargetCheck(t Thresholds) *TapTargetCheck {
	return &TapTargetCheck{
		base:    base{name: NameTapTargets, severity: model.SeverityMedium},
		minSize: t.MinTapTarget,
	}
}

// Evaluate implements Check.
func (c *TapTargetCheck) Evaluate(state *PageState) (Outcome, error) {
	snap, err := state.snapshot()
	if err != nil {
		return Outcome{}, err
	}

	var small []model.Sample
	for _, b := range snap.TapTargets {
		if b.Width <= 0 {
			continue
		}
		if b.Width < c.minSize || b.Height < c.minSize {
			small = append(small, model.Sample{
				Tag:    b.Tag,
				Text:   b.Text,
				Width:  math.Round(b.Width),
				Height: math.Round(b.Height),
			})
		}
	}
	if len(small) == 0 {
		return Pass(), nil
	}
	return Fail(fmt.Sprintf("Found %d buttons smaller than %gx%gpx tap target", len(small), c.minSize, c.minSize),
		evidence(small, sampleLimit, nil)), nil
}

// FormCheck fails when a visible form control is too short to tap reliably.
type FormCheck struct {
	base
	minHeight float64
}

// NewFormCheck creates a FormCheck.
func NewFormCheck(t Thresholds) *FormCheck {
	return &FormCheck{
		base:      base{name: NameFormInputsUsable, severity: model.SeverityMedium},
		minHeight: t.MinInputHeight,
	}
}

// Evaluate implements Check.
func (c *FormCheck) Evaluate(state *PageState) (Outcome, error) {
	snap, err := state.snapshot()
	if err != nil {
		return Outcome{}, err
	}

	var small []model.Sample
	forms := make(map[int]bool)
	for _, fc := range snap.FormControls {
		if fc.Height > 0 && fc.Height < c.minHeight {
			small = append(small, model.Sample{Type: fc.Type, Index: fc.Form, Height: math.Round(fc.Height)})
			forms[fc.Form] = true
		}
	}
	if len(small) == 0 {
		return Pass(), nil
	}
	return Fail(fmt.Sprintf("%d form input(s) in %d form(s) may be too small for mobile", len(small), len(forms)),
		evidence(small, sampleLimit, nil)), nil
}

// FooterCheck fails when the footer has several links too short to tap.
// Pages without a footer pass.
type FooterCheck struct {
	base
	minHeight float64
	maxSmall  int
}

// NewFooterCheck creates a FooterCheck.
func NewFooterCheck(t Thresholds) *FooterCheck {
	return &FooterCheck{
		base:      base{name: NameFooterNavigable, severity: model.SeverityLow},
		minHeight: t.MinFooterLinkHeight,
		maxSmall:  t.MaxSmallFooterLinks,
	}
}

// Evaluate implements Check.
func (c *FooterCheck) Evaluate(state *PageState) (Outcome, error) {
	snap, err := state.snapshot()
	if err != nil {
		return Outcome{}, err
	}
	if snap.Footer == nil {
		return Pass(), nil
	}

	var small []model.Sample
	for _, link := range snap.Footer.Links {
		if link.Height > 0 && link.Height < c.minHeight {
			small = append(small, model.Sample{Text: link.Text, Height: math.Round(link.Height)})
		}
	}
	if len(small) < c.maxSmall {
		return Pass(), nil
	}
	return Fail(fmt.Sprintf("%d footer links may be hard to tap on mobile", len(small)),
		evidence(small, sampleLimit, map[string]float64{"links": float64(len(snap.Footer.Links))})), nil
}

// SpacingCheck looks for tap targets in the same row that are too close to
// each other. Its failures are advisory.
type SpacingCheck struct {
	base
	minGap       float64
	rowTolerance float64
	maxPairs     int
}

// NewSpacingCheck creates a SpacingCheck.
func NewSpacingCheck(t Thresholds) *SpacingCheck {
	return &SpacingCheck{
		base:         base{name: NameTouchSpacing, severity: model.SeverityLow, advisory: true},
		minGap:       t.MinTouchGap,
		rowTolerance: t.TouchRowTolerance,
		maxPairs:     t.MaxCrowdedPairs,
	}
}

// Evaluate implements Check.
//
// Each target is paired with the first later target in the same row that is
// closer than the minimum gap. Nested targets (one box inside the other) are
// not pairs. Every pair is counted; only the evidence samples are bounded.
func (c *SpacingCheck) Evaluate(state *PageState) (Outcome, error) {
	snap, err := state.snapshot()
	if err != nil {
		return Outcome{}, err
	}

	targets := snap.Clickables
	var crowded []model.Sample
	for i := 0; i < len(targets); i++ {
		a := targets[i]
		for j := i + 1; j < len(targets); j++ {
			b := targets[j]
			if math.Abs(a.Top-b.Top) >= c.rowTolerance {
				continue
			}
			if a.Contains(b.Rect) || b.Contains(a.Rect) {
				continue
			}
			gap := horizontalGap(a.Rect, b.Rect)
			if gap < c.minGap {
				crowded = append(crowded, model.Sample{Tag: a.Tag, Text: a.Text, Gap: math.Round(gap)})
				break
			}
		}
	}
	if len(crowded) < c.maxPairs {
		return Pass(), nil
	}
	return Fail(fmt.Sprintf("%d pairs of tap targets are closer than %gpx", len(crowded), c.minGap),
		evidence(crowded, sampleLimit, nil)), nil
}

// horizontalGap returns the empty space between two boxes along the x axis,
// zero when they overlap.
func horizontalGap(a, b Rect) float64 {
	gap := math.Max(a.Left, b.Left) - math.Min(a.Right(), b.Right())
	return math.Max(gap, 0)
}
