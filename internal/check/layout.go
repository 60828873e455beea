package check

import (
	"fmt"
	"math"

	"github.com/nao1215/mobileqa/internal/model"
)

// Check names.
const (
	NameNoHorizontalOverflow = "no_horizontal_overflow"
	NameMenuTriggerPresent   = "menu_trigger_present"
	NameMenuOpensAndCloses   = "menu_opens_and_closes"
	NameTextReadable         = "text_readable"
	NameTapTargets           = "tap_targets"
	NameHeroHeight           = "hero_height"
	NameImagesFitViewport    = "images_fit_viewport"
	NameGridStacks           = "grid_stacks"
	NameFormInputsUsable     = "form_inputs_usable"
	NameFooterNavigable      = "footer_navigable"
	NameTouchSpacing         = "touch_spacing"
	NameViewportMeta         = "viewport_meta"
	NameImageAltText         = "image_alt_text"
)

// OverflowCheck fails when the document is wider than the viewport, which
// makes the page scroll sideways.
type OverflowCheck struct {
	base
}

// NewOverflowCheck creates an OverflowCheck.
func NewOverflowCheck() *OverflowCheck {
	return &OverflowCheck{base{name: NameNoHorizontalOverflow, severity: model.SeverityCritical}}
}

// Evaluate implements Check.
func (c *OverflowCheck) Evaluate(state *PageState) (Outcome, error) {
	snap, err := state.snapshot()
	if err != nil {
		return Outcome{}, err
	}
	if snap.ScrollWidth <= snap.ClientWidth {
		return Pass(), nil
	}
	return Fail("Horizontal scrolling detected: content overflows the viewport", &model.Evidence{
		Measurements: map[string]float64{
			"scroll_width": snap.ScrollWidth,
			"client_width": snap.ClientWidth,
		},
	}), nil
}

// HeroCheck fails when the first hero section is too short to make an
// impression on a phone screen. Pages without a hero pass.
type HeroCheck struct {
	base
	minHeight float64
}

// NewHeroCheck creates a HeroCheck.
func NewHeroCheck(t Thresholds) *HeroCheck {
	return &HeroCheck{
		base:      base{name: NameHeroHeight, severity: model.SeverityLow},
		minHeight: t.MinHeroHeight,
	}
}

// Evaluate implements Check.
func (c *HeroCheck) Evaluate(state *PageState) (Outcome, error) {
	snap, err := state.snapshot()
	if err != nil {
		return Outcome{}, err
	}
	if snap.Hero == nil || snap.Hero.Height >= c.minHeight {
		return Pass(), nil
	}
	height := math.Round(snap.Hero.Height)
	return Fail(fmt.Sprintf("Hero section may be too short on mobile: %.0fpx", height), &model.Evidence{
		Count: 1,
		Measurements: map[string]float64{
			"height":          height,
			"width":           math.Round(snap.Hero.Width),
			"viewport_height": snap.ViewportHeight,
		},
	}), nil
}

// ImageCheck fails when a loaded image is rendered wider than the viewport.
type ImageCheck struct {
	base
}

// NewImageCheck creates an ImageCheck.
func NewImageCheck() *ImageCheck {
	return &ImageCheck{base{name: NameImagesFitViewport, severity: model.SeverityHigh}}
}

// Evaluate implements Check.
func (c *ImageCheck) Evaluate(state *PageState) (Outcome, error) {
	snap, err := state.snapshot()
	if err != nil {
		return Outcome{}, err
	}

	var oversized []model.Sample
	for _, img := range snap.Images {
		if img.NaturalWidth > 0 && img.Width > snap.ViewportWidth {
			oversized = append(oversized, model.Sample{Src: img.Src, Width: img.Width})
		}
	}
	if len(oversized) == 0 {
		return Pass(), nil
	}
	return Fail(fmt.Sprintf("%d image(s) overflow viewport width", len(oversized)),
		evidence(oversized, sampleLimit, map[string]float64{"viewport_width": snap.ViewportWidth})), nil
}

// GridCheck fails when grid or card children still sit side by side on a
// narrow screen instead of stacking.
type GridCheck struct {
	base
	rowTolerance float64
	narrowWidth  float64
}

// NewGridCheck creates a GridCheck.
func NewGridCheck(t Thresholds) *GridCheck {
	return &GridCheck{
		base:         base{name: NameGridStacks, severity: model.SeverityMedium},
		rowTolerance: t.GridRowTolerance,
		narrowWidth:  t.GridNarrowWidth,
	}
}

// Evaluate implements Check.
func (c *GridCheck) Evaluate(state *PageState) (Outcome, error) {
	snap, err := state.snapshot()
	if err != nil {
		return Outcome{}, err
	}

	var unstacked []model.Sample
	for _, g := range snap.Grids {
		if g.Children < 2 {
			continue
		}
		sameRow := math.Abs(g.First.Top-g.Second.Top) < c.rowTolerance
		if sameRow && g.First.Width < c.narrowWidth {
			unstacked = append(unstacked, model.Sample{
				Index:    g.Index,
				Children: g.Children,
				Width:    math.Round(g.First.Width),
			})
		}
	}
	if len(unstacked) == 0 {
		return Pass(), nil
	}
	return Fail(fmt.Sprintf("%d grid(s) may not be stacking properly on mobile", len(unstacked)),
		evidence(unstacked, sampleLimit, nil)), nil
}

// evidence builds bounded evidence from the offending samples.
func evidence(samples []model.Sample, limit int, measurements map[string]float64) *model.Evidence {
	e := &model.Evidence{Count: len(samples), Measurements: measurements}
	if len(samples) > limit {
		samples = samples[:limit]
	}
	e.Samples = samples
	return e
}
