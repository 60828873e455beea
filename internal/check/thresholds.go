package check

// Thresholds holds the pixel limits used by the checks.
// The defaults are empirical values from manual QA of marketing sites; they
// can be overridden per project in the config file.
type Thresholds struct {
	// MinFontSize is the smallest readable font size.
	MinFontSize float64 `yaml:"min_font_size"`

	// MinTapTarget is the minimum width and height of a tap target.
	MinTapTarget float64 `yaml:"min_tap_target"`

	// MinHeroHeight is the minimum height of the first hero section.
	MinHeroHeight float64 `yaml:"min_hero_height"`

	// MinInputHeight is the minimum height of a form control.
	MinInputHeight float64 `yaml:"min_input_height"`

	// MinFooterLinkHeight is the minimum height of a footer link.
	MinFooterLinkHeight float64 `yaml:"min_footer_link_height"`

	// MaxSmallFooterLinks is the number of small footer links at which the
	// footer check fails.
	MaxSmallFooterLinks int `yaml:"max_small_footer_links"`

	// GridRowTolerance is the largest top offset between two grid children
	// that still counts as the same row.
	GridRowTolerance float64 `yaml:"grid_row_tolerance"`

	// GridNarrowWidth is the child width below which side-by-side grid
	// children are considered unstacked.
	GridNarrowWidth float64 `yaml:"grid_narrow_width"`

	// MinTouchGap is the minimum horizontal gap between adjacent tap targets.
	MinTouchGap float64 `yaml:"min_touch_gap"`

	// TouchRowTolerance is the largest top offset between two tap targets
	// that still counts as the same row.
	TouchRowTolerance float64 `yaml:"touch_row_tolerance"`

	// MaxCrowdedPairs is the number of crowded pairs at which the touch
	// spacing check fails.
	MaxCrowdedPairs int `yaml:"max_crowded_pairs"`
}

// Default threshold values.
const (
	DefaultMinFontSize         = 14.0
	DefaultMinTapTarget        = 44.0
	DefaultMinHeroHeight       = 200.0
	DefaultMinInputHeight      = 40.0
	DefaultMinFooterLinkHeight = 30.0
	DefaultMaxSmallFooterLinks = 3
	DefaultGridRowTolerance    = 20.0
	DefaultGridNarrowWidth     = 200.0
	DefaultMinTouchGap         = 8.0
	DefaultTouchRowTolerance   = 10.0
	DefaultMaxCrowdedPairs     = 3
)

// Evidence sample limits.
const (
	sampleLimit     = 5
	textSampleLimit = 10
)

// DefaultThresholds returns the default limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinFontSize:         DefaultMinFontSize,
		MinTapTarget:        DefaultMinTapTarget,
		MinHeroHeight:       DefaultMinHeroHeight,
		MinInputHeight:      DefaultMinInputHeight,
		MinFooterLinkHeight: DefaultMinFooterLinkHeight,
		MaxSmallFooterLinks: DefaultMaxSmallFooterLinks,
		GridRowTolerance:    DefaultGridRowTolerance,
		GridNarrowWidth:     DefaultGridNarrowWidth,
		MinTouchGap:         DefaultMinTouchGap,
		TouchRowTolerance:   DefaultTouchRowTolerance,
		MaxCrowdedPairs:     DefaultMaxCrowdedPairs,
	}
}

// WithDefaults returns t with every zero field replaced by its default.
func (t Thresholds) WithDefaults() Thresholds {
	d := DefaultThresholds()
	setFloat := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	setInt := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	setFloat(&t.MinFontSize, d.MinFontSize)
	setFloat(&t.MinTapTarget, d.MinTapTarget)
	setFloat(&t.MinHeroHeight, d.MinHeroHeight)
	setFloat(&t.MinInputHeight, d.MinInputHeight)
	setFloat(&t.MinFooterLinkHeight, d.MinFooterLinkHeight)
	setInt(&t.MaxSmallFooterLinks, d.MaxSmallFooterLinks)
	setFloat(&t.GridRowTolerance, d.GridRowTolerance)
	setFloat(&t.GridNarrowWidth, d.GridNarrowWidth)
	setFloat(&t.MinTouchGap, d.MinTouchGap)
	setFloat(&t.TouchRowTolerance, d.TouchRowTolerance)
	setInt(&t.MaxCrowdedPairs, d.MaxCrowdedPairs)
	return t
}
