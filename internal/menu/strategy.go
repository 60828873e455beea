package menu

// Strategy is one way of finding a menu trigger.
type Strategy struct {
	// Name identifies the strategy in results and logs.
	Name string `json:"name" yaml:"name"`

	// Selector is the CSS selector whose first match is the trigger.
	Selector string `json:"selector" yaml:"selector"`
}

// DefaultStrategies returns the built-in trigger strategies in precedence
// order. Accessibility-oriented selectors come before class names, and the
// structural "nav button" fallback comes last. The first strategy whose
// first match is visible wins.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "aria-label", Selector: `button[aria-label*="menu" i]`},
		{Name: "aria-expanded", Selector: `button[aria-expanded]`},
		{Name: "class-names", Selector: `.mobile-menu-toggle, .hamburger, .mobile-menu-btn, .menu-toggle, [data-mobile-menu]`},
		{Name: "structural", Selector: `nav button`},
	}
}

// Selectors used to observe the menu state.
const (
	// DefaultLinkSelector matches navigation links whose visibility tells
	// whether the menu is open.
	DefaultLinkSelector = `nav a, .mobile-nav a, .nav-links a, .fullscreen-menu a, #fullscreen-menu a`

	// DefaultCloseSelector matches explicit close buttons inside an open menu.
	DefaultCloseSelector = `.menu-close, button[aria-label*="close" i]`
)
