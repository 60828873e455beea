package check

import (
	"github.com/nao1215/mobileqa/internal/model"
)

// MenuTriggerCheck fails when no mobile menu trigger was found.
type MenuTriggerCheck struct {
	base
}

// NewMenuTriggerCheck creates a MenuTriggerCheck.
func NewMenuTriggerCheck() *MenuTriggerCheck {
	return &MenuTriggerCheck{base{name: NameMenuTriggerPresent, severity: model.SeverityHigh}}
}

// Evaluate implements Check.
func (c *MenuTriggerCheck) Evaluate(state *PageState) (Outcome, error) {
	probe, err := state.menuResult()
	if err != nil {
		return Outcome{}, err
	}
	if probe.TriggerFound {
		return Pass(), nil
	}
	return Fail("Mobile hamburger menu not found or not visible", nil), nil
}

// MenuBehaviorCheck fails when a found menu trigger does not open and close
// the menu. Pages without a trigger pass; menu_trigger_present reports them.
type MenuBehaviorCheck struct {
	base
}

// NewMenuBehaviorCheck creates a MenuBehaviorCheck.
func NewMenuBehaviorCheck() *MenuBehaviorCheck {
	return &MenuBehaviorCheck{base{name: NameMenuOpensAndCloses, severity: model.SeverityMedium}}
}

// Evaluate implements Check.
func (c *MenuBehaviorCheck) Evaluate(state *PageState) (Outcome, error) {
	probe, err := state.menuResult()
	if err != nil {
		return Outcome{}, err
	}
	if !probe.TriggerFound {
		return Pass(), nil
	}

	ev := &model.Evidence{
		Measurements: map[string]float64{
			"links_before": float64(probe.LinksBefore),
			"links_open":   float64(probe.LinksOpen),
			"links_after":  float64(probe.LinksAfter),
		},
	}
	switch {
	case probe.Error != "":
		return Fail("Menu interaction error: "+probe.Error, ev), nil
	case !probe.Opened:
		return Fail("Mobile menu did not reveal navigation links when opened", ev), nil
	case !probe.Closed:
		return Fail("Mobile menu did not close", ev), nil
	default:
		return Pass(), nil
	}
}
