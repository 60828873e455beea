package menu

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/mobileqa/internal/browser"
)

// Default waits after clicking, to let menu animations finish.
const (
	DefaultOpenWait  = 500 * time.Millisecond
	DefaultCloseWait = 300 * time.Millisecond
)

// Result is the outcome of probing a page's mobile menu.
type Result struct {
	// TriggerFound is true when a visible trigger matched a strategy.
	TriggerFound bool `json:"trigger_found"`

	// Opened is true when clicking the trigger revealed more navigation links.
	Opened bool `json:"opened"`

	// Closed is true when the close click hid the revealed links again.
	Closed bool `json:"closed"`

	// Strategy is the name of the strategy that found the trigger.
	Strategy string `json:"strategy,omitempty"`

	// Visible navigation link counts before opening, while open, and after closing.
	LinksBefore int `json:"links_before"`
	LinksOpen   int `json:"links_open"`
	LinksAfter  int `json:"links_after"`

	// Error describes a browser fault during the interaction.
	Error string `json:"error,omitempty"`
}

// Options configures Probe.
type Options struct {
	// Strategies are tried in order. Empty means DefaultStrategies.
	Strategies []Strategy

	// LinkSelector matches the navigation links to count.
	LinkSelector string

	// CloseSelector matches explicit close buttons.
	CloseSelector string

	// OpenWait and CloseWait are the delays after each click.
	OpenWait  time.Duration
	CloseWait time.Duration

	// OnOpen is called while the menu is open, e.g. to take a screenshot.
	// Its error is logged and otherwise ignored.
	OnOpen func(ctx context.Context) error

	// Logger receives debug output. Nil means slog.Default.
	Logger *slog.Logger
}

// DefaultOptions returns the options used by the page runner.
func DefaultOptions() Options {
	return Options{
		Strategies:    DefaultStrategies(),
		LinkSelector:  DefaultLinkSelector,
		CloseSelector: DefaultCloseSelector,
		OpenWait:      DefaultOpenWait,
		CloseWait:     DefaultCloseWait,
	}
}

// Probe finds the menu trigger, opens the menu and closes it again.
//
// Opened means the number of visible navigation links grew after the click.
// Closed means it dropped back to at most the initial count. Probe does not
// try to close a menu that did not open.
func Probe(ctx context.Context, session browser.Session, opts Options) (Result, error) {
	opts = withDefaults(opts)
	logger := opts.Logger

	var result Result

	trigger, strategy, err := findTrigger(ctx, session, opts.Strategies, logger)
	if err != nil {
		return result, err
	}
	if trigger == nil {
		logger.Debug("no menu trigger found")
		return result, nil
	}
	result.TriggerFound = true
	result.Strategy = strategy

	fault := func(step string, err error) (Result, error) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		result.Error = fmt.Sprintf("%s: %v", step, err)
		logger.Debug("menu interaction failed", "step", step, "error", err)
		return result, nil
	}

	if result.LinksBefore, err = countVisible(ctx, session, opts.LinkSelector); err != nil {
		return fault("count links", err)
	}

	if err := session.Click(ctx, trigger); err != nil {
		return fault("open menu", err)
	}
	if err := sleep(ctx, opts.OpenWait); err != nil {
		return result, err
	}
	if result.LinksOpen, err = countVisible(ctx, session, opts.LinkSelector); err != nil {
		return fault("count links", err)
	}
	result.Opened = result.LinksOpen > result.LinksBefore
	if !result.Opened {
		logger.Debug("menu did not open", "strategy", strategy, "links", result.LinksOpen)
		return result, nil
	}

	if opts.OnOpen != nil {
		if err := opts.OnOpen(ctx); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			logger.Warn("menu open hook failed", "error", err)
		}
	}

	closer, err := findVisible(ctx, session, opts.CloseSelector)
	if err != nil {
		return fault("find close button", err)
	}
	if closer == nil {
		closer = trigger
	}
	if err := session.Click(ctx, closer); err != nil {
		return fault("close menu", err)
	}
	if err := sleep(ctx, opts.CloseWait); err != nil {
		return result, err
	}
	if result.LinksAfter, err = countVisible(ctx, session, opts.LinkSelector); err != nil {
		return fault("count links", err)
	}
	result.Closed = result.LinksAfter <= result.LinksBefore

	logger.Debug("menu probed",
		"strategy", strategy,
		"opened", result.Opened,
		"closed", result.Closed)
	return result, nil
}

func withDefaults(opts Options) Options {
	defaults := DefaultOptions()
	if len(opts.Strategies) == 0 {
		opts.Strategies = defaults.Strategies
	}
	if opts.LinkSelector == "" {
		opts.LinkSelector = defaults.LinkSelector
	}
	if opts.CloseSelector == "" {
		opts.CloseSelector = defaults.CloseSelector
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts
}

// findTrigger returns the first visible element of the first strategy that
// has one. A hidden match does not end a strategy: later matches of the same
// selector are still considered. Strategies whose query fails are skipped.
func findTrigger(ctx context.Context, session browser.Session, strategies []Strategy, logger *slog.Logger) (*browser.Element, string, error) {
	for _, s := range strategies {
		el, err := findVisible(ctx, session, s.Selector)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			logger.Debug("menu strategy query failed", "strategy", s.Name, "error", err)
			continue
		}
		if el != nil {
			return el, s.Name, nil
		}
	}
	return nil, "", nil
}

func findVisible(ctx context.Context, session browser.Session, selector string) (*browser.Element, error) {
	elements, err := session.QuerySelectorAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	for _, el := range elements {
		visible, err := session.IsVisible(ctx, el)
		if err != nil {
			return nil, err
		}
		if visible {
			return el, nil
		}
	}
	return nil, nil
}

func countVisible(ctx context.Context, session browser.Session, selector string) (int, error) {
	elements, err := session.QuerySelectorAll(ctx, selector)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, el := range elements {
		visible, err := session.IsVisible(ctx, el)
		if err != nil {
			return 0, err
		}
		if visible {
			count++
		}
	}
	return count, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
