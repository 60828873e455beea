package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Mobile emulation defaults: an iPhone X sized screen.
const (
	DefaultWidth  = 375
	DefaultHeight = 812
	DefaultScale  = 2.0

	// DefaultUserAgent is reported by the emulated device.
	DefaultUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 14_0 like Mac OS X) AppleWebKit/605.1.15 " +
		"(KHTML, like Gecko) Version/14.0 Mobile/15E148 Safari/604.1"
)

// isVisibleFunction is called with the element bound to this.
// It mirrors Session.IsVisible: non-zero height, not display:none,
// not visibility:hidden.
const isVisibleFunction = `function() {
	if (!this.isConnected) return false;
	const style = window.getComputedStyle(this);
	if (style.display === 'none' || style.visibility === 'hidden') return false;
	return this.getBoundingClientRect().height > 0;
}`

// Chrome is a Session backed by a Chrome tab driven through chromedp.
type Chrome struct {
	browserCtx  context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	remoteURL string
	execPath  string
	width     int
	height    int
	scale     float64
	userAgent string
	headers   map[string]string
	logger    *slog.Logger

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Option configures a Chrome session.
type Option func(*Chrome)

// WithRemote attaches to an already running browser at a DevTools WebSocket
// URL instead of launching a local one.
func WithRemote(wsURL string) Option {
	return func(c *Chrome) {
		c.remoteURL = wsURL
	}
}

// WithExecPath sets the Chrome binary to launch.
func WithExecPath(path string) Option {
	return func(c *Chrome) {
		c.execPath = path
	}
}

// WithViewport sets the emulated screen size and device scale factor.
func WithViewport(width, height int, scale float64) Option {
	return func(c *Chrome) {
		c.width = width
		c.height = height
		c.scale = scale
	}
}

// WithUserAgent overrides the emulated user agent.
func WithUserAgent(ua string) Option {
	return func(c *Chrome) {
		c.userAgent = ua
	}
}

// WithHeaders sends extra HTTP headers with every request, e.g. basic auth
// for a staging site.
func WithHeaders(headers map[string]string) Option {
	return func(c *Chrome) {
		c.headers = headers
	}
}

// WithLogger sets the logger for browser diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chrome) {
		c.logger = logger
	}
}

// Open starts a Chrome session with mobile emulation enabled.
// The browser lives until Close is called or ctx is cancelled.
func Open(ctx context.Context, opts ...Option) (*Chrome, error) {
	c := &Chrome{
		width:     DefaultWidth,
		height:    DefaultHeight,
		scale:     DefaultScale,
		userAgent: DefaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var allocCtx context.Context
	if c.remoteURL != "" {
		if err := validateRemoteURL(c.remoteURL); err != nil {
			return nil, err
		}
		allocCtx, c.allocCancel = chromedp.NewRemoteAllocator(ctx, c.remoteURL)
	} else {
		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.NoSandbox,
			chromedp.DisableGPU,
			chromedp.Flag("disable-setuid-sandbox", true),
			chromedp.WindowSize(c.width, c.height),
		)
		if c.execPath != "" {
			allocOpts = append(allocOpts, chromedp.ExecPath(c.execPath))
		}
		allocCtx, c.allocCancel = chromedp.NewExecAllocator(ctx, allocOpts...)
	}

	c.browserCtx, c.cancel = chromedp.NewContext(allocCtx,
		chromedp.WithLogf(c.debugf),
		chromedp.WithErrorf(c.debugf),
	)

	// The first Run launches the browser and opens the tab.
	if err := chromedp.Run(c.browserCtx, c.setupActions()...); err != nil {
		c.cancel()
		c.allocCancel()
		return nil, fmt.Errorf("%w: %w", ErrStart, err)
	}

	c.logger.Debug("browser session started",
		"remote", c.remoteURL != "",
		"viewport", fmt.Sprintf("%dx%d@%gx", c.width, c.height, c.scale))
	return c, nil
}

// NewOpenFunc returns an OpenFunc that calls Open with opts.
func NewOpenFunc(opts ...Option) OpenFunc {
	return func(ctx context.Context) (Session, error) {
		return Open(ctx, opts...)
	}
}

func (c *Chrome) setupActions() []chromedp.Action {
	actions := []chromedp.Action{
		chromedp.EmulateViewport(int64(c.width), int64(c.height),
			chromedp.EmulateScale(c.scale),
			chromedp.EmulateMobile,
			chromedp.EmulateTouch,
		),
		emulation.SetUserAgentOverride(c.userAgent),
		page.SetLifecycleEventsEnabled(true),
		network.Enable(),
	}
	if len(c.headers) > 0 {
		headers := make(network.Headers, len(c.headers))
		for k, v := range c.headers {
			headers[k] = v
		}
		actions = append(actions, network.SetExtraHTTPHeaders(headers))
	}
	return actions
}

func validateRemoteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRemoteURL, err)
	}
	if (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return ErrInvalidRemoteURL
	}
	return nil
}

func (c *Chrome) debugf(format string, args ...any) {
	c.logger.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
}

// actionContext derives a context for chromedp actions from the tab context,
// cancelled when either the tab or ctx is done.
func (c *Chrome) actionContext(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if c.closed.Load() {
		return nil, nil, ErrClosed
	}
	runCtx, cancel := context.WithCancel(c.browserCtx)
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		stop := context.AfterFunc(ctx, cancel)
		return runCtx, func() { stop(); cancelDeadline(); cancel() }, nil
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() { stop(); cancel() }, nil
}

// run executes actions bounded by ctx. The caller's context error wins over
// the error chromedp reports for the interrupted action.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel, err := c.actionContext(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// Navigate implements Session.
func (c *Chrome) Navigate(ctx context.Context, target string, opts NavigateOptions) (*Response, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultNavigationTimeout
	}
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	runCtx, cancel, err := c.actionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var mainFrame cdp.FrameID
	if err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		mainFrame = tree.Frame.ID
		return nil
	})); err != nil {
		return nil, c.navigationError(ctx, err)
	}

	// networkIdle of the previous document must not count, so only accept
	// it after the new document's init event.
	idle := make(chan struct{})
	var started atomic.Bool
	var idleOnce sync.Once
	if opts.WaitUntil == WaitNetworkIdle {
		chromedp.ListenTarget(runCtx, func(ev any) {
			e, ok := ev.(*page.EventLifecycleEvent)
			if !ok || e.FrameID != mainFrame {
				return
			}
			switch e.Name {
			case "init":
				started.Store(true)
			case "networkIdle":
				if started.Load() {
					idleOnce.Do(func() { close(idle) })
				}
			}
		})
	}

	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(target))
	if err != nil {
		return nil, c.navigationError(ctx, err)
	}
	if resp == nil {
		return nil, ErrNoResponse
	}

	if opts.WaitUntil == WaitNetworkIdle {
		select {
		case <-idle:
		case <-runCtx.Done():
			return nil, c.navigationError(ctx, runCtx.Err())
		}
	}

	c.logger.Debug("navigated", "url", resp.URL, "status", resp.Status)
	return &Response{StatusCode: int(resp.Status), URL: resp.URL}, nil
}

func (c *Chrome) navigationError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrNavigation, ctxErr)
	}
	return fmt.Errorf("%w: %w", ErrNavigation, err)
}

// Evaluate implements Session.
func (c *Chrome) Evaluate(ctx context.Context, expression string, out any) error {
	if err := c.run(ctx, chromedp.Evaluate(expression, out)); err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	return nil
}

// QuerySelector implements Session.
func (c *Chrome) QuerySelector(ctx context.Context, selector string) (*Element, error) {
	var nodes []*cdp.Node
	if err := c.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return NewElement(selector, 0, nodes[0]), nil
}

// QuerySelectorAll implements Session.
func (c *Chrome) QuerySelectorAll(ctx context.Context, selector string) ([]*Element, error) {
	var nodes []*cdp.Node
	if err := c.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	elements := make([]*Element, len(nodes))
	for i, n := range nodes {
		elements[i] = NewElement(selector, i, n)
	}
	return elements, nil
}

func nodeOf(el *Element) (*cdp.Node, error) {
	if el == nil {
		return nil, ErrStaleElement
	}
	n, ok := el.Ref().(*cdp.Node)
	if !ok || n == nil {
		return nil, ErrStaleElement
	}
	return n, nil
}

// Click implements Session.
func (c *Chrome) Click(ctx context.Context, el *Element) error {
	n, err := nodeOf(el)
	if err != nil {
		return err
	}
	if err := c.run(ctx, chromedp.MouseClickNode(n)); err != nil {
		return fmt.Errorf("click %q: %w", el.Selector, err)
	}
	return nil
}

// IsVisible implements Session.
func (c *Chrome) IsVisible(ctx context.Context, el *Element) (bool, error) {
	n, err := nodeOf(el)
	if err != nil {
		return false, err
	}

	var visible bool
	err = c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(n.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		res, exception, err := runtime.CallFunctionOn(isVisibleFunction).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exception != nil {
			return exception
		}
		return json.Unmarshal([]byte(res.Value), &visible)
	}))
	if err != nil {
		return false, fmt.Errorf("visibility of %q: %w", el.Selector, err)
	}
	return visible, nil
}

// Screenshot implements Session. Full page captures are encoded as PNG.
func (c *Chrome) Screenshot(ctx context.Context, path string, opts ScreenshotOptions) error {
	var buf []byte
	var action chromedp.Action = chromedp.CaptureScreenshot(&buf)
	if opts.FullPage {
		action = chromedp.FullScreenshot(&buf, 100)
	}
	if err := c.run(ctx, action); err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	return nil
}

// Close implements Session. It closes the tab and, for a local browser,
// terminates the Chrome process.
func (c *Chrome) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		err := chromedp.Cancel(c.browserCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			c.closeErr = err
		}
		c.cancel()
		c.allocCancel()
		c.logger.Debug("browser session closed")
	})
	return c.closeErr
}

var _ Session = (*Chrome)(nil)
