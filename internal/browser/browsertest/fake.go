// Package browsertest provides an in-memory browser.Session for tests.
//
// A Session serves a fixed set of pages keyed by URL. Each page declares its
// HTTP status, the value returned by script evaluation, and a small element
// model that Click handlers may mutate, which is enough to exercise
// navigation, menu probing and check execution without a real browser.
package browsertest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nao1215/mobileqa/internal/browser"
)

// ErrNoEvaluator is returned by Evaluate on pages without an Eval function.
var ErrNoEvaluator = errors.New("page has no evaluator")

// Node is one element of a fake page.
type Node struct {
	// Name identifies the node in tests.
	Name string

	// Visible is returned by IsVisible.
	Visible bool

	// OnClick runs when the node is clicked. It may change other nodes.
	OnClick func(p *Page)

	// ClickErr is returned by Click when set.
	ClickErr error
}

// Page is a fake document.
type Page struct {
	// Status is the HTTP status code of the document. Zero means 200.
	Status int

	// NavigateErr fails navigation with this error.
	NavigateErr error

	// Delay blocks navigation for this long, or until the context is done.
	Delay time.Duration

	// RedirectTo, when set, is reported as the final URL of the navigation.
	RedirectTo string

	// Eval produces the result of Evaluate. The result is round-tripped
	// through JSON into the caller's value.
	Eval func(expression string) (any, error)

	// Elements maps a CSS selector to the nodes it matches, in document order.
	Elements map[string][]*Node
}

// Session is a fake browser.Session. The zero value is not usable; call New.
type Session struct {
	mu          sync.Mutex
	pages       map[string]*Page
	current     *Page
	closed      bool
	closeCount  int
	visited     []string
	waits       []browser.WaitUntil
	clicks      []string
	screenshots []string

	// ScreenshotErr makes every Screenshot call fail.
	ScreenshotErr error
}

// New creates a fake session serving pages keyed by absolute URL.
// URLs that are not in pages answer with HTTP 404.
func New(pages map[string]*Page) *Session {
	return &Session{pages: pages}
}

// Navigate implements browser.Session.
func (s *Session) Navigate(ctx context.Context, url string, opts browser.NavigateOptions) (*browser.Response, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, browser.ErrClosed
	}
	s.visited = append(s.visited, url)
	s.waits = append(s.waits, opts.WaitUntil)
	p, ok := s.pages[url]
	s.mu.Unlock()

	if !ok {
		s.setCurrent(&Page{Status: 404})
		return &browser.Response{StatusCode: 404, URL: url}, nil
	}

	if p.Delay > 0 {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = browser.DefaultNavigationTimeout
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", browser.ErrNavigation, ctx.Err())
		}
	}
	if p.NavigateErr != nil {
		return nil, fmt.Errorf("%w: %w", browser.ErrNavigation, p.NavigateErr)
	}

	s.setCurrent(p)
	status := p.Status
	if status == 0 {
		status = 200
	}
	final := url
	if p.RedirectTo != "" {
		final = p.RedirectTo
	}
	return &browser.Response{StatusCode: status, URL: final}, nil
}

func (s *Session) setCurrent(p *Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = p
}

func (s *Session) page() (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, browser.ErrClosed
	}
	if s.current == nil {
		return nil, errors.New("no page loaded")
	}
	return s.current, nil
}

// Evaluate implements browser.Session.
func (s *Session) Evaluate(ctx context.Context, expression string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.page()
	if err != nil {
		return err
	}
	if p.Eval == nil {
		return ErrNoEvaluator
	}
	v, err := p.Eval(expression)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// QuerySelector implements browser.Session.
func (s *Session) QuerySelector(ctx context.Context, selector string) (*browser.Element, error) {
	all, err := s.QuerySelectorAll(ctx, selector)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

// QuerySelectorAll implements browser.Session.
func (s *Session) QuerySelectorAll(ctx context.Context, selector string) ([]*browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.page()
	if err != nil {
		return nil, err
	}
	nodes := p.Elements[selector]
	elements := make([]*browser.Element, len(nodes))
	for i, n := range nodes {
		elements[i] = browser.NewElement(selector, i, n)
	}
	return elements, nil
}

func nodeOf(el *browser.Element) (*Node, error) {
	if el == nil {
		return nil, browser.ErrStaleElement
	}
	n, ok := el.Ref().(*Node)
	if !ok {
		return nil, browser.ErrStaleElement
	}
	return n, nil
}

// Click implements browser.Session.
func (s *Session) Click(ctx context.Context, el *browser.Element) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := nodeOf(el)
	if err != nil {
		return err
	}
	p, err := s.page()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.clicks = append(s.clicks, n.Name)
	s.mu.Unlock()
	if n.ClickErr != nil {
		return n.ClickErr
	}
	if n.OnClick != nil {
		n.OnClick(p)
	}
	return nil
}

// IsVisible implements browser.Session.
func (s *Session) IsVisible(ctx context.Context, el *browser.Element) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	n, err := nodeOf(el)
	if err != nil {
		return false, err
	}
	return n.Visible, nil
}

// Screenshot implements browser.Session. It writes a placeholder file.
func (s *Session) Screenshot(ctx context.Context, path string, _ browser.ScreenshotOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.ScreenshotErr != nil {
		return s.ScreenshotErr
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte("png"), 0o600); err != nil {
		return err
	}
	s.mu.Lock()
	s.screenshots = append(s.screenshots, path)
	s.mu.Unlock()
	return nil
}

// Close implements browser.Session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.closeCount++
	return nil
}

// CloseCount returns how many times Close was called.
func (s *Session) CloseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCount
}

// Visited returns the navigated URLs in order.
func (s *Session) Visited() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visited...)
}

// Waits returns the completion signal requested by each navigation.
func (s *Session) Waits() []browser.WaitUntil {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]browser.WaitUntil(nil), s.waits...)
}

// Clicks returns the names of clicked nodes in order.
func (s *Session) Clicks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.clicks...)
}

// Screenshots returns the paths of written screenshots in order.
func (s *Session) Screenshots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.screenshots...)
}

// ToggleMenu returns a Page whose trigger node shows links while open.
// Clicking the trigger toggles every node under linkSelector.
func ToggleMenu(triggerSelector, linkSelector string, links int) *Page {
	nodes := make([]*Node, links)
	for i := range nodes {
		nodes[i] = &Node{Name: fmt.Sprintf("link-%d", i)}
	}
	trigger := &Node{Name: "trigger", Visible: true}
	trigger.OnClick = func(p *Page) {
		for _, n := range p.Elements[linkSelector] {
			n.Visible = !n.Visible
		}
	}
	return &Page{
		Elements: map[string][]*Node{
			triggerSelector: {trigger},
			linkSelector:    nodes,
		},
	}
}

var _ browser.Session = (*Session)(nil)
