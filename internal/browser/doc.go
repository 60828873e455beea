// Package browser provides the headless browser session used by mobileqa.
//
// The rest of the harness talks to the browser only through the Session
// interface: navigate, evaluate a script, query elements, click, check
// visibility and take screenshots. Chrome implements Session on top of
// chromedp, either by launching a local headless Chrome or by attaching to a
// remote DevTools endpoint.
//
// A Session holds one tab and therefore one DOM at a time. It is not safe for
// concurrent use; pages are processed one after another on the same session.
//
// The browsertest subpackage provides an in-memory Session for tests.
package browser
