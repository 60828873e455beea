package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func TestValidateRemoteURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"websocket", "ws://127.0.0.1:9222/devtools/browser/abc", false},
		{"secure websocket", "wss://browser.example.com/devtools/browser/abc", false},
		{"http is rejected", "http://127.0.0.1:9222", true},
		{"missing host", "ws:///devtools", true},
		{"garbage", "::not a url", true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := validateRemoteURL(tc.url)
			if tc.wantErr && !errors.Is(err, ErrInvalidRemoteURL) {
				t.Errorf("expected ErrInvalidRemoteURL, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestOpenRejectsInvalidRemote(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), WithRemote("http://localhost:9222"))
	if !errors.Is(err, ErrInvalidRemoteURL) {
		t.Errorf("expected ErrInvalidRemoteURL, got %v", err)
	}
}

func TestOptions(t *testing.T) {
	t.Parallel()

	c := &Chrome{}
	for _, opt := range []Option{
		WithViewport(390, 844, 3),
		WithUserAgent("test-agent"),
		WithHeaders(map[string]string{"Authorization": "Basic x"}),
		WithExecPath("/usr/bin/chromium"),
		WithRemote("ws://127.0.0.1:9222/devtools/browser/1"),
	} {
		opt(c)
	}

	if c.width != 390 || c.height != 844 || c.scale != 3 {
		t.Errorf("viewport not applied: %dx%d@%g", c.width, c.height, c.scale)
	}
	if c.userAgent != "test-agent" {
		t.Errorf("user agent not applied: %q", c.userAgent)
	}
	if c.headers["Authorization"] != "Basic x" {
		t.Error("headers not applied")
	}
	if c.execPath != "/usr/bin/chromium" {
		t.Errorf("exec path not applied: %q", c.execPath)
	}
	if c.remoteURL == "" {
		t.Error("remote URL not applied")
	}
}

func TestWaitUntilString(t *testing.T) {
	t.Parallel()

	if WaitLoad.String() != "load" || WaitNetworkIdle.String() != "networkidle" || WaitUntil(9).String() != "unknown" {
		t.Error("unexpected WaitUntil labels")
	}
}

func TestParseWaitUntil(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in      string
		want    WaitUntil
		wantErr bool
	}{
		{in: "load", want: WaitLoad},
		{in: " NetworkIdle ", want: WaitNetworkIdle},
		{in: "domcontentloaded", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := ParseWaitUntil(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownWaitUntil) {
				t.Errorf("ParseWaitUntil(%q): expected ErrUnknownWaitUntil, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseWaitUntil(%q) = %s, %v; expected %s", tc.in, got, err, tc.want)
		}
	}
}

// findChrome returns the path of a local Chrome binary, or "" if none exists.
func findChrome() string {
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// TestChromeSmoke drives a real browser against a local server.
func TestChromeSmoke(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	chrome := findChrome()
	if chrome == "" {
		t.Skip("no Chrome binary found")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<!doctype html><html><head><meta name="viewport" content="width=device-width"></head>
<body><nav><button class="menu-toggle" style="width:48px;height:48px">Menu</button>
<a href="/a" style="display:none">A</a></nav></body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	session, err := Open(ctx, WithExecPath(chrome))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
		if err := session.Close(); err != nil {
			t.Errorf("second Close: %v", err)
		}
	}()

	resp, err := session.Navigate(ctx, server.URL+"/", NavigateOptions{WaitUntil: WaitNetworkIdle, Timeout: 20 * time.Second})
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, expected 200", resp.StatusCode)
	}

	var width int
	if err := session.Evaluate(ctx, "window.innerWidth", &width); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if width != DefaultWidth {
		t.Errorf("innerWidth = %d, expected %d", width, DefaultWidth)
	}

	button, err := session.QuerySelector(ctx, ".menu-toggle")
	if err != nil || button == nil {
		t.Fatalf("QuerySelector: %v, %v", button, err)
	}
	if visible, err := session.IsVisible(ctx, button); err != nil || !visible {
		t.Errorf("button visible = %v, %v", visible, err)
	}

	links, err := session.QuerySelectorAll(ctx, "nav a")
	if err != nil || len(links) != 1 {
		t.Fatalf("QuerySelectorAll: %d, %v", len(links), err)
	}
	if visible, err := session.IsVisible(ctx, links[0]); err != nil || visible {
		t.Errorf("hidden link visible = %v, %v", visible, err)
	}

	missing, err := session.QuerySelector(ctx, ".does-not-exist")
	if err != nil || missing != nil {
		t.Errorf("expected no element, got %v, %v", missing, err)
	}

	shot := filepath.Join(t.TempDir(), "shots", "home.png")
	if err := session.Screenshot(ctx, shot, ScreenshotOptions{FullPage: true}); err != nil {
		t.Fatalf("Screenshot: %v", err)
	}
	if info, err := os.Stat(shot); err != nil || info.Size() == 0 {
		t.Errorf("screenshot not written: %v", err)
	}

	resp, err = session.Navigate(ctx, server.URL+"/missing.html", NavigateOptions{Timeout: 20 * time.Second})
	if err != nil {
		t.Fatalf("Navigate to missing page: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", resp.StatusCode)
	}
}
