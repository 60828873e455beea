package check

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/nao1215/mobileqa/internal/browser"
)

func findChrome() string {
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// TestCollectInChrome runs the snapshot script in a real browser.
func TestCollectInChrome(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	chrome := findChrome()
	if chrome == "" {
		t.Skip("no Chrome binary found")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<!doctype html><html><body>
<form>
  <input name="visible" style="height:20px">
  <input name="hidden" style="height:20px;visibility:hidden">
  <input name="gone" style="height:20px;display:none">
</form>
</body></html>`)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	session, err := browser.Open(ctx, browser.WithExecPath(chrome))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer session.Close()

	if _, err := session.Navigate(ctx, server.URL+"/", browser.NavigateOptions{Timeout: 20 * time.Second}); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	snap, err := Collect(ctx, session)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(snap.FormControls) != 1 {
		t.Fatalf("got %d form controls, expected only the visible one: %+v", len(snap.FormControls), snap.FormControls)
	}

	out, err := NewFormCheck(DefaultThresholds()).Evaluate(&PageState{Snapshot: snap})
	if err != nil {
		t.Fatal(err)
	}
	if out.Passed || out.Evidence.Count != 1 {
		t.Errorf("expected one short input, got passed=%v %+v", out.Passed, out.Evidence)
	}
}
