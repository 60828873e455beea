package config

import (
	"maps"
	"time"

	"github.com/nao1215/mobileqa/internal/check"
	"github.com/nao1215/mobileqa/internal/model"
)

// File represents the structure of the .mobileqa configuration file.
//
//	base_url: https://staging.example.com
//	pages:
//	  - name: homepage
//	    path: /
//	  - name: about
//	    path: /about.html
//	wait_until: load
//	timeouts:
//	  navigation: 45s
//	  settle: 0s
type File struct {
	// BaseURL is the site under test.
	BaseURL string `yaml:"base_url,omitempty"`

	// Pages is the catalog in run order.
	Pages []model.PageSpec `yaml:"pages,omitempty"`

	// Viewport overrides the emulated screen. Zero fields keep the default.
	Viewport model.Viewport `yaml:"viewport,omitempty"`

	// UserAgent overrides the emulated device's user agent.
	UserAgent string `yaml:"user_agent,omitempty"`

	// Headers are sent with every request, e.g. staging basic auth.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Thresholds overrides check limits. Zero fields keep the default.
	Thresholds check.Thresholds `yaml:"thresholds,omitempty"`

	// DisabledChecks names built-in checks to skip.
	DisabledChecks []string `yaml:"disabled_checks,omitempty"`

	// WaitUntil is the navigation completion signal: "networkidle" or "load".
	WaitUntil string `yaml:"wait_until,omitempty"`

	// Timeouts overrides waits and timeouts.
	Timeouts Timeouts `yaml:"timeouts,omitempty"`

	// OutputDir overrides the screenshot and results directory.
	OutputDir string `yaml:"output_dir,omitempty"`
}

// Timeouts holds the duration settings of the config file.
// Values use Go duration syntax ("30s", "500ms"). A key that is present
// overrides the default even when its value is zero, so "settle: 0s"
// disables the settle delay.
type Timeouts struct {
	Navigation *time.Duration `yaml:"navigation,omitempty"`
	Page       *time.Duration `yaml:"page,omitempty"`
	Settle     *time.Duration `yaml:"settle,omitempty"`
	MenuOpen   *time.Duration `yaml:"menu_open,omitempty"`
	MenuClose  *time.Duration `yaml:"menu_close,omitempty"`
}

// Apply copies every value set in the file onto c.
// Unset values leave c unchanged, so Apply is called on a NewConfig result
// before command line flags are applied.
func (f *File) Apply(c *Config) {
	if f.BaseURL != "" {
		c.BaseURL = f.BaseURL
	}
	if len(f.Pages) > 0 {
		c.Pages = append([]model.PageSpec(nil), f.Pages...)
	}

	if f.Viewport.Width > 0 {
		c.Viewport.Width = f.Viewport.Width
	}
	if f.Viewport.Height > 0 {
		c.Viewport.Height = f.Viewport.Height
	}
	if f.Viewport.Scale > 0 {
		c.Viewport.Scale = f.Viewport.Scale
	}

	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if len(f.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(f.Headers))
		}
		maps.Copy(c.Headers, f.Headers)
	}

	c.Thresholds = f.Thresholds
	c.DisabledChecks = append(c.DisabledChecks, f.DisabledChecks...)

	if f.WaitUntil != "" {
		c.WaitUntil = f.WaitUntil
	}
	setDuration(&c.NavigationTimeout, f.Timeouts.Navigation)
	setDuration(&c.PageTimeout, f.Timeouts.Page)
	setDuration(&c.SettleDelay, f.Timeouts.Settle)
	setDuration(&c.MenuOpenWait, f.Timeouts.MenuOpen)
	setDuration(&c.MenuCloseWait, f.Timeouts.MenuClose)

	if f.OutputDir != "" {
		c.OutputDir = f.OutputDir
	}
}

func setDuration(dst *time.Duration, v *time.Duration) {
	if v != nil {
		*dst = *v
	}
}
