package model

import (
	"regexp"
	"strings"
)

// PageSpec identifies one page of the catalog under test.
// It is read-only configuration known before the run starts.
type PageSpec struct {
	// Name is a short identifier such as "homepage" or "market-car-wash".
	// It keys screenshots and report entries, so it must be unique per catalog.
	Name string `json:"name" yaml:"name"`

	// Path is the URL path relative to the site base URL, e.g. "/about.html".
	Path string `json:"path" yaml:"path"`
}

// URL joins the page path onto baseURL.
// Duplicate slashes at the join point are collapsed.
func (p PageSpec) URL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	path := p.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// pageNamePattern restricts page names to characters that are safe in file names.
var pageNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ValidName reports whether name can be used as a page identifier.
// Names become screenshot file names, so only lower-case letters, digits,
// dots, dashes and underscores are accepted.
func ValidName(name string) bool {
	return pageNamePattern.MatchString(name)
}

// nonSlug matches runs of characters that are replaced by a dash in NameFromPath.
var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// NameFromPath derives a page name from a URL path.
// The root path becomes "homepage"; other paths drop their extension and
// join their segments with dashes ("/markets/car-wash.html" → "markets-car-wash").
func NameFromPath(path string) string {
	p := strings.ToLower(strings.TrimSpace(path))
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimSuffix(p, ".html")
	p = strings.TrimSuffix(p, ".htm")
	p = strings.TrimSuffix(p, "/index")
	p = strings.Trim(nonSlug.ReplaceAllString(p, "-"), "-")
	if p == "" {
		return "homepage"
	}
	return p
}

// SpecFromPath builds a PageSpec whose name is derived from path.
func SpecFromPath(path string) PageSpec {
	return PageSpec{Name: NameFromPath(path), Path: path}
}
