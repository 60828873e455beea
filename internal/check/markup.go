package check

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/mobileqa/internal/model"
)

// Markup is the information extracted from the rendered HTML.
type Markup struct {
	// ViewportMeta is the content of <meta name="viewport">.
	ViewportMeta string

	// HasViewportMeta is true when the meta tag exists.
	HasViewportMeta bool

	// Images lists every <img> element in document order.
	Images []MarkupImage
}

// MarkupImage is an <img> element as written in the markup.
type MarkupImage struct {
	Src    string
	HasAlt bool
}

// ParseMarkup walks the document once and extracts the viewport meta tag
// and the images. The HTML parser tolerates malformed markup.
func ParseMarkup(document string) (*Markup, error) {
	doc, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page markup: %w", err)
	}

	m := &Markup{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				if !m.HasViewportMeta && strings.EqualFold(getAttr(n, "name"), "viewport") {
					m.HasViewportMeta = true
					m.ViewportMeta = getAttr(n, "content")
				}
			case "img":
				_, hasAlt := lookupAttr(n, "alt")
				m.Images = append(m.Images, MarkupImage{Src: getAttr(n, "src"), HasAlt: hasAlt})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return m, nil
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

func getAttr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

// markup parses the snapshot HTML once per page state.
func (s *PageState) markup() (*Markup, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	s.markupOnce.Do(func() {
		s.parsed, s.parseErr = ParseMarkup(snap.HTML)
	})
	return s.parsed, s.parseErr
}

// fileName returns the last path segment of an image source.
func fileName(src string) string {
	if src == "" {
		return ""
	}
	return path.Base(src)
}

// ViewportMetaCheck fails when the page does not declare a device-width
// viewport, which makes mobile browsers render a zoomed-out desktop layout.
type ViewportMetaCheck struct {
	base
}

// NewViewportMetaCheck creates a ViewportMetaCheck.
func NewViewportMetaCheck() *ViewportMetaCheck {
	return &ViewportMetaCheck{base{name: NameViewportMeta, severity: model.SeverityHigh}}
}

// Evaluate implements Check.
func (c *ViewportMetaCheck) Evaluate(state *PageState) (Outcome, error) {
	m, err := state.markup()
	if err != nil {
		return Outcome{}, err
	}
	if !m.HasViewportMeta {
		return Fail("Missing viewport meta tag", nil), nil
	}
	if !viewportHasDeviceWidth(m.ViewportMeta) {
		return Fail(fmt.Sprintf("Viewport meta tag does not set width=device-width: %q", m.ViewportMeta), nil), nil
	}
	return Pass(), nil
}

// viewportHasDeviceWidth parses a viewport content list such as
// "width=device-width, initial-scale=1".
func viewportHasDeviceWidth(content string) bool {
	for _, part := range strings.FieldsFunc(content, func(r rune) bool { return r == ',' || r == ';' }) {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "width") &&
			strings.EqualFold(strings.TrimSpace(value), "device-width") {
			return true
		}
	}
	return false
}

// AltTextCheck fails when images have no alt attribute at all.
// An empty alt is accepted; it marks decorative images.
type AltTextCheck struct {
	base
}

// NewAltTextCheck creates an AltTextCheck.
func NewAltTextCheck() *AltTextCheck {
	return &AltTextCheck{base{name: NameImageAltText, severity: model.SeverityLow}}
}

// Evaluate implements Check.
func (c *AltTextCheck) Evaluate(state *PageState) (Outcome, error) {
	m, err := state.markup()
	if err != nil {
		return Outcome{}, err
	}

	var missing []model.Sample
	for _, img := range m.Images {
		if !img.HasAlt {
			missing = append(missing, model.Sample{Tag: "img", Src: fileName(img.Src)})
		}
	}
	if len(missing) == 0 {
		return Pass(), nil
	}
	return Fail(fmt.Sprintf("%d image(s) missing alt attribute", len(missing)),
		evidence(missing, sampleLimit, nil)), nil
}
