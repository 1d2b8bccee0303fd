package site

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var descClass = regexp.MustCompile(`^(desc-table|desc-image|no-border-cell)$`)

// newSanitizer returns the filter applied to rendered product descriptions.
// Feed text is free-form, so anything beyond the renderer's own markup is
// stripped.
func newSanitizer() func(string) string {
	p := bluemonday.UGCPolicy()
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td", "div", "p", "br", "img")
	p.AllowAttrs("class").Matching(descClass).OnElements("table", "div", "th", "td")
	p.AllowAttrs("rowspan", "colspan").Matching(bluemonday.Integer).OnElements("th", "td")
	p.AllowAttrs("src").OnElements("img")
	p.AllowURLSchemes("http", "https")
	return p.Sanitize
}
