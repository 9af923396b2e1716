// Package markup rewrites wiki markup fragments found in edit summaries
// into markdown suitable for a webhook body. It is a pure text transform
// with no retry or ordering concerns.
package markup

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	wikiLink   = regexp.MustCompile(`\[\[([^\]|]+)(?:\|([^\]]+))?\]\]`)
	sectionRef = regexp.MustCompile(`^/\*\s*(.*?)\s*\*/\s*`)
)

// Renderer returns a rewrite function bound to a wiki's article base URL
// (e.g. "https://en.wikipedia.org/wiki"). The returned function is stateless
// and safe for reuse across events.
func Renderer(articleBase string) func(string) string {
	base := strings.TrimRight(articleBase, "/")
	return func(comment string) string {
		out := sectionRef.ReplaceAllString(comment, "→$1: ")
		out = wikiLink.ReplaceAllStringFunc(out, func(m string) string {
			parts := wikiLink.FindStringSubmatch(m)
			target, label := parts[1], parts[2]
			if label == "" {
				label = target
			}
			return fmt.Sprintf("[%s](%s/%s)", label, base, EscapeTitle(target))
		})
		return strings.TrimSpace(out)
	}
}

// EscapeTitle converts a page title into its URL path form: spaces become
// underscores and the rest is percent-encoded.
func EscapeTitle(title string) string {
	return url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}
