// Package sanitize neutralizes residual script-injection vectors in HTML
// produced by the Markdown converter. The converter already escapes raw
// inline HTML; this package is the second, defense-in-depth layer.
//
// It deliberately does not parse the input into a DOM. The pipeline is a
// fixed sequence of targeted text rewrites over pre-compiled RE2 patterns,
// so every pass is linear in the input size even for hostile input.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxPasses bounds each rewrite's fixed-point iteration. Adjacent or nested
// occurrences can require a second pass; in practice two suffice.
const maxPasses = 10

var (
	// reJavascriptURL and reDataURL match an href/src attribute whose value
	// opens with the dangerous scheme (optional whitespace, any casing).
	// The optional data-blocked- prefix keeps re-sanitizing stable when a
	// value smuggles the scheme more than once.
	reJavascriptURL = regexp.MustCompile(`(?i)\b(?:data-blocked-)?(href|src)(\s*=\s*)(["']?)\s*javascript\s*:`)
	reDataURL       = regexp.MustCompile(`(?i)\b(?:data-blocked-)?(href|src)(\s*=\s*)(["']?)\s*data\s*:`)

	// reEventAttr matches an on* event-handler attribute in quoted or
	// unquoted form. The leading delimiter is captured and preserved; '/'
	// is in the class because it is a valid attribute separator in HTML
	// (<svg/onload=...> parses as a handler).
	reEventAttr = regexp.MustCompile(`(?i)([\s"'/])on[a-z]+\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]*)`)

	// reStyleAttr finds style attributes so reCSSExpression can be applied
	// to their values only (legacy IE expression() script vector).
	reStyleAttr     = regexp.MustCompile(`(?i)\bstyle\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]+)`)
	reCSSExpression = regexp.MustCompile(`(?i)expression\s*\(`)

	// reScriptBlock removes a whole <script>...</script> element; reScriptTag
	// mops up unbalanced opening/closing script tags left behind.
	reScriptBlock = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	reScriptTag   = regexp.MustCompile(`(?i)</?script\b[^>]*>`)
)

// Sanitize rewrites html so that no javascript: or data: URL survives in an
// href/src attribute, no on* event handler or CSS expression() survives, and
// no <script> element survives. It is pure and total: any byte sequence in,
// never panics, and sanitizing twice yields the same output as once.
//
// Blocked URLs are renamed to data-blocked-href / data-blocked-src with the
// scheme dropped, so the tag stays valid and leaves a forensic trace instead
// of silently vanishing.
func Sanitize(html string) string {
	if html == "" {
		return ""
	}

	// Order matters: attribute values are made inert before any tag-level
	// stripping, and script removal runs last as the final backstop.
	s := html
	s = untilStable(s, neutralizeBlockedURLs(reJavascriptURL))
	s = untilStable(s, neutralizeBlockedURLs(reDataURL))
	s = untilStable(s, stripEventHandlers)
	s = untilStable(s, stripCSSExpressions)
	s = untilStable(s, stripScriptElements)
	return s
}

// SanitizeWithPolicy runs the pipeline and then the host-provided bluemonday
// policy, when one is configured. A nil policy degrades to Sanitize.
func SanitizeWithPolicy(html string, policy *bluemonday.Policy) string {
	s := Sanitize(html)
	if policy == nil {
		return s
	}
	return policy.Sanitize(s)
}

// DefaultPolicy returns the stricter allow-list policy offered to hosts that
// want a third layer on top of the rewrite pipeline.
func DefaultPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("code", "pre", "span")
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("target", "rel").OnElements("a")
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// untilStable applies fn until its output stops changing, bounded by
// maxPasses. Removal can expose a new match (two handler attributes sharing
// one delimiter, a tag split around a stripped script block), so a single
// linear pass is not enough on its own.
func untilStable(s string, fn func(string) string) string {
	for i := 0; i < maxPasses; i++ {
		next := fn(s)
		if next == s {
			return next
		}
		s = next
	}
	return s
}

func neutralizeBlockedURLs(re *regexp.Regexp) func(string) string {
	return func(s string) string {
		return re.ReplaceAllStringFunc(s, func(m string) string {
			parts := re.FindStringSubmatch(m)
			if len(parts) != 4 {
				return m
			}
			// Keep the assignment and opening quote; the scheme itself is
			// truncated away, leaving the remainder of the value inert.
			return "data-blocked-" + strings.ToLower(parts[1]) + parts[2] + parts[3]
		})
	}
}

func stripEventHandlers(s string) string {
	return reEventAttr.ReplaceAllString(s, "${1}")
}

func stripCSSExpressions(s string) string {
	return reStyleAttr.ReplaceAllStringFunc(s, func(attr string) string {
		return reCSSExpression.ReplaceAllString(attr, "")
	})
}

func stripScriptElements(s string) string {
	s = reScriptBlock.ReplaceAllString(s, "")
	return reScriptTag.ReplaceAllString(s, "")
}
