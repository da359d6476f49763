// Package format models the content format of a thread entry and the
// priority rules that pick one for newly created content.
package format

import (
	"strings"

	"github.com/exedev/ticketmd/internal/detect"
)

// Format is the stored content format of a thread entry. It drives which
// render path is used at display time.
type Format string

const (
	Text     Format = "text"
	HTML     Format = "html"
	Markdown Format = "markdown"
)

// Valid reports whether s names a recognized format, case-insensitively.
func Valid(s string) bool {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case Text, HTML, Markdown:
		return true
	}
	return false
}

// Normalize maps s to a recognized Format. Unrecognized values fall back to
// HTML. That fallback is deliberate and independent of any configured
// default: an unknown format must land on the most conservative render path
// (sanitizer, no conversion), not on whatever the default happens to be.
func Normalize(s string) Format {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case Text, HTML, Markdown:
		return f
	}
	return HTML
}

// Selector picks a format for new content: explicit choice first, then
// syntax auto-detection, then the configured default.
type Selector struct {
	def        Format
	autoDetect bool
	threshold  int
}

func NewSelector(defaultFormat string, autoDetect bool, threshold int) Selector {
	return Selector{
		def:        Normalize(defaultFormat),
		autoDetect: autoDetect,
		threshold:  threshold,
	}
}

// Select applies the three-tier priority, first match wins:
//
//  1. a non-empty explicit format, normalized (invalid values become HTML);
//  2. if auto-detection is enabled and the message is non-blank, Markdown
//     when the detector clears the configured threshold;
//  3. the configured default, normalized the same way.
func (s Selector) Select(explicit, message string) Format {
	if strings.TrimSpace(explicit) != "" {
		return Normalize(explicit)
	}
	if s.autoDetect && strings.TrimSpace(message) != "" &&
		detect.HasMarkdownSyntax(message, s.threshold) {
		return Markdown
	}
	return s.def
}
