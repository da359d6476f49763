// Package render produces display-ready HTML for ticket thread entries.
// Markdown conversion is delegated to goldmark in safe mode (raw inline HTML
// never passes through); the output is then run through the sanitize
// pipeline and an output-mode-specific post-process.
package render

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/exedev/ticketmd/internal/format"
	"github.com/exedev/ticketmd/internal/sanitize"
)

// Mode selects the post-processing applied after sanitization.
type Mode string

const (
	ModeWeb   Mode = "web"
	ModeEmail Mode = "email"
	ModePDF   Mode = "pdf"
)

// ParseMode normalizes a mode string; unrecognized values fall back to web.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeEmail:
		return ModeEmail
	case ModePDF:
		return ModePDF
	default:
		return ModeWeb
	}
}

type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New builds a renderer around a safe-mode goldmark instance. html.WithUnsafe
// is intentionally absent: raw HTML typed by the author must not pass
// through the converter, that escaping is the pipeline's first XSS layer.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Table,
				extension.Strikethrough,
				extension.TaskList,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithXHTML(),
			),
		),
		policy: sanitize.DefaultPolicy(),
	}
}

// Render converts Markdown source to sanitized HTML for the given mode.
// Empty or whitespace-only input returns "" without touching the converter.
// On converter failure it fails closed: empty output plus the error, never
// partial or unsanitized HTML.
func (r *Renderer) Render(source string, mode Mode) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}

	out := sanitize.Sanitize(buf.String())
	return postProcess(out, mode), nil
}

// RenderFormat renders source according to its stored content format.
// HTML content skips the converter but goes through the sanitizer plus the
// allow-list policy — host-supplied HTML never had the converter's safe-mode
// escaping, so it gets the stricter second layer. Plain text is escaped
// with line breaks preserved.
func (r *Renderer) RenderFormat(source string, f format.Format, mode Mode) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}

	switch f {
	case format.Markdown:
		return r.Render(source, mode)
	case format.HTML:
		return postProcess(sanitize.SanitizeWithPolicy(source, r.policy), mode), nil
	default:
		escaped := strings.ReplaceAll(stdhtml.EscapeString(source), "\n", "<br />\n")
		return escaped, nil
	}
}

// PlainText renders source and strips it down to indexable text: tags
// removed, entities decoded, whitespace runs collapsed to single spaces.
func (r *Renderer) PlainText(source string) (string, error) {
	rendered, err := r.Render(source, ModeWeb)
	if err != nil {
		return "", err
	}
	text := reTag.ReplaceAllString(rendered, " ")
	text = stdhtml.UnescapeString(text)
	return strings.TrimSpace(reWhitespace.ReplaceAllString(text, " ")), nil
}

// Source returns the stored source verbatim, for edit views.
func (r *Renderer) Source(source string) string {
	return source
}

var (
	reTag        = regexp.MustCompile(`<[^>]*>`)
	reWhitespace = regexp.MustCompile(`\s+`)

	reImgTag    = regexp.MustCompile(`(?i)<img\b[^>]*>`)
	reRemoteSrc = regexp.MustCompile(`(?i)\bsrc\s*=\s*["']?\s*https?://`)
)

func postProcess(out string, mode Mode) string {
	switch mode {
	case ModePDF:
		return stripRemoteImages(out)
	case ModeEmail:
		// Reserved for style inlining; identical to web for now.
		return out
	default:
		return out
	}
}

// stripRemoteImages replaces every <img> whose src is an absolute external
// URL with a placeholder. PDF generation cannot fetch remote resources and
// must not leak external URLs into the document. Local and embedded sources
// are left alone (data: URLs never get this far, the sanitizer blocks them).
func stripRemoteImages(html string) string {
	return reImgTag.ReplaceAllStringFunc(html, func(tag string) string {
		if reRemoteSrc.MatchString(tag) {
			return "[Image]"
		}
		return tag
	})
}
