package render

import (
	"strings"
	"testing"

	"github.com/exedev/ticketmd/internal/format"
)

// ---------------------------------------------------------------------------
// Basic markdown rendering
// ---------------------------------------------------------------------------

func TestRender_Normal(t *testing.T) {
	r := New()
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"bold", "**Bold** text", "<strong>Bold</strong>"},
		{"heading", "# Hello", "<h1"},
		{"italic", "*italic*", "<em>italic</em>"},
		{"link", "[Go](https://go.dev)", `href="https://go.dev"`},
		{"code block", "```\ncode\n```", "<code"},
		{"inline code", "`inline`", "<code>inline</code>"},
		{"blockquote", "> quote", "<blockquote"},
		{"list", "- item", "<li>"},
		{"strikethrough", "~~gone~~", "<del>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(tt.input, ModeWeb)
			if err != nil {
				t.Fatalf("Render error: %v", err)
			}
			if !strings.Contains(out, tt.contains) {
				t.Errorf("expected output to contain %q, got:\n%s", tt.contains, out)
			}
		})
	}
}

func TestRender_EmptyInput(t *testing.T) {
	r := New()
	for _, input := range []string{"", "   ", "\n\t\n"} {
		for _, mode := range []Mode{ModeWeb, ModeEmail, ModePDF} {
			out, err := r.Render(input, mode)
			if err != nil {
				t.Fatalf("Render(%q, %s) error: %v", input, mode, err)
			}
			if out != "" {
				t.Errorf("Render(%q, %s) = %q, want \"\"", input, mode, out)
			}
		}
	}
}

// ---------------------------------------------------------------------------
// XSS defense through the full pipeline
// ---------------------------------------------------------------------------

func TestRender_XSS(t *testing.T) {
	r := New()
	tests := []struct {
		name     string
		input    string
		rejected string
	}{
		{"raw script tag", `<script>alert('xss')</script>`, "<script"},
		{"javascript link", `[click](javascript:alert(1))`, "javascript:"},
		{"raw img onerror", `<img src=x onerror=alert(1)>`, "onerror"},
		{"raw event handler", `<div onmouseover="alert(1)">x</div>`, "onmouseover="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(tt.input, ModeWeb)
			if err != nil {
				t.Fatalf("Render error: %v", err)
			}
			if strings.Contains(strings.ToLower(out), strings.ToLower(tt.rejected)) {
				t.Errorf("output contains rejected %q:\n%s", tt.rejected, out)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Output modes
// ---------------------------------------------------------------------------

func TestRender_PDFStripsRemoteImages(t *testing.T) {
	r := New()
	out, err := r.Render(`![Image](https://example.com/img.png)`, ModePDF)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if strings.Contains(out, "https://example.com/img.png") {
		t.Errorf("remote URL leaked into PDF output:\n%s", out)
	}
	if !strings.Contains(out, "[Image]") {
		t.Errorf("expected [Image] placeholder, got:\n%s", out)
	}
}

func TestRender_PDFKeepsLocalImages(t *testing.T) {
	r := New()
	out, err := r.Render(`![logo](/images/logo.png)`, ModePDF)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.Contains(out, `src="/images/logo.png"`) {
		t.Errorf("local image should survive PDF mode:\n%s", out)
	}
}

func TestRender_WebKeepsRemoteImages(t *testing.T) {
	r := New()
	out, err := r.Render(`![Image](https://example.com/img.png)`, ModeWeb)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.Contains(out, `https://example.com/img.png`) {
		t.Errorf("web mode should keep remote images:\n%s", out)
	}
}

func TestRender_EmailMatchesWeb(t *testing.T) {
	r := New()
	input := "# Title\n\nSome **bold** and a [link](https://example.com).\n\n![img](https://example.com/a.png)"
	web, err := r.Render(input, ModeWeb)
	if err != nil {
		t.Fatal(err)
	}
	email, err := r.Render(input, ModeEmail)
	if err != nil {
		t.Fatal(err)
	}
	if web != email {
		t.Errorf("email mode diverged from web:\nweb:   %s\nemail: %s", web, email)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"web", ModeWeb},
		{"email", ModeEmail},
		{"pdf", ModePDF},
		{"PDF", ModePDF},
		{" email ", ModeEmail},
		{"", ModeWeb},
		{"bogus", ModeWeb},
	}
	for _, tt := range tests {
		if got := ParseMode(tt.in); got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Per-format rendering
// ---------------------------------------------------------------------------

func TestRenderFormat(t *testing.T) {
	r := New()

	t.Run("markdown", func(t *testing.T) {
		out, err := r.RenderFormat("**Bold** text", format.Markdown, ModeWeb)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "<strong>Bold</strong>") {
			t.Errorf("unexpected output: %s", out)
		}
	})

	t.Run("html is sanitized not converted", func(t *testing.T) {
		out, err := r.RenderFormat(`<p onclick="alert(1)">**not markdown**</p>`, format.HTML, ModeWeb)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(out, "onclick") {
			t.Errorf("onclick survived: %s", out)
		}
		if strings.Contains(out, "<strong>") {
			t.Errorf("html content must not be markdown-converted: %s", out)
		}
		if !strings.Contains(out, "**not markdown**") {
			t.Errorf("content lost: %s", out)
		}
	})

	t.Run("html gets the allow-list policy", func(t *testing.T) {
		out, err := r.RenderFormat(`<svg/onload=alert(1)><p>kept</p>`, format.HTML, ModeWeb)
		if err != nil {
			t.Fatal(err)
		}
		lower := strings.ToLower(out)
		if strings.Contains(lower, "onload") || strings.Contains(lower, "<svg") {
			t.Errorf("slash-delimited handler survived: %s", out)
		}
		if !strings.Contains(out, "<p>kept</p>") {
			t.Errorf("allowed markup lost: %s", out)
		}
	})

	t.Run("text is escaped with line breaks", func(t *testing.T) {
		out, err := r.RenderFormat("a <b\nsecond line", format.Text, ModeWeb)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "&lt;b") {
			t.Errorf("markup not escaped: %s", out)
		}
		if !strings.Contains(out, "<br />") {
			t.Errorf("line break not preserved: %s", out)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		for _, f := range []format.Format{format.Text, format.HTML, format.Markdown} {
			out, err := r.RenderFormat("  \n ", f, ModeWeb)
			if err != nil {
				t.Fatal(err)
			}
			if out != "" {
				t.Errorf("RenderFormat(blank, %s) = %q, want \"\"", f, out)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// Plain text extraction and raw source
// ---------------------------------------------------------------------------

func TestPlainText(t *testing.T) {
	r := New()
	out, err := r.PlainText("# Hello\n\nWorld **bold** &amp; more")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Hello World bold & more" {
		t.Errorf("PlainText = %q", out)
	}
}

func TestPlainText_Empty(t *testing.T) {
	r := New()
	out, err := r.PlainText("   ")
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("PlainText(blank) = %q, want \"\"", out)
	}
}

func TestSource_Verbatim(t *testing.T) {
	r := New()
	src := "# raw **markdown** <script>untouched</script>"
	if got := r.Source(src); got != src {
		t.Errorf("Source() = %q, want verbatim input", got)
	}
}

// ---------------------------------------------------------------------------
// Boundary behavior
// ---------------------------------------------------------------------------

func TestRender_DeeplyNestedBlockquotes(t *testing.T) {
	r := New()
	input := strings.Repeat("> ", 50) + "deep"
	out, err := r.Render(input, ModeWeb)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if got := strings.Count(out, "<blockquote"); got < 50 {
		t.Errorf("expected at least 50 blockquote levels, got %d", got)
	}
}

func TestRender_VeryLongSingleLine(t *testing.T) {
	r := New()
	line := strings.Repeat("a", 50000)
	out, err := r.Render(line, ModeWeb)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.Contains(out, line) {
		t.Error("long line was truncated")
	}
}

func TestRender_ManyLinesAndMarkers(t *testing.T) {
	r := New()
	if _, err := r.Render(strings.Repeat("a line of text\n", 10000), ModeWeb); err != nil {
		t.Fatalf("10k-line document: %v", err)
	}
	out, err := r.Render(strings.Repeat("**bold** ", 1000), ModeWeb)
	if err != nil {
		t.Fatalf("1k bold markers: %v", err)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Error("bold markers not rendered")
	}
}

func TestRender_InvalidUTF8(t *testing.T) {
	r := New()
	input := "hello " + string([]byte{0xff, 0xfe}) + " world"
	out, err := r.Render(input, ModeWeb) // must not panic
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !strings.Contains(out, "hello") || !strings.Contains(out, "world") {
		t.Errorf("valid surrounding text lost: %q", out)
	}
}

func TestRender_UnbalancedMarkdown(t *testing.T) {
	r := New()
	tests := []string{
		"**unclosed bold",
		"```\nunclosed fence",
		"[unclosed link](https://example.com",
	}
	for _, input := range tests {
		out, err := r.Render(input, ModeWeb)
		if err != nil {
			t.Errorf("Render(%q) error: %v", input, err)
		}
		if out == "" {
			t.Errorf("Render(%q) produced no output", input)
		}
	}
}
