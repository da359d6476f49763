// Package detect scores arbitrary text for the presence of Markdown
// constructs. It is used to decide whether unformatted user input should be
// treated as Markdown without requiring the author to declare a format.
//
// Scoring rewards diversity over repetition: each construct contributes its
// weight once no matter how often it occurs, and the total is capped at 100.
package detect

import "regexp"

// DefaultThreshold is the confidence score at or above which text is
// considered Markdown when no threshold is configured.
const DefaultThreshold = 5

// Pre-compiled patterns, one per scored construct.
var (
	// reHeader matches an ATX header: 1-6 '#' at line start, whitespace, text.
	reHeader = regexp.MustCompile(`(?m)^#{1,6}[ \t]+\S`)

	// reBold matches **...** with non-empty content and no nested asterisks.
	reBold = regexp.MustCompile(`\*\*[^*]+\*\*`)

	// reItalic matches a single *...* span whose delimiters are not adjacent
	// to another '*'. The adjacency exclusion keeps bold from double-counting
	// and keeps a lone multiplication asterisk (5*3) from forming a pair.
	reItalic = regexp.MustCompile(`(?:^|[^*])(\*[^*\s][^*]*\*)(?:[^*]|$)`)

	// reFence matches a triple-backtick fenced code block, possibly multiline.
	reFence = regexp.MustCompile("(?s)```.*?```")

	// reInlineCode matches a single-backtick code span on one line.
	reInlineCode = regexp.MustCompile("`[^`\n]+`")

	// reUnorderedList matches a list line starting with -, * or +.
	reUnorderedList = regexp.MustCompile(`(?m)^[-*+][ \t]+\S`)

	// reOrderedList matches a list line starting with digits and a dot.
	reOrderedList = regexp.MustCompile(`(?m)^\d+\.[ \t]+\S`)

	// reLink matches an inline link [text](url).
	reLink = regexp.MustCompile(`\[[^\]]+\]\([^)\s]+\)`)

	// reBlockquote matches a quoted line: '>' then whitespace and text.
	reBlockquote = regexp.MustCompile(`(?m)^>[ \t]+\S`)

	// reHorizontalRule matches a line of 3+ hyphens and nothing else.
	reHorizontalRule = regexp.MustCompile(`(?m)^-{3,}[ \t]*$`)

	// reEmail recognizes email-address-shaped substrings. Emails are a known
	// false-positive hazard for prose classification; the pattern is surfaced
	// in Analyze for diagnostics but never contributes to the score.
	reEmail = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	reBlank = regexp.MustCompile(`^\s*$`)
)

type pattern struct {
	name   string
	weight int
	re     *regexp.Regexp
	group  int // submatch index to report as the matched span
}

// patterns is the scoring table. Weights sum past 100 on purpose; Score caps.
var patterns = []pattern{
	{"header", 15, reHeader, 0},
	{"bold", 10, reBold, 0},
	{"italic", 8, reItalic, 1},
	{"code_block", 20, reFence, 0},
	{"inline_code", 5, reInlineCode, 0},
	{"unordered_list", 12, reUnorderedList, 0},
	{"ordered_list", 12, reOrderedList, 0},
	{"link", 15, reLink, 0},
	{"blockquote", 10, reBlockquote, 0},
	{"horizontal_rule", 5, reHorizontalRule, 0},
}

// Score returns a 0-100 confidence that text is Markdown-formatted. Each
// pattern present in the text adds its full weight exactly once.
func Score(text string) int {
	if text == "" || reBlank.MatchString(text) {
		return 0
	}

	sum := 0
	for _, p := range patterns {
		if p.re.MatchString(text) {
			sum += p.weight
		}
	}
	if sum > 100 {
		return 100
	}
	return sum
}

// HasMarkdownSyntax reports whether Score(text) meets threshold. Empty or
// whitespace-only input is never Markdown, regardless of threshold.
func HasMarkdownSyntax(text string, threshold int) bool {
	if text == "" || reBlank.MatchString(text) {
		return false
	}
	return Score(text) >= threshold
}

// maxSamples bounds the matched substrings reported per feature.
const maxSamples = 5

// Feature describes one pattern's matches within a piece of text.
type Feature struct {
	Count   int
	Weight  int
	Samples []string
}

// Analyze reports, per scored pattern, how often it matched and what it
// matched. It uses the same patterns as Score but aggregates for
// introspection instead of scoring; an extra zero-weight "email" entry flags
// email-shaped substrings. Diagnostics only, no side effects.
func Analyze(text string) map[string]Feature {
	out := make(map[string]Feature, len(patterns)+1)
	if text == "" || reBlank.MatchString(text) {
		return out
	}

	for _, p := range patterns {
		matches := p.re.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}
		f := Feature{Count: len(matches), Weight: p.weight}
		for _, m := range matches {
			if len(f.Samples) == maxSamples {
				break
			}
			f.Samples = append(f.Samples, m[p.group])
		}
		out[p.name] = f
	}

	if emails := reEmail.FindAllString(text, -1); len(emails) > 0 {
		samples := emails
		if len(samples) > maxSamples {
			samples = samples[:maxSamples]
		}
		out["email"] = Feature{Count: len(emails), Weight: 0, Samples: samples}
	}
	return out
}
