// Package sanitize cleans user-supplied text that ends up in saved history
// and in markdown served to MCP clients. It strips control characters,
// XML/HTML tags, markdown structure, and backtick fences so a batch label or
// an imported summary cannot smuggle instructions into a client's context.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxLabelLength is the maximum length, in runes, of a batch pair label.
const MaxLabelLength = 80

// MaxSummaryLength is the maximum length, in runes, of a record summary.
const MaxSummaryLength = 240

var (
	// reXMLTag matches XML/HTML tags including those with attributes and self-closing tags.
	// It also matches XML processing instructions like <?xml ...?>.
	reXMLTag = regexp.MustCompile(`<[/?!]?[a-zA-Z][a-zA-Z0-9]*(?:\s+[^>]*)?/?>|<\?[^?]*\?>`)

	// reMarkdownLead matches heading and quote markers at the start of the text.
	reMarkdownLead = regexp.MustCompile(`^(?:#{1,6}|>+)\s*`)

	// reBackticks matches runs of backticks used for code spans and fences.
	reBackticks = regexp.MustCompile("`+")

	reWhitespace = regexp.MustCompile(`\s+`)
)

// Label cleans a batch pair label for display and storage. The result is a
// single line of at most MaxLabelLength runes.
//
// The pipeline runs in this order:
//  1. Strip XML/HTML tags
//  2. Replace control characters with spaces
//  3. Collapse whitespace to single spaces and trim
//  4. Drop leading markdown heading or quote markers
//  5. Remove backticks
//  6. Truncate
func Label(input string) string {
	return clean(input, MaxLabelLength)
}

// Summary cleans a record summary the same way as Label, with a longer
// limit. Truncated summaries end in "...".
func Summary(input string) string {
	s := clean(input, 0)
	if utf8.RuneCountInString(s) > MaxSummaryLength {
		s = truncate(s, MaxSummaryLength-3) + "..."
	}
	return s
}

func clean(input string, limit int) string {
	if input == "" {
		return ""
	}

	s := reXMLTag.ReplaceAllString(input, "")
	s = replaceControlChars(s)
	s = strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
	s = reMarkdownLead.ReplaceAllString(s, "")
	s = reBackticks.ReplaceAllString(s, "")

	if limit > 0 {
		s = truncate(s, limit)
	}
	return strings.TrimSpace(s)
}

// replaceControlChars turns ASCII control characters (0x00-0x1F, 0x7F) into
// spaces so adjacent words stay separated.
func replaceControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
