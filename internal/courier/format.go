package courier

import (
	"html"
	"regexp"
)

// MaxMessageLen is the outbound payload ceiling (Telegram's sendMessage
// limit). Longer texts are cut to TruncateAt and marked with an ellipsis.
const (
	MaxMessageLen = 4096
	TruncateAt    = 4090
)

var (
	boldRe   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe = regexp.MustCompile(`\*([^*]+)\*`)
	codeRe   = regexp.MustCompile("`([^`]+)`")
)

// MarkdownToHTML converts the reasoning engine's lightweight markdown
// (**bold**, *italic*, `code`) to Telegram HTML. The conversion is total:
// any input yields valid, entity-escaped output.
func MarkdownToHTML(text string) string {
	if text == "" {
		return ""
	}
	escaped := html.EscapeString(text)
	escaped = boldRe.ReplaceAllString(escaped, "<b>$1</b>")
	escaped = italicRe.ReplaceAllString(escaped, "<i>$1</i>")
	escaped = codeRe.ReplaceAllString(escaped, "<code>$1</code>")
	return escaped
}

// Truncate enforces a platform payload limit, cutting to cut runes plus an
// ellipsis marker when text exceeds limit.
func Truncate(text string, limit, cut int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:cut]) + "..."
}
