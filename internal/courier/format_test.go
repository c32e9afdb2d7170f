package courier

import (
	"strings"
	"testing"
)

func TestMarkdownToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "hello there", "hello there"},
		{"bold", "**great work**", "<b>great work</b>"},
		{"italic", "*gently*", "<i>gently</i>"},
		{"code", "try `parth sweep`", "try <code>parth sweep</code>"},
		{"mixed", "**Day 3**: *keep going*", "<b>Day 3</b>: <i>keep going</i>"},
		{"escapes entities", "5 < 10 & <b>raw</b>", "5 &lt; 10 &amp; &lt;b&gt;raw&lt;/b&gt;"},
		{"bold before italic", "**a** and *b*", "<b>a</b> and <i>b</i>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarkdownToHTML(tt.in); got != tt.want {
				t.Errorf("MarkdownToHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate_UnderLimit(t *testing.T) {
	text := strings.Repeat("a", MaxMessageLen)
	if got := Truncate(text, MaxMessageLen, TruncateAt); got != text {
		t.Error("text at exactly the limit should pass through unchanged")
	}
}

func TestTruncate_OverLimit(t *testing.T) {
	text := strings.Repeat("a", MaxMessageLen+1)
	got := Truncate(text, MaxMessageLen, TruncateAt)
	if len([]rune(got)) != TruncateAt+3 {
		t.Errorf("truncated length = %d, want %d", len([]rune(got)), TruncateAt+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated text should end with ellipsis marker")
	}
}

func TestTruncate_MultibyteSafe(t *testing.T) {
	text := strings.Repeat("é", MaxMessageLen+10)
	got := Truncate(text, MaxMessageLen, TruncateAt)
	if len([]rune(got)) != TruncateAt+3 {
		t.Errorf("rune length = %d, want %d", len([]rune(got)), TruncateAt+3)
	}
	if strings.ContainsRune(got, '�') {
		t.Error("truncation split a multibyte rune")
	}
}
