package repair

import (
	"strings"

	"github.com/flexigpt/coderunner-go/internal/segment"
)

// NormalizeLiteralNewlines rewrites every line break inside a string literal
// into the two-character escape `\n`, so later line splitting cannot cut a
// literal in two. CRLF line endings are folded to LF first.
//
// A literal holding an escaped quote of its own quote character is taken to
// end at that quote (no escape handling).
func NormalizeLiteralNewlines(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(src))
	for _, s := range segment.Scan(src) {
		if s.Kind == segment.Literal {
			b.WriteString(strings.ReplaceAll(s.Text, "\n", `\n`))
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

// UnescapeNewlines turns each `\n` escape into a line break. Other escape
// pairs, `\\` included, are kept as they are, so `\\n` stays text.
func UnescapeNewlines(s string) string {
	if !strings.Contains(s, `\n`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		if s[i+1] == 'n' {
			b.WriteByte('\n')
		} else {
			b.WriteByte(s[i])
			b.WriteByte(s[i+1])
		}
		i++
	}
	return b.String()
}
