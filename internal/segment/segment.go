// Package segment splits script text into code, string-literal and comment
// segments so that text rewrites can leave literals and comments alone.
//
// It is not a lexer: a quote is matched only by the same quote character (or
// the same triple quote), and a backslash before a quote does not escape it.
package segment

import "strings"

type Kind int

const (
	Code Kind = iota
	Literal
	Comment
)

func (k Kind) String() string {
	switch k {
	case Code:
		return "code"
	case Literal:
		return "literal"
	case Comment:
		return "comment"
	default:
		return "unknown"
	}
}

// Segment is a contiguous run of src. Literal segments include their quotes;
// comment segments run up to, not including, the line break.
type Segment struct {
	Kind Kind
	Text string
}

// Scan splits src into segments. Concatenating the Text of all segments
// yields src. An unterminated literal runs to the end of src.
func Scan(src string) []Segment {
	var out []Segment
	start := 0
	emit := func(k Kind, end int) {
		if end > start {
			out = append(out, Segment{Kind: k, Text: src[start:end]})
		}
		start = end
	}

	i := 0
	for i < len(src) {
		switch c := src[i]; c {
		case '#':
			emit(Code, i)
			if j := strings.IndexByte(src[i:], '\n'); j >= 0 {
				i += j
			} else {
				i = len(src)
			}
			emit(Comment, i)
		case '"', '\'':
			emit(Code, i)
			q := OpeningQuote(src[i:])
			if j := strings.Index(src[i+len(q):], q); j >= 0 {
				i += len(q) + j + len(q)
			} else {
				i = len(src)
			}
			emit(Literal, i)
		default:
			i++
		}
	}
	emit(Code, len(src))
	return out
}

// OpeningQuote returns the quote that opens the literal at the start of s:
// a triple quote when s starts with one, else the single quote character.
// s must start with a quote character.
func OpeningQuote(s string) string {
	q := s[:1]
	if strings.HasPrefix(s, strings.Repeat(q, 3)) {
		return strings.Repeat(q, 3)
	}
	return q
}

// Unquote strips the quotes of a literal segment. The closing quote is only
// stripped when present.
func Unquote(lit string) string {
	if lit == "" || (lit[0] != '"' && lit[0] != '\'') {
		return lit
	}
	q := OpeningQuote(lit)
	body := lit[len(q):]
	if strings.HasSuffix(body, q) {
		body = body[:len(body)-len(q)]
	}
	return body
}

// IsIdentStart reports whether c can start an identifier.
func IsIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

// IsIdentChar reports whether c can continue an identifier.
func IsIdentChar(c byte) bool {
	return IsIdentStart(c) || (c >= '0' && c <= '9')
}

// HeadWord returns the identifier that starts line (after leading blanks),
// or "" when the line starts with anything else.
func HeadWord(line string) string {
	s := strings.TrimLeft(line, " \t")
	if s == "" || !IsIdentStart(s[0]) {
		return ""
	}
	n := 1
	for n < len(s) && IsIdentChar(s[n]) {
		n++
	}
	return s[:n]
}
