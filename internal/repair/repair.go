package repair

import (
	"strings"

	"github.com/flexigpt/coderunner-go/internal/segment"
	"github.com/flexigpt/coderunner-go/spec"
)

// Line is one statement line of repaired text.
type Line struct {
	// Text is the trimmed statement text.
	Text string

	// Indent is the indentation width the line had in the input (tabs stop
	// every 8 columns), or -1 when a repair rule split it off a longer line.
	Indent int

	// LineIndent is the indentation width of the input line the text came
	// from. It equals Indent unless the line was split off.
	LineIndent int

	// Continued marks a line that starts inside open brackets or after a
	// backslash continuation.
	Continued bool

	// Closes marks a continued line that starts with a closing bracket and
	// ends with all brackets of its statement closed.
	Closes bool
}

// Words that keep an expression going after a closing bracket. "if"
// is decided later: it starts a statement only when a colon follows it
// before any "else".
var expressionWords = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "is": true,
	"if": true, "else": true, "as": true, "from": true,
}

// Keywords that take an operand: a call right after one of them is that
// operand, not a new statement.
var operandKeywords = map[string]bool{
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"class": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "for": true, "from": true, "global": true, "if": true,
	"import": true, "in": true, "is": true, "lambda": true, "nonlocal": true,
	"not": true, "or": true, "raise": true, "return": true, "while": true,
	"with": true, "yield": true,
}

// Repair puts one heuristic statement on each line. Only code outside
// brackets is rewritten; literals and comments pass through.
//
// Rules:
//  1. a line break after a closing bracket followed by a space and a new statement;
//  2. a line break after a ":" followed by a space on a block-keyword line;
//  3. ";" becomes a line break;
//  4. a line break before an output or read call that follows a value
//     (a name, number, literal or closing bracket);
//  5. a line break before elif / except / finally, and before "else:".
//
// Lines are then trimmed and empty lines dropped.
func Repair(src string, d spec.Dialect) string {
	return Join(Lines(src, d))
}

// Join renders lines flush left.
func Join(lines []Line) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Text)
	}
	return strings.Join(out, "\n")
}

// Lines applies the Repair rules and returns the resulting lines together
// with the indentation information Reindent needs.
func Lines(src string, d spec.Dialect) []Line {
	sp := newSplitter(d)
	segs := segment.Scan(src)
	for i, s := range segs {
		next := segment.Kind(-1)
		if i+1 < len(segs) {
			next = segs[i+1].Kind
		}
		if s.Kind != segment.Code {
			sp.writeToken(s.Text)
			sp.value = s.Kind == segment.Literal
			continue
		}
		sp.code(s.Text, next)
	}
	sp.flush()
	return sp.lines
}

type splitter struct {
	calls  map[string]bool
	blocks map[string]bool

	lines []Line

	cur    strings.Builder
	head   string
	seen   bool // cur holds a token
	indent int
	line   int
	cont   bool

	measuring bool
	width     int

	depth   int
	lambdas int

	// value marks that cur ends with a name, number, literal or closing bracket.
	value bool

	// pendingIf is the offset in cur of an "if" that followed a closing
	// bracket, or -1.
	pendingIf int
}

func newSplitter(d spec.Dialect) *splitter {
	calls := map[string]bool{}
	for _, c := range d.ReadCalls {
		calls[c] = true
	}
	for _, c := range d.OutputCalls {
		calls[c] = true
	}
	blocks := map[string]bool{}
	for _, k := range d.BlockKeywords {
		blocks[k] = true
	}
	return &splitter{calls: calls, blocks: blocks, measuring: true, pendingIf: -1}
}

func (sp *splitter) code(t string, next segment.Kind) {
	for i := 0; i < len(t); {
		c := t[i]
		if sp.measuring {
			switch c {
			case ' ':
				sp.width++
				i++
				continue
			case '\t':
				sp.width += 8 - sp.width%8
				i++
				continue
			}
			sp.endMeasure()
		}

		switch {
		case c == '\n':
			sp.physicalBreak()
			i++
		case c == ';' && sp.depth == 0:
			sp.split()
			i++
		case c == '(' || c == '[' || c == '{':
			sp.depth++
			sp.writeByte(c)
			sp.value = false
			i++
		case c == ')' || c == ']' || c == '}':
			if sp.depth > 0 {
				sp.depth--
			}
			sp.writeByte(c)
			sp.value = true
			i++
			if sp.depth == 0 && statementFollows(t[i:], next) {
				sp.split()
			}
		case c == ':' && sp.depth == 0:
			sp.writeByte(c)
			sp.value = false
			i++
			if sp.lambdas > 0 {
				sp.lambdas--
				continue
			}
			if sp.pendingIf >= 0 {
				sp.splitAt(sp.pendingIf)
			}
			if i < len(t) && t[i] == ' ' && sp.blocks[sp.head] {
				sp.split()
			}
		case segment.IsIdentStart(c) && (i == 0 || !segment.IsIdentChar(t[i-1])):
			j := i + 1
			for j < len(t) && segment.IsIdentChar(t[j]) {
				j++
			}
			word := t[i:j]
			if sp.depth == 0 && sp.seen {
				switch {
				case sp.calls[word] && isCall(t[j:]) && (i == 0 || t[i-1] != '.') && sp.value:
					sp.split()
				case startsClause(word, t[j:]):
					sp.split()
				case word == "if" && sp.head != "case" && endsWithCloser(sp.cur.String()):
					sp.pendingIf = sp.cur.Len()
				case word == "else":
					sp.pendingIf = -1
				}
			}
			if word == "lambda" {
				sp.lambdas++
			}
			sp.writeToken(word)
			sp.value = !operandKeywords[word]
			i = j
		default:
			sp.writeByte(c)
			if c != ' ' && c != '\t' {
				sp.value = segment.IsIdentChar(c)
			}
			i++
		}
	}
}

func (sp *splitter) endMeasure() {
	sp.measuring = false
	sp.indent = sp.width
	sp.line = sp.width
}

func (sp *splitter) writeByte(c byte) {
	if c != ' ' && c != '\t' && !sp.seen {
		sp.seen = true
	}
	sp.cur.WriteByte(c)
}

// writeToken appends a word or a whole literal/comment segment.
func (sp *splitter) writeToken(s string) {
	if sp.measuring {
		sp.endMeasure()
	}
	if !sp.seen {
		sp.seen = true
		sp.head = segment.HeadWord(s)
	}
	sp.cur.WriteString(s)
}

// physicalBreak handles a line break of the input.
func (sp *splitter) physicalBreak() {
	cont := sp.depth > 0 || strings.HasSuffix(strings.TrimRight(sp.cur.String(), " \t"), `\`)
	sp.flush()
	sp.cont = cont
	sp.measuring = true
	sp.width = 0
}

// split handles a line break inserted by a repair rule.
func (sp *splitter) split() {
	sp.flush()
	sp.indent = -1
	sp.cont = false
	sp.measuring = false
}

// splitAt moves the text of cur from offset pos on to a new split line.
func (sp *splitter) splitAt(pos int) {
	text := sp.cur.String()
	sp.cur.Reset()
	sp.cur.WriteString(text[:pos])
	sp.split()

	rest := strings.TrimLeft(text[pos:], " \t")
	sp.cur.WriteString(rest)
	sp.seen = rest != ""
	sp.head = segment.HeadWord(rest)
}

func (sp *splitter) flush() {
	if text := strings.TrimSpace(sp.cur.String()); text != "" {
		sp.lines = append(sp.lines, Line{
			Text:       text,
			Indent:     sp.indent,
			LineIndent: sp.line,
			Continued:  sp.cont,
			Closes:     sp.cont && sp.depth == 0 && strings.ContainsAny(text[:1], ")]}"),
		})
	}
	sp.cur.Reset()
	sp.head = ""
	sp.seen = false
	sp.lambdas = 0
	sp.value = false
	sp.pendingIf = -1
}

// endsWithCloser reports whether s, ignoring trailing blanks, ends with a
// closing bracket.
func endsWithCloser(s string) bool {
	s = strings.TrimRight(s, " \t")
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case ')', ']', '}':
		return true
	}
	return false
}

// statementFollows reports whether rest (the code after a closing bracket)
// starts with a space and then something that begins a new statement.
func statementFollows(rest string, next segment.Kind) bool {
	if rest == "" || rest[0] != ' ' {
		return false
	}
	tail := strings.TrimLeft(rest, " ")
	if tail == "" {
		return next == segment.Literal
	}
	if !segment.IsIdentStart(tail[0]) {
		return false
	}
	return !expressionWords[segment.HeadWord(tail)]
}

// isCall reports whether rest opens an argument list.
func isCall(rest string) bool {
	rest = strings.TrimLeft(rest, " \t")
	return rest != "" && rest[0] == '('
}

// startsClause reports whether word opens a continuation clause of a
// compound statement. "else" is also an expression word, so it only counts
// when a colon follows it directly.
func startsClause(word, rest string) bool {
	switch word {
	case "elif", "except", "finally":
		return true
	case "else":
		rest = strings.TrimLeft(rest, " \t")
		return rest != "" && rest[0] == ':'
	}
	return false
}
