package repair

import (
	"strings"

	"github.com/flexigpt/coderunner-go/internal/segment"
	"github.com/flexigpt/coderunner-go/spec"
)

const indentUnit = "    "

// Clauses that continue a compound statement, and the block keywords they may follow.
var clauseOpeners = map[string][]string{
	"elif":    {"if", "elif"},
	"else":    {"if", "elif", "for", "while", "try", "except"},
	"except":  {"try", "except"},
	"finally": {"try", "except", "else"},
}

// Statements after which nothing else runs in the same block.
var blockEnders = map[string]bool{
	"return": true, "break": true, "continue": true, "pass": true, "raise": true,
}

type frame struct {
	keyword string
	line    int // input width of the line holding the header
	body    int // input width of the body, or bodyUnknown / bodyUnreliable
}

const (
	// Every body line so far was split off the header line.
	bodyUnknown = -1
	// The first body line was not indented past its header.
	bodyUnreliable = -2
)

// Reindent rebuilds block nesting for lines produced by Lines and renders
// them with four spaces per level.
//
// A line headed by a block keyword and ending with a colon opens a block:
// the next line is nested one level deeper. Lines that kept their input
// indentation leave blocks by width. A continuation line is nested one
// level deeper than its statement unless it only closes the statement's
// brackets. Lines a rule split off, and lines in a
// block whose input indentation cannot be trusted, leave blocks by keyword:
// a clause (elif/else/except/finally/case) closes back to its compound
// statement, and a line after return/break/continue/pass/raise closes one
// block.
func Reindent(lines []Line, d spec.Dialect) string {
	keywords := map[string]bool{}
	for _, k := range d.BlockKeywords {
		keywords[k] = true
	}

	var (
		stack   []frame
		out     = make([]string, 0, len(lines))
		opened  bool
		closed  bool
		logical Line
	)

	push := func(head string, from Line) {
		stack = append(stack, frame{keyword: head, line: from.LineIndent, body: bodyUnknown})
		opened = true
		closed = false
	}

	for _, ln := range lines {
		if ln.Continued {
			level := len(stack) + 1
			if ln.Closes {
				level = len(stack)
			}
			out = append(out, strings.Repeat(indentUnit, level)+ln.Text)
			if head := segment.HeadWord(logical.Text); keywords[head] && endsWithColon(ln.Text) {
				push(head, logical)
			}
			continue
		}

		// Comments never open or close blocks; one with a known width sits
		// at the level its width selects.
		if strings.HasPrefix(ln.Text, "#") {
			level := len(stack)
			if ln.Indent >= 0 {
				level = len(popByWidth(stack, ln.Indent))
			}
			out = append(out, strings.Repeat(indentUnit, level)+ln.Text)
			continue
		}

		head := segment.HeadWord(ln.Text)
		switch {
		case opened:
			top := &stack[len(stack)-1]
			switch {
			case ln.Indent < 0:
			case ln.Indent > top.line:
				top.body = ln.Indent
			default:
				top.body = bodyUnreliable
			}
		default:
			if ln.Indent >= 0 {
				stack = popByWidth(stack, ln.Indent)
				if n := len(stack); n > 0 && stack[n-1].body == bodyUnknown {
					stack[n-1].body = ln.Indent
				}
			}
			if ln.Indent < 0 || (len(stack) > 0 && stack[len(stack)-1].body == bodyUnreliable) {
				stack = popByKeyword(stack, head, closed)
			}
		}

		out = append(out, strings.Repeat(indentUnit, len(stack))+ln.Text)
		logical = ln
		opened = false
		closed = blockEnders[head]
		if keywords[head] && endsWithColon(ln.Text) {
			push(head, ln)
		}
	}
	return strings.Join(out, "\n")
}

func popByWidth(stack []frame, width int) []frame {
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		switch top.body {
		case bodyUnknown:
			if width > top.line {
				return stack
			}
		case bodyUnreliable:
			if width >= top.line {
				return stack
			}
		default:
			if width >= top.body {
				return stack
			}
		}
		stack = stack[:len(stack)-1]
	}
	return stack
}

func popByKeyword(stack []frame, head string, closed bool) []frame {
	if head == "case" {
		for i := len(stack) - 1; i >= 0; i-- {
			switch stack[i].keyword {
			case "match":
				return stack[:i+1]
			case "case":
				return stack[:i]
			}
		}
		return stack
	}
	if openers, ok := clauseOpeners[head]; ok {
		for i := len(stack) - 1; i >= 0; i-- {
			for _, o := range openers {
				if stack[i].keyword == o {
					return stack[:i]
				}
			}
		}
		return stack
	}
	if closed && len(stack) > 0 {
		return stack[:len(stack)-1]
	}
	return stack
}

// endsWithColon reports whether the code of line, ignoring a trailing
// comment, ends with a colon.
func endsWithColon(line string) bool {
	segs := segment.Scan(line)
	for i := len(segs) - 1; i >= 0; i-- {
		switch segs[i].Kind {
		case segment.Comment:
			continue
		case segment.Code:
			code := strings.TrimRight(segs[i].Text, " \t")
			if code == "" {
				continue
			}
			return strings.HasSuffix(code, ":")
		default:
			return false
		}
	}
	return false
}
