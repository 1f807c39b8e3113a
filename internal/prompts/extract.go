// Package prompts finds interactive-read call sites in a finalized script and
// derives the question shown to the user for each of them.
package prompts

import (
	"strings"

	"github.com/flexigpt/coderunner-go/internal/repair"
	"github.com/flexigpt/coderunner-go/internal/segment"
	"github.com/flexigpt/coderunner-go/spec"
)

var stringPrefixes = map[string]bool{
	"r": true, "u": true, "f": true, "b": true,
	"br": true, "rb": true, "fr": true, "rf": true,
}

// Extract returns one prompt per read call site, in source order.
//
// A call site is a read-call name (not an attribute, not part of a longer
// identifier) followed by "(" in code. When the only argument is a string
// literal its content becomes the prompt: `\n` escapes are expanded, line
// breaks flattened to spaces and the result trimmed. Calls without such a
// literal, or with one that cleans to "", get fallback
// (spec.FallbackPrompt when fallback is empty).
func Extract(script string, readCalls []string, fallback string) []string {
	if strings.TrimSpace(fallback) == "" {
		fallback = spec.FallbackPrompt
	}
	calls := map[string]bool{}
	for _, c := range readCalls {
		calls[c] = true
	}

	out := []string{}
	segs := segment.Scan(script)
	for i, s := range segs {
		if s.Kind != segment.Code {
			continue
		}
		t := s.Text
		for j := 0; j < len(t); {
			if !segment.IsIdentStart(t[j]) || (j > 0 && segment.IsIdentChar(t[j-1])) {
				j++
				continue
			}
			k := j + 1
			for k < len(t) && segment.IsIdentChar(t[k]) {
				k++
			}
			if calls[t[j:k]] && (j == 0 || t[j-1] != '.') {
				rest := strings.TrimLeft(t[k:], " \t")
				if strings.HasPrefix(rest, "(") {
					out = append(out, promptFor(rest[1:], segs[i+1:], fallback))
				}
			}
			j = k
		}
	}
	return out
}

// promptFor inspects the argument list of one call: args is the code after
// "(" in the current segment, following are the segments after it.
func promptFor(args string, following []segment.Segment, fallback string) string {
	prefix := strings.TrimLeft(args, " \t")
	if prefix != "" && !stringPrefixes[strings.ToLower(prefix)] {
		return fallback
	}
	if len(following) < 2 || following[0].Kind != segment.Literal || following[1].Kind != segment.Code {
		return fallback
	}
	closing := strings.TrimLeft(following[1].Text, " \t")
	closing = strings.TrimPrefix(closing, ",")
	if !strings.HasPrefix(strings.TrimLeft(closing, " \t"), ")") {
		return fallback
	}

	if p := Clean(segment.Unquote(following[0].Text)); p != "" {
		return p
	}
	return fallback
}

// Clean turns literal content into a one-line display prompt.
func Clean(content string) string {
	content = repair.UnescapeNewlines(content)
	content = strings.ReplaceAll(content, "\r\n", " ")
	content = strings.ReplaceAll(content, "\n", " ")
	return strings.TrimSpace(content)
}
