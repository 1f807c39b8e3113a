// Package repair turns collapsed, single-line or loosely formatted scripts
// into line-broken, indented source whose string literals survive line
// splitting.
//
// The steps run in a fixed order: StripFence, NormalizeLiteralNewlines,
// Lines (the Repair rules), then Reindent. The pipeline never fails; it
// always returns some text, which may still be semantically wrong.
package repair

import "github.com/flexigpt/coderunner-go/spec"

// Fix runs the whole pipeline. With reindent=false the lines are left flush
// left, as the Repair step produces them.
func Fix(src string, d spec.Dialect, reindent bool) string {
	text := NormalizeLiteralNewlines(StripFence(src))
	lines := Lines(text, d)
	if !reindent {
		return Join(lines)
	}
	return Reindent(lines, d)
}
