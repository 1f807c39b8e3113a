package repair

import "strings"

// StripFence removes a fenced-code wrapper: when the text opens with a run of
// backticks (optionally followed by a language tag) the opening line is
// dropped, and so is the last line when it is a closing fence. Text without
// an opening fence is returned unchanged.
func StripFence(src string) string {
	body := strings.TrimLeft(src, " \t\r\n")
	if !isFence(firstLine(body)) {
		if inner, ok := inlineFence(body); ok {
			return inner
		}
		return src
	}

	lines := strings.Split(body, "\n")[1:]

	// Trailing blank lines do not hide a closing fence.
	last := len(lines) - 1
	for last >= 0 && strings.TrimSpace(lines[last]) == "" {
		last--
	}
	if last >= 0 && isClosingFence(lines[last]) {
		lines = lines[:last]
	}
	return strings.Join(lines, "\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// isFence matches "```", "```python", "```` py" and the like.
func isFence(line string) bool {
	line = strings.TrimRight(line, " \t\r")
	if !strings.HasPrefix(line, "```") {
		return false
	}
	tag := strings.TrimSpace(strings.TrimLeft(line, "`"))
	return !strings.Contains(tag, "`")
}

// inlineFence handles a one-line "```code```" submission.
func inlineFence(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.ContainsRune(s, '\n') || len(s) <= 6 ||
		!strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") {
		return "", false
	}
	return strings.TrimSpace(strings.Trim(s, "`")), true
}

func isClosingFence(line string) bool {
	line = strings.TrimSpace(line)
	return len(line) >= 3 && strings.Trim(line, "`") == ""
}
