package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

func IsWindows() bool { return runtime.GOOS == "windows" }

// JoinUnderRoot joins root + rel and ensures rel does not escape root.
// Root should be absolute/canonical-ish.
func JoinUnderRoot(root, rel string) (string, error) {
	root = strings.TrimSpace(root)
	rel = strings.TrimSpace(rel)
	if root == "" {
		return "", errors.New("invalid root")
	}
	if rel == "" {
		return "", errors.New("invalid path")
	}
	if strings.ContainsRune(rel, '\x00') {
		return "", errors.New("path contains NUL byte")
	}
	if filepath.IsAbs(rel) {
		return "", errors.New("path must be relative")
	}

	cleanRel := filepath.Clean(rel)
	if cleanRel == "." {
		return "", errors.New("path must not be '.'")
	}
	joined := filepath.Join(root, cleanRel)

	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", err
	}
	ok, err := withinRoot(root, abs)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("path escapes root: %q", rel)
	}
	return abs, nil
}

// CanonicalDir returns the absolute, symlink-resolved form of an existing directory.
func CanonicalDir(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", errors.New("empty path")
	}
	if strings.ContainsRune(p, '\x00') {
		return "", errors.New("path contains NUL byte")
	}
	abs, err := filepath.Abs(filepath.Clean(p))
	if err != nil {
		return "", err
	}
	if resolved, rerr := filepath.EvalSymlinks(abs); rerr == nil && strings.TrimSpace(resolved) != "" {
		abs = resolved
	}
	st, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !st.IsDir() {
		return "", fmt.Errorf("not a directory: %q", p)
	}
	return abs, nil
}

func withinRoot(root, p string) (bool, error) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false, err
	}
	rel = filepath.Clean(rel)
	if rel == "." {
		return true, nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false, nil
	}
	return true, nil
}

// POSIXRunWithStdin builds: 'interp' 'arg'... 'script' < 'stdin'.
func POSIXRunWithStdin(interpreter []string, script, stdinFile string) string {
	parts := make([]string, 0, 3+len(interpreter))
	for _, a := range interpreter {
		parts = append(parts, posixQuote(a))
	}
	parts = append(parts, posixQuote(script), "<", posixQuote(stdinFile))
	return strings.Join(parts, " ")
}

// PowerShellRunWithStdin pipes the stdin file into the interpreter:
// Get-Content -Raw 'stdin' | & 'interp' 'arg'... 'script'.
func PowerShellRunWithStdin(interpreter []string, script, stdinFile string) string {
	parts := make([]string, 0, 6+len(interpreter))
	parts = append(parts, "Get-Content", "-Raw", psQuote(stdinFile), "|", "&")
	for _, a := range interpreter {
		parts = append(parts, psQuote(a))
	}
	parts = append(parts, psQuote(script))
	return strings.Join(parts, " ")
}

// PowerShell quoting: single quotes, escape by doubling.
func psQuote(s string) string {
	// In PowerShell single-quoted strings escape ' by ''.
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// POSIX quoting: single-quote strategy.
func posixQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsRune(s, '\'') {
		return "'" + s + "'"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
