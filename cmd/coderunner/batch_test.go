package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flexigpt/coderunner-go/spec"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := writeTemp(t, dir, "jobs.yaml", `
jobs:
  - name: sum
    file: sum.py
    answers: ["2", "3"]
  - file: /abs/hello.py
`)
	m, err := loadManifest(p)
	if err != nil {
		t.Fatalf("loadManifest: %v", err)
	}
	if len(m.Jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(m.Jobs))
	}
	if m.Jobs[0].File != filepath.Join(dir, "sum.py") || len(m.Jobs[0].Answers) != 2 {
		t.Fatalf("job 0 = %+v", m.Jobs[0])
	}
	if m.Jobs[1].Name != "hello.py" {
		t.Fatalf("job 1 name = %q", m.Jobs[1].Name)
	}
}

func TestLoadManifest_Invalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for name, body := range map[string]string{
		"empty.yaml":  "jobs: []\n",
		"nofile.yaml": "jobs:\n  - name: x\n",
	} {
		if _, err := loadManifest(writeTemp(t, dir, name, body)); !errors.Is(err, spec.ErrInvalidArgument) {
			t.Fatalf("%s: expected ErrInvalidArgument, got %v", name, err)
		}
	}
}

func TestRunBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := manifest{Jobs: []job{
		{Name: "two", File: writeTemp(t, dir, "two.py", `a = input("A") b = input("B")`), Answers: []string{"x", "y"}},
		{Name: "short", File: writeTemp(t, dir, "short.py", `a = input("A")`)},
		{Name: "missing", File: filepath.Join(dir, "missing.py")},
		{Name: "plain", File: writeTemp(t, dir, "plain.py", "print(1)")},
	}}
	e, _ := newChatEngine(t, &bytes.Buffer{})

	results, err := runBatch(t.Context(), e, m, 2)
	if err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	if results[0].Output != "ran: x,y" || results[0].Err != nil {
		t.Fatalf("two = %+v", results[0])
	}
	if !errors.Is(results[1].Err, spec.ErrMissingInputs) {
		t.Fatalf("short = %+v", results[1])
	}
	if !errors.Is(results[2].Err, os.ErrNotExist) {
		t.Fatalf("missing = %+v", results[2])
	}
	if results[3].Output != "ran: " {
		t.Fatalf("plain = %+v", results[3])
	}

	var out bytes.Buffer
	err = printResults(&out, results)
	if err == nil || !strings.Contains(err.Error(), "2 of 4") {
		t.Fatalf("printResults err = %v", err)
	}
	for _, want := range []string{"== two\nran: x,y\n", "== short\nerror:", "== plain\n"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output lacks %q:\n%s", want, out.String())
		}
	}
}
