package repair

import (
	"testing"

	"github.com/flexigpt/coderunner-go/spec"
)

func TestEndsWithColon(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"if x:":               true,
		"if x:   # check":     true,
		"x = 'a:'":            false,
		"print(1)":            false,
		"else:":               true,
		`s = "#": `:           true,
		"d = {1: 2}":          false,
		"# only a comment:":   false,
		"while f('x') :  ":    true,
		"for c in 'abc': # x": true,
	}
	for in, want := range cases {
		if got := endsWithColon(in); got != want {
			t.Fatalf("endsWithColon(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestReindent_SplitHeaderBodyFromNextLine(t *testing.T) {
	t.Parallel()

	// The inner header was split off the outer one; its body comes from a
	// deeper input line, and a line at the outer width closes both blocks.
	in := "for x in y: if x:\n        print(x)\n    z()\nw()"
	want := "for x in y:\n    if x:\n        print(x)\n    z()\nw()"
	if got := Fix(in, spec.DefaultDialect(), true); got != want {
		t.Fatalf("Fix\n got: %q\nwant: %q", got, want)
	}
}

func TestReindent_ElifChain(t *testing.T) {
	t.Parallel()

	in := `n = int(input("n: ")) if n > 0: print("pos") elif n < 0: print("neg") else: print("zero")`
	want := "n = int(input(\"n: \"))\nif n > 0:\n    print(\"pos\")\nelif n < 0:\n    print(\"neg\")\nelse:\n    print(\"zero\")"
	if got := Fix(in, spec.DefaultDialect(), true); got != want {
		t.Fatalf("Fix\n got: %q\nwant: %q", got, want)
	}
}

func TestReindent_ContinuedHeader(t *testing.T) {
	t.Parallel()

	in := "if (a and\n    b):\n    print(1)\nprint(2)"
	want := "if (a and\n    b):\n    print(1)\nprint(2)"
	if got := Fix(in, spec.DefaultDialect(), true); got != want {
		t.Fatalf("Fix\n got: %q\nwant: %q", got, want)
	}
}
