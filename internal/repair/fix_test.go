package repair

import (
	"testing"

	"github.com/flexigpt/coderunner-go/spec"
)

var fixCases = []struct {
	name string
	in   string
	want string
}{
	{
		name: "block on one line",
		in:   `if x>0: print("ok")`,
		want: "if x>0:\n    print(\"ok\")",
	},
	{
		name: "fenced script",
		in:   "```python\nname = input(\"Name: \")\nprint(\"Hi\", name)\n```",
		want: "name = input(\"Name: \")\nprint(\"Hi\", name)",
	},
	{
		name: "nested and sequential blocks on one line",
		in:   "for i in range(3): if i%2==0: print(i) else: print(-i)",
		want: "for i in range(3):\n    if i%2==0:\n        print(i)\n    else:\n        print(-i)",
	},
	{
		name: "partially collapsed function",
		in:   "def f(x):\n    if x: return 1\n    return 2\nprint(f(0))",
		want: "def f(x):\n    if x:\n        return 1\n    return 2\nprint(f(0))",
	},
	{
		name: "try except",
		in:   "try: x = int(input()) except ValueError: print(\"bad\")",
		want: "try:\n    x = int(input())\nexcept ValueError:\n    print(\"bad\")",
	},
	{
		name: "break closes block",
		in:   "while True: x = input(); if x: break; print(x)",
		want: "while True:\n    x = input()\n    if x:\n        break\n    print(x)",
	},
	{
		name: "dedent after split body",
		in:   "if a: x = 1\ny = 2",
		want: "if a:\n    x = 1\ny = 2",
	},
	{
		name: "flush left body",
		in:   "def f():\nx = 1\nreturn x\nprint(f())",
		want: "def f():\n    x = 1\n    return x\nprint(f())",
	},
	{
		name: "tab indentation",
		in:   "if a:\n\tx = 1\n\ty = 2\nz = 3",
		want: "if a:\n    x = 1\n    y = 2\nz = 3",
	},
	{
		name: "comments",
		in:   "# hello\nprint(1)  # trailing",
		want: "# hello\nprint(1)  # trailing",
	},
	{
		name: "continued brackets",
		in:   "total = sum([1,\n2,\n3])\nprint(total)",
		want: "total = sum([1,\n    2,\n    3])\nprint(total)",
	},
	{
		name: "match case",
		in:   "match cmd: case 'a': print(1) case _: print(2)",
		want: "match cmd:\n    case 'a':\n        print(1)\n    case _:\n        print(2)",
	},
	{
		name: "literal newline kept inside literal",
		in:   "print(\"a\nb\"); print(2)",
		want: "print(\"a\\nb\")\nprint(2)",
	},
	{
		name: "statements after brackets and values",
		in:   "nums = [1, 2, 3] print(sum(nums)) x = 5 print(x) name = \"Bob\" print(name)",
		want: "nums = [1, 2, 3]\nprint(sum(nums))\nx = 5\nprint(x)\nname = \"Bob\"\nprint(name)",
	},
	{
		name: "closing brace line",
		in:   "x = {\n    'a': 1,\n}\nprint(x)",
		want: "x = {\n    'a': 1,\n}\nprint(x)",
	},
	{
		name: "closing paren of header",
		in:   "def f(\n    a,\n):\n    return a\nprint(f(1))",
		want: "def f(\n    a,\n):\n    return a\nprint(f(1))",
	},
	{
		name: "comment at dedent level",
		in:   "def f(a):\n    if a:\n        x = 1\n    # d\n    return x",
		want: "def f(a):\n    if a:\n        x = 1\n    # d\n    return x",
	},
	{
		name: "if else at width",
		in:   "if a: x = 1\nelse: x = 2\nprint(x)",
		want: "if a:\n    x = 1\nelse:\n    x = 2\nprint(x)",
	},
}

func TestFix(t *testing.T) {
	t.Parallel()

	for _, tc := range fixCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Fix(tc.in, spec.DefaultDialect(), true)
			if got != tc.want {
				t.Fatalf("Fix(%q)\n got: %q\nwant: %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFix_Idempotent(t *testing.T) {
	t.Parallel()

	d := spec.DefaultDialect()
	for _, tc := range fixCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			once := Fix(tc.in, d, true)
			if twice := Fix(once, d, true); twice != once {
				t.Fatalf("second pass changed output\nonce:  %q\ntwice: %q", once, twice)
			}
		})
	}
}

func TestFix_NoReindent(t *testing.T) {
	t.Parallel()

	got := Fix("for i in range(2): print(i)", spec.DefaultDialect(), false)
	if want := "for i in range(2):\nprint(i)"; got != want {
		t.Fatalf("Fix = %q, want %q", got, want)
	}
}

func TestFix_BlankInput(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "```\n```", ";;;"} {
		if got := Fix(in, spec.DefaultDialect(), true); got != "" {
			t.Fatalf("Fix(%q) = %q, want empty", in, got)
		}
	}
}

func TestFix_NonEmptyForCode(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"x", "```\nprint(1)\n```", ";x = 1;", "# only"} {
		if got := Fix(in, spec.DefaultDialect(), true); got == "" {
			t.Fatalf("Fix(%q) is empty", in)
		}
	}
}
