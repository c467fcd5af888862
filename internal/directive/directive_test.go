package directive

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fwessels/pplex"
)

func lines(a ...string) string {
	return strings.Join(a, "\n") + "\n"
}

func visit(t *testing.T, name, content string) (*pplex.Buffer, []Directive, error) {
	t.Helper()
	buf := pplex.NewBuffer()
	id := buf.AddString(name, content)
	v := &Visitor{Buffer: buf}
	ds, err := v.Directives(id)
	return buf, ds, err
}

type summary struct {
	Kind    string
	Line    int
	EndLine int
	Include string
	Macros  []string
	Depth   int
}

func summarize(buf *pplex.Buffer, ds []Directive) []summary {
	var ret []summary
	for _, d := range ds {
		s := summary{
			Kind:    d.Kind.String(),
			Line:    d.Line,
			EndLine: d.EndLine,
			Include: d.Include,
			Depth:   d.Depth,
		}
		for _, tok := range d.Macros {
			s.Macros = append(s.Macros, pplex.GetTokenText(tok, buf))
		}
		ret = append(ret, s)
	}
	return ret
}

func TestMultilineInclude(t *testing.T) {
	content, err := os.ReadFile("testdata/multiline_include.cc")
	if err != nil {
		t.Fatal(err)
	}
	buf, ds, err := visit(t, "multiline_include.cc", string(content))
	if err != nil {
		t.Fatalf("visit: %v", err)
	}
	want := []summary{
		{Kind: "#include", Line: 3, EndLine: 4, Include: "<algo\\\nrithm>"},
		{Kind: "#include", Line: 5, EndLine: 8, Include: "<l\\\ni\\\ns\\\nt>"},
		{Kind: "#include", Line: 9, EndLine: 10, Include: "<str\\\ning>"},
		{Kind: "#include", Line: 11, EndLine: 12, Include: "\"local\\\n.h\""},
		{Kind: "#if", Line: 14, EndLine: 15, Macros: []string{"HAVE_FOO", "HAVE_BAR"}},
		{Kind: "#ifdef", Line: 16, EndLine: 16, Macros: []string{"NESTED"}, Depth: 1},
		{Kind: "#define", Line: 17, EndLine: 17, Depth: 2},
		{Kind: "#endif", Line: 18, EndLine: 18, Depth: 1},
		{Kind: "#elif", Line: 19, EndLine: 19, Macros: []string{"__cplusplus"}},
		{Kind: "#else", Line: 20, EndLine: 20},
		{Kind: "#endif", Line: 21, EndLine: 21},
	}
	if diff := cmp.Diff(want, summarize(buf, ds)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	var tests []string
	for _, mt := range MacroTests(buf, ds) {
		tests = append(tests, mt.Name+" "+mt.Pos.String()+" "+mt.Via.String())
	}
	wantTests := []string{
		"HAVE_FOO multiline_include.cc:14:13 #if",
		"HAVE_BAR multiline_include.cc:15:13 #if",
		"NESTED multiline_include.cc:16:8 #ifdef",
		"__cplusplus multiline_include.cc:19:16 #elif",
	}
	if diff := cmp.Diff(wantTests, tests); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestVisit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []summary
	}{
		{
			"empty",
			"",
			nil,
		},
		{
			"no directives",
			lines("int x;", "  a # b"),
			nil,
		},
		{
			"continued code line hides hash",
			lines("int x = \\", "#include <no>", "#include <yes>"),
			[]summary{{Kind: "#include", Line: 3, EndLine: 3, Include: "<yes>"}},
		},
		{
			"indented and spaced",
			lines("  #  include_next <a.h>", "\t# import \"b.h\""),
			[]summary{
				{Kind: "#include_next", Line: 1, EndLine: 1, Include: "<a.h>"},
				{Kind: "#import", Line: 2, EndLine: 2, Include: "\"b.h\""},
			},
		},
		{
			"computed include",
			lines("#include MACRO_HEADER"),
			[]summary{{Kind: "#include", Line: 1, EndLine: 1}},
		},
		{
			"null directive",
			lines("#", "# // comment"),
			[]summary{{Kind: "#?", Line: 1, EndLine: 1}, {Kind: "#?", Line: 2, EndLine: 2}},
		},
		{
			"ifndef guard",
			lines("#ifndef GUARD_H", "#define GUARD_H", "#endif  // GUARD_H"),
			[]summary{
				{Kind: "#ifndef", Line: 1, EndLine: 1, Macros: []string{"GUARD_H"}},
				{Kind: "#define", Line: 2, EndLine: 2, Depth: 1},
				{Kind: "#endif", Line: 3, EndLine: 3},
			},
		},
		{
			"if without defined",
			lines("#if __STDC_VERSION__ >= 201112L", "#endif"),
			[]summary{
				{Kind: "#if", Line: 1, EndLine: 1},
				{Kind: "#endif", Line: 2, EndLine: 2},
			},
		},
		{
			"commented-out endif",
			lines("/*", "#endif", "*/", "#include <a.h>"),
			[]summary{{Kind: "#include", Line: 4, EndLine: 4, Include: "<a.h>"}},
		},
		{
			"commented-out ifdef",
			lines("/*", "#ifdef OLD", "*/", "int x;"),
			nil,
		},
		{
			"commented-out broken include",
			lines("/*", "#include <broken", "*/"),
			nil,
		},
		{
			"comment left open by if",
			lines("#if defined(A) /* see", "   #endif below */", "#endif"),
			[]summary{
				{Kind: "#if", Line: 1, EndLine: 1, Macros: []string{"A"}},
				{Kind: "#endif", Line: 3, EndLine: 3},
			},
		},
		{
			"comment before hash",
			lines("/* c */ #include <a.h>", "x; /* y */ #include <no.h>"),
			[]summary{{Kind: "#include", Line: 1, EndLine: 1, Include: "<a.h>"}},
		},
		{
			"comment opener in literals",
			lines(`char *s = "/*"; char c = '/';`, "#include <a.h>", "// /*", "#include <b.h>"),
			[]summary{
				{Kind: "#include", Line: 2, EndLine: 2, Include: "<a.h>"},
				{Kind: "#include", Line: 4, EndLine: 4, Include: "<b.h>"},
			},
		},
		{
			"dollar inside macro name",
			lines("#ifdef A$B", "#endif"),
			[]summary{
				{Kind: "#ifdef", Line: 1, EndLine: 1, Macros: []string{"A$B"}},
				{Kind: "#endif", Line: 2, EndLine: 2},
			},
		},
		{
			"no trailing newline",
			"#if defined A",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, ds, err := visit(t, "t.cc", tt.input)
			if tt.name == "no trailing newline" {
				var de *Error
				if !errors.As(err, &de) || de.Pos.Line != 1 {
					t.Fatalf("expected unterminated conditional at line 1, got %v", err)
				}
				if got := summarize(buf, ds); len(got) != 1 || got[0].Macros[0] != "A" {
					t.Errorf("unexpected directives %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("visit: %v", err)
			}
			if diff := cmp.Diff(tt.want, summarize(buf, ds)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBadDirectives(t *testing.T) {
	tests := []struct {
		input string
		error string
	}{
		{"#include <vector\n", "t.cc:1:1: GetIncludeNameAsWritten: no end-character found for #include: \"<vector\""},
		{"#include\n", "t.cc:1:1: #include expects \"FILENAME\" or <FILENAME>"},
		{"#if defined 1\n#endif\n", "t.cc:1:1: FindArgumentsToDefined: expected identifier after defined, got other \"1\""},
		{"#ifdef\n#endif\n", "t.cc:1:1: no macro name given in #ifdef directive"},
		{"#ifdef $X\n#endif\n", "t.cc:1:1: no macro name given in #ifdef directive"},
		{"#if defined $X\n#endif\n", "t.cc:1:1: FindArgumentsToDefined: expected identifier after defined, got other \"$\""},
		{"#endif\n", "t.cc:1:1: #endif without #if"},
		{"\n#else\n", "t.cc:2:1: #else without #if"},
		{"#if 1\n#if 2\n#endif\n", "t.cc:1:1: unterminated conditional directive"},
	}
	for _, tt := range tests {
		t.Run(tt.error, func(t *testing.T) {
			_, _, err := visit(t, "t.cc", tt.input)
			if err == nil {
				t.Fatalf("expected error %q", tt.error)
			}
			if diff := cmp.Diff(tt.error, err.Error()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
			var de *Error
			if !errors.As(err, &de) {
				t.Errorf("expected *Error, got %T", err)
			}
		})
	}
}

func TestContractViolationIsUnwrapped(t *testing.T) {
	_, _, err := visit(t, "t.cc", "#include \"a.h\n")
	var cv pplex.ContractViolation
	if !errors.As(err, &cv) {
		t.Fatalf("expected a ContractViolation inside %v", err)
	}
}

func TestVisitStopsOnCallbackError(t *testing.T) {
	buf := pplex.NewBuffer()
	id := buf.AddString("t.cc", lines("#include <a>", "#include <b>"))
	stop := errors.New("stop")
	n := 0
	err := (&Visitor{Buffer: buf}).Visit(id, func(Directive) error {
		n++
		return stop
	})
	if !errors.Is(err, stop) || n != 1 {
		t.Errorf("got err=%v after %d calls", err, n)
	}
}
