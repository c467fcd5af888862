// Package directive walks the preprocessor directives of a source file and
// reports, for each, what the lexer utilities in pplex recover from the raw
// text: include spellings as written and the operands of defined.
//
// It neither expands macros nor evaluates conditionals.
package directive

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fwessels/pplex"
	"github.com/fwessels/pplex/internal/rawlex"
)

type Kind int

const (
	Unknown Kind = iota
	Include
	IncludeNext
	Import
	Define
	Undef
	If
	Ifdef
	Ifndef
	Elif
	Else
	Endif
)

var kindNames = map[string]Kind{
	"include":      Include,
	"include_next": IncludeNext,
	"import":       Import,
	"define":       Define,
	"undef":        Undef,
	"if":           If,
	"ifdef":        Ifdef,
	"ifndef":       Ifndef,
	"elif":         Elif,
	"else":         Else,
	"endif":        Endif,
}

func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return "#" + name
		}
	}
	return "#?"
}

// IsInclude reports whether k names a file.
func (k Kind) IsInclude() bool {
	return k == Include || k == IncludeNext || k == Import
}

// Directive is one logical directive line.
type Directive struct {
	Kind Kind
	// Name is the directive keyword as written, e.g. "include".
	Name string
	// Loc is the location of the '#'.
	Loc pplex.SourceLocation
	// Text is the whole logical line, splices included.
	Text string
	Line    int
	EndLine int

	// Include is the <...> or "..." spelling of an include, as written.
	// Computed includes (#include MACRO) leave it empty and set Computed.
	Include  string
	Computed bool

	// Macros holds the macro names tested by #if/#elif (operands of
	// defined) and by #ifdef/#ifndef.
	Macros []pplex.Token

	// Depth is the conditional nesting depth the directive appears at;
	// #if and its #endif share a depth.
	Depth int
}

// Error is a malformed directive.
type Error struct {
	Pos pplex.Position
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Visitor scans files held in Buffer.
type Visitor struct {
	Buffer *pplex.Buffer
	Logger *slog.Logger
}

func (v *Visitor) logger() *slog.Logger {
	if v.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return v.Logger
}

// Visit calls fn for each directive of the file in source order. It stops at
// the first error, either from fn or from a malformed directive. Lines inside
// block comments are skipped.
func (v *Visitor) Visit(id pplex.FileID, fn func(Directive) error) error {
	start := v.Buffer.FileStart(id)
	size := int(v.Buffer.FileEnd(id) - start)
	cond := newCondStack()
	log := v.logger().With("file", v.Buffer.FileName(id))

	inComment := false
	for off := 0; off < size; {
		loc := start.WithOffset(off)
		text := pplex.GetSourceTextUntilLogicalEndOfLine(loc, v.Buffer)
		next := off + len(text) + 1

		first, open := rawlex.ScanLine([]byte(text), inComment)
		inComment = open
		if first < 0 || text[first] != '#' {
			off = next
			continue
		}
		d, err := v.parse(loc.WithOffset(first), text[first:], cond)
		if err != nil {
			return err
		}
		log.Debug("directive", "kind", d.Kind, "line", d.Line, "include", d.Include, "macros", len(d.Macros))
		if err := fn(d); err != nil {
			return err
		}
		off = next
	}

	if cond.Depth() != 0 {
		return &Error{
			Pos: pplex.Position{File: v.Buffer.FileName(id), Line: cond.UnclosedLine(), Column: 1},
			Err: errors.New("unterminated conditional directive"),
		}
	}
	return nil
}

// Directives collects all directives of the file.
func (v *Visitor) Directives(id pplex.FileID) ([]Directive, error) {
	var ds []Directive
	err := v.Visit(id, func(d Directive) error {
		ds = append(ds, d)
		return nil
	})
	return ds, err
}

func (v *Visitor) parse(hash pplex.SourceLocation, text string, cond *condStack) (d Directive, err error) {
	pos := v.Buffer.Position(hash)
	defer func() {
		if err != nil {
			var de *Error
			if !errors.As(err, &de) {
				err = &Error{Pos: pos, Err: err}
			}
		}
	}()
	defer pplex.Recover(&err)

	fields := splitDirective(text)
	d = Directive{
		Kind:    kindNames[fields.cmd],
		Name:    fields.cmd,
		Loc:     hash,
		Text:    text,
		Line:    pos.Line,
		EndLine: pos.Line + strings.Count(text, "\n"),
	}
	if fields.cmd == "" {
		// null directive
		d.Depth = cond.Depth()
		return d, nil
	}

	// The argument starts after the keyword; GetLocationAfter finds it in
	// the raw text so the offset accounts for any space after '#'.
	afterName := pplex.GetLocationAfter(hash, fields.cmd, v.Buffer)
	argOff := int(afterName - hash)
	argOff += firstNonSpaceOrEnd(text[argOff:])
	arg := hash.WithOffset(argOff)

	switch d.Kind {
	case Include, IncludeNext, Import:
		switch {
		case argOff == len(text):
			return d, fmt.Errorf("%s expects \"FILENAME\" or <FILENAME>", d.Kind)
		case text[argOff] == '<' || text[argOff] == '"':
			d.Include = pplex.GetIncludeNameAsWritten(arg, v.Buffer)
		default:
			d.Computed = true
		}

	case If, Elif:
		end := hash.WithOffset(len(text))
		d.Macros = pplex.FindArgumentsToDefined(pplex.SourceRange{Begin: arg, End: end}, v.Buffer)

	case Ifdef, Ifndef:
		name, _, ok := splitIdentPrefix(text[argOff:])
		if !ok {
			return d, fmt.Errorf("no macro name given in %s directive", d.Kind)
		}
		d.Macros = []pplex.Token{{Loc: arg, Len: len(name), Kind: pplex.Identifier}}
	}

	switch d.Kind {
	case If, Ifdef, Ifndef:
		d.Depth = cond.Depth()
		cond.Push(pos.Line)
	case Elif, Else:
		if cond.Depth() == 0 {
			return d, fmt.Errorf("%s without #if", d.Kind)
		}
		d.Depth = cond.Depth() - 1
	case Endif:
		if cond.Depth() == 0 {
			return d, errors.New("#endif without #if")
		}
		cond.Pop()
		d.Depth = cond.Depth()
	default:
		d.Depth = cond.Depth()
	}
	return d, nil
}

// MacroTest is a macro name tested by a conditional directive.
type MacroTest struct {
	Name string
	Pos  pplex.Position
	Via  Kind
}

// MacroTests lists the macro names tested in ds. Operands of defined in #if
// and #elif are reported the same way as #ifdef names.
func MacroTests(buf *pplex.Buffer, ds []Directive) []MacroTest {
	var ret []MacroTest
	for _, d := range ds {
		for _, tok := range d.Macros {
			ret = append(ret, MacroTest{
				Name: pplex.GetTokenText(tok, buf),
				Pos:  buf.Position(tok.Loc),
				Via:  d.Kind,
			})
		}
	}
	return ret
}

// ---------------- Directive parsing helpers ----------------

type directiveFields struct {
	cmd string
	arg string
}

// splitDirective splits a logical line starting with '#'.
func splitDirective(text string) directiveFields {
	rest := strings.TrimLeft(text[1:], " \t")
	cmd, after, ok := splitIdentPrefix(rest)
	if !ok {
		return directiveFields{}
	}
	return directiveFields{cmd: cmd, arg: strings.TrimSpace(after)}
}

func splitIdentPrefix(s string) (name string, rest string, ok bool) {
	if s == "" || !rawlex.IsIdentStart(s[0]) {
		return "", "", false
	}
	i := 1
	for i < len(s) && rawlex.IsIdentPart(s[i]) {
		i++
	}
	return s[:i], s[i:], true
}

// firstNonSpaceOrEnd skips blanks and line splices.
func firstNonSpaceOrEnd(s string) int {
	i := 0
	for i < len(s) {
		switch {
		case s[i] == ' ' || s[i] == '\t':
			i++
		case strings.HasPrefix(s[i:], "\\\n"):
			i += 2
		default:
			return i
		}
	}
	return i
}

// ---------------- Conditionals ----------------

type condStack struct {
	lines []int
}

func newCondStack() *condStack  { return &condStack{} }
func (c *condStack) Depth() int { return len(c.lines) }

func (c *condStack) Push(line int) {
	c.lines = append(c.lines, line)
}

func (c *condStack) Pop() {
	if len(c.lines) == 0 {
		return
	}
	c.lines = c.lines[:len(c.lines)-1]
}

func (c *condStack) UnclosedLine() int {
	if len(c.lines) == 0 {
		return 0
	}
	return c.lines[len(c.lines)-1]
}
