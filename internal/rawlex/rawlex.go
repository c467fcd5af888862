// Package rawlex tokenizes C preprocessor text without expanding macros or
// recognizing directives. It reports byte offsets into its input; callers
// translate them into their own addressing.
package rawlex

import "fmt"

type Kind int

const (
	EOF Kind = iota
	Identifier
	LParen
	Other
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "eof"
	case Identifier:
		return "raw_identifier"
	case LParen:
		return "l_paren"
	case Other:
		return "other"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is a lexeme spanning src[Off:Off+Len].
type Token struct {
	Kind Kind
	Off  int
	Len  int
}

func (t Token) End() int {
	return t.Off + t.Len
}

type Lexer struct {
	src []byte
	pos int
	// open is set when the last block comment ran to the end of src.
	open bool
}

// New returns a lexer over src. src is not modified.
func New(src []byte) *Lexer {
	return &Lexer{src: src}
}

// Next returns the next token, or a token of Kind EOF (with Off == len(src))
// once the input is exhausted. EOF is sticky.
func (l *Lexer) Next() Token {
	l.skipSpaceAndComments()
	if l.pos >= len(l.src) {
		return Token{Kind: EOF, Off: len(l.src)}
	}
	start := l.pos
	ch := l.src[l.pos]

	switch {
	case IsIdentStart(ch):
		l.pos++
		l.scanWhile(IsIdentPart)
		return Token{Kind: Identifier, Off: start, Len: l.pos - start}

	case isDigit(ch) || (ch == '.' && isDigit(l.peekAfterSplices(l.pos+1))):
		l.pos++
		l.scanNumber()
		return Token{Kind: Other, Off: start, Len: l.pos - start}

	case ch == '"' || ch == '\'':
		l.scanQuoted(ch)
		return Token{Kind: Other, Off: start, Len: l.pos - start}

	case ch == '(':
		l.pos++
		return Token{Kind: LParen, Off: start, Len: 1}
	}

	l.pos++
	return Token{Kind: Other, Off: start, Len: 1}
}

// All drains the lexer, excluding the EOF token.
func (l *Lexer) All() []Token {
	var toks []Token
	for {
		tok := l.Next()
		if tok.Kind == EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

// spliceLen reports the length of a backslash-newline at i, or 0.
func (l *Lexer) spliceLen(i int) int {
	if i >= len(l.src) || l.src[i] != '\\' {
		return 0
	}
	if i+1 < len(l.src) && l.src[i+1] == '\n' {
		return 2
	}
	if i+2 < len(l.src) && l.src[i+1] == '\r' && l.src[i+2] == '\n' {
		return 3
	}
	return 0
}

func (l *Lexer) skipSplices(i int) int {
	for {
		n := l.spliceLen(i)
		if n == 0 {
			return i
		}
		i += n
	}
}

func (l *Lexer) peekAfterSplices(i int) byte {
	i = l.skipSplices(i)
	if i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

// scanWhile advances over bytes accepted by f, looking through splices.
func (l *Lexer) scanWhile(f func(byte) bool) {
	for {
		i := l.skipSplices(l.pos)
		if i >= len(l.src) || !f(l.src[i]) {
			return
		}
		l.pos = i + 1
	}
}

func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f':
			l.pos++
		case l.spliceLen(l.pos) > 0:
			l.pos += l.spliceLen(l.pos)
		case ch == '/' && l.peekAfterSplices(l.pos+1) == '/':
			l.skipLineComment()
		case ch == '/' && l.peekAfterSplices(l.pos+1) == '*':
			l.skipBlockComment()
		default:
			return
		}
	}
}

// skipLineComment runs to the first newline not preceded by a splice.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) {
		if n := l.spliceLen(l.pos); n > 0 {
			l.pos += n
			continue
		}
		if l.src[l.pos] == '\n' {
			return
		}
		l.pos++
	}
}

func (l *Lexer) skipBlockComment() {
	l.pos = l.skipSplices(l.pos+1) + 1 // past "/*"
	l.skipCommentBody()
}

// skipCommentBody runs past the "*/" that closes a block comment, or to the
// end of input, leaving the comment open.
func (l *Lexer) skipCommentBody() {
	for l.pos < len(l.src) {
		if l.src[l.pos] == '*' && l.peekAfterSplices(l.pos+1) == '/' {
			l.pos = l.skipSplices(l.pos+1) + 1
			l.open = false
			return
		}
		l.pos++
	}
	l.open = true
}

// ScanLine scans one logical line. inComment reports whether the line starts
// inside a block comment. It returns the offset of the first byte that is
// neither blank nor comment, -1 if there is none, and whether a block comment
// is still open at the end of the line. Comment openers inside string and
// character literals are ignored.
func ScanLine(src []byte, inComment bool) (first int, open bool) {
	l := New(src)
	if inComment {
		l.skipCommentBody()
	}
	first = -1
	for {
		tok := l.Next()
		if tok.Kind == EOF {
			return first, l.open
		}
		if first < 0 {
			first = tok.Off
		}
	}
}

// scanNumber consumes the rest of a preprocessing number.
func (l *Lexer) scanNumber() {
	for {
		i := l.skipSplices(l.pos)
		if i >= len(l.src) {
			return
		}
		ch := l.src[i]
		switch {
		case (ch == '+' || ch == '-') && isExponent(l.src[l.pos-1]):
			l.pos = i + 1
		case IsIdentPart(ch) || ch == '.':
			l.pos = i + 1
		default:
			return
		}
	}
}

// scanQuoted consumes a string or character literal. An unterminated literal
// ends at the newline or at the end of input.
func (l *Lexer) scanQuoted(quote byte) {
	l.pos++
	for l.pos < len(l.src) {
		if n := l.spliceLen(l.pos); n > 0 {
			l.pos += n
			continue
		}
		ch := l.src[l.pos]
		switch ch {
		case '\\':
			l.pos++
			if l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
			continue
		case '\n':
			return
		}
		l.pos++
		if ch == quote {
			return
		}
	}
}

// IsIdentStart reports whether b can begin an identifier.
func IsIdentStart(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// IsIdentPart reports whether b can continue an identifier. '$' is accepted
// after the first byte.
func IsIdentPart(b byte) bool {
	return IsIdentStart(b) || isDigit(b) || b == '$'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isExponent(b byte) bool {
	return b == 'e' || b == 'E' || b == 'p' || b == 'P'
}
