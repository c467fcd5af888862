/*
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package pplex

import (
	"fmt"

	"github.com/fwessels/pplex/internal/rawlex"
)

type TokenKind int

const (
	EOF TokenKind = iota
	Identifier
	LParen
	Other
)

func (k TokenKind) String() string {
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
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a raw token: Len bytes of source starting at Loc.
type Token struct {
	Loc  SourceLocation
	Len  int
	Kind TokenKind
}

// Range returns the source range covered by the token.
func (t Token) Range() SourceRange {
	return SourceRange{Begin: t.Loc, End: t.Loc.WithOffset(t.Len)}
}

func tokenKind(k rawlex.Kind) TokenKind {
	switch k {
	case rawlex.Identifier:
		return Identifier
	case rawlex.LParen:
		return LParen
	case rawlex.EOF:
		return EOF
	default:
		return Other
	}
}

// rangeLexer re-lexes a private copy of a source range and reports token
// locations in the addressing of the original buffer.
type rangeLexer struct {
	base SourceLocation
	text []byte
	lex  *rawlex.Lexer
}

func newRangeLexer(r SourceRange, getter CharacterDataGetter) *rangeLexer {
	if !r.IsValid() || r.End < r.Begin {
		panic(violationf("FindArgumentsToDefined", "bad range [%d, %d)", r.Begin, r.End))
	}
	data := getter.GetCharacterData(r.Begin)
	if r.Len() > len(data) {
		panic(violationf("FindArgumentsToDefined", "range [%d, %d) does not lie within one file", r.Begin, r.End))
	}
	text := make([]byte, r.Len())
	copy(text, data)
	return &rangeLexer{base: r.Begin, text: text, lex: rawlex.New(text)}
}

func (l *rangeLexer) next() (Token, string) {
	t := l.lex.Next()
	tok := Token{Loc: l.base.WithOffset(t.Off), Len: t.Len, Kind: tokenKind(t.Kind)}
	return tok, string(l.text[t.Off:t.End()])
}

type definedState int

const (
	lookingForDefined definedState = iota
	expectingLeftParenOrIdentifier
	expectingIdentifier
)

func (s definedState) String() string {
	switch s {
	case lookingForDefined:
		return "LookingForDefined"
	case expectingLeftParenOrIdentifier:
		return "ExpectingLeftParenOrIdentifier"
	case expectingIdentifier:
		return "ExpectingIdentifier"
	default:
		return fmt.Sprintf("definedState(%d)", int(s))
	}
}

// transition advances the defined-operand machine by one token. record
// reports whether tok is an operand of defined.
func transition(s definedState, kind TokenKind, text string) (next definedState, record bool, err error) {
	switch s {
	case lookingForDefined:
		if kind == Identifier && text == "defined" {
			return expectingLeftParenOrIdentifier, false, nil
		}
		return lookingForDefined, false, nil
	case expectingLeftParenOrIdentifier:
		if kind == LParen {
			return expectingIdentifier, false, nil
		}
		return transition(expectingIdentifier, kind, text)
	case expectingIdentifier:
		if kind != Identifier {
			return s, false, fmt.Errorf("expected identifier after defined, got %s %q", kind, text)
		}
		return lookingForDefined, true, nil
	}
	return s, false, fmt.Errorf("unknown state %d", int(s))
}

// FindArgumentsToDefined returns the identifiers in r, the expression of an
// #if or #elif, that are operands of defined, in source order. Both
// "defined(NAME)" and "defined NAME" are recognized; everything else in the
// expression is skipped.
func FindArgumentsToDefined(r SourceRange, getter CharacterDataGetter) []Token {
	lex := newRangeLexer(r, getter)
	tracer().Debug("lexing", "text", string(lex.text))

	var ret []Token
	state := lookingForDefined
	for {
		tok, text := lex.next()
		if tok.Kind == EOF {
			break
		}
		tracer().Debug("processing token", "text", text, "kind", tok.Kind, "state", state)
		next, record, err := transition(state, tok.Kind, text)
		if err != nil {
			panic(violationf("FindArgumentsToDefined", "%v", err))
		}
		if record {
			ret = append(ret, tok)
		}
		state = next
	}
	return ret
}

// CollectDefinedNames is FindArgumentsToDefined returning operand spellings.
func CollectDefinedNames(r SourceRange, getter CharacterDataGetter) []string {
	toks := FindArgumentsToDefined(r, getter)
	names := make([]string, 0, len(toks))
	for _, tok := range toks {
		names = append(names, GetTokenText(tok, getter))
	}
	return names
}
