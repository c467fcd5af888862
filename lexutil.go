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
	"bytes"
	"strings"
)

// GetSourceTextUntilLogicalEndOfLine returns the text from start up to the
// end of its logical line. Physical lines ending in a backslash are joined,
// keeping both the backslash and a newline at each splice, so the result is
// the line as the user wrote it.
func GetSourceTextUntilLogicalEndOfLine(start SourceLocation, getter CharacterDataGetter) string {
	data := getter.GetCharacterData(start)
	var b strings.Builder
	for {
		nl := bytes.IndexByte(data, '\n')
		if nl < 0 {
			b.Write(data)
			break
		}
		b.Write(data[:nl])
		if nl == 0 || data[nl-1] != '\\' {
			break
		}
		b.WriteByte('\n')
		data = data[nl+1:]
	}
	return b.String()
}

// GetLocationAfter returns the location just past the first occurrence of
// needle at or after start, or InvalidLocation if there is none.
func GetLocationAfter(start SourceLocation, needle string, getter CharacterDataGetter) SourceLocation {
	if !start.IsValid() {
		panic(violationf("GetLocationAfter", "takes only valid locations"))
	}
	data := getter.GetCharacterData(start)
	i := bytes.Index(data, []byte(needle))
	if i < 0 {
		return InvalidLocation
	}
	return start.WithOffset(i + len(needle))
}

// GetIncludeNameAsWritten returns the <...> or "..." spelling that starts at
// loc, exactly as written. A name broken by line splices keeps them.
func GetIncludeNameAsWritten(loc SourceLocation, getter CharacterDataGetter) string {
	data := GetSourceTextUntilLogicalEndOfLine(loc, getter)
	if data == "" {
		return data
	}
	var closing byte
	switch data[0] {
	case '<':
		closing = '>'
	case '"':
		closing = '"'
	default:
		panic(violationf("GetIncludeNameAsWritten", "unexpected token being #included: %q", data))
	}
	end := strings.IndexByte(data[1:], closing)
	if end < 0 {
		panic(violationf("GetIncludeNameAsWritten", "no end-character found for #include: %q", data))
	}
	return data[:end+2]
}

// GetTokenText returns the raw spelling of tok.
func GetTokenText(tok Token, getter CharacterDataGetter) string {
	data := getter.GetCharacterData(tok.Loc)
	if tok.Len < 0 || tok.Len > len(data) {
		panic(violationf("GetTokenText", "token of length %d at %d runs past the end of its file", tok.Len, tok.Loc))
	}
	return string(data[:tok.Len])
}
