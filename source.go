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
	"sort"
	"sync"
)

// SourceLocation addresses a single byte of a Buffer. Its value is a 1-based
// offset into the logical buffer formed by all files added to it, so the zero
// value never addresses real data.
type SourceLocation uint32

// InvalidLocation is the "no such position" sentinel.
const InvalidLocation SourceLocation = 0

func (loc SourceLocation) IsValid() bool {
	return loc != InvalidLocation
}

// WithOffset returns the location n bytes after loc (before, if n is negative).
func (loc SourceLocation) WithOffset(n int) SourceLocation {
	return SourceLocation(int64(loc) + int64(n))
}

// SourceRange is the half-open span [Begin, End).
type SourceRange struct {
	Begin SourceLocation
	End   SourceLocation
}

func (r SourceRange) IsValid() bool {
	return r.Begin.IsValid() && r.End.IsValid()
}

// Len returns the number of bytes spanned by r.
func (r SourceRange) Len() int {
	if r.End < r.Begin {
		return 0
	}
	return int(r.End - r.Begin)
}

// CharacterDataGetter hands out raw, un-escaped source bytes. The returned
// slice starts exactly at loc and runs to the end of the file holding loc.
// Implementations panic with a ContractViolation for locations they cannot map.
type CharacterDataGetter interface {
	GetCharacterData(loc SourceLocation) []byte
}

// FileID identifies a file added to a Buffer.
type FileID int

type fileEntry struct {
	name    string
	content []byte
	start   SourceLocation
	lines   []int // offsets of line starts, computed lazily
	once    sync.Once
}

func (f *fileEntry) end() SourceLocation {
	return f.start.WithOffset(len(f.content))
}

func (f *fileEntry) lineStarts() []int {
	f.once.Do(func() {
		f.lines = append(f.lines, 0)
		for i, b := range f.content {
			if b == '\n' {
				f.lines = append(f.lines, i+1)
			}
		}
	})
	return f.lines
}

// Buffer is a location-addressed store of source files. Every file occupies
// a contiguous run of locations followed by one unused location, so the data
// view of one file never extends into the next.
type Buffer struct {
	mu    sync.RWMutex
	files []*fileEntry
	next  SourceLocation
}

func NewBuffer() *Buffer {
	return &Buffer{next: 1}
}

// AddFile copies content into the buffer and returns its id.
func (b *Buffer) AddFile(name string, content []byte) FileID {
	b.mu.Lock()
	defer b.mu.Unlock()

	data := make([]byte, len(content))
	copy(data, content)
	f := &fileEntry{name: name, content: data, start: b.next}
	b.files = append(b.files, f)
	b.next = f.end().WithOffset(1)
	return FileID(len(b.files) - 1)
}

// AddString is AddFile for string content.
func (b *Buffer) AddString(name, content string) FileID {
	return b.AddFile(name, []byte(content))
}

func (b *Buffer) file(id FileID) *fileEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if id < 0 || int(id) >= len(b.files) {
		panic(violationf("Buffer.file", "unknown file id %d", id))
	}
	return b.files[id]
}

// lookup finds the file containing loc. The one-past-end location of a file
// belongs to that file: it yields an empty view.
func (b *Buffer) lookup(loc SourceLocation) (*fileEntry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !loc.IsValid() || len(b.files) == 0 {
		return nil, false
	}
	i := sort.Search(len(b.files), func(i int) bool {
		return b.files[i].end() >= loc
	})
	if i == len(b.files) || loc < b.files[i].start {
		return nil, false
	}
	return b.files[i], true
}

// GetCharacterData implements CharacterDataGetter.
func (b *Buffer) GetCharacterData(loc SourceLocation) []byte {
	f, ok := b.lookup(loc)
	if !ok {
		panic(violationf("GetCharacterData", "location %d is not mapped to any file", loc))
	}
	return f.content[loc-f.start:]
}

// FileStart returns the location of the first byte of the file.
func (b *Buffer) FileStart(id FileID) SourceLocation {
	return b.file(id).start
}

// FileEnd returns the location one past the last byte of the file.
func (b *Buffer) FileEnd(id FileID) SourceLocation {
	return b.file(id).end()
}

// FileName returns the name the file was added under.
func (b *Buffer) FileName(id FileID) string {
	return b.file(id).name
}

// Range returns the range of file bytes [beginOff, endOff).
func (b *Buffer) Range(id FileID, beginOff, endOff int) SourceRange {
	f := b.file(id)
	if beginOff < 0 || endOff < beginOff || endOff > len(f.content) {
		panic(violationf("Buffer.Range", "offsets [%d, %d) out of bounds for %s", beginOff, endOff, f.name))
	}
	return SourceRange{Begin: f.start.WithOffset(beginOff), End: f.start.WithOffset(endOff)}
}

// Bytes returns the raw bytes of r, which must lie within a single file.
func (b *Buffer) Bytes(r SourceRange) []byte {
	data := b.GetCharacterData(r.Begin)
	if r.End < r.Begin || r.Len() > len(data) {
		panic(violationf("Buffer.Bytes", "range [%d, %d) does not lie within one file", r.Begin, r.End))
	}
	return data[:r.Len()]
}

// Position is a human readable location.
type Position struct {
	File   string
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	if p.Line <= 0 || p.Column <= 0 {
		return p.File
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Position converts loc into file, line and column (both 1-based). An
// unmapped location yields the zero Position.
func (b *Buffer) Position(loc SourceLocation) Position {
	f, ok := b.lookup(loc)
	if !ok {
		return Position{}
	}
	off := int(loc - f.start)
	starts := f.lineStarts()
	line := sort.Search(len(starts), func(i int) bool { return starts[i] > off }) - 1
	return Position{
		File:   f.name,
		Line:   line + 1,
		Column: off - starts[line] + 1,
		Offset: off,
	}
}
