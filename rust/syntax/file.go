/*
 * Copyright (c) 2025 The XGo Authors (xgo.dev). All rights reserved.
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

package syntax

import (
	"fmt"
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/qiniu/x/errors"
)

// File is a parsed source file.
type File struct {
	Path    string
	Content []byte
	Root    *Node

	// Errors lists the syntax errors found by error recovery. Each entry is
	// an [*Error].
	Errors errors.List

	lines []int // byte offsets of line starts
}

// Error is a syntax error located in a [File].
type Error struct {
	Path  string
	Start int
	End   int
	Line  int // 0-based
	Col   int // 0-based, in bytes
	Msg   string
}

// Error implements [error].
func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line+1, e.Col+1, e.Msg)
}

// Text returns the source text of n.
func (f *File) Text(n *Node) string {
	return n.Text(f.Content)
}

// LeafAt returns the leaf token covering offset. On a boundary between two
// tokens, an identifier-like token ending at offset is preferred over a
// punctuation token starting there.
func (f *File) LeafAt(offset int) *Node {
	var before, at *Node
	for _, leaf := range f.Root.Leaves() {
		if leaf.Missing {
			continue
		}
		if leaf.Start < offset && offset < leaf.End {
			return leaf
		}
		if leaf.End == offset {
			before = leaf
		}
		if leaf.Start == offset && at == nil {
			at = leaf
		}
	}
	if before != nil && IsWordLike(before) && (at == nil || !IsWordLike(at)) {
		return before
	}
	if at != nil {
		return at
	}
	return before
}

// IdentAt returns the identifier-like leaf touching offset, or nil.
func (f *File) IdentAt(offset int) *Node {
	var found *Node
	for _, leaf := range f.Root.Leaves() {
		if !IsWordLike(leaf) || leaf.Missing {
			continue
		}
		if leaf.Start <= offset && offset <= leaf.End {
			found = leaf
			if leaf.Start < offset {
				break
			}
		}
	}
	return found
}

// IsWordLike reports whether n is an identifier-like leaf.
func IsWordLike(n *Node) bool {
	switch n.Kind {
	case "identifier", "type_identifier", "field_identifier",
		"shorthand_field_identifier", "primitive_type", "self", "metavariable":
		return true
	}
	return false
}

// NodeAt returns the smallest node covering [start, end).
func (f *File) NodeAt(start, end int) *Node {
	n := f.Root
	for {
		var next *Node
		for _, c := range n.Children {
			if c.Start <= start && end <= c.End && !(c.Start == c.End) {
				next = c
				break
			}
		}
		if next == nil {
			return n
		}
		n = next
	}
}

// LineStart returns the byte offset at which the given 0-based line starts.
func (f *File) LineStart(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(f.lines) {
		return len(f.Content)
	}
	return f.lines[line]
}

// LineCol converts a byte offset into a 0-based line and byte column.
func (f *File) LineCol(offset int) (line, col int) {
	offset = max(0, min(offset, len(f.Content)))
	line = sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset }) - 1
	return line, offset - f.lines[line]
}

// Position converts a byte offset into a 0-based line and UTF-16 column.
func (f *File) Position(offset int) (line, character int) {
	line, col := f.LineCol(offset)
	start := f.lines[line]
	for _, r := range string(f.Content[start : start+col]) {
		character += utf16.RuneLen(r)
	}
	return line, character
}

// Offset converts a 0-based line and UTF-16 column into a byte offset. Out of
// range positions are clamped to the line or file end.
func (f *File) Offset(line, character int) int {
	if line >= len(f.lines) {
		return len(f.Content)
	}
	start := f.lines[line]
	end := len(f.Content)
	if line+1 < len(f.lines) {
		end = f.lines[line+1] - 1
	}
	offset := start
	units := 0
	for offset < end && units < character {
		r, size := utf8.DecodeRune(f.Content[offset:])
		units += utf16.RuneLen(r)
		offset += size
	}
	return offset
}

// LineIndent returns the leading whitespace of the line containing offset.
func (f *File) LineIndent(offset int) string {
	line, _ := f.LineCol(offset)
	start := f.lines[line]
	end := start
	for end < len(f.Content) && (f.Content[end] == ' ' || f.Content[end] == '\t') {
		end++
	}
	return string(f.Content[start:end])
}

func lineStarts(content []byte) []int {
	lines := []int{0}
	for i, b := range content {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return lines
}
