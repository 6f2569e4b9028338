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

// Package edit provides an edit script: a batch of non-overlapping text
// edits against one source text, applied all at once.
package edit

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrOverlap is returned when an edit overlaps an edit already in the
	// script.
	ErrOverlap = errors.New("edit overlaps an existing edit")

	// ErrOutOfRange is returned when an edit falls outside the source text.
	ErrOutOfRange = errors.New("edit out of range")
)

// Edit replaces the bytes in [Start, End) with NewText.
type Edit struct {
	Start   int
	End     int
	NewText string
}

func (e Edit) String() string {
	return fmt.Sprintf("[%d,%d)=%q", e.Start, e.End, e.NewText)
}

// overlaps reports whether e and o touch the same bytes. Two insertions at
// the same offset overlap since their relative order would be ambiguous.
func (e Edit) overlaps(o Edit) bool {
	if e.Start == e.End && o.Start == o.End {
		return e.Start == o.Start
	}
	return e.Start < o.End && o.Start < e.End
}

// Script is an ordered batch of edits. The zero value is an empty script.
type Script struct {
	edits []Edit
}

// Add adds e to the script. It fails without modifying the script when e is
// malformed or overlaps an edit already added.
func (s *Script) Add(e Edit) error {
	if e.Start < 0 || e.End < e.Start {
		return fmt.Errorf("%w: %s", ErrOutOfRange, e)
	}
	for _, o := range s.edits {
		if e.overlaps(o) {
			return fmt.Errorf("%w: %s and %s", ErrOverlap, e, o)
		}
	}
	i, _ := slices.BinarySearchFunc(s.edits, e, func(a, b Edit) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.End - b.End
	})
	s.edits = slices.Insert(s.edits, i, e)
	return nil
}

// Replace adds an edit replacing [start, end) with text.
func (s *Script) Replace(start, end int, text string) error {
	return s.Add(Edit{Start: start, End: end, NewText: text})
}

// Delete adds an edit deleting [start, end).
func (s *Script) Delete(start, end int) error {
	return s.Add(Edit{Start: start, End: end})
}

// Insert adds an edit inserting text at offset.
func (s *Script) Insert(offset int, text string) error {
	return s.Add(Edit{Start: offset, End: offset, NewText: text})
}

// Conflicts reports whether [start, end) overlaps any edit in the script.
func (s *Script) Conflicts(start, end int) bool {
	e := Edit{Start: start, End: end}
	for _, o := range s.edits {
		if e.overlaps(o) {
			return true
		}
	}
	return false
}

// Edits returns the edits sorted by position.
func (s *Script) Edits() []Edit {
	return slices.Clone(s.edits)
}

// Len returns the number of edits.
func (s *Script) Len() int {
	return len(s.edits)
}

// Apply applies all edits to src and returns the result. src is not
// modified.
func (s *Script) Apply(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	last := 0
	for _, e := range s.edits {
		if e.End > len(src) {
			return nil, fmt.Errorf("%w: %s beyond %d", ErrOutOfRange, e, len(src))
		}
		buf.Write(src[last:e.Start])
		buf.WriteString(e.NewText)
		last = e.End
	}
	buf.Write(src[last:])
	return buf.Bytes(), nil
}
