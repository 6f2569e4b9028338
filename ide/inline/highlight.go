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


package inline

import (
	"slices"

	"github.com/goplus/rslsw/rust/resolve"
	"github.com/goplus/rslsw/rust/syntax"
)

// OccurrenceKind classifies an occurrence of a declaration.
type OccurrenceKind int

const (
	TextOccurrence OccurrenceKind = iota
	ReadOccurrence
	WriteOccurrence
)

// Occurrence is the declaring token or a reference of a declaration.
type Occurrence struct {
	Node *syntax.Node
	Kind OccurrenceKind
}

// Occurrences returns the occurrences of the declaration at offset in
// source order, or nil when offset is not on a resolvable name. The
// declaring token of a binding counts as a write.
func Occurrences(idx *resolve.Index, offset int) []Occurrence {
	ident := idx.File.IdentAt(offset)
	if ident == nil {
		return nil
	}
	d := idx.Resolve(ident)
	if d == nil {
		return nil
	}
	decl := Occurrence{Node: d.Ident, Kind: TextOccurrence}
	if d.IsBinding() {
		decl.Kind = WriteOccurrence
	}
	occs := []Occurrence{decl}
	for _, ref := range idx.References(d) {
		kind := ReadOccurrence
		if resolve.IsWrite(ref) {
			kind = WriteOccurrence
		}
		occs = append(occs, Occurrence{Node: ref, Kind: kind})
	}
	slices.SortFunc(occs, func(a, b Occurrence) int {
		return a.Node.Start - b.Node.Start
	})
	return occs
}
