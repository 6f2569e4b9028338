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

package hints

import (
	"strings"

	"github.com/goplus/rslsw/rust/resolve"
	"github.com/goplus/rslsw/rust/syntax"
)

// NoArguments is the hint text shown for an empty parameter list.
const NoArguments = "<no arguments>"

const separator = ", "

// Range is a half-open byte range [Start, End) into a hint text.
type Range struct {
	Start int
	End   int
}

// IsEmpty reports whether r covers no bytes.
func (r Range) IsEmpty() bool {
	return r.Start >= r.End
}

// Presentation is a rendered hint.
type Presentation struct {
	Text    string
	entries []string
}

// Present joins entries with ", ".
func Present(entries []string) Presentation {
	if len(entries) == 0 {
		return Presentation{Text: NoArguments}
	}
	return Presentation{Text: strings.Join(entries, separator), entries: entries}
}

// Len returns the number of entries.
func (p Presentation) Len() int {
	return len(p.entries)
}

// RangeOf returns the span of entry i within p.Text, or the empty range when
// i is out of range.
func (p Presentation) RangeOf(i int) Range {
	if i < 0 || i >= len(p.entries) {
		return Range{}
	}
	start := 0
	for _, e := range p.entries[:i] {
		start += len(e) + len(separator)
	}
	return Range{Start: start, End: start + len(p.entries[i])}
}

// TypeArgumentList is a type argument list with the generic item it
// instantiates.
type TypeArgumentList struct {
	Node *syntax.Node // type_arguments
	Decl *resolve.Decl
}

// FindTypeArgumentList returns the innermost type argument list around
// offset that belongs to a generic function path, a generic type or a
// turbofish type, and whose generic item resolves within the file.
func FindTypeArgumentList(idx *resolve.Index, offset int) (TypeArgumentList, bool) {
	leaf := idx.File.LeafAt(offset)
	if leaf == nil {
		return TypeArgumentList{}, false
	}
	for list := leaf.AncestorOrSelf("type_arguments"); list != nil; list = list.Ancestor("type_arguments") {
		if !insideBrackets(list, offset) {
			continue
		}
		if d := genericItem(idx, list.Parent); d != nil {
			return TypeArgumentList{Node: list, Decl: d}, true
		}
	}
	return TypeArgumentList{}, false
}

// insideBrackets reports whether offset lies after the opening bracket of
// list and no later than its closing bracket.
func insideBrackets(list *syntax.Node, offset int) bool {
	if offset <= list.Start {
		return false
	}
	if n := len(list.Children); n > 0 {
		last := list.Children[n-1]
		if !last.Missing && (last.Kind == ">" || last.Kind == ")") {
			return offset <= last.Start
		}
	}
	return offset <= list.End
}

func genericItem(idx *resolve.Index, owner *syntax.Node) *resolve.Decl {
	if owner == nil {
		return nil
	}
	var target *syntax.Node
	switch owner.Kind {
	case "generic_function":
		target = owner.ChildByField("function")
	case "generic_type", "generic_type_with_turbofish":
		target = owner.ChildByField("type")
	default:
		return nil
	}
	if target == nil {
		return nil
	}
	var d *resolve.Decl
	switch target.Kind {
	case "identifier", "type_identifier":
		d = idx.Resolve(target)
	case "scoped_identifier", "scoped_type_identifier":
		if name := target.ChildByField("name"); name != nil {
			if target.Kind == "scoped_identifier" {
				d = idx.Resolve(name)
			} else {
				d = idx.TypeItem(idx.File.Text(name))
			}
		}
	case "field_expression":
		d = idx.Resolve(target.ChildByField("field"))
	}
	if d == nil {
		return nil
	}
	switch d.Kind {
	case resolve.Function, resolve.Struct, resolve.Enum, resolve.Trait, resolve.TypeAlias:
		return d
	}
	return nil
}

// CurrentParameter returns the index of the parameter the caret is on,
// counting the separators of list strictly left of offset. It returns -1
// when the index is not below count.
func CurrentParameter(list *syntax.Node, offset, count int) int {
	i := 0
	for _, c := range list.Children {
		if c.Kind == "," && c.Start < offset {
			i++
		}
	}
	if i >= count {
		return -1
	}
	return i
}

// Session identifies the argument list a hint popup was opened for. Nodes
// are rebuilt on every edit, so the list is identified by position and
// kind.
type Session struct {
	Path  string
	Kind  string
	Start int
}

// SessionOf returns the session key of list in path.
func SessionOf(path string, list *syntax.Node) Session {
	return Session{Path: path, Kind: list.Kind, Start: list.Start}
}

// ShouldHide reports whether a hint opened for prev must be hidden now that
// the caret's enclosing list is next.
func ShouldHide(prev, next Session) bool {
	return prev != next
}
