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

	"github.com/goplus/rslsw/rust/edit"
	"github.com/goplus/rslsw/rust/syntax"
)

// restMarker is the node kind of ".." in a tuple pattern.
const restMarker = "remaining_field_pattern"

// items returns the components of a parenthesized list: the elements of a
// tuple pattern including its rest marker, of a tuple expression or of a
// tuple type.
func items(list *syntax.Node) []*syntax.Node {
	var cs []*syntax.Node
	for _, c := range list.NamedChildren() {
		if c.Kind != "attribute_item" {
			cs = append(cs, c)
		}
	}
	return cs
}

func hasRest(pats []*syntax.Node) bool {
	return slices.ContainsFunc(pats, func(p *syntax.Node) bool {
		return p.Kind == restMarker
	})
}

// componentIndex returns the index of the component matching elem in a
// list of n components. Elements before the rest marker, or of a tuple
// without one, count from the left; elements after it count from the
// right.
func componentIndex(tuple, elem *syntax.Node, n int) (int, bool) {
	pats := items(tuple)
	pos := slices.Index(pats, elem)
	rest := slices.IndexFunc(pats, func(p *syntax.Node) bool {
		return p.Kind == restMarker
	})
	if pos < 0 {
		return 0, false
	}
	var i int
	switch {
	case rest < 0:
		if len(pats) != n {
			return 0, false
		}
		i = pos
	case pos < rest:
		i = pos
	default:
		i = n - (len(pats) - pos)
	}
	if i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// Component returns the initializer component bound to elem of tuple, and
// its index among the initializer components.
func Component(tuple, elem, init *syntax.Node) (*syntax.Node, int, bool) {
	if init == nil || init.Kind != "tuple_expression" {
		return nil, 0, false
	}
	exprs := items(init)
	i, ok := componentIndex(tuple, elem, len(exprs))
	if !ok {
		return nil, 0, false
	}
	return exprs[i], i, true
}

// collapses reports whether removing an element from tuple leaves exactly
// one component and no rest marker, so that the tuple is replaced by that
// component.
func collapses(tuple *syntax.Node) bool {
	pats := items(tuple)
	return len(pats) == 2 && !hasRest(pats)
}

// vanishes reports whether tuple has a single element and no rest marker.
func vanishes(tuple *syntax.Node) bool {
	pats := items(tuple)
	return len(pats) == 1 && !hasRest(pats)
}

// spliceTuple removes the element at index i from a parenthesized list.
// When collapse is set, the list is replaced by its remaining component;
// otherwise separators adjacent to the element are removed and a lone
// remaining component keeps a trailing comma when keepComma is set.
func spliceTuple(s *edit.Script, f *syntax.File, list *syntax.Node, i int, collapse, keepComma bool) error {
	cs := items(list)
	if collapse {
		return s.Replace(list.Start, list.End, f.Text(cs[1-i]))
	}

	var start, end int
	switch {
	case len(cs) == 1:
		lparen, rparen := list.Children[0], list.Children[len(list.Children)-1]
		start, end = lparen.End, rparen.Start
	case i == len(cs)-1:
		start, end = cs[i-1].End, cs[i].End
	default:
		start, end = cs[i].Start, cs[i+1].Start
	}
	if err := s.Delete(start, end); err != nil {
		return err
	}
	if !keepComma || len(cs) != 2 {
		return nil
	}
	rest := cs[1-i]
	for _, c := range list.Children {
		if c.Kind == "," && c.Start >= rest.End && (c.Start < start || c.Start >= end) {
			return nil
		}
	}
	return s.Insert(rest.End, ",")
}
