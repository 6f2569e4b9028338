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

package resolve

import (
	"context"
	"slices"

	"github.com/goplus/rslsw/rust/syntax"
)

// References returns the tokens referring to d, excluding its declaring
// token, in source order. Identifiers inside macro token trees are included
// when they resolve lexically to d.
func (idx *Index) References(d *Decl) []*syntax.Node {
	if d == nil {
		return nil
	}
	var refs []*syntax.Node
	for _, leaf := range idx.File.Root.Leaves() {
		if leaf == d.Ident || !syntax.IsWordLike(leaf) || idx.text(leaf) != d.Name {
			continue
		}
		if idx.Resolve(leaf) == d {
			refs = append(refs, leaf)
		}
	}
	return refs
}

// IsWrite reports whether ref is the target of an assignment, either
// directly, as an element of a destructuring assignment, or as the base of
// a field or index place such as a.x or a[0].
func IsWrite(ref *syntax.Node) bool {
	child := ref
	for p := ref.Parent; p != nil; child, p = p, p.Parent {
		switch p.Kind {
		case "assignment_expression", "compound_assignment_expr":
			return child.Field == "left"
		case "tuple_expression", "parenthesized_expression":
			continue
		case "field_expression":
			if child.Field == "value" {
				continue
			}
		case "index_expression":
			if named := p.NamedChildren(); len(named) > 0 && named[0] == child {
				continue
			}
		}
		return false
	}
	return false
}

// VisibleDecls returns the locals visible at offset, innermost first with
// shadowed names omitted, followed by the file's functions, structs,
// enums, constants and statics.
func (idx *Index) VisibleDecls(ctx context.Context, offset int) ([]*Decl, error) {
	var decls []*Decl
	seen := make(map[string]bool)
	if at := idx.File.LeafAt(offset); at != nil {
		var err error
		idx.scopes(at, func(d *Decl) bool {
			if err = ctx.Err(); err != nil {
				return false
			}
			if d.Ident.End > offset || seen[d.Name] {
				return true
			}
			seen[d.Name] = true
			decls = append(decls, d)
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	decls = append(decls, idx.fns...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var items []*Decl
	for _, ds := range idx.items {
		for _, d := range ds {
			switch d.Kind {
			case Struct, Enum, Const, Static:
				items = append(items, d)
			}
		}
	}
	slices.SortFunc(items, func(a, b *Decl) int {
		return a.Ident.Start - b.Ident.Start
	})
	return append(decls, items...), nil
}
