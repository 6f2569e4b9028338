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
	"github.com/goplus/rslsw/rust/syntax"
	"github.com/goplus/rslsw/rust/types"
)

// Resolve returns the declaration an identifier-like token refers to, or nil
// if it cannot be resolved within the file. A declaring token resolves to
// its own declaration.
func (idx *Index) Resolve(ident *syntax.Node) *Decl {
	if ident == nil {
		return nil
	}
	if d := idx.DeclOf(ident); d != nil {
		return d
	}
	name := idx.text(ident)
	parent := ident.Parent
	switch ident.Kind {
	case "identifier":
		if parent != nil && parent.Kind == "scoped_identifier" {
			if ident.Field == "name" {
				return idx.resolvePath(parent)
			}
			return idx.TypeItem(name)
		}
		return idx.lookup(ident, name)
	case "self":
		if parent != nil && parent.Kind == "scoped_identifier" {
			return nil
		}
		return idx.lookup(ident, name)
	case "shorthand_field_identifier":
		return idx.lookup(ident, name)
	case "field_identifier":
		if parent == nil {
			return nil
		}
		switch parent.Kind {
		case "field_expression":
			recv := idx.TypeOf(parent.ChildByField("value"))
			return idx.member(recv, name)
		case "field_initializer", "field_pattern":
			if lit := parent.Ancestor("struct_expression", "struct_pattern"); lit != nil {
				if t := lit.ChildByField("name"); t != nil {
					return idx.field(idx.TypeItem(baseName(idx.File, t)), name)
				}
			}
		}
	case "type_identifier":
		if name == "Self" {
			if impl := ident.Ancestor("impl_item"); impl != nil {
				if t := impl.ChildByField("type"); t != nil {
					return idx.TypeItem(baseName(idx.File, t))
				}
			}
			return nil
		}
		if parent != nil && parent.Kind == "scoped_type_identifier" && ident.Field == "name" {
			return nil
		}
		return idx.TypeItem(name)
	}
	return nil
}

// resolvePath resolves a path expression such as Type::name.
func (idx *Index) resolvePath(path *syntax.Node) *Decl {
	nameNode := path.ChildByField("name")
	if nameNode == nil {
		return nil
	}
	name := idx.text(nameNode)
	qual := path.ChildByField("path")
	if qual == nil {
		return idx.Item(name)
	}
	typeName := baseName(idx.File, qual)
	if typeName == "Self" {
		if impl := path.Ancestor("impl_item"); impl != nil {
			if t := impl.ChildByField("type"); t != nil {
				typeName = baseName(idx.File, t)
			}
		} else if trait := path.Ancestor("trait_item"); trait != nil {
			typeName = idx.text(trait.ChildByField("name"))
		}
	}
	for _, fn := range idx.AssociatedFunctions(typeName) {
		if fn.Name == name {
			return fn
		}
	}
	if enum := idx.TypeItem(typeName); enum != nil && enum.Kind == Enum {
		for _, v := range idx.Members(enum.Node) {
			if v.Name == name {
				return v
			}
		}
	}
	switch typeName {
	case "self", "crate", "super":
		return idx.Item(name)
	}
	if idx.TypeItem(typeName) == nil && idx.Trait(typeName) == nil {
		// Module paths are not tracked; fall back to the file scope.
		return idx.Item(name)
	}
	return nil
}

// member resolves a method or field of a receiver type.
func (idx *Index) member(recv types.Type, name string) *Decl {
	for {
		r, ok := recv.(*types.Ref)
		if !ok {
			break
		}
		recv = r.Elem
	}
	adt, ok := recv.(*types.Adt)
	if !ok {
		return nil
	}
	for _, impl := range idx.impls {
		if impl.TypeName != adt.Name {
			continue
		}
		for _, fn := range idx.members[impl.Node] {
			if fn.Name == name {
				return fn
			}
		}
	}
	for _, impl := range idx.impls {
		if impl.TypeName != adt.Name || impl.Trait == "" {
			continue
		}
		if trait := idx.traits[impl.Trait]; trait != nil {
			for _, fn := range idx.members[trait.Node] {
				if fn.Name == name {
					return fn
				}
			}
		}
	}
	if adt.Decl != nil {
		if d := idx.DeclOf(adt.Decl.ChildByField("name")); d != nil {
			return idx.field(d, name)
		}
	}
	return idx.field(idx.TypeItem(adt.Name), name)
}

func (idx *Index) field(strct *Decl, name string) *Decl {
	if strct == nil || strct.Kind != Struct {
		return nil
	}
	for _, f := range idx.members[strct.Node] {
		if f.Kind == Field && f.Name == name {
			return f
		}
	}
	return nil
}

// Fields returns the named fields of a struct in declaration order.
func (idx *Index) Fields(strct *Decl) []*Decl {
	if strct == nil || strct.Kind != Struct {
		return nil
	}
	var fields []*Decl
	for _, f := range idx.members[strct.Node] {
		if f.Kind == Field {
			fields = append(fields, f)
		}
	}
	return fields
}

// lookup resolves name lexically from the position of at.
func (idx *Index) lookup(at *syntax.Node, name string) *Decl {
	var found *Decl
	idx.scopes(at, func(d *Decl) bool {
		if d.Name == name {
			found = d
			return false
		}
		return true
	})
	if found != nil {
		return found
	}
	for _, d := range idx.items[name] {
		switch d.Kind {
		case Function, Const, Static, Struct:
			return d
		}
	}
	return nil
}

// scopes calls yield for each local binding visible at at, innermost first.
// Within one block later let statements come first. It stops when yield
// returns false.
func (idx *Index) scopes(at *syntax.Node, yield func(d *Decl) bool) {
	emit := func(idents []*syntax.Node) bool {
		for i := len(idents) - 1; i >= 0; i-- {
			if d := idx.bindings[idents[i]]; d != nil && !yield(d) {
				return false
			}
		}
		return true
	}
	emitPattern := func(n *syntax.Node) bool {
		if n == nil {
			return true
		}
		p := n.ChildByField("pattern")
		if p == nil {
			return true
		}
		return emit(idx.PatternBindings(p))
	}

	for child, p := at, at.Parent; p != nil; child, p = p, p.Parent {
		switch p.Kind {
		case "block":
			var lets []*syntax.Node
			for _, stmt := range p.Children {
				if stmt.Start >= child.Start {
					break
				}
				if stmt.Kind == "let_declaration" && stmt.End <= at.Start {
					lets = append(lets, stmt)
				}
			}
			for i := len(lets) - 1; i >= 0; i-- {
				if !emitPattern(lets[i]) {
					return
				}
			}
		case "function_item", "closure_expression":
			if child.Field != "body" {
				continue
			}
			params := p.ChildByField("parameters")
			if params == nil {
				continue
			}
			var idents []*syntax.Node
			for _, param := range params.NamedChildren() {
				switch param.Kind {
				case "self_parameter":
					if self := param.ChildOfKind("self"); self != nil {
						idents = append(idents, self)
					}
				case "parameter":
					if pat := param.ChildByField("pattern"); pat != nil {
						idents = append(idents, idx.PatternBindings(pat)...)
					}
				default:
					idents = append(idents, idx.PatternBindings(param)...)
				}
			}
			if !emit(idents) {
				return
			}
			if p.Kind == "function_item" {
				// Items do not capture outer locals.
				return
			}
		case "for_expression":
			if child.Field == "body" && !emitPattern(p) {
				return
			}
		case "match_arm":
			if child.Field != "pattern" && !emitPattern(p) {
				return
			}
		case "match_pattern":
			if child.Field == "condition" {
				if !emit(idx.PatternBindings(p)) {
					return
				}
			}
		case "if_expression", "while_expression":
			if child.Field == "condition" {
				continue
			}
			if child.Field == "alternative" {
				continue
			}
			if !emit(idx.conditionBindings(p.ChildByField("condition"), nil)) {
				return
			}
		case "let_chain":
			if !emit(idx.conditionBindings(p, child)) {
				return
			}
		case "if_let_expression", "while_let_expression":
			if (child.Field == "consequence" || child.Field == "body") && !emitPattern(p) {
				return
			}
		}
	}
}

// conditionBindings returns the bindings of the let conditions in cond that
// start before stop. A nil stop collects all of them.
func (idx *Index) conditionBindings(cond, stop *syntax.Node) []*syntax.Node {
	if cond == nil {
		return nil
	}
	var idents []*syntax.Node
	switch cond.Kind {
	case "let_condition":
		if p := cond.ChildByField("pattern"); p != nil {
			idents = append(idents, idx.PatternBindings(p)...)
		}
	case "let_chain":
		for _, c := range cond.NamedChildren() {
			if stop != nil && c.Start >= stop.Start {
				break
			}
			if c.Kind == "let_condition" {
				idents = append(idents, idx.conditionBindings(c, nil)...)
			}
		}
	}
	return idents
}
