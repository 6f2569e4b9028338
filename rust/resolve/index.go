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

// Package resolve implements file-local name resolution, a lightweight type
// oracle and reference search on top of [syntax.File].
package resolve

import (
	"github.com/goplus/rslsw/rust/syntax"
)

// DeclKind is the kind of a [Decl].
type DeclKind int

const (
	Local DeclKind = iota
	Param
	Function
	Struct
	Enum
	Variant
	Trait
	Const
	Static
	TypeAlias
	Field
)

var declKindNames = [...]string{
	Local:     "local",
	Param:     "parameter",
	Function:  "function",
	Struct:    "struct",
	Enum:      "enum",
	Variant:   "variant",
	Trait:     "trait",
	Const:     "const",
	Static:    "static",
	TypeAlias: "type",
	Field:     "field",
}

func (k DeclKind) String() string {
	if int(k) < len(declKindNames) {
		return declKindNames[k]
	}
	return "unknown"
}

// Decl is a named declaration.
type Decl struct {
	Kind  DeclKind
	Name  string
	Ident *syntax.Node // name token
	Node  *syntax.Node // declaring node, e.g. let_declaration or function_item

	// Owner is the impl_item or trait_item of an associated function, the
	// enum_item of a variant, or the struct_item of a field.
	Owner *syntax.Node
}

// IsBinding reports whether d is a local variable or parameter.
func (d *Decl) IsBinding() bool {
	return d.Kind == Local || d.Kind == Param
}

// SelfParam returns the self_parameter of a function, or nil.
func (d *Decl) SelfParam() *syntax.Node {
	if d.Kind != Function {
		return nil
	}
	params := d.Node.ChildByField("parameters")
	if params == nil {
		return nil
	}
	return params.ChildOfKind("self_parameter")
}

// ValueParams returns the parameters of a function, excluding self.
func (d *Decl) ValueParams() []*syntax.Node {
	if d.Kind != Function {
		return nil
	}
	params := d.Node.ChildByField("parameters")
	if params == nil {
		return nil
	}
	var ps []*syntax.Node
	for _, p := range params.NamedChildren() {
		if p.Is("parameter", "variadic_parameter") {
			ps = append(ps, p)
		}
	}
	return ps
}

// IsAssociatedFunction reports whether d is a function in an impl or trait
// that takes no self parameter.
func (d *Decl) IsAssociatedFunction() bool {
	return d.Kind == Function && d.Owner != nil && d.SelfParam() == nil
}

// Impl is an impl block.
type Impl struct {
	Node     *syntax.Node
	TypeName string // base name of the self type
	Trait    string // base name of the implemented trait, empty for inherent impls
	Fns      []*Decl
}

// Index holds the declarations of one file. It is immutable once built and
// safe for concurrent use.
type Index struct {
	File *syntax.File

	items    map[string][]*Decl
	fns      []*Decl
	structs  []*Decl
	impls    []*Impl
	traits   map[string]*Decl
	members  map[*syntax.Node][]*Decl // owner -> associated functions, variants or fields
	decls    map[*syntax.Node]*Decl   // item name token -> decl
	bindings map[*syntax.Node]*Decl   // binding token -> decl
}

// NewIndex indexes f.
func NewIndex(f *syntax.File) *Index {
	idx := &Index{
		File:     f,
		items:    make(map[string][]*Decl),
		traits:   make(map[string]*Decl),
		members:  make(map[*syntax.Node][]*Decl),
		decls:    make(map[*syntax.Node]*Decl),
		bindings: make(map[*syntax.Node]*Decl),
	}
	f.Root.Walk(func(n *syntax.Node) bool {
		idx.indexItem(n)
		return true
	})
	f.Root.Walk(func(n *syntax.Node) bool {
		idx.indexBindings(n)
		return true
	})
	return idx
}

func (idx *Index) text(n *syntax.Node) string {
	return idx.File.Text(n)
}

func (idx *Index) addDecl(kind DeclKind, node, owner *syntax.Node) *Decl {
	name := node.ChildByField("name")
	if name == nil {
		return nil
	}
	d := &Decl{Kind: kind, Name: idx.text(name), Ident: name, Node: node, Owner: owner}
	idx.decls[name] = d
	if owner != nil {
		idx.members[owner] = append(idx.members[owner], d)
	} else {
		idx.items[d.Name] = append(idx.items[d.Name], d)
	}
	return d
}

func (idx *Index) indexItem(n *syntax.Node) {
	switch n.Kind {
	case "function_item", "function_signature_item":
		owner := itemOwner(n)
		d := idx.addDecl(Function, n, owner)
		if d != nil {
			idx.fns = append(idx.fns, d)
		}
	case "struct_item", "union_item":
		d := idx.addDecl(Struct, n, nil)
		if d == nil {
			return
		}
		idx.structs = append(idx.structs, d)
		if body := n.ChildByField("body"); body != nil && body.Kind == "field_declaration_list" {
			for _, fd := range body.NamedChildren() {
				if fd.Kind == "field_declaration" {
					idx.addDecl(Field, fd, n)
				}
			}
		}
	case "enum_item":
		if d := idx.addDecl(Enum, n, nil); d == nil {
			return
		}
		if body := n.ChildByField("body"); body != nil {
			for _, v := range body.NamedChildren() {
				if v.Kind == "enum_variant" {
					idx.addDecl(Variant, v, n)
				}
			}
		}
	case "trait_item":
		if d := idx.addDecl(Trait, n, nil); d != nil {
			idx.traits[d.Name] = d
		}
	case "const_item":
		if itemOwner(n) == nil {
			idx.addDecl(Const, n, nil)
		}
	case "static_item":
		idx.addDecl(Static, n, nil)
	case "type_item":
		if itemOwner(n) == nil {
			idx.addDecl(TypeAlias, n, nil)
		}
	case "impl_item":
		impl := &Impl{Node: n}
		if t := n.ChildByField("type"); t != nil {
			impl.TypeName = baseName(idx.File, t)
		}
		if t := n.ChildByField("trait"); t != nil {
			impl.Trait = baseName(idx.File, t)
		}
		idx.impls = append(idx.impls, impl)
	}
}

// itemOwner returns the impl_item or trait_item directly containing item.
func itemOwner(item *syntax.Node) *syntax.Node {
	list := item.Parent
	if list == nil || list.Kind != "declaration_list" {
		return nil
	}
	if owner := list.Parent; owner.Is("impl_item", "trait_item") {
		return owner
	}
	return nil
}

func (idx *Index) indexBindings(n *syntax.Node) {
	var pattern *syntax.Node
	kind := Local
	switch n.Kind {
	case "let_declaration", "for_expression", "let_condition",
		"if_let_expression", "while_let_expression":
		pattern = n.ChildByField("pattern")
	case "match_arm":
		pattern = n.ChildByField("pattern")
	case "parameter":
		pattern = n.ChildByField("pattern")
		kind = Param
	case "closure_parameters":
		for _, p := range n.NamedChildren() {
			if p.Kind != "parameter" {
				idx.bindPattern(p, n, Param)
			}
		}
		return
	case "self_parameter":
		if self := n.ChildOfKind("self"); self != nil {
			d := &Decl{Kind: Param, Name: "self", Ident: self, Node: n}
			idx.bindings[self] = d
		}
		return
	}
	if pattern != nil {
		idx.bindPattern(pattern, n, kind)
	}
}

func (idx *Index) bindPattern(pattern, node *syntax.Node, kind DeclKind) {
	for _, ident := range idx.PatternBindings(pattern) {
		idx.bindings[ident] = &Decl{Kind: kind, Name: idx.text(ident), Ident: ident, Node: node}
	}
}

// PatternBindings returns the binding tokens introduced by pattern in source
// order.
func (idx *Index) PatternBindings(pattern *syntax.Node) []*syntax.Node {
	var idents []*syntax.Node
	var visit func(p *syntax.Node)
	visit = func(p *syntax.Node) {
		switch p.Kind {
		case "identifier":
			name := idx.text(p)
			if idx.isConstantPattern(name) {
				return
			}
			idents = append(idents, p)
			return
		case "shorthand_field_identifier":
			idents = append(idents, p)
			return
		case "scoped_identifier", "field_identifier", "type_identifier",
			"scoped_type_identifier", "generic_type", "range_pattern",
			"remaining_field_pattern", "token_tree":
			return
		}
		for _, c := range p.Children {
			if !c.Named || c.IsComment() || c.Field == "type" || c.Field == "condition" {
				continue
			}
			visit(c)
		}
	}
	visit(pattern)
	return idents
}

// isConstantPattern reports whether an identifier pattern names a unit
// variant, unit struct or constant rather than introducing a binding.
func (idx *Index) isConstantPattern(name string) bool {
	for _, d := range idx.items[name] {
		switch d.Kind {
		case Struct, Const, Static:
			return true
		}
	}
	for _, ds := range idx.members {
		for _, d := range ds {
			if d.Kind == Variant && d.Name == name {
				return true
			}
		}
	}
	return false
}

// Item returns the first file-level item with the given name, or nil.
func (idx *Index) Item(name string) *Decl {
	if ds := idx.items[name]; len(ds) > 0 {
		return ds[0]
	}
	return nil
}

// TypeItem returns the struct, enum, trait or type alias with the given name.
func (idx *Index) TypeItem(name string) *Decl {
	for _, d := range idx.items[name] {
		switch d.Kind {
		case Struct, Enum, Trait, TypeAlias:
			return d
		}
	}
	return nil
}

// Functions returns all functions of the file, including associated
// functions and trait methods, in source order.
func (idx *Index) Functions() []*Decl {
	return idx.fns
}

// Structs returns all structs and unions of the file in source order.
func (idx *Index) Structs() []*Decl {
	return idx.structs
}

// Impls returns all impl blocks of the file in source order.
func (idx *Index) Impls() []*Impl {
	return idx.impls
}

// Trait returns the trait with the given name, or nil.
func (idx *Index) Trait(name string) *Decl {
	return idx.traits[name]
}

// Members returns the associated functions of an impl or trait, the
// variants of an enum or the fields of a struct.
func (idx *Index) Members(owner *syntax.Node) []*Decl {
	return idx.members[owner]
}

// DeclOf returns the declaration whose name token is ident, or nil.
func (idx *Index) DeclOf(ident *syntax.Node) *Decl {
	if d, ok := idx.bindings[ident]; ok {
		return d
	}
	return idx.decls[ident]
}

// OwnerName returns the name an associated function is qualified with: the
// impl's self type or the trait name.
func (idx *Index) OwnerName(d *Decl) string {
	if d.Owner == nil {
		return ""
	}
	switch d.Owner.Kind {
	case "impl_item":
		for _, impl := range idx.impls {
			if impl.Node == d.Owner {
				return impl.TypeName
			}
		}
	case "trait_item", "enum_item", "struct_item":
		if name := d.Owner.ChildByField("name"); name != nil {
			return idx.text(name)
		}
	}
	return ""
}

// OwnerTrait returns the trait name of a trait function or of a function in
// a trait impl, or "".
func (idx *Index) OwnerTrait(d *Decl) string {
	if d.Owner == nil {
		return ""
	}
	switch d.Owner.Kind {
	case "trait_item":
		return idx.OwnerName(d)
	case "impl_item":
		for _, impl := range idx.impls {
			if impl.Node == d.Owner {
				return impl.Trait
			}
		}
	}
	return ""
}

// AssociatedFunctions returns the functions reachable as TypeName::name: the
// functions of every impl of typeName and the functions of a trait with that
// name.
func (idx *Index) AssociatedFunctions(typeName string) []*Decl {
	var fns []*Decl
	for _, impl := range idx.impls {
		if impl.TypeName == typeName {
			fns = append(fns, idx.members[impl.Node]...)
		}
	}
	if t := idx.traits[typeName]; t != nil {
		fns = append(fns, idx.members[t.Node]...)
	}
	return fns
}

// Supertraits returns the names of the direct supertraits of a trait.
func (idx *Index) Supertraits(trait *Decl) []string {
	bounds := trait.Node.ChildByField("bounds")
	if bounds == nil {
		return nil
	}
	var names []string
	for _, b := range bounds.NamedChildren() {
		names = append(names, baseName(idx.File, b))
	}
	return names
}

// baseName returns the last path segment of a type or path node, without
// generic arguments.
func baseName(f *syntax.File, n *syntax.Node) string {
	switch n.Kind {
	case "generic_type", "generic_type_with_turbofish", "generic_function":
		if t := n.ChildByField("type"); t != nil {
			return baseName(f, t)
		}
		if fn := n.ChildByField("function"); fn != nil {
			return baseName(f, fn)
		}
	case "scoped_type_identifier", "scoped_identifier":
		if name := n.ChildByField("name"); name != nil {
			return f.Text(name)
		}
	case "reference_type", "dynamic_type", "abstract_type":
		for _, c := range n.NamedChildren() {
			if c.Field == "type" || c.Field == "trait" {
				return baseName(f, c)
			}
		}
	case "removed_trait_bound":
		if named := n.NamedChildren(); len(named) > 0 {
			return baseName(f, named[0])
		}
	case "higher_ranked_trait_bound":
		if v := n.ChildByField("value"); v != nil {
			return baseName(f, v)
		}
	}
	return f.Text(n)
}

// BaseName returns the last path segment of a type or path node.
func (idx *Index) BaseName(n *syntax.Node) string {
	return baseName(idx.File, n)
}
