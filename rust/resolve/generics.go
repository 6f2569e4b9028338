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
)

// GenericKind classifies a generic parameter.
type GenericKind int

const (
	TypeGeneric GenericKind = iota
	LifetimeGeneric
	ConstGeneric
)

// Generic is one entry of a generic parameter list.
type Generic struct {
	Kind GenericKind
	Name string
	Node *syntax.Node

	// Bounds lists the inline bound nodes, e.g. Clone and ?Sized in
	// <T: Clone + ?Sized>.
	Bounds []*syntax.Node
}

// Generics returns the generic parameters declared by an item, in order.
func Generics(f *syntax.File, item *syntax.Node) []Generic {
	if item == nil {
		return nil
	}
	list := item.ChildByField("type_parameters")
	if list == nil {
		return nil
	}
	var gs []Generic
	for _, p := range list.NamedChildren() {
		if g, ok := genericOf(f, p); ok {
			gs = append(gs, g)
		}
	}
	return gs
}

func genericOf(f *syntax.File, p *syntax.Node) (Generic, bool) {
	switch p.Kind {
	case "type_identifier":
		return Generic{Kind: TypeGeneric, Name: f.Text(p), Node: p}, true
	case "type_parameter":
		g := Generic{Kind: TypeGeneric, Node: p}
		if name := p.ChildByField("name"); name != nil {
			g.Name = f.Text(name)
		}
		g.Bounds = boundsOf(p.ChildByField("bounds"))
		return g, true
	case "constrained_type_parameter":
		left := p.ChildByField("left")
		if left == nil {
			return Generic{}, false
		}
		if left.Kind == "lifetime" {
			return Generic{Kind: LifetimeGeneric, Name: f.Text(left), Node: p, Bounds: boundsOf(p.ChildByField("bounds"))}, true
		}
		return Generic{Kind: TypeGeneric, Name: f.Text(left), Node: p, Bounds: boundsOf(p.ChildByField("bounds"))}, true
	case "optional_type_parameter":
		name := p.ChildByField("name")
		if name == nil {
			return Generic{}, false
		}
		g, ok := genericOf(f, name)
		g.Node = p
		return g, ok
	case "lifetime", "lifetime_parameter":
		name := p
		if n := p.ChildByField("name"); n != nil {
			name = n
		}
		return Generic{Kind: LifetimeGeneric, Name: f.Text(name), Node: p, Bounds: boundsOf(p.ChildByField("bounds"))}, true
	case "const_parameter":
		g := Generic{Kind: ConstGeneric, Node: p}
		if name := p.ChildByField("name"); name != nil {
			g.Name = f.Text(name)
		}
		return g, true
	}
	return Generic{}, false
}

func boundsOf(bounds *syntax.Node) []*syntax.Node {
	if bounds == nil {
		return nil
	}
	return bounds.NamedChildren()
}

// WhereBounds returns the bounds the where clause of item places on the
// type parameter name.
func WhereBounds(f *syntax.File, item *syntax.Node, name string) []*syntax.Node {
	where := item.ChildOfKind("where_clause")
	if where == nil {
		if body := item.ChildByField("body"); body != nil {
			where = body.ChildOfKind("where_clause")
		}
	}
	if where == nil {
		return nil
	}
	var bounds []*syntax.Node
	for _, pred := range where.NamedChildren() {
		if pred.Kind != "where_predicate" {
			continue
		}
		left := pred.ChildByField("left")
		if left == nil || f.Text(left) != name {
			continue
		}
		bounds = append(bounds, boundsOf(pred.ChildByField("bounds"))...)
	}
	return bounds
}

// GenericParamInScope reports whether name is a type parameter of an item
// enclosing n.
func GenericParamInScope(f *syntax.File, n *syntax.Node, name string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		switch p.Kind {
		case "function_item", "function_signature_item", "impl_item", "struct_item",
			"enum_item", "union_item", "trait_item", "type_item":
			for _, g := range Generics(f, p) {
				if g.Kind == TypeGeneric && g.Name == name {
					return true
				}
			}
		}
	}
	return false
}
