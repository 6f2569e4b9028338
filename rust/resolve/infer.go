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
	"strconv"
	"strings"

	"github.com/goplus/rslsw/rust/syntax"
	"github.com/goplus/rslsw/rust/types"
)

// maxInferDepth bounds recursion through initializers and aliases.
const maxInferDepth = 32

var numericSuffixes = []string{
	"i128", "u128", "isize", "usize",
	"i16", "i32", "i64", "u16", "u32", "u64", "f32", "f64",
	"i8", "u8",
}

// TypeOf returns the type of an expression, or [types.Invalid] when it
// cannot be inferred.
func (idx *Index) TypeOf(expr *syntax.Node) types.Type {
	return idx.typeOf(expr, 0)
}

func (idx *Index) typeOf(expr *syntax.Node, depth int) types.Type {
	if expr == nil || depth > maxInferDepth {
		return types.Invalid
	}
	depth++
	switch expr.Kind {
	case "integer_literal":
		return literalType(idx.text(expr), "i32")
	case "float_literal":
		return literalType(idx.text(expr), "f64")
	case "boolean_literal":
		return types.Bool
	case "string_literal", "raw_string_literal":
		return &types.Ref{Elem: &types.Primitive{Name: "str"}}
	case "char_literal":
		return &types.Primitive{Name: "char"}
	case "unit_expression":
		return types.Unit
	case "parenthesized_expression":
		if named := expr.NamedChildren(); len(named) == 1 {
			return idx.typeOf(named[0], depth)
		}
	case "tuple_expression":
		var elems []types.Type
		for _, c := range expr.NamedChildren() {
			if c.Kind == "attribute_item" {
				continue
			}
			elems = append(elems, idx.typeOf(c, depth))
		}
		return &types.Tuple{Elems: elems}
	case "identifier", "self", "scoped_identifier":
		ident := expr
		if expr.Kind == "scoped_identifier" {
			ident = expr.ChildByField("name")
		}
		return idx.declType(idx.Resolve(ident), depth)
	case "field_expression":
		value := expr.ChildByField("value")
		field := expr.ChildByField("field")
		if field == nil {
			break
		}
		if field.Kind == "integer_literal" {
			i, err := strconv.Atoi(idx.text(field))
			if err != nil {
				break
			}
			recv := deref(idx.typeOf(value, depth))
			if tup, ok := recv.(*types.Tuple); ok && i < len(tup.Elems) {
				return tup.Elems[i]
			}
			if adt, ok := recv.(*types.Adt); ok && adt.Decl != nil {
				return idx.tupleFieldType(adt.Decl, i, depth)
			}
			break
		}
		return idx.declType(idx.Resolve(field), depth)
	case "call_expression":
		callee := idx.Callee(expr)
		if callee != nil {
			switch callee.Kind {
			case Function:
				return idx.returnType(callee, depth)
			case Struct:
				return idx.adtOf(callee)
			case Variant:
				if d := idx.DeclOf(callee.Owner.ChildByField("name")); d != nil {
					return idx.adtOf(d)
				}
			}
		}
		if fn, ok := idx.typeOf(expr.ChildByField("function"), depth).(*types.Function); ok {
			return fn.Result
		}
	case "struct_expression":
		if name := expr.ChildByField("name"); name != nil {
			return idx.typeOfSyntax(name, depth)
		}
	case "reference_expression":
		return &types.Ref{
			Mut:  expr.ChildOfKind("mutable_specifier") != nil,
			Elem: idx.typeOf(expr.ChildByField("value"), depth),
		}
	case "unary_expression":
		named := expr.NamedChildren()
		if len(named) == 0 {
			break
		}
		t := idx.typeOf(named[len(named)-1], depth)
		if len(expr.Children) > 0 && expr.Children[0].Kind == "*" {
			if r, ok := t.(*types.Ref); ok {
				return r.Elem
			}
			return types.Invalid
		}
		return t
	case "binary_expression":
		op := expr.ChildByField("operator")
		if op != nil {
			switch idx.text(op) {
			case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
				return types.Bool
			}
		}
		return idx.typeOf(expr.ChildByField("left"), depth)
	case "type_cast_expression":
		return idx.typeOfSyntax(expr.ChildByField("type"), depth)
	case "block", "unsafe_block", "async_block":
		body := expr
		if expr.Kind != "block" {
			body = expr.ChildOfKind("block")
		}
		if body == nil {
			break
		}
		named := body.NamedChildren()
		if len(named) == 0 {
			return types.Unit
		}
		last := named[len(named)-1]
		if last.Kind == "expression_statement" || last.Is("let_declaration", "empty_statement") {
			return types.Unit
		}
		return idx.typeOf(last, depth)
	case "if_expression":
		return idx.typeOf(expr.ChildByField("consequence"), depth)
	case "match_expression":
		body := expr.ChildByField("body")
		if body == nil {
			break
		}
		for _, arm := range body.NamedChildren() {
			if arm.Kind == "match_arm" {
				return idx.typeOf(arm.ChildByField("value"), depth)
			}
		}
	case "closure_expression":
		return idx.closureType(expr, depth)
	case "macro_invocation":
		m := expr.ChildByField("macro")
		if m == nil {
			break
		}
		switch baseName(idx.File, m) {
		case "vec":
			return &types.Adt{Name: "Vec"}
		case "format":
			return &types.Adt{Name: "String"}
		case "matches":
			return types.Bool
		case "println", "print", "eprintln", "eprint", "assert", "assert_eq", "assert_ne":
			return types.Unit
		}
	case "array_expression":
		return &types.Adt{Name: "[]"}
	}
	return types.Invalid
}

func literalType(text, def string) types.Type {
	for _, s := range numericSuffixes {
		if strings.HasSuffix(text, s) && len(text) > len(s) {
			return &types.Primitive{Name: s}
		}
	}
	return &types.Primitive{Name: def}
}

func deref(t types.Type) types.Type {
	for {
		r, ok := t.(*types.Ref)
		if !ok {
			return t
		}
		t = r.Elem
	}
}

func (idx *Index) adtOf(d *Decl) types.Type {
	return &types.Adt{Name: d.Name, Decl: d.Node}
}

func (idx *Index) tupleFieldType(decl *syntax.Node, i, depth int) types.Type {
	body := decl.ChildByField("body")
	if body == nil || body.Kind != "ordered_field_declaration_list" {
		return types.Invalid
	}
	var fields []*syntax.Node
	for _, c := range body.NamedChildren() {
		if c.Field == "type" {
			fields = append(fields, c)
		}
	}
	if i >= len(fields) {
		return types.Invalid
	}
	return idx.typeOfSyntax(fields[i], depth)
}

func (idx *Index) closureType(c *syntax.Node, depth int) types.Type {
	fn := &types.Function{Result: types.Invalid}
	if params := c.ChildByField("parameters"); params != nil {
		for _, p := range params.NamedChildren() {
			if p.Kind == "parameter" {
				fn.Params = append(fn.Params, idx.typeOfSyntax(p.ChildByField("type"), depth))
			} else {
				fn.Params = append(fn.Params, types.Invalid)
			}
		}
	}
	if rt := c.ChildByField("return_type"); rt != nil {
		fn.Result = idx.typeOfSyntax(rt, depth)
	} else {
		fn.Result = idx.typeOf(c.ChildByField("body"), depth)
	}
	return fn
}

// Callee returns the function, tuple struct or variant a call expression
// invokes, or nil.
func (idx *Index) Callee(call *syntax.Node) *Decl {
	f := call.ChildByField("function")
	if f == nil {
		return nil
	}
	if f.Kind == "generic_function" {
		f = f.ChildByField("function")
		if f == nil {
			return nil
		}
	}
	var ident *syntax.Node
	switch f.Kind {
	case "identifier":
		ident = f
	case "scoped_identifier":
		ident = f.ChildByField("name")
	case "field_expression":
		ident = f.ChildByField("field")
	}
	d := idx.Resolve(ident)
	if d == nil {
		return nil
	}
	switch d.Kind {
	case Function, Struct, Variant:
		return d
	}
	return nil
}

// declType returns the type of a value declaration.
func (idx *Index) declType(d *Decl, depth int) types.Type {
	if d == nil {
		return types.Invalid
	}
	switch d.Kind {
	case Local, Param:
		return idx.bindingType(d, depth)
	case Function:
		return idx.functionType(d, depth)
	case Const, Static, Field:
		return idx.typeOfSyntax(d.Node.ChildByField("type"), depth)
	case Struct:
		return idx.adtOf(d)
	case Variant:
		if owner := idx.DeclOf(d.Owner.ChildByField("name")); owner != nil {
			return idx.adtOf(owner)
		}
	}
	return types.Invalid
}

// DeclType returns the type of a value declaration: a binding's type, a
// function's signature or a constant's declared type.
func (idx *Index) DeclType(d *Decl) types.Type {
	return idx.declType(d, 0)
}

func (idx *Index) functionType(d *Decl, depth int) types.Type {
	fn := &types.Function{Result: idx.returnType(d, depth)}
	for _, p := range d.ValueParams() {
		fn.Params = append(fn.Params, idx.typeOfSyntax(p.ChildByField("type"), depth))
	}
	return fn
}

// ReturnType returns the declared return type of a function, unit when it
// has none.
func (idx *Index) ReturnType(fn *Decl) types.Type {
	return idx.returnType(fn, 0)
}

func (idx *Index) returnType(fn *Decl, depth int) types.Type {
	if fn == nil || fn.Kind != Function {
		return types.Invalid
	}
	rt := fn.Node.ChildByField("return_type")
	if rt == nil {
		return types.Unit
	}
	return idx.typeOfSyntax(rt, depth)
}

// ParamType returns the declared type of a function parameter. A self
// parameter has the enclosing impl's self type, behind a reference when it
// is written &self or &mut self.
func (idx *Index) ParamType(param *syntax.Node) types.Type {
	return idx.paramType(param, 0)
}

func (idx *Index) paramType(param *syntax.Node, depth int) types.Type {
	if param.Kind == "self_parameter" {
		t := idx.selfType(param, depth)
		if param.ChildOfKind("&") != nil {
			return &types.Ref{Mut: param.ChildOfKind("mutable_specifier") != nil, Elem: t}
		}
		return t
	}
	return idx.typeOfSyntax(param.ChildByField("type"), depth)
}

func (idx *Index) bindingType(d *Decl, depth int) types.Type {
	n := d.Node
	switch n.Kind {
	case "self_parameter":
		return idx.paramType(n, depth)
	case "parameter":
		return project(n.ChildByField("pattern"), d.Ident, idx.typeOfSyntax(n.ChildByField("type"), depth))
	case "let_declaration":
		var t types.Type
		if ty := n.ChildByField("type"); ty != nil {
			t = idx.typeOfSyntax(ty, depth)
		} else {
			t = idx.typeOf(n.ChildByField("value"), depth)
		}
		return project(n.ChildByField("pattern"), d.Ident, t)
	}
	return types.Invalid
}

// project returns the type of ident within a pattern matched against t.
func project(pattern, ident *syntax.Node, t types.Type) types.Type {
	if pattern == nil || !types.IsKnown(t) {
		return types.Invalid
	}
	if pattern == ident {
		return t
	}
	switch pattern.Kind {
	case "mut_pattern", "ref_pattern":
		for _, c := range pattern.NamedChildren() {
			if c.Encloses(ident) {
				return project(c, ident, t)
			}
		}
	case "reference_pattern":
		if r, ok := t.(*types.Ref); ok {
			for _, c := range pattern.NamedChildren() {
				if c.Encloses(ident) {
					return project(c, ident, r.Elem)
				}
			}
		}
	case "captured_pattern":
		if named := pattern.NamedChildren(); len(named) > 0 && named[0] == ident {
			return t
		}
	case "tuple_pattern":
		tup, ok := t.(*types.Tuple)
		if !ok {
			break
		}
		elems := pattern.NamedChildren()
		rest := -1
		for i, e := range elems {
			if e.Kind == "remaining_field_pattern" {
				rest = i
			}
		}
		for i, e := range elems {
			if !e.Encloses(ident) {
				continue
			}
			k := i
			if rest >= 0 && i > rest {
				k = len(tup.Elems) - (len(elems) - i)
			}
			if k < 0 || k >= len(tup.Elems) {
				return types.Invalid
			}
			return project(e, ident, tup.Elems[k])
		}
	}
	return types.Invalid
}

// TypeOfSyntax resolves a type written in source.
func (idx *Index) TypeOfSyntax(n *syntax.Node) types.Type {
	return idx.typeOfSyntax(n, 0)
}

func (idx *Index) typeOfSyntax(n *syntax.Node, depth int) types.Type {
	if n == nil || depth > maxInferDepth {
		return types.Invalid
	}
	depth++
	switch n.Kind {
	case "primitive_type":
		return &types.Primitive{Name: idx.text(n)}
	case "unit_type":
		return types.Unit
	case "never_type":
		return &types.Primitive{Name: "!"}
	case "type_identifier":
		name := idx.text(n)
		if name == "Self" {
			return idx.selfType(n, depth)
		}
		if GenericParamInScope(idx.File, n, name) {
			return &types.Param{Name: name}
		}
		return idx.namedType(name, depth)
	case "scoped_type_identifier":
		if name := n.ChildByField("name"); name != nil {
			return idx.namedType(idx.text(name), depth)
		}
	case "generic_type":
		t := idx.typeOfSyntax(n.ChildByField("type"), depth)
		adt, ok := t.(*types.Adt)
		if !ok {
			return t
		}
		res := &types.Adt{Name: adt.Name, Decl: adt.Decl}
		if args := n.ChildByField("type_arguments"); args != nil {
			for _, a := range args.NamedChildren() {
				if a.Is("lifetime", "type_binding", "block") || strings.HasSuffix(a.Kind, "_literal") {
					continue
				}
				res.Args = append(res.Args, idx.typeOfSyntax(a, depth))
			}
		}
		return res
	case "reference_type":
		return &types.Ref{
			Mut:  n.ChildOfKind("mutable_specifier") != nil,
			Elem: idx.typeOfSyntax(n.ChildByField("type"), depth),
		}
	case "tuple_type":
		var elems []types.Type
		for _, c := range n.NamedChildren() {
			elems = append(elems, idx.typeOfSyntax(c, depth))
		}
		return &types.Tuple{Elems: elems}
	case "array_type":
		return &types.Adt{Name: "[]", Args: []types.Type{idx.typeOfSyntax(n.ChildByField("element"), depth)}}
	case "function_type":
		fn := &types.Function{Result: types.Unit}
		if params := n.ChildByField("parameters"); params != nil {
			for _, p := range params.NamedChildren() {
				if p.Kind == "parameter" {
					p = p.ChildByField("type")
				}
				fn.Params = append(fn.Params, idx.typeOfSyntax(p, depth))
			}
		}
		if rt := n.ChildByField("return_type"); rt != nil {
			fn.Result = idx.typeOfSyntax(rt, depth)
		}
		return fn
	case "dynamic_type", "abstract_type":
		if tr := n.ChildByField("trait"); tr != nil {
			return idx.typeOfSyntax(tr, depth)
		}
	}
	return types.Invalid
}

func (idx *Index) namedType(name string, depth int) types.Type {
	d := idx.TypeItem(name)
	if d == nil {
		return &types.Adt{Name: name}
	}
	if d.Kind == TypeAlias {
		return idx.typeOfSyntax(d.Node.ChildByField("type"), depth)
	}
	return idx.adtOf(d)
}

// selfType returns the meaning of Self at n.
func (idx *Index) selfType(n *syntax.Node, depth int) types.Type {
	owner := n.Ancestor("impl_item", "trait_item")
	if owner == nil {
		return types.Invalid
	}
	if owner.Kind == "trait_item" {
		return &types.Param{Name: "Self"}
	}
	t := owner.ChildByField("type")
	if t == nil || t.Encloses(n) {
		return types.Invalid
	}
	return idx.typeOfSyntax(t, depth)
}
