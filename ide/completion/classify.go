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

// Package completion implements type-directed smart completion: classifying
// the caret position, collecting declarations whose type fits the position,
// and computing the text inserted for a chosen candidate.
package completion

import (
	"slices"

	"github.com/goplus/rslsw/rust/syntax"
)

// Dummy is the identifier inserted at the caret before parsing, so the caret
// always sits on an identifier leaf.
const Dummy = "rslswCompletionDummy"

// WithDummy returns a copy of content with [Dummy] inserted at offset.
func WithDummy(content []byte, offset int) []byte {
	out := make([]byte, 0, len(content)+len(Dummy))
	out = append(out, content[:offset]...)
	out = append(out, Dummy...)
	return append(out, content[offset:]...)
}

// SiteKind classifies a completion position.
type SiteKind int

const (
	None SiteKind = iota
	ArgumentPosition
	ReturnPosition
	BooleanCondition
	LetInitializer
)

func (k SiteKind) String() string {
	switch k {
	case ArgumentPosition:
		return "argument"
	case ReturnPosition:
		return "return"
	case BooleanCondition:
		return "condition"
	case LetInitializer:
		return "let"
	}
	return "none"
}

// Site is a classified completion position.
type Site struct {
	Kind  SiteKind
	Ident *syntax.Node // identifier leaf at the caret

	// Node is the arguments list, the enclosing function_item, the
	// condition or the let_declaration, depending on Kind.
	Node *syntax.Node
}

// Classify classifies offset in a file parsed with [Dummy] inserted at
// offset. Argument lists are checked first, then return positions, then
// conditions, then let initializers.
func Classify(f *syntax.File, offset int) Site {
	ident := f.IdentAt(offset)
	if ident == nil {
		return Site{}
	}
	if args := argumentList(ident); args != nil {
		return Site{Kind: ArgumentPosition, Ident: ident, Node: args}
	}
	expr := pathExpr(ident)
	if expr == nil {
		return Site{Ident: ident}
	}
	if fn := returnPosition(expr); fn != nil {
		return Site{Kind: ReturnPosition, Ident: ident, Node: fn}
	}
	if cond := enclosingCondition(expr); cond != nil {
		return Site{Kind: BooleanCondition, Ident: ident, Node: cond}
	}
	if let := letInitializer(expr); let != nil {
		return Site{Kind: LetInitializer, Ident: ident, Node: let}
	}
	return Site{Ident: ident}
}

// isCondition reports whether child is the condition of p.
func isCondition(child, p *syntax.Node) bool {
	switch p.Kind {
	case "if_expression", "while_expression":
		return child.Field == "condition"
	case "if_let_expression", "while_let_expression":
		return child.Field == "value"
	}
	return false
}

// argumentList returns the call argument list enclosing ident without an
// if or while condition in between.
func argumentList(ident *syntax.Node) *syntax.Node {
	for child, p := ident, ident.Parent; p != nil; child, p = p, p.Parent {
		if isCondition(child, p) {
			return nil
		}
		if p.Kind == "arguments" && p.Parent != nil && p.Parent.Kind == "call_expression" {
			return p
		}
	}
	return nil
}

// pathExpr returns the path expression ident is the last segment of, or nil
// when ident is not in expression position.
func pathExpr(ident *syntax.Node) *syntax.Node {
	if ident.Kind != "identifier" {
		return nil
	}
	expr := ident
	if p := ident.Parent; p != nil && p.Kind == "scoped_identifier" {
		if ident.Field != "name" {
			return nil
		}
		expr = p
	}
	p := expr.Parent
	if p == nil {
		return nil
	}
	switch p.Kind {
	case "field_expression":
		if expr.Field == "field" {
			return nil
		}
	case "let_declaration":
		if expr.Field != "value" {
			return nil
		}
	case "parameter", "function_item", "struct_item", "enum_item",
		"macro_invocation", "use_declaration", "mod_item", "field_pattern":
		return nil
	}
	if p.Kind == "scoped_identifier" || p.Kind == "scoped_use_list" || p.Kind == "use_as_clause" {
		return nil
	}
	return expr
}

// returnPosition returns the function expr is returned from: either expr is
// inside a return expression, or only closing braces and comments follow it
// up to the end of the function body.
func returnPosition(expr *syntax.Node) *syntax.Node {
	fn := expr.Ancestor("function_item")
	if fn == nil {
		return nil
	}
	if ret := expr.Ancestor("return_expression"); ret != nil && fn.IsAncestorOf(ret) {
		return fn
	}
	body := fn.ChildByField("body")
	if body == nil || !body.IsAncestorOf(expr) {
		return nil
	}
	leaves := body.Leaves()
	tail := slices.IndexFunc(leaves, func(leaf *syntax.Node) bool {
		return leaf.Start >= expr.End
	})
	if tail < 0 {
		return nil
	}
	for _, leaf := range leaves[tail:] {
		if leaf.Kind != "}" && !leaf.IsComment() {
			return nil
		}
	}
	return fn
}

// enclosingCondition returns the if or while condition containing expr.
func enclosingCondition(expr *syntax.Node) *syntax.Node {
	for child, p := expr, expr.Parent; p != nil; child, p = p, p.Parent {
		if isCondition(child, p) {
			return child
		}
	}
	return nil
}

// letInitializer returns the let declaration whose initializer contains
// expr, without crossing a condition.
func letInitializer(expr *syntax.Node) *syntax.Node {
	for child, p := expr, expr.Parent; p != nil; child, p = p, p.Parent {
		if isCondition(child, p) {
			return nil
		}
		if p.Kind == "let_declaration" {
			if child.Field == "value" {
				return p
			}
			return nil
		}
	}
	return nil
}
