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
	"github.com/goplus/rslsw/rust/edit"
	"github.com/goplus/rslsw/rust/resolve"
	"github.com/goplus/rslsw/rust/syntax"
)

// needsParens reports whether an inlined copy of expr must be wrapped in
// parentheses to keep its meaning at ref.
func needsParens(expr, ref *syntax.Node) bool {
	switch expr.Kind {
	case "binary_expression", "range_expression":
		return true
	case "closure_expression", "type_cast_expression", "unary_expression", "reference_expression":
		return isOperand(ref)
	}
	return false
}

// isOperand reports whether ref is a callee, a receiver, an indexed value
// or the operand of ?.
func isOperand(ref *syntax.Node) bool {
	p := ref.Parent
	if p == nil {
		return false
	}
	switch p.Kind {
	case "call_expression":
		return ref.Field == "function"
	case "field_expression":
		return ref.Field == "value"
	case "index_expression":
		named := p.NamedChildren()
		return len(named) > 0 && named[0] == ref
	case "try_expression":
		return true
	}
	return false
}

// Replacement returns the text substituted for ref.
func Replacement(f *syntax.File, expr, ref *syntax.Node) string {
	text := f.Text(expr)
	if needsParens(expr, ref) {
		return "(" + text + ")"
	}
	return text
}

// RewriteUsages adds to s an edit replacing each read reference in refs with
// a copy of expr. References overlapping an edit already in s are skipped.
// It returns the number of rewritten references.
func RewriteUsages(s *edit.Script, f *syntax.File, refs []*syntax.Node, expr *syntax.Node) int {
	n := 0
	for _, ref := range refs {
		if resolve.IsWrite(ref) || s.Conflicts(ref.Start, ref.End) {
			continue
		}
		newText := Replacement(f, expr, ref)
		if p := ref.Parent; p != nil && p.Kind == "shorthand_field_initializer" {
			newText = f.Text(ref) + ": " + newText
		}
		if s.Replace(ref.Start, ref.End, newText) == nil {
			n++
		}
	}
	return n
}
