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
	"github.com/goplus/rslsw/rust/resolve"
	"github.com/goplus/rslsw/rust/syntax"
)

// Initializer is the definition whose value replaces the references of a
// variable.
type Initializer struct {
	// Expr is the declaration's initializer, or the right side of the
	// single assignment to the variable.
	Expr *syntax.Node

	// Write is the assignment statement defining the variable, nil when
	// the declaration has an initializer.
	Write *syntax.Node
}

// ExtractInitializer returns the dominating definition of t given all its
// references.
//
//	initializer | writes | result
//	yes         | 0      | the initializer
//	yes         | >= 1   | ErrNoDominatingDefinition
//	no          | 1      | right side of the write
//	no          | 0      | ErrNoInitializer
//	no          | >= 2   | ErrNoDominatingDefinition
//
// A variable without references fails with ErrNeverUsed first.
func ExtractInitializer(t *Target, refs []*syntax.Node) (*Initializer, error) {
	name := t.Decl.Name
	if len(refs) == 0 {
		return nil, failure(ErrNeverUsed, "Variable '%s' is never used", name)
	}
	var writes []*syntax.Node
	for _, ref := range refs {
		if resolve.IsWrite(ref) {
			writes = append(writes, ref)
		}
	}

	value := t.Let.ChildByField("value")
	switch {
	case value != nil && len(writes) == 0:
		return &Initializer{Expr: value}, nil
	case value != nil, len(writes) > 1:
		return nil, failure(ErrNoDominatingDefinition, "Cannot perform refactoring. Variable '%s' has no dominating definition", name)
	case len(writes) == 0:
		return nil, failure(ErrNoInitializer, "Cannot perform refactoring. Variable '%s' has no initializer", name)
	}

	write := writes[0]
	assign := write.Ancestor("assignment_expression", "compound_assignment_expr")
	if assign == nil || assign.Kind != "assignment_expression" ||
		syntax.Unparen(assign.ChildByField("left")) != write {
		return nil, failure(ErrUnsupported, "Cannot inline variable '%s' defined by a compound or destructuring assignment", name)
	}
	stmt := assign.Parent
	if stmt == nil || stmt.Kind != "expression_statement" {
		return nil, failure(ErrUnsupported, "Cannot inline variable '%s' assigned inside an expression", name)
	}
	return &Initializer{Expr: assign.ChildByField("right"), Write: stmt}, nil
}
