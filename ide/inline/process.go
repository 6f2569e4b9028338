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
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/goplus/rslsw/rust/edit"
	"github.com/goplus/rslsw/rust/resolve"
	"github.com/goplus/rslsw/rust/syntax"
)

// Plan is a validated inline request awaiting the user's choice of
// [Options].
type Plan struct {
	Target *Target
	Refs   []*syntax.Node // all references in source order
	Init   *Initializer

	// Value is the expression substituted for the references: the
	// initializer, or its component bound to a tuple element.
	Value *syntax.Node

	idx   *resolve.Index
	index int // component index of Value in a tuple initializer
}

// Prepare collects the references of the variable at offset and validates
// that it has a single dominating definition. Nothing is modified.
func Prepare(ctx context.Context, idx *resolve.Index, offset int) (*Plan, error) {
	t, err := FindTarget(idx, offset)
	if err != nil {
		return nil, err
	}
	p := &Plan{Target: t, idx: idx}
	p.Refs = idx.References(t.Decl)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.Init, err = ExtractInitializer(t, p.Refs)
	if err != nil {
		return nil, err
	}
	p.Value = p.Init.Expr
	if t.Tuple != nil {
		comp, i, ok := Component(t.Tuple, t.Element, p.Init.Expr)
		if !ok {
			return nil, failure(ErrUnsupported, "Cannot inline variable '%s' with tuple-unpacking assignment", t.Decl.Name)
		}
		p.Value, p.index = comp, i
		if ty := t.Let.ChildByField("type"); ty != nil && ty.Kind == "tuple_type" && len(items(ty)) != len(items(p.Init.Expr)) {
			return nil, failure(ErrUnsupported, "Cannot inline variable '%s': tuple type does not match its initializer", t.Decl.Name)
		}
	}
	return p, nil
}

// Occurrences returns the number of references that would be inlined.
func (p *Plan) Occurrences() int {
	n := 0
	for _, ref := range p.Refs {
		if !resolve.IsWrite(ref) {
			n++
		}
	}
	return n
}

// Title returns a short description of the plan.
func (p *Plan) Title() string {
	n := p.Occurrences()
	if n == 1 {
		return fmt.Sprintf("Inline variable '%s' (1 occurrence)", p.Target.Decl.Name)
	}
	return fmt.Sprintf("Inline variable '%s' (%d occurrences)", p.Target.Decl.Name, n)
}

// Apply rewrites the references and deletes the declaration as selected by
// opts. The declaration edits are planned first, so references inside
// removed code are skipped. The returned script is applied all at once or
// not at all.
func (p *Plan) Apply(ctx context.Context, opts Options) (*edit.Script, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f := p.idx.File
	s := new(edit.Script)
	refs := p.Refs
	thisOnly := opts.ThisOnly && p.Target.Invoked != nil
	if thisOnly {
		if resolve.IsWrite(p.Target.Invoked) {
			return nil, failure(ErrUnsupported, "Cannot inline an assignment to variable '%s'", p.Target.Decl.Name)
		}
		refs = []*syntax.Node{p.Target.Invoked}
	} else if !opts.KeepDeclaration {
		if err := p.deleteDeclaration(s); err != nil {
			return nil, errors.Wrap(err, "failed to delete declaration")
		}
	}
	RewriteUsages(s, f, refs, p.Value)
	return s, nil
}

func (p *Plan) deleteDeclaration(s *edit.Script) error {
	t, f := p.Target, p.idx.File
	if t.Tuple == nil || vanishes(t.Tuple) {
		if err := deleteStatement(s, f.Content, t.Let); err != nil {
			return err
		}
	} else {
		collapse := collapses(t.Tuple)
		pos := 0
		for i, c := range items(t.Tuple) {
			if c == t.Element {
				pos = i
			}
		}
		if err := spliceTuple(s, f, t.Tuple, pos, collapse, false); err != nil {
			return err
		}
		if ty := t.Let.ChildByField("type"); ty != nil && ty.Kind == "tuple_type" {
			if err := spliceTuple(s, f, ty, p.index, collapse, true); err != nil {
				return err
			}
		}
		if err := spliceTuple(s, f, p.Init.Expr, p.index, collapse, true); err != nil {
			return err
		}
	}
	if p.Init.Write != nil {
		return deleteStatement(s, f.Content, p.Init.Write)
	}
	return nil
}

// deleteStatement deletes stmt. A statement alone on its line is deleted
// with the whole line.
func deleteStatement(s *edit.Script, content []byte, stmt *syntax.Node) error {
	start, end := stmt.Start, stmt.End
	for start > 0 && isBlank(content[start-1]) {
		start--
	}
	for end < len(content) && isBlank(content[end]) {
		end++
	}
	ownLine := (start == 0 || content[start-1] == '\n') &&
		(end == len(content) || content[end] == '\n' || content[end] == '\r')
	if !ownLine {
		return s.Delete(stmt.Start, end)
	}
	if end < len(content) && content[end] == '\r' {
		end++
	}
	if end < len(content) && content[end] == '\n' {
		end++
	}
	return s.Delete(start, end)
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

// Inline runs the whole refactoring at offset with opts and returns the
// rewritten content.
func Inline(ctx context.Context, idx *resolve.Index, offset int, opts Options) ([]byte, error) {
	p, err := Prepare(ctx, idx, offset)
	if err != nil {
		return nil, err
	}
	s, err := p.Apply(ctx, opts)
	if err != nil {
		return nil, err
	}
	return s.Apply(idx.File.Content)
}
