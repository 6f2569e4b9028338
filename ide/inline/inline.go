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


// Package inline implements the inline-variable refactoring: the references
// of a local binding are replaced with its initializer and the declaration
// is removed.
package inline

import (
	"github.com/cockroachdb/errors"

	"github.com/goplus/rslsw/rust/resolve"
	"github.com/goplus/rslsw/rust/syntax"
)

var (
	// ErrNotApplicable is returned when the caret is not on a local
	// variable declared by a let statement.
	ErrNotApplicable = errors.New("inline variable is not applicable")

	// ErrNeverUsed is returned when the variable has no references.
	ErrNeverUsed = errors.New("variable is never used")

	// ErrNoInitializer is returned when the variable is declared without
	// an initializer and never assigned.
	ErrNoInitializer = errors.New("variable has no initializer")

	// ErrNoDominatingDefinition is returned when the value of the variable
	// is not determined by a single definition.
	ErrNoDominatingDefinition = errors.New("variable has no dominating definition")

	// ErrUnsupported is returned for declarations and usages the rewrite
	// cannot express, such as nested patterns.
	ErrUnsupported = errors.New("unsupported construct")
)

// failure wraps a sentinel with a user-visible hint.
func failure(sentinel error, format string, args ...any) error {
	return errors.WithHintf(errors.WithStack(sentinel), format, args...)
}

// Message returns the user-visible message of an inline failure.
func Message(err error) string {
	if hint := errors.FlattenHints(err); hint != "" {
		return hint
	}
	return err.Error()
}

// Reason returns a short stable name for the class of an inline failure.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotApplicable):
		return "not_applicable"
	case errors.Is(err, ErrNeverUsed):
		return "never_used"
	case errors.Is(err, ErrNoInitializer):
		return "no_initializer"
	case errors.Is(err, ErrNoDominatingDefinition):
		return "no_dominating_definition"
	case errors.Is(err, ErrUnsupported):
		return "unsupported"
	}
	return "internal"
}

// Options are the choices offered to the user before rewriting.
type Options struct {
	// ThisOnly inlines only the reference the refactoring was invoked on
	// and keeps the variable. It has no effect when invoked on the
	// declaration.
	ThisOnly bool

	// KeepDeclaration inlines all references but keeps the declaration.
	KeepDeclaration bool
}

// Target is the variable an inline request applies to.
type Target struct {
	Decl *resolve.Decl
	Let  *syntax.Node // let_declaration

	// Element is the pattern holding the binding: the whole let pattern,
	// or an element of Tuple.
	Element *syntax.Node
	Tuple   *syntax.Node // tuple_pattern, or nil

	// Invoked is the reference the request was invoked on, or nil when
	// invoked on the declaration.
	Invoked *syntax.Node
}

// FindTarget returns the variable at offset.
func FindTarget(idx *resolve.Index, offset int) (*Target, error) {
	ident := idx.File.IdentAt(offset)
	if ident == nil {
		return nil, ErrNotApplicable
	}
	d := idx.Resolve(ident)
	if d == nil || d.Kind != resolve.Local || d.Node.Kind != "let_declaration" {
		return nil, ErrNotApplicable
	}
	t := &Target{Decl: d, Let: d.Node}
	if ident != d.Ident {
		t.Invoked = ident
	}

	pattern := d.Node.ChildByField("pattern")
	elem := d.Ident
	for elem != pattern && elem.Parent != nil && elem.Parent.Kind == "mut_pattern" {
		elem = elem.Parent
	}
	switch {
	case elem == pattern:
	case elem.Parent == pattern && pattern.Kind == "tuple_pattern":
		t.Tuple = pattern
	default:
		return nil, failure(ErrUnsupported, "Cannot inline variable '%s' bound by a nested pattern", d.Name)
	}
	t.Element = elem
	return t, nil
}
