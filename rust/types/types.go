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

// Package types is a small model of Rust-syntax types, sufficient for
// type-directed filtering of completion candidates.
package types

import (
	"strings"

	"github.com/goplus/rslsw/rust/syntax"
)

// Type is a resolved type.
type Type interface {
	String() string
	isType()
}

// Primitive is a built-in scalar type such as i32, bool, str or char.
type Primitive struct {
	Name string
}

// Adt is a nominal type: a struct, enum, union, trait object or an
// unresolved named type. Decl is the declaring item, nil when the name could
// not be resolved within the file.
type Adt struct {
	Name string
	Decl *syntax.Node
	Args []Type
}

// Ref is a shared or mutable reference.
type Ref struct {
	Mut  bool
	Elem Type
}

// Tuple is a tuple type. The unit type is the empty tuple.
type Tuple struct {
	Elems []Type
}

// Function is a function pointer, function item or closure type.
type Function struct {
	Params []Type
	Result Type
}

// Param is a generic type parameter in scope.
type Param struct {
	Name string
}

// Unknown is a type the oracle could not infer.
type Unknown struct{}

func (*Primitive) isType() {}
func (*Adt) isType()       {}
func (*Ref) isType()       {}
func (*Tuple) isType()     {}
func (*Function) isType()  {}
func (*Param) isType()     {}
func (*Unknown) isType()   {}

// Common types.
var (
	Bool    = &Primitive{Name: "bool"}
	Unit    = &Tuple{}
	Invalid = &Unknown{}
)

func (t *Primitive) String() string { return t.Name }

func (t *Adt) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	return t.Name + "<" + join(t.Args) + ">"
}

func (t *Ref) String() string {
	if t.Mut {
		return "&mut " + t.Elem.String()
	}
	return "&" + t.Elem.String()
}

func (t *Tuple) String() string {
	if len(t.Elems) == 1 {
		return "(" + t.Elems[0].String() + ",)"
	}
	return "(" + join(t.Elems) + ")"
}

func (t *Function) String() string {
	s := "fn(" + join(t.Params) + ")"
	if t.Result != nil && !IsUnit(t.Result) {
		s += " -> " + t.Result.String()
	}
	return s
}

func (t *Param) String() string { return t.Name }

func (t *Unknown) String() string { return "?" }

func join(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// IsUnit reports whether t is the unit type.
func IsUnit(t Type) bool {
	tup, ok := t.(*Tuple)
	return ok && len(tup.Elems) == 0
}

// IsKnown reports whether t is neither nil nor [Unknown].
func IsKnown(t Type) bool {
	if t == nil {
		return false
	}
	_, unknown := t.(*Unknown)
	return !unknown
}
