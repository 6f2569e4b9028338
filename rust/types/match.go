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

package types

// Match reports whether actual structurally matches expected.
//
// Nominal types match by declaration identity and ignore their type
// arguments, so Vec<i32> matches Vec<String>. When either side has no
// resolved declaration the names are compared instead. Unknown types never
// match anything.
func Match(expected, actual Type) bool {
	if !IsKnown(expected) || !IsKnown(actual) {
		return false
	}
	switch e := expected.(type) {
	case *Primitive:
		a, ok := actual.(*Primitive)
		return ok && a.Name == e.Name
	case *Adt:
		a, ok := actual.(*Adt)
		if !ok {
			return false
		}
		if e.Decl != nil && a.Decl != nil {
			return e.Decl == a.Decl
		}
		return e.Name == a.Name
	case *Ref:
		a, ok := actual.(*Ref)
		return ok && a.Mut == e.Mut && Match(e.Elem, a.Elem)
	case *Tuple:
		a, ok := actual.(*Tuple)
		if !ok || len(a.Elems) != len(e.Elems) {
			return false
		}
		for i := range e.Elems {
			if !Match(e.Elems[i], a.Elems[i]) {
				return false
			}
		}
		return true
	case *Function:
		a, ok := actual.(*Function)
		if !ok || len(a.Params) != len(e.Params) {
			return false
		}
		for i := range e.Params {
			if !Match(e.Params[i], a.Params[i]) {
				return false
			}
		}
		return Match(e.Result, a.Result)
	case *Param:
		a, ok := actual.(*Param)
		return ok && a.Name == e.Name
	}
	return false
}

// MatchAny reports whether actual matches any of the expected types.
func MatchAny(expected []Type, actual Type) bool {
	for _, e := range expected {
		if Match(e, actual) {
			return true
		}
	}
	return false
}
