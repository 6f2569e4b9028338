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
	"github.com/goplus/rslsw/rust/types"
)

// SignatureParam is one parameter a call argument list fills.
type SignatureParam struct {
	Label string // e.g. "&self" or "x: i32"
	Type  types.Type
}

// Signature lists the parameters matched positionally by the arguments of a
// call.
//
// A method called with method-call syntax (recv.m(a)) has its receiver
// bound implicitly, so Params excludes self. The same method called by path
// (Type::m(recv, a)) takes the receiver as its first argument, so Params
// starts with self.
type Signature struct {
	Decl   *Decl // nil when calling a function-typed value
	Params []SignatureParam
}

// CallSignature returns the signature of the function, tuple struct or
// function-typed value invoked by call.
func (idx *Index) CallSignature(call *syntax.Node) (Signature, bool) {
	fn := call.ChildByField("function")
	if fn == nil {
		return Signature{}, false
	}
	d := idx.Callee(call)
	if d == nil {
		if ft, ok := idx.TypeOf(fn).(*types.Function); ok {
			sig := Signature{}
			for _, p := range ft.Params {
				sig.Params = append(sig.Params, SignatureParam{Label: p.String(), Type: p})
			}
			return sig, true
		}
		return Signature{}, false
	}

	sig := Signature{Decl: d}
	switch d.Kind {
	case Function:
		methodSyntax := fn.Kind == "field_expression" ||
			(fn.Kind == "generic_function" && fn.ChildByField("function").Is("field_expression"))
		if self := d.SelfParam(); self != nil && !methodSyntax {
			sig.Params = append(sig.Params, SignatureParam{Label: idx.text(self), Type: idx.ParamType(self)})
		}
		for _, p := range d.ValueParams() {
			label := idx.text(p)
			if pat, typ := p.ChildByField("pattern"), p.ChildByField("type"); pat != nil && typ != nil {
				label = idx.text(pat) + ": " + idx.text(typ)
			}
			sig.Params = append(sig.Params, SignatureParam{Label: label, Type: idx.ParamType(p)})
		}
	case Struct, Variant:
		body := d.Node.ChildByField("body")
		if body == nil || body.Kind != "ordered_field_declaration_list" {
			return Signature{}, false
		}
		for _, c := range body.NamedChildren() {
			if c.Field == "type" {
				sig.Params = append(sig.Params, SignatureParam{Label: idx.text(c), Type: idx.TypeOfSyntax(c)})
			}
		}
	}
	return sig, true
}
