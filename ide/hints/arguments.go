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

package hints

import (
	"github.com/goplus/rslsw/rust/resolve"
	"github.com/goplus/rslsw/rust/syntax"
)

// Hint is a parameter hint ready for display.
type Hint struct {
	List         *syntax.Node // type_arguments or arguments
	Presentation Presentation
	Current      int // -1 when no entry is highlighted
}

// GenericHint returns the hint for the type argument list around offset.
func GenericHint(idx *resolve.Index, offset int, policy Policy) (Hint, bool) {
	list, ok := FindTypeArgumentList(idx, offset)
	if !ok {
		return Hint{}, false
	}
	p := Present(DescribeGenerics(idx, list.Decl.Node, policy))
	return Hint{
		List:         list.Node,
		Presentation: p,
		Current:      CurrentParameter(list.Node, offset, p.Len()),
	}, true
}

// ArgumentHint returns the hint for the innermost call argument list around
// offset.
func ArgumentHint(idx *resolve.Index, offset int) (Hint, bool) {
	leaf := idx.File.LeafAt(offset)
	if leaf == nil {
		return Hint{}, false
	}
	for args := leaf.AncestorOrSelf("arguments"); args != nil; args = args.Ancestor("arguments") {
		if !insideBrackets(args, offset) {
			continue
		}
		call := args.Parent
		if call == nil || call.Kind != "call_expression" {
			continue
		}
		entries, ok := DescribeArguments(idx, call)
		if !ok {
			continue
		}
		p := Present(entries)
		return Hint{
			List:         args,
			Presentation: p,
			Current:      CurrentParameter(args, offset, p.Len()),
		}, true
	}
	return Hint{}, false
}

// DescribeArguments renders the value parameters filled by the arguments of
// call. A method called by path lists its self parameter first.
func DescribeArguments(idx *resolve.Index, call *syntax.Node) ([]string, bool) {
	sig, ok := idx.CallSignature(call)
	if !ok {
		return nil, false
	}
	entries := make([]string, 0, len(sig.Params))
	for _, p := range sig.Params {
		entries = append(entries, p.Label)
	}
	return entries, true
}

// Find returns the hint at offset, preferring a type argument list nested
// inside a call over the call itself.
func Find(idx *resolve.Index, offset int, policy Policy) (Hint, bool) {
	g, gok := GenericHint(idx, offset, policy)
	a, aok := ArgumentHint(idx, offset)
	switch {
	case gok && aok:
		if a.List.Encloses(g.List) {
			return g, true
		}
		return a, true
	case gok:
		return g, true
	}
	return a, aok
}
