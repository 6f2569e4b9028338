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

package completion

import (
	"context"

	"github.com/goplus/rslsw/ide/hints"
	"github.com/goplus/rslsw/rust/resolve"
	"github.com/goplus/rslsw/rust/types"
)

// Strategy selects how a candidate is inserted.
type Strategy int

const (
	// Plain inserts the candidate label as is.
	Plain Strategy = iota

	// AsStructLiteral inserts a struct literal with placeholder fields.
	AsStructLiteral

	// AsAssociatedCall inserts a qualified call Type::name().
	AsAssociatedCall
)

// Variant is a completion candidate.
type Variant struct {
	Label     string // e.g. "x", "Point" or "Point::new"
	Name      string // declared name
	Qualifier string // impl type or trait name of an associated function
	Detail    string // tail text, e.g. " of Shape"
	Decl      *resolve.Decl
	Type      types.Type // declared type, or the return type of a function
	Strategy  Strategy
}

// ExpectedTypes returns the types a value at site must have. It returns nil
// when the expectation cannot be resolved.
func ExpectedTypes(idx *resolve.Index, site Site, offset int) []types.Type {
	var t types.Type
	switch site.Kind {
	case ArgumentPosition:
		sig, ok := idx.CallSignature(site.Node.Parent)
		if !ok {
			return nil
		}
		i := hints.CurrentParameter(site.Node, offset, len(sig.Params))
		if i < 0 {
			return nil
		}
		t = sig.Params[i].Type
	case ReturnPosition:
		fn := idx.DeclOf(site.Node.ChildByField("name"))
		if fn == nil {
			return nil
		}
		t = idx.ReturnType(fn)
	case BooleanCondition:
		t = types.Bool
	case LetInitializer:
		ty := site.Node.ChildByField("type")
		if ty == nil {
			return nil
		}
		t = idx.TypeOfSyntax(ty)
	default:
		return nil
	}
	if !types.IsKnown(t) {
		return nil
	}
	return []types.Type{t}
}

// Collect returns the declarations visible at offset whose type matches an
// expected type of site. It returns an empty list when the expectation
// cannot be resolved, and ctx's error when ctx is done before collection
// completes.
func Collect(ctx context.Context, idx *resolve.Index, site Site, offset int) ([]Variant, error) {
	expected := ExpectedTypes(idx, site, offset)
	if len(expected) == 0 {
		return nil, nil
	}
	decls, err := idx.VisibleDecls(ctx, offset)
	if err != nil {
		return nil, err
	}

	var variants []Variant
	seen := make(map[string]bool)
	add := func(v Variant) {
		key := v.Label + v.Detail
		if seen[key] {
			return
		}
		seen[key] = true
		variants = append(variants, v)
	}
	for _, d := range decls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if site.Ident != nil && d.Ident == site.Ident {
			continue
		}
		switch d.Kind {
		case resolve.Local, resolve.Param, resolve.Const, resolve.Static:
			if t := idx.DeclType(d); types.MatchAny(expected, t) {
				add(Variant{Label: d.Name, Name: d.Name, Decl: d, Type: t})
			}
		case resolve.Struct:
			if t := idx.DeclType(d); types.MatchAny(expected, t) {
				add(Variant{Label: d.Name, Name: d.Name, Decl: d, Type: t, Strategy: AsStructLiteral})
			}
		case resolve.Function:
			t := idx.ReturnType(d)
			if !types.MatchAny(expected, t) {
				continue
			}
			add(functionVariant(idx, d, t))
		}
	}
	return variants, nil
}

func functionVariant(idx *resolve.Index, d *resolve.Decl, t types.Type) Variant {
	v := Variant{Label: d.Name, Name: d.Name, Decl: d, Type: t}
	if d.Owner == nil {
		return v
	}
	v.Qualifier = idx.OwnerName(d)
	if d.Owner.Kind == "trait_item" {
		v.Detail = " of " + v.Qualifier
	} else if v.Qualifier != "" {
		v.Label = v.Qualifier + "::" + d.Name
	}
	if d.IsAssociatedFunction() {
		v.Strategy = AsAssociatedCall
	}
	return v
}
