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

// Package hints implements parameter hints: rendering the generic parameters
// of the item a type argument list belongs to, and the value parameters of
// the function a call argument list belongs to.
package hints

import (
	"slices"
	"strings"

	"github.com/goplus/rslsw/rust/resolve"
	"github.com/goplus/rslsw/rust/syntax"
)

// sizedTrait is the marker trait every type parameter implicitly satisfies
// unless opted out with ?Sized.
const sizedTrait = "Sized"

// Policy controls how bounds are displayed.
type Policy struct {
	// ExpandSupertraits also displays the supertraits implied by the
	// declared bounds, transitively.
	ExpandSupertraits bool
}

// ResolveBounds returns the bound names displayed for generic parameter g of
// item. Declared bounds include inline bounds and where predicates.
//
// Sized is never displayed. ?Sized is displayed first when it is declared
// and Sized is neither declared nor implied by a supertrait of another
// bound.
func ResolveBounds(idx *resolve.Index, item *syntax.Node, g resolve.Generic, policy Policy) []string {
	if g.Name == "" {
		return nil
	}
	f := idx.File
	declared := slices.Clone(g.Bounds)
	if g.Kind == resolve.TypeGeneric {
		declared = append(declared, resolve.WhereBounds(f, item, g.Name)...)
	}

	var (
		sized, unsized bool
		shown          []string
		traits         []string
	)
	for _, b := range declared {
		if b.Kind == "removed_trait_bound" {
			if idx.BaseName(b) == sizedTrait {
				unsized = true
			} else {
				shown = appendUnique(shown, f.Text(b))
			}
			continue
		}
		name := idx.BaseName(b)
		if name == sizedTrait {
			sized = true
			continue
		}
		shown = appendUnique(shown, f.Text(b))
		if b.Kind != "lifetime" {
			traits = append(traits, name)
		}
	}

	closure := supertraitClosure(idx, traits)
	if unsized && !sized && !slices.Contains(closure, sizedTrait) {
		shown = append([]string{"?" + sizedTrait}, shown...)
	}
	if policy.ExpandSupertraits {
		for _, name := range closure {
			if name != sizedTrait && !slices.Contains(traits, name) {
				shown = appendUnique(shown, name)
			}
		}
	}
	return shown
}

// supertraitClosure returns the supertraits transitively implied by traits,
// breadth first, excluding traits themselves. Traits not declared in the
// file contribute nothing.
func supertraitClosure(idx *resolve.Index, traits []string) []string {
	seen := make(map[string]bool, len(traits))
	for _, t := range traits {
		seen[t] = true
	}
	var closure []string
	queue := slices.Clone(traits)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		trait := idx.Trait(name)
		if trait == nil {
			continue
		}
		for _, super := range idx.Supertraits(trait) {
			if seen[super] {
				continue
			}
			seen[super] = true
			closure = append(closure, super)
			queue = append(queue, super)
		}
	}
	return closure
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}

// Entry renders one generic parameter: its name, followed by its bounds
// joined with " + " when there are any.
func Entry(name string, bounds []string) string {
	if name == "" || len(bounds) == 0 {
		return name
	}
	return name + ": " + strings.Join(bounds, " + ")
}

// DescribeGenerics renders every generic parameter of item.
func DescribeGenerics(idx *resolve.Index, item *syntax.Node, policy Policy) []string {
	var entries []string
	for _, g := range resolve.Generics(idx.File, item) {
		if g.Kind == resolve.ConstGeneric {
			if t := g.Node.ChildByField("type"); t != nil {
				entries = append(entries, g.Name+": "+idx.File.Text(t))
				continue
			}
		}
		entries = append(entries, Entry(g.Name, ResolveBounds(idx, item, g, policy)))
	}
	return entries
}
