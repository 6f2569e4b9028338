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
	"fmt"

	"github.com/goplus/rslsw/rust/resolve"
	"github.com/goplus/rslsw/rust/syntax"
)

// Result is the outcome of a smart completion request.
type Result struct {
	Site     Site
	Variants []Variant

	// Index is the index of the document with [Dummy] inserted. Variant
	// declarations belong to it.
	Index *resolve.Index

	// Start and End delimit the identifier around the caret in the
	// original document, the range an accepted candidate replaces.
	Start int
	End   int
}

// Complete runs smart completion at offset of content.
func Complete(ctx context.Context, path string, content []byte, offset int) (*Result, error) {
	if offset < 0 || offset > len(content) {
		return nil, fmt.Errorf("offset %d out of range", offset)
	}
	f, err := syntax.Parse(ctx, path, WithDummy(content, offset))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	idx := resolve.NewIndex(f)
	res := &Result{Index: idx, Start: offset, End: offset}
	res.Site = Classify(f, offset)
	if ident := res.Site.Ident; ident != nil {
		res.Start = ident.Start
		res.End = max(ident.End-len(Dummy), offset)
	}
	if res.Site.Kind == None {
		return res, nil
	}
	res.Variants, err = Collect(ctx, idx, res.Site, offset)
	if err != nil {
		return nil, err
	}
	return res, nil
}
