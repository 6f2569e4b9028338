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

package syntax

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/goplus/rslsw/rust/syntax")

// ErrNoTree is returned when the parser produced no tree at all.
var ErrNoTree = errors.New("parser returned no tree")

// Parse parses content as a Rust-syntax source file. Syntax errors do not
// fail the parse; they are recorded in [File.Errors] and the erroneous
// regions show up as "ERROR" or missing nodes in the tree.
func Parse(ctx context.Context, path string, content []byte) (*File, error) {
	ctx, span := tracer.Start(ctx, "syntax.Parse",
		trace.WithAttributes(
			attribute.String("syntax.file", path),
			attribute.Int("syntax.content_size", len(content)),
		),
	)
	defer span.End()

	parser := sitter.NewParser()
	parser.SetLanguage(rust.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if tree == nil {
		return nil, ErrNoTree
	}
	defer tree.Close()

	f := &File{
		Path:    path,
		Content: content,
		lines:   lineStarts(content),
	}
	f.Root = f.convert(tree.RootNode(), nil, "", 0)

	span.SetAttributes(attribute.Int("syntax.error_count", len(f.Errors)))
	return f, nil
}

// convert copies a tree-sitter node into an immutable [Node], recording
// syntax errors along the way.
func (f *File) convert(tsn *sitter.Node, parent *Node, field string, index int) *Node {
	n := &Node{
		Kind:    tsn.Type(),
		Field:   field,
		Start:   int(tsn.StartByte()),
		End:     int(tsn.EndByte()),
		Named:   tsn.IsNamed(),
		Missing: tsn.IsMissing(),
		Parent:  parent,
		index:   index,
	}
	switch {
	case tsn.IsMissing():
		f.addError(n, fmt.Sprintf("missing %s", n.Kind))
	case tsn.IsError():
		n.Kind = "ERROR"
		f.addError(n, "syntax error")
	}

	count := int(tsn.ChildCount())
	if count > 0 {
		n.Children = make([]*Node, 0, count)
	}
	for i := range count {
		child := tsn.Child(i)
		if child == nil {
			continue
		}
		n.Children = append(n.Children, f.convert(child, n, tsn.FieldNameForChild(i), len(n.Children)))
	}
	return n
}

func (f *File) addError(n *Node, msg string) {
	line, col := f.LineCol(n.Start)
	f.Errors.Add(&Error{
		Path:  f.Path,
		Start: n.Start,
		End:   n.End,
		Line:  line,
		Col:   col,
		Msg:   msg,
	})
}
