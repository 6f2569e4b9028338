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

import "slices"

// Node is an immutable syntax tree node. Offsets are byte offsets into the
// content of the [File] the node belongs to.
type Node struct {
	Kind    string // grammar node type, e.g. "let_declaration" or ","
	Field   string // field name in the parent, empty if none
	Start   int
	End     int
	Named   bool
	Missing bool // inserted by error recovery, zero width

	Parent   *Node
	Children []*Node

	index int // position in Parent.Children
}

// Is reports whether the node kind is one of kinds.
func (n *Node) Is(kinds ...string) bool {
	return n != nil && slices.Contains(kinds, n.Kind)
}

// IsComment reports whether the node is a comment.
func (n *Node) IsComment() bool {
	return n.Is("line_comment", "block_comment")
}

// IsError reports whether the node is an error recovery node.
func (n *Node) IsError() bool {
	return n != nil && (n.Kind == "ERROR" || n.Missing)
}

// Len returns the byte length of the node.
func (n *Node) Len() int {
	return n.End - n.Start
}

// Contains reports whether offset lies within [Start, End].
func (n *Node) Contains(offset int) bool {
	return n.Start <= offset && offset <= n.End
}

// Encloses reports whether other lies entirely within n.
func (n *Node) Encloses(other *Node) bool {
	return n.Start <= other.Start && other.End <= n.End
}

// Text returns the source text of the node.
func (n *Node) Text(content []byte) string {
	return string(content[n.Start:n.End])
}

// ChildByField returns the first child with the given field name.
func (n *Node) ChildByField(field string) *Node {
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildrenByField returns all children with the given field name.
func (n *Node) ChildrenByField(field string) []*Node {
	var cs []*Node
	for _, c := range n.Children {
		if c.Field == field {
			cs = append(cs, c)
		}
	}
	return cs
}

// ChildOfKind returns the first child of one of the given kinds.
func (n *Node) ChildOfKind(kinds ...string) *Node {
	for _, c := range n.Children {
		if c.Is(kinds...) {
			return c
		}
	}
	return nil
}

// NamedChildren returns the named, non-comment children.
func (n *Node) NamedChildren() []*Node {
	var cs []*Node
	for _, c := range n.Children {
		if c.Named && !c.IsComment() {
			cs = append(cs, c)
		}
	}
	return cs
}

// Prev returns the previous sibling, or nil.
func (n *Node) Prev() *Node {
	if n.Parent == nil || n.index == 0 {
		return nil
	}
	return n.Parent.Children[n.index-1]
}

// Next returns the next sibling, or nil.
func (n *Node) Next() *Node {
	if n.Parent == nil || n.index+1 >= len(n.Parent.Children) {
		return nil
	}
	return n.Parent.Children[n.index+1]
}

// Ancestor returns the closest strict ancestor of one of the given kinds.
func (n *Node) Ancestor(kinds ...string) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Is(kinds...) {
			return p
		}
	}
	return nil
}

// AncestorOrSelf is like [Node.Ancestor] but also considers n itself.
func (n *Node) AncestorOrSelf(kinds ...string) *Node {
	if n.Is(kinds...) {
		return n
	}
	return n.Ancestor(kinds...)
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.Parent; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// Walk traverses the subtree rooted at n in depth-first order. Children are
// skipped when fn returns false.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Leaves returns all leaf nodes of the subtree rooted at n in source order.
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	n.Walk(func(c *Node) bool {
		if len(c.Children) == 0 {
			leaves = append(leaves, c)
		}
		return true
	})
	return leaves
}

// Unparen strips enclosing parenthesized expressions.
func Unparen(n *Node) *Node {
	for n != nil && n.Kind == "parenthesized_expression" {
		inner := n.NamedChildren()
		if len(inner) != 1 {
			break
		}
		n = inner[0]
	}
	return n
}
