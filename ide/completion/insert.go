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
	"bytes"
	"strings"

	"github.com/goplus/rslsw/rust/resolve"
)

// indentUnit is the extra indentation of struct literal fields on their own
// lines.
const indentUnit = "    "

// Insertion is the edit applied when a candidate is accepted: the bytes
// [Start, End) of the document are replaced with Text.
type Insertion struct {
	Start int
	End   int
	Text  string

	// Caret is the caret offset in the edited document.
	Caret int

	// TriggerHints requests a parameter hint popup after insertion.
	TriggerHints bool
}

// CaretInText returns the caret position relative to Text, or -1 when the
// caret lies beyond the inserted text.
func (ins Insertion) CaretInText() int {
	rel := ins.Caret - ins.Start
	if rel < 0 || rel > len(ins.Text) {
		return -1
	}
	return rel
}

// AfterInsert computes the insertion of v over the typed prefix [start, end)
// of doc.
func AfterInsert(idx *resolve.Index, v Variant, doc []byte, start, end int) Insertion {
	ins := Insertion{Start: start, End: end}
	switch v.Strategy {
	case AsStructLiteral:
		ins.Text, ins.Caret = structLiteral(idx, v, lineIndent(doc, start))
		ins.Caret += start
	case AsAssociatedCall:
		name := v.Name
		if v.Qualifier != "" && !bytes.HasSuffix(doc[:start], []byte(v.Qualifier+"::")) {
			name = v.Qualifier + "::" + name
		}
		ins.Text = name
		if end >= len(doc) || doc[end] != '(' {
			ins.Text += "()"
		}
		if len(v.Decl.ValueParams()) > 0 {
			ins.Caret = start + len(name) + 1
			ins.TriggerHints = true
		} else {
			ins.Caret = start + len(name) + 2
		}
	default:
		ins.Text = v.Label
		ins.Caret = start + len(ins.Text)
	}
	return ins
}

// structLiteral renders Name { a: (), b: () } and returns the caret offset
// inside the first placeholder. Literals with more than two fields are
// spread over lines.
func structLiteral(idx *resolve.Index, v Variant, indent string) (string, int) {
	fields := idx.Fields(v.Decl)
	if len(fields) == 0 {
		return v.Name, len(v.Name)
	}
	var sb strings.Builder
	sb.WriteString(v.Name)
	sb.WriteString(" {")
	multiline := len(fields) > 2
	caret := -1
	for i, f := range fields {
		if multiline {
			sb.WriteString("\n" + indent + indentUnit)
		} else {
			sb.WriteString(" ")
		}
		sb.WriteString(f.Name)
		sb.WriteString(": (")
		if caret < 0 {
			caret = sb.Len()
		}
		sb.WriteString(")")
		if i < len(fields)-1 {
			sb.WriteString(",")
		}
	}
	if multiline {
		sb.WriteString("\n" + indent + "}")
	} else {
		sb.WriteString(" }")
	}
	return sb.String(), caret
}

// lineIndent returns the leading whitespace of the line containing offset.
func lineIndent(doc []byte, offset int) string {
	start := bytes.LastIndexByte(doc[:offset], '\n') + 1
	end := start
	for end < len(doc) && (doc[end] == ' ' || doc[end] == '\t') {
		end++
	}
	return string(doc[start:end])
}
