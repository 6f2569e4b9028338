package server

import (
	"fmt"
	"strings"

	"github.com/goplus/rslsw/rust/resolve"
	"github.com/goplus/rslsw/rust/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentHover shows the declaration of the name under the caret.
func (s *Server) textDocumentHover(params *protocol.HoverParams) (*protocol.Hover, error) {
	_, idx, err := s.indexFor(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	ident := idx.File.IdentAt(fileOffset(idx.File, params.Position))
	if ident == nil {
		return nil, nil
	}
	d := idx.Resolve(ident)
	if d == nil {
		return nil, nil
	}

	r := rangeForNode(idx.File, ident)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: "```rust\n" + declSignature(idx, d) + "\n```",
		},
		Range: &r,
	}, nil
}

// declSignature renders the declaration of d in one line.
func declSignature(idx *resolve.Index, d *resolve.Decl) string {
	switch d.Kind {
	case resolve.Local:
		return withType("let "+d.Name, idx.DeclType(d))
	case resolve.Param, resolve.Field:
		return withType(d.Name, idx.DeclType(d))
	case resolve.Function:
		header := d.Node
		end := header.End
		if body := header.ChildByField("body"); body != nil {
			end = body.Start
		}
		text := string(idx.File.Content[header.Start:end])
		text = strings.Join(strings.Fields(text), " ")
		if owner := idx.OwnerName(d); owner != "" {
			if d.Owner.Kind == "trait_item" {
				return "trait " + owner + "\n" + text
			}
			return "impl " + owner + "\n" + text
		}
		return text
	case resolve.Const, resolve.Static:
		return withType(fmt.Sprintf("%s %s", d.Kind, d.Name), idx.DeclType(d))
	}
	return fmt.Sprintf("%s %s", d.Kind, d.Name)
}

func withType(text string, t types.Type) string {
	if !types.IsKnown(t) {
		return text
	}
	return text + ": " + t.String()
}
