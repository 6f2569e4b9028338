package server

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/goplus/rslsw/rust/resolve"
	"github.com/goplus/rslsw/rust/syntax"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// keywords are the reserved words a binding cannot be renamed to.
var keywords = []string{
	"as", "async", "await", "break", "const", "continue", "crate", "dyn",
	"else", "enum", "extern", "false", "fn", "for", "if", "impl", "in",
	"let", "loop", "match", "mod", "move", "mut", "pub", "ref", "return",
	"self", "Self", "static", "struct", "super", "trait", "true", "type",
	"unsafe", "use", "where", "while", "_",
}

// renameTarget returns the local binding under the caret, or nil.
func renameTarget(idx *resolve.Index, position protocol.Position) (*resolve.Decl, *syntax.Node) {
	ident := idx.File.IdentAt(fileOffset(idx.File, position))
	if ident == nil {
		return nil, nil
	}
	d := idx.Resolve(ident)
	if d == nil || !d.IsBinding() || d.Name == "self" {
		return nil, nil
	}
	return d, ident
}

// textDocumentPrepareRename reports whether the caret is on a local
// variable or parameter and returns the range to rename.
func (s *Server) textDocumentPrepareRename(params *protocol.PrepareRenameParams) (any, error) {
	_, idx, err := s.indexFor(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	d, ident := renameTarget(idx, params.Position)
	if d == nil {
		return nil, nil
	}
	return protocol.RangeWithPlaceholder{
		Range:       rangeForNode(idx.File, ident),
		Placeholder: d.Name,
	}, nil
}

// textDocumentRename renames a local variable or parameter and all its
// references. A shorthand field initializer or pattern keeps its field
// name.
func (s *Server) textDocumentRename(params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	if !identPattern.MatchString(params.NewName) || slices.Contains(keywords, params.NewName) {
		return nil, fmt.Errorf("invalid name: %q", params.NewName)
	}
	_, idx, err := s.indexFor(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	d, _ := renameTarget(idx, params.Position)
	if d == nil {
		return nil, fmt.Errorf("only local variables and parameters can be renamed")
	}

	nodes := append([]*syntax.Node{d.Ident}, idx.References(d)...)
	edits := make([]protocol.TextEdit, 0, len(nodes))
	for _, n := range nodes {
		newText := params.NewName
		if n.Kind == "shorthand_field_identifier" || (n.Parent != nil && n.Parent.Kind == "shorthand_field_initializer") {
			newText = d.Name + ": " + params.NewName
		}
		edits = append(edits, protocol.TextEdit{
			Range:   rangeForNode(idx.File, n),
			NewText: newText,
		})
	}
	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{
			params.TextDocument.URI: edits,
		},
	}, nil
}
