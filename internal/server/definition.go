package server

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDefinition returns the declaring token of the name under the
// caret.
func (s *Server) textDocumentDefinition(params *protocol.DefinitionParams) (any, error) {
	_, idx, err := s.indexFor(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	d := idx.Resolve(idx.File.IdentAt(fileOffset(idx.File, params.Position)))
	if d == nil || d.Ident == nil {
		return nil, nil
	}
	return protocol.Location{
		URI:   params.TextDocument.URI,
		Range: rangeForNode(idx.File, d.Ident),
	}, nil
}
