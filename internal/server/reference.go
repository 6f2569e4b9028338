package server

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentReferences lists the references of the declaration under
// the caret within its file.
func (s *Server) textDocumentReferences(params *protocol.ReferenceParams) ([]protocol.Location, error) {
	_, idx, err := s.indexFor(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	d := idx.Resolve(idx.File.IdentAt(fileOffset(idx.File, params.Position)))
	if d == nil {
		return nil, nil
	}

	uri := params.TextDocument.URI
	var locations []protocol.Location
	if params.Context.IncludeDeclaration && d.Ident != nil {
		locations = append(locations, protocol.Location{
			URI:   uri,
			Range: rangeForNode(idx.File, d.Ident),
		})
	}
	for _, ref := range idx.References(d) {
		locations = append(locations, protocol.Location{
			URI:   uri,
			Range: rangeForNode(idx.File, ref),
		})
	}
	return locations, nil
}
