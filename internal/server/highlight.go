package server

import (
	"github.com/goplus/rslsw/ide/inline"
	"github.com/goplus/rslsw/internal/util"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDocumentHighlight highlights the declaration under the caret
// and its references. Assignments and binding declarations are writes.
func (s *Server) textDocumentDocumentHighlight(params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	_, idx, err := s.indexFor(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	occs := inline.Occurrences(idx, fileOffset(idx.File, params.Position))
	if len(occs) == 0 {
		return nil, nil
	}
	highlights := make([]protocol.DocumentHighlight, 0, len(occs))
	for _, occ := range occs {
		highlights = append(highlights, protocol.DocumentHighlight{
			Range: rangeForNode(idx.File, occ.Node),
			Kind:  util.ToPtr(documentHighlightKind(occ.Kind)),
		})
	}
	return highlights, nil
}

func documentHighlightKind(kind inline.OccurrenceKind) protocol.DocumentHighlightKind {
	switch kind {
	case inline.ReadOccurrence:
		return protocol.DocumentHighlightKindRead
	case inline.WriteOccurrence:
		return protocol.DocumentHighlightKindWrite
	}
	return protocol.DocumentHighlightKindText
}
