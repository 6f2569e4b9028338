package server

import (
	"github.com/goplus/rslsw/ide/hints"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentSignatureHelp shows the parameter hint of the innermost type
// argument list or call argument list around the caret. The hint of a
// generic item lists its type parameters with their bounds.
//
// A retriggered hint is hidden once the caret's enclosing list is no longer
// the one the popup was opened for.
func (s *Server) textDocumentSignatureHelp(params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	path, idx, err := s.indexFor(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	offset := fileOffset(idx.File, params.Position)

	policy := hints.Policy{ExpandSupertraits: s.Options().Hints.ExpandSupertraits}
	hint, ok := hints.Find(idx, offset, policy)
	if !ok {
		s.setHintSession(path, nil)
		return nil, nil
	}

	next := hints.SessionOf(path, hint.List)
	if params.Context != nil && params.Context.IsRetrigger {
		if prev, ok := s.hintSession(path); ok && hints.ShouldHide(prev, next) {
			s.setHintSession(path, nil)
			return nil, nil
		}
	}
	s.setHintSession(path, &next)

	return signatureHelp(hint), nil
}

// signatureHelp converts a hint into a single-signature help. Parameter
// labels are UTF-16 offset pairs into the signature label.
func signatureHelp(hint hints.Hint) *protocol.SignatureHelp {
	p := hint.Presentation
	info := protocol.SignatureInformation{
		Label:      p.Text,
		Parameters: []protocol.ParameterInformation{},
	}
	for i := range p.Len() {
		r := p.RangeOf(i)
		info.Parameters = append(info.Parameters, protocol.ParameterInformation{
			Label: [2]protocol.UInteger{
				protocol.UInteger(utf8OffsetToUTF16(p.Text, r.Start)),
				protocol.UInteger(utf8OffsetToUTF16(p.Text, r.End)),
			},
		})
	}

	// An out of range index highlights no parameter.
	active := protocol.UInteger(p.Len())
	if hint.Current >= 0 {
		active = protocol.UInteger(hint.Current)
	}
	activeSignature := protocol.UInteger(0)
	return &protocol.SignatureHelp{
		Signatures:      []protocol.SignatureInformation{info},
		ActiveSignature: &activeSignature,
		ActiveParameter: &active,
	}
}

func (s *Server) hintSession(path string) (hints.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.hintSessions[path]
	return session, ok
}

// setHintSession records the open hint session of path, or forgets it when
// session is nil.
func (s *Server) setHintSession(path string, session *hints.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session == nil {
		delete(s.hintSessions, path)
		return
	}
	s.hintSessions[path] = *session
}
