package server

import (
	"errors"
	"fmt"

	"github.com/goplus/rslsw/internal/util"
	"github.com/goplus/rslsw/rust/syntax"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// diagnosticSource names the server in published diagnostics.
const diagnosticSource = "rslsw"

// getDiagnostics returns the syntax error diagnostics of path.
func (s *Server) getDiagnostics(path string) ([]protocol.Diagnostic, error) {
	f, err := s.proj.SyntaxFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get syntax file %s: %w", path, err)
	}

	diagnostics := []protocol.Diagnostic{}
	for _, err := range f.Errors {
		var synErr *syntax.Error
		if !errors.As(err, &synErr) {
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Severity: util.ToPtr(protocol.DiagnosticSeverityError),
				Source:   util.ToPtr(diagnosticSource),
				Message:  s.translate(err.Error()),
			})
			continue
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    rangeForSpan(f, synErr.Start, synErr.End),
			Severity: util.ToPtr(protocol.DiagnosticSeverityError),
			Source:   util.ToPtr(diagnosticSource),
			Message:  s.translate(synErr.Msg),
		})
	}
	return diagnostics, nil
}

// publishDiagnostics sends the diagnostics of uri to the client.
func (s *Server) publishDiagnostics(uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	s.notifyClient(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}
