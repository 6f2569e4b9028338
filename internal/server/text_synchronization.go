package server

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goplus/rslsw/internal/logger"
	"github.com/goplus/rslsw/rust"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// FileChange is a new version of a project file.
type FileChange struct {
	Path    string
	Content []byte
	Version int
}

// didOpen handles the textDocument/didOpen notification. The document
// becomes owned by the client until it is closed.
func (s *Server) didOpen(params *protocol.DidOpenTextDocumentParams) error {
	path, err := s.fromDocumentURI(params.TextDocument.URI)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.openFiles[path] = true
	s.mu.Unlock()

	return s.didModifyFile([]FileChange{{
		Path:    path,
		Content: []byte(params.TextDocument.Text),
		Version: int(params.TextDocument.Version),
	}})
}

// didChange handles the textDocument/didChange notification. Changes are
// applied in order; a change without a range replaces the whole document.
func (s *Server) didChange(params *protocol.DidChangeTextDocumentParams) error {
	path, err := s.fromDocumentURI(params.TextDocument.URI)
	if err != nil {
		return err
	}

	content, err := s.changedText(path, params.ContentChanges)
	if err != nil {
		return err
	}

	return s.didModifyFile([]FileChange{{
		Path:    path,
		Content: content,
		Version: int(params.TextDocument.Version),
	}})
}

// didSave handles the textDocument/didSave notification. The project is
// only updated when the client includes the document text.
func (s *Server) didSave(params *protocol.DidSaveTextDocumentParams) error {
	if params.Text == nil {
		return nil
	}
	path, err := s.fromDocumentURI(params.TextDocument.URI)
	if err != nil {
		return err
	}

	// Save notifications carry no version. The saved text keeps the version
	// of the document so that edits sent to the client still match it.
	change := FileChange{Path: path, Content: []byte(*params.Text)}
	if old, ok := s.proj.File(path); ok {
		change.Version = old.Version
	}
	s.proj.PutFile(path, &rust.File{Content: change.Content, Version: change.Version})
	s.publishDiagnosticsOf([]FileChange{change})
	return nil
}

// didClose handles the textDocument/didClose notification. The document
// is handed back to the workspace watcher and its diagnostics are cleared.
func (s *Server) didClose(params *protocol.DidCloseTextDocumentParams) error {
	path, err := s.fromDocumentURI(params.TextDocument.URI)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.openFiles, path)
	delete(s.hintSessions, path)
	s.mu.Unlock()

	s.publishDiagnostics(params.TextDocument.URI, []protocol.Diagnostic{})
	return nil
}

// isOpen reports whether path is open in the client.
func (s *Server) isOpen(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openFiles[path]
}

// didModifyFile updates the project synchronously and publishes the
// diagnostics of the changed files asynchronously.
func (s *Server) didModifyFile(changes []FileChange) error {
	s.ModifyFiles(changes)
	s.publishDiagnosticsOf(changes)
	return nil
}

// publishDiagnosticsOf publishes the diagnostics of the changed files
// asynchronously.
func (s *Server) publishDiagnosticsOf(changes []FileChange) {
	go func() {
		for _, change := range changes {
			diagnostics, err := s.getDiagnostics(change.Path)
			if err != nil {
				logger.Warnw("failed to get diagnostics", "path", change.Path, "error", err)
				continue
			}
			s.publishDiagnostics(s.toDocumentURI(change.Path), diagnostics)
		}
	}()
}

// ModifyFiles puts changed files into the project. An existing file is
// only replaced by a newer version.
func (s *Server) ModifyFiles(changes []FileChange) {
	for _, change := range changes {
		file := &rust.File{
			Content: change.Content,
			Version: change.Version,
		}
		if old, ok := s.proj.File(change.Path); ok && change.Version <= old.Version && old.Version != 0 {
			continue
		}
		s.proj.PutFile(change.Path, file)
	}
}

// changedText returns the document content after applying changes.
func (s *Server) changedText(path string, changes []any) ([]byte, error) {
	if len(changes) == 0 {
		return nil, errors.New("no content changes provided")
	}

	// A full content change is accepted even though incremental changes are
	// expected.
	if len(changes) == 1 {
		if whole, ok := changes[0].(protocol.TextDocumentContentChangeEventWhole); ok {
			return []byte(whole.Text), nil
		}
	}
	return s.applyIncrementalChanges(path, changes)
}

// applyIncrementalChanges applies changes in order to the current content
// of path.
func (s *Server) applyIncrementalChanges(path string, changes []any) ([]byte, error) {
	file, ok := s.proj.File(path)
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	content := file.Content
	for _, change := range changes {
		switch change := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = []byte(change.Text)
		case protocol.TextDocumentContentChangeEvent:
			if change.Range == nil {
				content = []byte(change.Text)
				continue
			}
			start := positionOffset(content, change.Range.Start)
			end := positionOffset(content, change.Range.End)
			if end < start {
				return nil, fmt.Errorf("invalid range for content change: %v", *change.Range)
			}

			var buf bytes.Buffer
			buf.Grow(len(content) - (end - start) + len(change.Text))
			buf.Write(content[:start])
			buf.WriteString(change.Text)
			buf.Write(content[end:])
			content = buf.Bytes()
		default:
			return nil, fmt.Errorf("unexpected content change type %T", change)
		}
	}
	return content, nil
}
