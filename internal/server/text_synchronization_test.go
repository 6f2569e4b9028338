package server

import (
	"testing"
	"time"

	"github.com/goplus/rslsw/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// diagnosticsOf waits for a diagnostics notification for uri and returns
// the latest one.
func diagnosticsOf(t *testing.T, client *mockClient, uri protocol.DocumentUri, count int) []protocol.Diagnostic {
	t.Helper()
	var found []protocol.PublishDiagnosticsParams
	require.Eventually(t, func() bool {
		found = found[:0]
		for _, p := range client.Notifications(protocol.ServerTextDocumentPublishDiagnostics) {
			if params := p.(protocol.PublishDiagnosticsParams); params.URI == uri {
				found = append(found, params)
			}
		}
		return len(found) >= count
	}, time.Second, 5*time.Millisecond)
	return found[len(found)-1].Diagnostics
}

func openDocument(t *testing.T, s *Server, text string) {
	t.Helper()
	require.NoError(t, s.didOpen(&protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        testURI,
			LanguageID: "rust",
			Version:    1,
			Text:       text,
		},
	}))
}

func TestDidOpen(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		s, client := newTestServer(t, nil, nil)
		openDocument(t, s, "fn main() {}\n")

		f, ok := s.proj.File("main.rs")
		require.True(t, ok)
		assert.Equal(t, "fn main() {}\n", string(f.Content))
		assert.Equal(t, 1, f.Version)
		assert.True(t, s.isOpen("main.rs"))
		assert.Empty(t, diagnosticsOf(t, client, testURI, 1))
	})

	t.Run("SyntaxError", func(t *testing.T) {
		s, client := newTestServer(t, nil, nil)
		openDocument(t, s, "fn main() {\n    let a = ;\n}\n")

		diags := diagnosticsOf(t, client, testURI, 1)
		require.NotEmpty(t, diags)
		assert.Equal(t, protocol.DiagnosticSeverityError, util.FromPtr(diags[0].Severity))
		assert.Equal(t, diagnosticSource, util.FromPtr(diags[0].Source))
		assert.Equal(t, protocol.UInteger(1), diags[0].Range.Start.Line)
	})

	t.Run("InvalidURI", func(t *testing.T) {
		s, _ := newTestServer(t, nil, nil)
		err := s.didOpen(&protocol.DidOpenTextDocumentParams{
			TextDocument: protocol.TextDocumentItem{URI: "untitled:1", Text: ""},
		})
		assert.Error(t, err)
	})
}

func TestDidChange(t *testing.T) {
	const src = "fn main() {\n    let a = 1;\n}\n"

	for _, tt := range []struct {
		name    string
		changes []any
		want    string
	}{
		{
			name: "Whole",
			changes: []any{
				protocol.TextDocumentContentChangeEventWhole{Text: "fn f() {}\n"},
			},
			want: "fn f() {}\n",
		},
		{
			name: "Incremental",
			changes: []any{
				protocol.TextDocumentContentChangeEvent{
					Range: &protocol.Range{
						Start: protocol.Position{Line: 1, Character: 12},
						End:   protocol.Position{Line: 1, Character: 13},
					},
					Text: "42",
				},
			},
			want: "fn main() {\n    let a = 42;\n}\n",
		},
		{
			name: "IncrementalInOrder",
			changes: []any{
				protocol.TextDocumentContentChangeEvent{
					Range: &protocol.Range{
						Start: protocol.Position{Line: 1, Character: 8},
						End:   protocol.Position{Line: 1, Character: 9},
					},
					Text: "value",
				},
				protocol.TextDocumentContentChangeEvent{
					Range: &protocol.Range{
						Start: protocol.Position{Line: 1, Character: 16},
						End:   protocol.Position{Line: 1, Character: 17},
					},
					Text: "2",
				},
			},
			want: "fn main() {\n    let value = 2;\n}\n",
		},
		{
			name: "WholeThenIncremental",
			changes: []any{
				protocol.TextDocumentContentChangeEventWhole{Text: "fn f() {}\n"},
				protocol.TextDocumentContentChangeEvent{
					Range: &protocol.Range{
						Start: protocol.Position{Line: 0, Character: 3},
						End:   protocol.Position{Line: 0, Character: 4},
					},
					Text: "g",
				},
			},
			want: "fn g() {}\n",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, nil, nil)
			openDocument(t, s, src)

			require.NoError(t, s.didChange(&protocol.DidChangeTextDocumentParams{
				TextDocument: protocol.VersionedTextDocumentIdentifier{
					TextDocumentIdentifier: textDocument(),
					Version:                2,
				},
				ContentChanges: tt.changes,
			}))
			f, ok := s.proj.File("main.rs")
			require.True(t, ok)
			assert.Equal(t, tt.want, string(f.Content))
			assert.Equal(t, 2, f.Version)
		})
	}

	t.Run("NoChanges", func(t *testing.T) {
		s, _ := newTestServer(t, nil, nil)
		openDocument(t, s, src)
		err := s.didChange(&protocol.DidChangeTextDocumentParams{
			TextDocument: protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: textDocument()},
		})
		assert.Error(t, err)
	})

	t.Run("UnknownFile", func(t *testing.T) {
		s, _ := newTestServer(t, nil, nil)
		err := s.didChange(&protocol.DidChangeTextDocumentParams{
			TextDocument: protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: textDocument()},
			ContentChanges: []any{
				protocol.TextDocumentContentChangeEvent{Range: &protocol.Range{}, Text: "x"},
			},
		})
		assert.Error(t, err)
	})
}

func TestDidSave(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)
	openDocument(t, s, "fn main() {}\n")

	require.NoError(t, s.didSave(&protocol.DidSaveTextDocumentParams{TextDocument: textDocument()}))
	f, _ := s.proj.File("main.rs")
	assert.Equal(t, "fn main() {}\n", string(f.Content))

	require.NoError(t, s.didSave(&protocol.DidSaveTextDocumentParams{
		TextDocument: textDocument(),
		Text:         util.ToPtr("fn saved() {}\n"),
	}))
	f, _ = s.proj.File("main.rs")
	assert.Equal(t, "fn saved() {}\n", string(f.Content))
	assert.Equal(t, 1, f.Version, "saving keeps the document version")
}

func TestDidClose(t *testing.T) {
	s, client := newTestServer(t, nil, nil)
	openDocument(t, s, "fn main() {\n    let a = ;\n}\n")
	require.NotEmpty(t, diagnosticsOf(t, client, testURI, 1))

	require.NoError(t, s.didClose(&protocol.DidCloseTextDocumentParams{TextDocument: textDocument()}))
	assert.False(t, s.isOpen("main.rs"))
	assert.Empty(t, diagnosticsOf(t, client, testURI, 2))

	_, ok := s.proj.File("main.rs")
	assert.True(t, ok, "closed documents stay in the project")
}

func TestModifyFiles(t *testing.T) {
	s, _ := newTestServer(t, map[string]string{"lib.rs": "fn disk() {}\n"}, nil)

	for _, tt := range []struct {
		name    string
		change  FileChange
		want    string
		version int
	}{
		{"ReplacesDiskFile", FileChange{Path: "lib.rs", Content: []byte("fn v2() {}\n"), Version: 2}, "fn v2() {}\n", 2},
		{"IgnoresOlderVersion", FileChange{Path: "lib.rs", Content: []byte("fn v1() {}\n"), Version: 1}, "fn v2() {}\n", 2},
		{"IgnoresSameVersion", FileChange{Path: "lib.rs", Content: []byte("fn same() {}\n"), Version: 2}, "fn v2() {}\n", 2},
		{"AcceptsNewerVersion", FileChange{Path: "lib.rs", Content: []byte("fn v3() {}\n"), Version: 3}, "fn v3() {}\n", 3},
		{"CreatesFile", FileChange{Path: "new.rs", Content: []byte("fn n() {}\n"), Version: 1}, "fn n() {}\n", 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s.ModifyFiles([]FileChange{tt.change})
			f, ok := s.proj.File(tt.change.Path)
			require.True(t, ok)
			assert.Equal(t, tt.want, string(f.Content))
			assert.Equal(t, tt.version, f.Version)
		})
	}
}
