package server

import (
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/goplus/rslsw/internal/util"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const inlineSrc = "fn main() {\n    let a = 5;\n    let b = a;\n    let c = a + 1;\n}\n"

// applyTextEdits applies non-overlapping edits to content.
func applyTextEdits(content string, edits []protocol.TextEdit) string {
	edits = slices.Clone(edits)
	slices.SortFunc(edits, func(a, b protocol.TextEdit) int {
		return positionOffset([]byte(content), b.Range.Start) - positionOffset([]byte(content), a.Range.Start)
	})
	for _, e := range edits {
		start := positionOffset([]byte(content), e.Range.Start)
		end := positionOffset([]byte(content), e.Range.End)
		content = content[:start] + e.NewText + content[end:]
	}
	return content
}

// commandArgument returns v as the client sends it, decoded from JSON.
func commandArgument(t *testing.T, v any) any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var arg any
	require.NoError(t, json.Unmarshal(data, &arg))
	return arg
}

func codeActionsAt(t *testing.T, s *Server, src, needle string, only ...protocol.CodeActionKind) []protocol.CodeAction {
	t.Helper()
	pos := positionOf(t, src, needle, 0)
	res, err := s.textDocumentCodeAction(&protocol.CodeActionParams{
		TextDocument: textDocument(),
		Range:        protocol.Range{Start: pos, End: pos},
		Context:      protocol.CodeActionContext{Only: only},
	})
	require.NoError(t, err)
	if res == nil {
		return nil
	}
	actions, ok := res.([]protocol.CodeAction)
	require.True(t, ok)
	return actions
}

func actionTitles(actions []protocol.CodeAction) []string {
	var titles []string
	for _, a := range actions {
		titles = append(titles, a.Title)
	}
	return titles
}

func TestTextDocumentCodeAction(t *testing.T) {
	for _, tt := range []struct {
		name     string
		needle   string
		settings map[string]any
		want     []string
	}{
		{
			name:   "OnDeclaration",
			needle: "a = 5",
			want: []string{
				"Inline variable 'a' (2 occurrences)",
				"Inline variable 'a' and keep the declaration",
			},
		},
		{
			name:   "OnReference",
			needle: "a;",
			want: []string{
				"Inline variable 'a' (2 occurrences)",
				"Inline this occurrence of variable 'a'",
				"Inline variable 'a' and keep the declaration",
			},
		},
		{
			name:     "KeepDeclarationByDefault",
			needle:   "a;",
			settings: map[string]any{"inline": map[string]any{"keepDeclaration": true}},
			want: []string{
				"Inline variable 'a' (2 occurrences)",
				"Inline this occurrence of variable 'a'",
			},
		},
		{
			name:     "ThisOnlyByDefault",
			needle:   "a;",
			settings: map[string]any{"inline": map[string]any{"thisOnly": true}},
			want: []string{
				"Inline variable 'a' (2 occurrences)",
				"Inline variable 'a' and keep the declaration",
			},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, map[string]string{"main.rs": inlineSrc}, tt.settings)
			actions := codeActionsAt(t, s, inlineSrc, tt.needle)
			assert.Equal(t, tt.want, actionTitles(actions))

			require.NotEmpty(t, actions)
			assert.True(t, *actions[0].IsPreferred)
			for _, a := range actions {
				assert.Equal(t, protocol.CodeActionKindRefactorInline, *a.Kind)
				require.NotNil(t, a.Command)
				assert.Equal(t, CommandInlineVariable, a.Command.Command)
				require.Len(t, a.Command.Arguments, 1)
			}
		})
	}

	t.Run("ActionArguments", func(t *testing.T) {
		s, _ := newTestServer(t, map[string]string{"main.rs": inlineSrc}, nil)
		actions := codeActionsAt(t, s, inlineSrc, "a;")
		require.Len(t, actions, 3)
		var got [][2]bool
		for _, a := range actions {
			params := a.Command.Arguments[0].(InlineVariableParams)
			assert.Equal(t, positionOf(t, inlineSrc, "a;", 0), params.Position)
			got = append(got, [2]bool{params.ThisOnly, params.KeepDeclaration})
		}
		assert.Equal(t, [][2]bool{{false, false}, {true, false}, {false, true}}, got)
	})

	t.Run("Refused", func(t *testing.T) {
		src := "fn main() {\n    let a = 1;\n}\n"
		s, _ := newTestServer(t, map[string]string{"main.rs": src}, nil)
		actions := codeActionsAt(t, s, src, "a = 1")
		require.Len(t, actions, 1)
		assert.Equal(t, "Inline variable", actions[0].Title)
		require.NotNil(t, actions[0].Disabled)
		assert.Equal(t, "Variable 'a' is never used", actions[0].Disabled.Reason)
		assert.Nil(t, actions[0].Command)
	})

	t.Run("Translated", func(t *testing.T) {
		s, _ := newTestServer(t, map[string]string{"main.rs": inlineSrc}, nil)
		s.setLanguageFromLocale("zh-CN")
		actions := codeActionsAt(t, s, inlineSrc, "a = 5")
		assert.Equal(t, []string{"内联变量 'a' (2 处引用)", "内联变量 'a' 并保留声明"}, actionTitles(actions))
	})

	t.Run("NotApplicable", func(t *testing.T) {
		s, _ := newTestServer(t, map[string]string{"main.rs": inlineSrc}, nil)
		assert.Nil(t, codeActionsAt(t, s, inlineSrc, "main"))
		assert.Nil(t, codeActionsAt(t, s, inlineSrc, "5;"))
	})

	t.Run("OtherKindRequested", func(t *testing.T) {
		s, _ := newTestServer(t, map[string]string{"main.rs": inlineSrc}, nil)
		assert.Nil(t, codeActionsAt(t, s, inlineSrc, "a = 5", protocol.CodeActionKindQuickFix))
		assert.Len(t, codeActionsAt(t, s, inlineSrc, "a = 5", protocol.CodeActionKindRefactor), 2)
	})

	t.Run("SyntaxError", func(t *testing.T) {
		src := "fn main() {\n    let a = 5;\n    let b = a +;\n}\n"
		s, _ := newTestServer(t, map[string]string{"main.rs": src}, nil)
		res, err := s.textDocumentCodeAction(&protocol.CodeActionParams{
			TextDocument: textDocument(),
			Range: protocol.Range{
				Start: protocol.Position{Line: 2, Character: 0},
				End:   protocol.Position{Line: 3, Character: 0},
			},
		})
		require.NoError(t, err)
		assert.Nil(t, res)
	})
}

func TestWorkspaceExecuteCommand(t *testing.T) {
	execute := func(t *testing.T, s *Server, params InlineVariableParams) error {
		t.Helper()
		_, err := s.workspaceExecuteCommand(&protocol.ExecuteCommandParams{
			Command:   CommandInlineVariable,
			Arguments: []any{commandArgument(t, params)},
		})
		return err
	}
	appliedEdit := func(t *testing.T, client *mockClient) protocol.ApplyWorkspaceEditParams {
		t.Helper()
		require.Eventually(t, func() bool {
			return len(client.Calls(protocol.ServerWorkspaceApplyEdit)) == 1
		}, time.Second, 5*time.Millisecond)
		return client.Calls(protocol.ServerWorkspaceApplyEdit)[0].(protocol.ApplyWorkspaceEditParams)
	}

	for _, tt := range []struct {
		name   string
		needle string
		params InlineVariableParams
		want   string
	}{
		{
			name:   "All",
			needle: "a = 5",
			want:   "fn main() {\n    let b = 5;\n    let c = 5 + 1;\n}\n",
		},
		{
			name:   "ThisOnly",
			needle: "a + 1",
			params: InlineVariableParams{ThisOnly: true},
			want:   "fn main() {\n    let a = 5;\n    let b = a;\n    let c = 5 + 1;\n}\n",
		},
		{
			name:   "KeepDeclaration",
			needle: "a = 5",
			params: InlineVariableParams{KeepDeclaration: true},
			want:   "fn main() {\n    let a = 5;\n    let b = 5;\n    let c = 5 + 1;\n}\n",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s, client := newTestServer(t, map[string]string{"main.rs": inlineSrc}, nil)
			client.Reply = protocol.ApplyWorkspaceEditResponse{Applied: true}

			params := tt.params
			params.TextDocument = textDocument()
			params.Position = positionOf(t, inlineSrc, tt.needle, 0)
			require.NoError(t, execute(t, s, params))

			edit := appliedEdit(t, client)
			assert.Equal(t, "Inline variable 'a' (2 occurrences)", *edit.Label)
			require.Contains(t, edit.Edit.Changes, testURI)
			assert.Equal(t, tt.want, applyTextEdits(inlineSrc, edit.Edit.Changes[testURI]))

			f, _ := s.proj.File("main.rs")
			assert.Equal(t, inlineSrc, string(f.Content), "the client applies the edit")
		})
	}

	t.Run("VersionedDocumentChanges", func(t *testing.T) {
		documentChanges := func(t *testing.T, s *Server) {
			t.Helper()
			var params protocol.InitializeParams
			require.NoError(t, json.Unmarshal([]byte(`{"rootUri":"file:///ws","capabilities":{"workspace":{"workspaceEdit":{"documentChanges":true}}}}`), &params))
			_, err := s.initialize(&params)
			require.NoError(t, err)
		}
		documentEdit := func(t *testing.T, edit protocol.ApplyWorkspaceEditParams) protocol.TextDocumentEdit {
			t.Helper()
			assert.Empty(t, edit.Edit.Changes)
			require.Len(t, edit.Edit.DocumentChanges, 1)
			docEdit, ok := edit.Edit.DocumentChanges[0].(protocol.TextDocumentEdit)
			require.True(t, ok)
			assert.Equal(t, testURI, docEdit.TextDocument.URI)
			return docEdit
		}
		textEditsOf := func(docEdit protocol.TextDocumentEdit) []protocol.TextEdit {
			var edits []protocol.TextEdit
			for _, e := range docEdit.Edits {
				edits = append(edits, e.(protocol.TextEdit))
			}
			return edits
		}
		want := "fn main() {\n    let b = 5;\n    let c = 5 + 1;\n}\n"

		t.Run("OpenDocument", func(t *testing.T) {
			s, client := newTestServer(t, nil, nil)
			documentChanges(t, s)
			openDocument(t, s, inlineSrc)
			require.NoError(t, s.didSave(&protocol.DidSaveTextDocumentParams{
				TextDocument: textDocument(),
				Text:         util.ToPtr(inlineSrc),
			}))

			require.NoError(t, execute(t, s, InlineVariableParams{
				TextDocument: textDocument(),
				Position:     positionOf(t, inlineSrc, "a = 5", 0),
			}))
			docEdit := documentEdit(t, appliedEdit(t, client))
			require.NotNil(t, docEdit.TextDocument.Version)
			assert.Equal(t, protocol.Integer(1), *docEdit.TextDocument.Version)
			assert.Equal(t, want, applyTextEdits(inlineSrc, textEditsOf(docEdit)))
		})

		t.Run("ClosedDocument", func(t *testing.T) {
			s, client := newTestServer(t, map[string]string{"main.rs": inlineSrc}, nil)
			documentChanges(t, s)

			require.NoError(t, execute(t, s, InlineVariableParams{
				TextDocument: textDocument(),
				Position:     positionOf(t, inlineSrc, "a = 5", 0),
			}))
			docEdit := documentEdit(t, appliedEdit(t, client))
			assert.Nil(t, docEdit.TextDocument.Version, "disk content is the master")
			assert.Equal(t, want, applyTextEdits(inlineSrc, textEditsOf(docEdit)))
		})
	})

	t.Run("Refused", func(t *testing.T) {
		src := "fn main() {\n    let a = 1;\n}\n"
		s, client := newTestServer(t, map[string]string{"main.rs": src}, nil)
		before := testutil.ToFloat64(inlineFailures.WithLabelValues("never_used"))

		err := execute(t, s, InlineVariableParams{
			TextDocument: textDocument(),
			Position:     positionOf(t, src, "a = 1", 0),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Variable 'a' is never used")

		msgs := client.Notifications(protocol.ServerWindowShowMessage)
		require.Len(t, msgs, 1)
		msg := msgs[0].(protocol.ShowMessageParams)
		assert.Equal(t, protocol.MessageTypeError, msg.Type)
		assert.Equal(t, "Variable 'a' is never used", msg.Message)
		assert.Equal(t, before+1, testutil.ToFloat64(inlineFailures.WithLabelValues("never_used")))
		assert.Empty(t, client.Calls(protocol.ServerWorkspaceApplyEdit))
	})

	t.Run("RefusedTranslated", func(t *testing.T) {
		src := "fn main() {\n    let a = 1;\n}\n"
		s, client := newTestServer(t, map[string]string{"main.rs": src}, nil)
		s.setLanguageFromLocale("zh-CN")
		require.Error(t, execute(t, s, InlineVariableParams{
			TextDocument: textDocument(),
			Position:     positionOf(t, src, "a = 1", 0),
		}))
		msgs := client.Notifications(protocol.ServerWindowShowMessage)
		require.Len(t, msgs, 1)
		assert.Equal(t, "变量 'a' 从未被使用", msgs[0].(protocol.ShowMessageParams).Message)
	})

	t.Run("NotApplicable", func(t *testing.T) {
		s, client := newTestServer(t, map[string]string{"main.rs": inlineSrc}, nil)
		require.NoError(t, execute(t, s, InlineVariableParams{
			TextDocument: textDocument(),
			Position:     positionOf(t, inlineSrc, "main", 0),
		}))
		assert.Empty(t, client.Notifications(protocol.ServerWindowShowMessage))
		assert.Empty(t, client.Calls(protocol.ServerWorkspaceApplyEdit))
	})

	t.Run("ArgumentCount", func(t *testing.T) {
		s, _ := newTestServer(t, map[string]string{"main.rs": inlineSrc}, nil)
		_, err := s.workspaceExecuteCommand(&protocol.ExecuteCommandParams{Command: CommandInlineVariable})
		assert.Error(t, err)
	})

	t.Run("InvalidArgument", func(t *testing.T) {
		s, _ := newTestServer(t, map[string]string{"main.rs": inlineSrc}, nil)
		_, err := s.workspaceExecuteCommand(&protocol.ExecuteCommandParams{
			Command:   CommandInlineVariable,
			Arguments: []any{"not an object"},
		})
		assert.ErrorContains(t, err, "failed to unmarshal command argument")
	})

	t.Run("UnknownCommand", func(t *testing.T) {
		s, _ := newTestServer(t, nil, nil)
		_, err := s.workspaceExecuteCommand(&protocol.ExecuteCommandParams{Command: "rslsw.unknown"})
		assert.ErrorContains(t, err, "unknown command")
	})
}
