package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goplus/rslsw/ide/inline"
	"github.com/goplus/rslsw/internal/logger"
	"github.com/goplus/rslsw/internal/util"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// InlineVariableParams are the arguments of [CommandInlineVariable].
type InlineVariableParams struct {
	TextDocument    protocol.TextDocumentIdentifier `json:"textDocument"`
	Position        protocol.Position               `json:"position"`
	ThisOnly        bool                            `json:"thisOnly,omitempty"`
	KeepDeclaration bool                            `json:"keepDeclaration,omitempty"`
}

// workspaceExecuteCommand handles the workspace/executeCommand request.
func (s *Server) workspaceExecuteCommand(params *protocol.ExecuteCommandParams) (any, error) {
	switch params.Command {
	case CommandInlineVariable:
		var cmdParams []InlineVariableParams
		for _, arg := range params.Arguments {
			var cmdParam InlineVariableParams
			if err := decodeArgument(arg, &cmdParam); err != nil {
				return nil, fmt.Errorf("failed to unmarshal command argument as InlineVariableParams: %w", err)
			}
			cmdParams = append(cmdParams, cmdParam)
		}
		if len(cmdParams) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", CommandInlineVariable, len(cmdParams))
		}
		return nil, s.inlineVariable(cmdParams[0])
	}
	return nil, fmt.Errorf("unknown command: %s", params.Command)
}

// decodeArgument decodes a command argument, which arrives as generic JSON.
func decodeArgument(arg any, v any) error {
	data, err := json.Marshal(arg)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// inlineVariable computes the inline-variable edit and asks the client to
// apply it.
func (s *Server) inlineVariable(params InlineVariableParams) error {
	title, wsEdit, err := s.inlineVariableEdit(params)
	if err != nil {
		return s.inlineFailure(err)
	}
	client := s.getClient()
	if client == nil {
		return errors.New("no client to apply the edit")
	}

	// The request is answered before the client replies to applyEdit.
	go func() {
		var resp protocol.ApplyWorkspaceEditResponse
		client.Call(protocol.ServerWorkspaceApplyEdit, protocol.ApplyWorkspaceEditParams{
			Label: util.ToPtr(title),
			Edit:  *wsEdit,
		}, &resp)
		if !resp.Applied {
			logger.Warnw("client did not apply inline edit",
				"uri", params.TextDocument.URI,
				"reason", util.FromPtr(resp.FailureReason))
		}
	}()
	return nil
}

// inlineVariableEdit plans and applies the inline refactoring for params
// and returns its translated title and workspace edit.
func (s *Server) inlineVariableEdit(params InlineVariableParams) (string, *protocol.WorkspaceEdit, error) {
	path, err := s.fromDocumentURI(params.TextDocument.URI)
	if err != nil {
		return "", nil, err
	}
	// The version is read before indexing so that a later change makes
	// the client reject the edit instead of applying it to newer text.
	version := 0
	if f, ok := s.proj.File(path); ok {
		version = f.Version
	}
	_, idx, err := s.indexFor(params.TextDocument.URI)
	if err != nil {
		return "", nil, err
	}
	ctx, cancel := s.requestContext()
	defer cancel()

	plan, err := inline.Prepare(ctx, idx, fileOffset(idx.File, params.Position))
	if err != nil {
		return "", nil, err
	}
	script, err := plan.Apply(ctx, inline.Options{
		ThisOnly:        params.ThisOnly,
		KeepDeclaration: params.KeepDeclaration,
	})
	if err != nil {
		return "", nil, err
	}
	wsEdit := s.documentEdit(params.TextDocument.URI, path, version, textEdits(idx.File, script))
	return s.translate(plan.Title()), wsEdit, nil
}

// documentEdit returns a workspace edit of a single document. When the
// client accepts document changes, the edit targets version of an open
// document, or the content on disk of a closed one.
func (s *Server) documentEdit(uri protocol.DocumentUri, path string, version int, edits []protocol.TextEdit) *protocol.WorkspaceEdit {
	s.mu.RLock()
	versioned := s.versionedEdits
	s.mu.RUnlock()
	if !versioned {
		return &protocol.WorkspaceEdit{
			Changes: map[protocol.DocumentUri][]protocol.TextEdit{uri: edits},
		}
	}

	doc := protocol.OptionalVersionedTextDocumentIdentifier{
		TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
	}
	if s.isOpen(path) {
		doc.Version = util.ToPtr(protocol.Integer(version))
	}
	anyEdits := make([]any, len(edits))
	for i, e := range edits {
		anyEdits[i] = e
	}
	return &protocol.WorkspaceEdit{
		DocumentChanges: []any{protocol.TextDocumentEdit{
			TextDocument: doc,
			Edits:        anyEdits,
		}},
	}
}

// inlineFailure classifies a failed inline request. A request that does
// not apply is answered with no result. Refused refactorings are reported
// to the user.
func (s *Server) inlineFailure(err error) error {
	switch {
	case errors.Is(err, inline.ErrNotApplicable):
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	recordInlineFailure(err)
	msg := s.translate(inline.Message(err))
	s.notifyClient(protocol.ServerWindowShowMessage, protocol.ShowMessageParams{
		Type:    protocol.MessageTypeError,
		Message: msg,
	})
	return fmt.Errorf("inline variable: %s", msg)
}
