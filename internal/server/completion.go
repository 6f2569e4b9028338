package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goplus/rslsw/ide/completion"
	"github.com/goplus/rslsw/internal/logger"
	"github.com/goplus/rslsw/internal/util"
	"github.com/goplus/rslsw/rust/resolve"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// triggerParameterHints is the client command opening the parameter hint
// popup.
const triggerParameterHints = "editor.action.triggerParameterHints"

// textDocumentCompletion runs smart completion at the requested position.
// Candidates are listed in collection order. A list cut by the item limit
// or by the collection timeout is marked incomplete.
func (s *Server) textDocumentCompletion(params *protocol.CompletionParams) (any, error) {
	path, err := s.fromDocumentURI(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	file, ok := s.proj.File(path)
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	content := file.Content
	offset := positionOffset(content, params.Position)

	ctx, cancel := s.requestContext()
	defer cancel()
	res, err := completion.Complete(ctx, path, content, offset)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Debugw("completion timed out", "path", path)
			return &protocol.CompletionList{IsIncomplete: true, Items: []protocol.CompletionItem{}}, nil
		}
		return nil, err
	}

	list := &protocol.CompletionList{Items: []protocol.CompletionItem{}}
	maxItems := s.Options().Completion.MaxItems
	for i, v := range res.Variants {
		if maxItems > 0 && i >= maxItems {
			list.IsIncomplete = true
			break
		}
		ins := completion.AfterInsert(res.Index, v, content, res.Start, res.End)
		list.Items = append(list.Items, completionItem(v, ins, content, i))
	}
	return list, nil
}

// completionItem converts a candidate and its insertion into an LSP item.
func completionItem(v completion.Variant, ins completion.Insertion, content []byte, rank int) protocol.CompletionItem {
	item := protocol.CompletionItem{
		Label:      v.Label,
		Kind:       util.ToPtr(completionItemKind(v.Decl)),
		SortText:   util.ToPtr(fmt.Sprintf("%04d", rank)),
		FilterText: util.ToPtr(v.Name),
	}
	if v.Type != nil {
		item.Detail = util.ToPtr(v.Type.String() + v.Detail)
	} else if v.Detail != "" {
		item.Detail = util.ToPtr(strings.TrimSpace(v.Detail))
	}

	newText := ins.Text
	if c := ins.CaretInText(); c >= 0 && c < len(ins.Text) {
		newText = escapeSnippet(ins.Text[:c]) + "$0" + escapeSnippet(ins.Text[c:])
		item.InsertTextFormat = util.ToPtr(protocol.InsertTextFormatSnippet)
	}
	item.TextEdit = protocol.TextEdit{
		Range: protocol.Range{
			Start: offsetPosition(content, ins.Start),
			End:   offsetPosition(content, ins.End),
		},
		NewText: newText,
	}
	if ins.TriggerHints {
		item.Command = &protocol.Command{
			Title:   "Trigger parameter hints",
			Command: triggerParameterHints,
		}
	}
	return item
}

// completionItemKind returns the LSP item kind of a declaration.
func completionItemKind(d *resolve.Decl) protocol.CompletionItemKind {
	if d == nil {
		return protocol.CompletionItemKindText
	}
	switch d.Kind {
	case resolve.Const, resolve.Static:
		return protocol.CompletionItemKindConstant
	case resolve.Struct:
		return protocol.CompletionItemKindStruct
	case resolve.Function:
		if d.SelfParam() != nil {
			return protocol.CompletionItemKindMethod
		}
		return protocol.CompletionItemKindFunction
	}
	return protocol.CompletionItemKindVariable
}

var snippetEscaper = strings.NewReplacer(`\`, `\\`, `$`, `\$`, `}`, `\}`)

// escapeSnippet escapes text for use in a snippet.
func escapeSnippet(text string) string {
	return snippetEscaper.Replace(text)
}
