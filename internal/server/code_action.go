package server

import (
	"errors"
	"fmt"
	"slices"

	"github.com/goplus/rslsw/ide/inline"
	"github.com/goplus/rslsw/internal/util"
	"github.com/goplus/rslsw/rust/syntax"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentCodeAction offers the inline-variable refactoring for the
// variable at the start of the requested range. Invoked on a reference of
// a variable used more than once, it also offers to inline that reference
// only. Refused refactorings are offered disabled with the reason. Nothing
// is offered for a range touching a syntax error.
func (s *Server) textDocumentCodeAction(params *protocol.CodeActionParams) (any, error) {
	if len(params.Context.Only) > 0 && !slices.ContainsFunc(params.Context.Only, func(k protocol.CodeActionKind) bool {
		return k == protocol.CodeActionKindRefactor || k == protocol.CodeActionKindRefactorInline
	}) {
		return nil, nil
	}

	_, idx, err := s.indexFor(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	if overlapsSyntaxError(idx.File, params.Range) {
		return nil, nil
	}
	ctx, cancel := s.requestContext()
	defer cancel()

	kind := protocol.CodeActionKindRefactorInline
	plan, err := inline.Prepare(ctx, idx, fileOffset(idx.File, params.Range.Start))
	if err != nil {
		if errors.Is(err, inline.ErrNotApplicable) {
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		action := protocol.CodeAction{
			Title: s.translate("Inline variable"),
			Kind:  &kind,
		}
		action.Disabled = &struct {
			Reason string `json:"reason"`
		}{Reason: s.translate(inline.Message(err))}
		return []protocol.CodeAction{action}, nil
	}

	opts := s.Options().Inline
	name := plan.Target.Decl.Name
	newAction := func(title string, thisOnly, keepDeclaration bool) protocol.CodeAction {
		title = s.translate(title)
		return protocol.CodeAction{
			Title: title,
			Kind:  &kind,
			Command: &protocol.Command{
				Title:   title,
				Command: CommandInlineVariable,
				Arguments: []any{InlineVariableParams{
					TextDocument:    params.TextDocument,
					Position:        params.Range.Start,
					ThisOnly:        thisOnly,
					KeepDeclaration: keepDeclaration,
				}},
			},
		}
	}

	invoked := plan.Target.Invoked != nil
	preferred := newAction(plan.Title(), opts.ThisOnly && invoked, opts.KeepDeclaration)
	preferred.IsPreferred = util.ToPtr(true)
	actions := []protocol.CodeAction{preferred}
	if invoked && plan.Occurrences() > 1 && !opts.ThisOnly {
		actions = append(actions, newAction(fmt.Sprintf("Inline this occurrence of variable '%s'", name), true, false))
	}
	if !opts.KeepDeclaration {
		actions = append(actions, newAction(fmt.Sprintf("Inline variable '%s' and keep the declaration", name), false, true))
	}
	return actions, nil
}

// overlapsSyntaxError reports whether r overlaps a syntax error of f.
func overlapsSyntaxError(f *syntax.File, r protocol.Range) bool {
	for _, err := range f.Errors {
		var synErr *syntax.Error
		if errors.As(err, &synErr) && rangesOverlap(rangeForSpan(f, synErr.Start, synErr.End), r) {
			return true
		}
	}
	return false
}
