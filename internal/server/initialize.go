package server

import (
	"context"
	"fmt"
	"net/url"

	"github.com/goplus/rslsw/i18n"
	"github.com/goplus/rslsw/internal/config"
	"github.com/goplus/rslsw/internal/logger"
	"github.com/goplus/rslsw/internal/util"
	"github.com/goplus/rslsw/internal/workspace"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Commands executed through workspace/executeCommand.
const (
	CommandInlineVariable = "rslsw.inlineVariable"
)

// initialize handles the initialize request: it records the workspace
// root, applies the client's initializationOptions and sets the language
// of user-visible messages from the client locale.
func (s *Server) initialize(params *protocol.InitializeParams) (any, error) {
	if params.Locale != nil {
		s.setLanguageFromLocale(*params.Locale)
	}

	root, rootURI := "", protocol.DocumentUri("")
	switch {
	case params.RootURI != nil && *params.RootURI != "":
		u, err := url.Parse(*params.RootURI)
		if err != nil {
			return nil, fmt.Errorf("invalid root URI %q: %w", *params.RootURI, err)
		}
		root, rootURI = u.Path, *params.RootURI
	case params.RootPath != nil && *params.RootPath != "":
		root = *params.RootPath
		rootURI = (&url.URL{Scheme: "file", Path: root}).String()
	}

	versionedEdits := false
	if ws := params.Capabilities.Workspace; ws != nil && ws.WorkspaceEdit != nil {
		versionedEdits = util.FromPtr(ws.WorkspaceEdit.DocumentChanges)
	}

	s.mu.Lock()
	s.workspaceRoot, s.workspaceRootURI = root, rootURI
	s.versionedEdits = versionedEdits
	s.mu.Unlock()

	if settings, ok := params.InitializationOptions.(map[string]any); ok {
		opts, err := config.Merge(s.viper, settings)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.opts = opts
		s.mu.Unlock()
	}

	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: &protocol.True,
			Change:    &syncKind,
			Save:      &protocol.SaveOptions{IncludeText: &protocol.True},
		},
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{"=", "(", ","},
		},
		SignatureHelpProvider: &protocol.SignatureHelpOptions{
			TriggerCharacters:   []string{"<", "("},
			RetriggerCharacters: []string{",", ">", ")"},
		},
		HoverProvider:             true,
		DefinitionProvider:        true,
		ReferencesProvider:        true,
		DocumentHighlightProvider: true,
		CodeActionProvider: &protocol.CodeActionOptions{
			CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindRefactorInline},
		},
		RenameProvider: &protocol.RenameOptions{
			PrepareProvider: &protocol.True,
		},
		ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
			Commands: []string{CommandInlineVariable},
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: util.ToPtr(Version),
		},
	}, nil
}

// initialized loads the workspace files and starts watching them.
func (s *Server) initialized(*protocol.InitializedParams) error {
	s.mu.RLock()
	root := s.workspaceRoot
	s.mu.RUnlock()
	if root == "" {
		return nil
	}

	n, err := workspace.Load(root, s.proj)
	if err != nil {
		return fmt.Errorf("failed to load workspace %s: %w", root, err)
	}
	logger.Infow("loaded workspace", "root", root, "files", n)

	if !s.Options().Workspace.Watch {
		return nil
	}
	w, err := workspace.New(root, s.proj, s.isOpen, nil)
	if err != nil {
		return fmt.Errorf("failed to create workspace watcher: %w", err)
	}
	if err := w.Start(context.Background()); err != nil {
		w.Stop()
		return fmt.Errorf("failed to watch workspace %s: %w", root, err)
	}
	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()
	return nil
}

// shutdown stops the workspace watcher.
func (s *Server) shutdown() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w != nil {
		w.Stop()
	}
	return nil
}

func (s *Server) handleShutdown(ctx *glsp.Context) error {
	s.bindClient(ctx)
	return s.shutdown()
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	logger.Debugw("trace level changed", "value", params.Value)
	return nil
}

// setLanguageFromLocale sets the language of user-visible messages.
func (s *Server) setLanguageFromLocale(locale string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = i18n.LanguageFromLocale(locale)
}

// translate translates a user-visible message into the client's language.
func (s *Server) translate(message string) string {
	s.mu.RLock()
	lang := s.language
	s.mu.RUnlock()
	return i18n.Translate(message, lang)
}
