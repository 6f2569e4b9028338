// Package server implements the rslsw language server on top of glsp.
package server

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/goplus/rslsw/i18n"
	"github.com/goplus/rslsw/ide/hints"
	"github.com/goplus/rslsw/internal/config"
	"github.com/goplus/rslsw/internal/logger"
	"github.com/goplus/rslsw/internal/workspace"
	"github.com/goplus/rslsw/rust"
	"github.com/goplus/rslsw/rust/resolve"
	"github.com/goplus/rslsw/rust/syntax"
	"github.com/spf13/viper"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Name and Version identify the server in the initialize response.
const (
	Name    = "rslsw"
	Version = "0.1.0"
)

// Client sends server-initiated messages to the LSP client.
type Client interface {
	// Notify sends a notification.
	Notify(method string, params any)

	// Call sends a request and decodes its result into result.
	Call(method string, params any, result any)
}

// contextClient is a [Client] bound to a glsp connection.
type contextClient struct {
	notify glsp.NotifyFunc
	call   glsp.CallFunc
}

func (c contextClient) Notify(method string, params any)           { c.notify(method, params) }
func (c contextClient) Call(method string, params any, result any) { c.call(method, params, result) }

// Server is the core language server implementation.
type Server struct {
	proj  *rust.Project
	viper *viper.Viper

	mu               sync.RWMutex
	client           Client
	opts             *config.Options
	language         i18n.Language
	workspaceRootURI protocol.DocumentUri
	workspaceRoot    string
	openFiles        map[string]bool
	hintSessions     map[string]hints.Session
	watcher          *workspace.Watcher

	// versionedEdits is set when the client accepts documentChanges in a
	// workspace edit.
	versionedEdits bool
}

// New creates a server working on proj with options from v. client may be
// nil, in which case the connection of the first request is used.
func New(proj *rust.Project, v *viper.Viper, client Client) (*Server, error) {
	opts, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	return &Server{
		proj:         proj,
		viper:        v,
		client:       client,
		opts:         opts,
		language:     i18n.LanguageEN,
		openFiles:    make(map[string]bool),
		hintSessions: make(map[string]hints.Session),
	}, nil
}

// Handler returns the glsp protocol handler dispatching to s.
func (s *Server) Handler() *protocol.Handler {
	return &protocol.Handler{
		Initialize:  handle(s, "initialize", s.initialize),
		Initialized: notify(s, "initialized", s.initialized),
		Shutdown:    s.handleShutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   notify(s, "textDocument/didOpen", s.didOpen),
		TextDocumentDidChange: notify(s, "textDocument/didChange", s.didChange),
		TextDocumentDidSave:   notify(s, "textDocument/didSave", s.didSave),
		TextDocumentDidClose:  notify(s, "textDocument/didClose", s.didClose),

		TextDocumentCompletion:        handle(s, "textDocument/completion", s.textDocumentCompletion),
		TextDocumentSignatureHelp:     handle(s, "textDocument/signatureHelp", s.textDocumentSignatureHelp),
		TextDocumentHover:             handle(s, "textDocument/hover", s.textDocumentHover),
		TextDocumentDefinition:        handle(s, "textDocument/definition", s.textDocumentDefinition),
		TextDocumentReferences:        handle(s, "textDocument/references", s.textDocumentReferences),
		TextDocumentDocumentHighlight: handle(s, "textDocument/documentHighlight", s.textDocumentDocumentHighlight),
		TextDocumentCodeAction:        handle(s, "textDocument/codeAction", s.textDocumentCodeAction),
		TextDocumentPrepareRename:     handle(s, "textDocument/prepareRename", s.textDocumentPrepareRename),
		TextDocumentRename:            handle(s, "textDocument/rename", s.textDocumentRename),
		WorkspaceExecuteCommand:       handle(s, "workspace/executeCommand", s.workspaceExecuteCommand),
	}
}

// handle wraps a request handler with client binding, logging and metrics.
func handle[P, R any](s *Server, method string, fn func(*P) (R, error)) func(*glsp.Context, *P) (R, error) {
	return func(ctx *glsp.Context, params *P) (R, error) {
		s.bindClient(ctx)
		id := uuid.NewString()
		logger.Debugw("handling request", "method", method, "request_id", id)

		start := time.Now()
		result, err := fn(params)
		observeRequest(method, start, err)
		if err != nil {
			logger.Warnw("request failed", "method", method, "request_id", id, "error", err)
		}
		return result, err
	}
}

// notify wraps a notification handler with client binding, logging and
// metrics.
func notify[P any](s *Server, method string, fn func(*P) error) func(*glsp.Context, *P) error {
	return func(ctx *glsp.Context, params *P) error {
		_, err := handle(s, method, func(p *P) (struct{}, error) {
			return struct{}{}, fn(p)
		})(ctx, params)
		return err
	}
}

// bindClient uses the connection of ctx as the client unless one is bound.
func (s *Server) bindClient(ctx *glsp.Context) {
	if ctx == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		s.client = contextClient{notify: ctx.Notify, call: ctx.Call}
	}
}

func (s *Server) getClient() Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// Options returns the current options.
func (s *Server) Options() config.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.opts
}

// notifyClient sends a notification if a client is bound.
func (s *Server) notifyClient(method string, params any) {
	if c := s.getClient(); c != nil {
		c.Notify(method, params)
	}
}

// requestContext returns the context bounding long enumerations.
func (s *Server) requestContext() (context.Context, context.CancelFunc) {
	if timeout := s.Options().Completion.Timeout; timeout > 0 {
		return context.WithTimeout(context.Background(), timeout)
	}
	return context.WithCancel(context.Background())
}

// fromDocumentURI returns the project path of a [protocol.DocumentUri].
func (s *Server) fromDocumentURI(documentURI protocol.DocumentUri) (string, error) {
	u, err := url.Parse(documentURI)
	if err != nil {
		return "", fmt.Errorf("invalid document URI %q: %w", documentURI, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported document URI scheme %q", u.Scheme)
	}
	s.mu.RLock()
	root := s.workspaceRoot
	s.mu.RUnlock()
	if root == "" {
		return u.Path, nil
	}
	return workspace.RelPath(root, u.Path), nil
}

// toDocumentURI returns the [protocol.DocumentUri] of a project path.
func (s *Server) toDocumentURI(path string) protocol.DocumentUri {
	if !strings.HasPrefix(path, "/") {
		s.mu.RLock()
		root := s.workspaceRoot
		s.mu.RUnlock()
		path = strings.TrimSuffix(root, "/") + "/" + path
	}
	return (&url.URL{Scheme: "file", Path: path}).String()
}

// syntaxFileFor returns the project path and syntax tree of a document.
func (s *Server) syntaxFileFor(uri protocol.DocumentUri) (string, *syntax.File, error) {
	path, err := s.fromDocumentURI(uri)
	if err != nil {
		return "", nil, err
	}
	f, err := s.proj.SyntaxFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get syntax file %s: %w", path, err)
	}
	return path, f, nil
}

// indexFor returns the project path and declaration index of a document.
func (s *Server) indexFor(uri protocol.DocumentUri) (string, *resolve.Index, error) {
	path, err := s.fromDocumentURI(uri)
	if err != nil {
		return "", nil, err
	}
	idx, err := s.proj.Index(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get index of %s: %w", path, err)
	}
	return path, idx, nil
}
