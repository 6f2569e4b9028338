package server

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/goplus/rslsw/internal/config"
	"github.com/goplus/rslsw/rust"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// connection records the notifications a glsp connection would deliver.
type connection struct {
	mu    sync.Mutex
	notes []string
}

func (c *connection) context(t *testing.T, method string, params any) *glsp.Context {
	t.Helper()
	data, err := json.Marshal(params)
	require.NoError(t, err)
	return &glsp.Context{
		Method: method,
		Params: data,
		Notify: func(method string, params any) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.notes = append(c.notes, method)
		},
		Call: func(method string, params any, result any) {},
	}
}

func (c *connection) count(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.notes {
		if m == method {
			n++
		}
	}
	return n
}

func TestHandler(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib.rs"), []byte("fn lib() {}\n"), 0o644))

	v, err := config.New("", "")
	require.NoError(t, err)
	proj := rust.NewProject(nil, rust.FeatAll)
	s, err := New(proj, v, nil)
	require.NoError(t, err)
	h := s.Handler()
	conn := &connection{}

	dispatch := func(t *testing.T, method string, params any) any {
		t.Helper()
		r, validMethod, validParams, err := h.Handle(conn.context(t, method, params))
		require.True(t, validMethod, method)
		require.True(t, validParams, method)
		require.NoError(t, err, method)
		return r
	}

	t.Run("NotInitialized", func(t *testing.T) {
		_, _, _, err := h.Handle(conn.context(t, protocol.MethodTextDocumentHover, map[string]any{}))
		assert.Error(t, err)
	})

	rootURI := "file://" + filepath.ToSlash(root)
	uri := rootURI + "/main.rs"
	dispatch(t, protocol.MethodInitialize, map[string]any{
		"processId":             nil,
		"rootUri":               rootURI,
		"capabilities":          map[string]any{},
		"initializationOptions": map[string]any{"workspace": map[string]any{"watch": false}},
	})
	assert.True(t, h.IsInitialized())
	assert.NotNil(t, s.getClient())

	dispatch(t, protocol.MethodInitialized, map[string]any{})
	_, ok := proj.File("lib.rs")
	assert.True(t, ok, "workspace files are loaded")

	before := testutil.ToFloat64(requestsTotal.WithLabelValues(protocol.MethodTextDocumentDidOpen, "ok"))
	dispatch(t, protocol.MethodTextDocumentDidOpen, map[string]any{
		"textDocument": map[string]any{
			"uri":        uri,
			"languageId": "rust",
			"version":    1,
			"text":       "fn main() {\n    let a = 1;\n}\n",
		},
	})
	assert.Equal(t, before+1, testutil.ToFloat64(requestsTotal.WithLabelValues(protocol.MethodTextDocumentDidOpen, "ok")))
	require.Eventually(t, func() bool {
		return conn.count(protocol.ServerTextDocumentPublishDiagnostics) == 1
	}, time.Second, 5*time.Millisecond)

	dispatch(t, protocol.MethodTextDocumentDidChange, map[string]any{
		"textDocument": map[string]any{"uri": uri, "version": 2},
		"contentChanges": []any{
			map[string]any{
				"range": map[string]any{
					"start": map[string]any{"line": 1, "character": 12},
					"end":   map[string]any{"line": 1, "character": 13},
				},
				"text": "2",
			},
			map[string]any{"text": "fn main() {\n    let b = 3;\n}\n"},
		},
	})
	f, ok := proj.File("main.rs")
	require.True(t, ok)
	assert.Equal(t, "fn main() {\n    let b = 3;\n}\n", string(f.Content))

	r := dispatch(t, protocol.MethodTextDocumentHover, map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"position":     map[string]any{"line": 0, "character": 3},
	})
	require.NotNil(t, r)
	hover, ok := r.(*protocol.Hover)
	require.True(t, ok)
	assert.Equal(t, "```rust\nfn main()\n```", hover.Contents.(protocol.MarkupContent).Value)

	t.Run("RequestError", func(t *testing.T) {
		before := testutil.ToFloat64(requestsTotal.WithLabelValues(protocol.MethodWorkspaceExecuteCommand, "error"))
		_, _, _, err := h.Handle(conn.context(t, protocol.MethodWorkspaceExecuteCommand, map[string]any{
			"command": "rslsw.unknown",
		}))
		assert.Error(t, err)
		assert.Equal(t, before+1, testutil.ToFloat64(requestsTotal.WithLabelValues(protocol.MethodWorkspaceExecuteCommand, "error")))
	})

	_, _, _, err = h.Handle(conn.context(t, protocol.MethodShutdown, nil))
	require.NoError(t, err)
	assert.False(t, h.IsInitialized())
}
