package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v, err := New("", "")
	require.NoError(t, err)
	opts, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "info", opts.Log.Level)
	assert.False(t, opts.Log.JSON)
	assert.Equal(t, 500*time.Millisecond, opts.Completion.Timeout)
	assert.Equal(t, 100, opts.Completion.MaxItems)
	assert.False(t, opts.Hints.ExpandSupertraits)
	assert.False(t, opts.Inline.KeepDeclaration)
	assert.False(t, opts.Inline.ThisOnly)
	assert.Empty(t, opts.Metrics.Addr)
	assert.True(t, opts.Workspace.Watch)
}

func TestLoadFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "rslsw.toml"), []byte(`
[log]
level = "debug"

[completion]
timeout = "2s"
maxItems = 20

[hints]
expandSupertraits = true
`), 0o644))

	t.Run("WorkspaceRoot", func(t *testing.T) {
		v, err := New("", root)
		require.NoError(t, err)
		opts, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, "debug", opts.Log.Level)
		assert.Equal(t, 2*time.Second, opts.Completion.Timeout)
		assert.Equal(t, 20, opts.Completion.MaxItems)
		assert.True(t, opts.Hints.ExpandSupertraits)
		assert.True(t, opts.Workspace.Watch)
	})

	t.Run("ExplicitFile", func(t *testing.T) {
		v, err := New(filepath.Join(root, "rslsw.toml"), "")
		require.NoError(t, err)
		opts, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, "debug", opts.Log.Level)
	})

	t.Run("MissingExplicitFile", func(t *testing.T) {
		_, err := New(filepath.Join(root, "missing.toml"), "")
		assert.Error(t, err)
	})

	t.Run("NoFileInRoot", func(t *testing.T) {
		_, err := New("", t.TempDir())
		assert.NoError(t, err)
	})
}

func TestEnv(t *testing.T) {
	t.Setenv("RSLSW_LOG_LEVEL", "warn")
	t.Setenv("RSLSW_INLINE_KEEPDECLARATION", "true")

	v, err := New("", "")
	require.NoError(t, err)
	opts, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "warn", opts.Log.Level)
	assert.True(t, opts.Inline.KeepDeclaration)
}

func TestMerge(t *testing.T) {
	v, err := New("", "")
	require.NoError(t, err)

	opts, err := Merge(v, map[string]any{
		"inline": map[string]any{"thisOnly": true},
		"workspace": map[string]any{
			"watch": false,
		},
	})
	require.NoError(t, err)
	assert.True(t, opts.Inline.ThisOnly)
	assert.False(t, opts.Inline.KeepDeclaration)
	assert.False(t, opts.Workspace.Watch)
	assert.Equal(t, "info", opts.Log.Level)

	t.Run("Empty", func(t *testing.T) {
		opts, err := Merge(v, nil)
		require.NoError(t, err)
		assert.True(t, opts.Inline.ThisOnly)
	})
}
