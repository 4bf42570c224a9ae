package ide

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByID(t *testing.T) {
	target, err := ByID("cursor")
	require.NoError(t, err)
	assert.Equal(t, Cursor, target)

	_, err = ByID("emacs")
	assert.Error(t, err)
}

func TestConfigDir(t *testing.T) {
	assert.Equal(t, ".claude", ClaudeCode.ConfigDir())
	assert.Equal(t, ".cursor", Cursor.ConfigDir())
	assert.Equal(t, ".agents", VSCode.ConfigDir())
}

func TestInvokeHintFor(t *testing.T) {
	assert.Equal(t, "Type `/my-skill` in your Claude Code session.", ClaudeCode.InvokeHintFor("my-skill"))
}

func TestDetectExisting(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		_, ok := DetectExisting(t.TempDir())
		assert.False(t, ok)
	})

	t.Run("exactly one", func(t *testing.T) {
		repo := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(repo, ".cursor"), 0o755))

		target, ok := DetectExisting(repo)
		require.True(t, ok)
		assert.Equal(t, Cursor, target)
	})

	t.Run("ambiguous", func(t *testing.T) {
		repo := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(repo, ".cursor"), 0o755))
		require.NoError(t, os.MkdirAll(filepath.Join(repo, ".claude"), 0o755))

		_, ok := DetectExisting(repo)
		assert.False(t, ok)
	})
}
