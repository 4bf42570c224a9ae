package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAPIKeyFromEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")
	t.Setenv("HOME", t.TempDir())

	key, source := ResolveAPIKey()
	assert.Equal(t, "sk-ant-env", key)
	assert.Equal(t, SourceEnv, source)
}

func TestResolveAPIKeyFromLocalConfig(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".devpack"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, ".devpack", "config.yaml"),
		[]byte("anthropic_api_key: sk-ant-local\n"), 0o600))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	key, source := ResolveAPIKey()
	assert.Equal(t, "sk-ant-local", key)
	assert.Equal(t, SourceLocal, source)
}

func TestResolveAPIKeyFromGlobalConfig(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".devpack"), 0o700))
	require.NoError(t, os.WriteFile(
		filepath.Join(home, ".devpack", "config.yaml"),
		[]byte("anthropic_api_key: sk-ant-global\n"), 0o600))

	// Run from a directory without a project config.
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	key, source := ResolveAPIKey()
	assert.Equal(t, "sk-ant-global", key)
	assert.Equal(t, SourceGlobal, source)
}

func TestResolveAPIKeyAbsent(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("HOME", t.TempDir())

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	key, source := ResolveAPIKey()
	assert.Empty(t, key)
	assert.Equal(t, SourceNone, source)
}

func TestSaveAPIKey(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := SaveAPIKey("sk-ant-saved")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".devpack", "config.yaml"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.Equal(t, "sk-ant-saved", readKeyFromFile(path))
}

func TestSaveAPIKeyKeepsOtherSettings(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".devpack"), 0o700))
	path := filepath.Join(home, ".devpack", "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))

	_, err := SaveAPIKey("sk-ant-new")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "log_level: debug")
	assert.Contains(t, string(content), "sk-ant-new")
}
