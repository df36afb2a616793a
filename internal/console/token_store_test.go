package console

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStoreCreatesStateDir(t *testing.T) {
	// The default location lives under ~/.config, which may not exist on
	// a fresh install.
	path := filepath.Join(t.TempDir(), ".config", "security-console", "session.json")

	store, err := NewFileTokenStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save("access-1", "refresh-1"))

	reloaded, err := NewFileTokenStore(path)
	require.NoError(t, err)
	assert.Equal(t, "access-1", reloaded.Token())
	assert.Equal(t, "refresh-1", reloaded.RefreshToken())
}

func TestTokenStoreClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := NewFileTokenStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save("access-1", "refresh-1"))
	require.NoError(t, store.Clear())

	assert.Empty(t, store.Token())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestTokenStoreToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := NewFileTokenStore(path)
	require.NoError(t, err)
	assert.Empty(t, store.Token())
}
