package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DocumentStore {
	log := logrus.New()
	log.SetOutput(io.Discard)
	store, err := NewDocumentStore(t.TempDir(), log)
	require.NoError(t, err)
	return store
}

func TestSaveAndRemove(t *testing.T) {
	store := newTestStore(t)

	path, err := store.Save("passport.pdf", strings.NewReader("tenant document"))
	require.NoError(t, err)
	assert.Equal(t, ".pdf", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tenant document", string(data))

	store.Remove(path)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSave_UniqueNames(t *testing.T) {
	store := newTestStore(t)

	a, err := store.Save("doc.png", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := store.Save("doc.png", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRemove_MissingFileIsQuiet(t *testing.T) {
	store := newTestStore(t)

	// must not panic or complain loudly
	store.Remove(filepath.Join(t.TempDir(), "missing.pdf"))
	store.Remove("")
}
