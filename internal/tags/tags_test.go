package tags

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeeftor/captionctl/internal/caption"
)

const sampleTags = `sources:
  album:
    - name: chorus
      phrases: |-
        la la
        na na
    - name: verse
      clips: ["7"]
      phrases: only on seven
    - name: silent
  other:
    - name: lonely
      phrases: hi
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tags.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTags), 0o644))
	return path
}

func TestFileStore(t *testing.T) {
	store, err := OpenFile(writeSample(t))
	require.NoError(t, err)

	tags, err := store.Tags("album", "3")
	require.NoError(t, err)
	assert.Equal(t, []caption.Tag{
		{Name: "chorus", PhraseString: "la la\nna na"},
		{Name: "silent"},
	}, tags)

	tags, err = store.Tags("album", "7")
	require.NoError(t, err)
	assert.Len(t, tags, 3)

	tags, err = store.Tags("missing", "")
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sources: [unterminated"), 0o644))
	_, err = ReadFile(bad)
	assert.Error(t, err)
}

func TestSQLiteStoreImport(t *testing.T) {
	f, err := ReadFile(writeSample(t))
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "db", "tags.sqlite")
	store, err := OpenSQLite(dbPath)
	require.NoError(t, err)
	defer store.Close()

	rows, err := store.Import(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 4, rows)

	tags, err := store.Tags("album", "3")
	require.NoError(t, err)
	assert.Equal(t, []caption.Tag{
		{Name: "chorus", PhraseString: "la la\nna na"},
		{Name: "silent"},
	}, tags)

	tags, err = store.Tags("album", "7")
	require.NoError(t, err)
	assert.Len(t, tags, 3)

	// Importing again replaces rather than duplicates
	rows, err = store.Import(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 4, rows)
	tags, err = store.Tags("album", "")
	require.NoError(t, err)
	assert.Len(t, tags, 3)
}

func TestSQLiteStoreReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tags.sqlite")

	store, err := OpenSQLite(dbPath)
	require.NoError(t, err)
	_, err = store.Import(context.Background(), &File{Sources: map[string][]Record{
		"clip": {{Name: "a", Phrases: "one"}},
	}})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = OpenSQLite(dbPath)
	require.NoError(t, err)
	defer store.Close()

	tags, err := store.Tags("clip", "")
	require.NoError(t, err)
	assert.Equal(t, []caption.Tag{{Name: "a", PhraseString: "one"}}, tags)
}

func TestOpen(t *testing.T) {
	lookup, closeFn, err := Open("", "")
	require.NoError(t, err)
	assert.Nil(t, lookup)
	assert.NoError(t, closeFn())

	lookup, closeFn, err = Open(writeSample(t), "")
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, lookup)
	assert.NoError(t, closeFn())

	lookup, closeFn, err = Open(writeSample(t), filepath.Join(t.TempDir(), "tags.sqlite"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, lookup)
	assert.NoError(t, closeFn())
}
