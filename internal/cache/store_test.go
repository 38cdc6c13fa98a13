// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/filing-cloud/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache", "entities.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesSchema(t *testing.T) {
	s := openTestStore(t)

	var n int
	require.NoError(t, s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='doc_entities'`,
	).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpenCreatesDBFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "entities.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestGetMiss(t *testing.T) {
	s := openTestStore(t)

	counts, ok, err := s.Get(context.Background(), "prose", "some text")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, counts)
}

func TestPutGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	want := types.Frequencies{"Jeff Bezos": 2, "Antitrust Act": 1}

	require.NoError(t, s.Put(ctx, "prose", "doc text", want))

	got, ok, err := s.Get(ctx, "prose", "doc text")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok, err = s.Get(ctx, "spacy", "doc text")
	require.NoError(t, err)
	assert.False(t, ok, "entries are scoped to the recognizer")
}

func TestPutEmptyAndReplace(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "prose", "doc", nil))
	got, ok, err := s.Get(ctx, "prose", "doc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, got)

	require.NoError(t, s.Put(ctx, "prose", "doc", types.Frequencies{"Kindle": 1}))
	got, _, err = s.Get(ctx, "prose", "doc")
	require.NoError(t, err)
	assert.Equal(t, types.Frequencies{"Kindle": 1}, got)

	n, err := s.Len(ctx, "prose")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "prose", "doc", types.Frequencies{"Alexa": 3}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, ok, err := s.Get(ctx, "prose", "doc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.Frequencies{"Alexa": 3}, got)
}

func TestHash(t *testing.T) {
	assert.Equal(t, Hash("a"), Hash("a"))
	assert.NotEqual(t, Hash("a"), Hash("b"))
	assert.Len(t, Hash(""), 64)
}
