// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/filing-cloud/internal/logging"
	"github.com/pdiddy/filing-cloud/pkg/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDir(t *testing.T) {
	dir, err := Dir("base", "AMZN")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("base", "data-AMZN"), dir)

	dir, err = Dir("base", "BRK.B")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("base", "data-BRK.B"), dir)
}

func TestDir_RejectsPathSymbols(t *testing.T) {
	for _, symbol := range []string{"", ".", "..", "x/../../victim", "../AMZN", `a\b`, "AM ZN", "a/b"} {
		t.Run(symbol, func(t *testing.T) {
			_, err := Dir("base", symbol)
			assert.Error(t, err)
		})
	}
}

func TestDir_TraversalSymbolNeverReachesSibling(t *testing.T) {
	base := t.TempDir()
	data := filepath.Join(base, "data")
	victim := filepath.Join(base, "victim", "keep.txt")
	writeFile(t, victim, "keep")

	_, err := Dir(data, "x/../../victim")
	require.Error(t, err)
	assert.FileExists(t, victim)
}

func TestYearRange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2003_0001_cleaned.txt"), "a")
	writeFile(t, filepath.Join(dir, "1998_0002_cleaned.txt"), "b")
	writeFile(t, filepath.Join(dir, "nested", "2011_0003_cleaned.txt"), "c")
	writeFile(t, filepath.Join(dir, "notes.txt"), "d")

	start, end, ok := YearRange(dir)
	require.True(t, ok)
	assert.Equal(t, 1998, start)
	assert.Equal(t, 2011, end)

	_, _, ok = YearRange(filepath.Join(dir, "missing"))
	assert.False(t, ok)
}

func TestLoad_SortedRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2001_b_cleaned.txt"), "two")
	writeFile(t, filepath.Join(dir, "1998_a_cleaned.txt"), "one")
	writeFile(t, filepath.Join(dir, "nested", "2010_c_cleaned.txt"), "three")

	docs, report := Load(dir, nil)
	require.Len(t, docs, 3)
	assert.Equal(t, 3, report.Loaded)
	assert.False(t, report.HasSkips())

	assert.Equal(t, []string{"one", "two", "three"}, types.Texts(docs))
	for i := 1; i < len(docs); i++ {
		assert.Less(t, docs[i-1].Path, docs[i].Path)
	}
}

func TestLoad_MissingDirIsEmptyCorpus(t *testing.T) {
	docs, report := Load(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Empty(t, docs)
	assert.Equal(t, 0, report.Loaded)
	assert.False(t, report.HasSkips())
}

func TestLoad_EmptyDir(t *testing.T) {
	docs, report := Load(t.TempDir(), nil)
	assert.Empty(t, docs)
	assert.Equal(t, 0, report.Loaded)
}

func TestLoadPaths_MissingFileSkipped(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	writeFile(t, good, "Jeff Bezos founded the company.")
	missing := filepath.Join(dir, "missing.txt")

	var buf bytes.Buffer
	logger, err := logging.New(&buf, "info")
	require.NoError(t, err)

	docs, report := LoadPaths([]string{missing, good}, logger)
	require.Len(t, docs, 1)
	assert.Equal(t, "Jeff Bezos founded the company.", docs[0].Text)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, missing, report.Skipped[0].Path)
	assert.ErrorIs(t, report.Skipped[0].Err, os.ErrNotExist)
	assert.Contains(t, buf.String(), "skipping document")
}

func TestLoadPaths_DoesNotMutateInput(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	writeFile(t, a, "a")
	writeFile(t, b, "b")

	in := []string{b, a}
	docs, _ := LoadPaths(in, nil)
	assert.Equal(t, []string{b, a}, in)
	assert.Equal(t, []string{"a", "b"}, types.Texts(docs))
}

func TestCleanup(t *testing.T) {
	base := t.TempDir()
	dir, err := Dir(base, "META")
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, "2020_x_cleaned.txt"), "text")
	img := filepath.Join(base, "vis.png")
	writeFile(t, img, "png")

	require.NoError(t, Cleanup(dir, img, filepath.Join(base, "never-written.yaml"), ""))

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(img)
	assert.True(t, os.IsNotExist(err))

	// Second call on already-clean state succeeds.
	require.NoError(t, Cleanup(dir, img))
}
