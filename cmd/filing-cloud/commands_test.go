// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestCleanCorpus(t *testing.T) {
	base := t.TempDir()
	data := filepath.Join(base, "data")
	doc := filepath.Join(data, "data-AMZN", "2020_0001_cleaned.txt")
	img := filepath.Join(base, "vis.png")
	writeTestFile(t, doc)
	writeTestFile(t, img)

	dir, err := cleanCorpus(data, " AMZN ", img, filepath.Join(base, "keywords.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(data, "data-AMZN"), dir)
	assert.NoDirExists(t, dir)
	assert.NoFileExists(t, img)
}

func TestCleanCorpus_RejectsTraversal(t *testing.T) {
	base := t.TempDir()
	data := filepath.Join(base, "data")
	keep := filepath.Join(base, "victim", "keep.txt")
	writeTestFile(t, keep)
	img := filepath.Join(base, "vis.png")
	writeTestFile(t, img)

	for _, symbol := range []string{"x/../../victim", "../victim", "..", ""} {
		_, err := cleanCorpus(data, symbol, img)
		assert.Error(t, err, symbol)
	}
	assert.FileExists(t, keep)
	assert.FileExists(t, img, "artifacts are kept when the symbol is rejected")
}

func TestAnalyzeYears(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "1999_0001_cleaned.txt"))
	writeTestFile(t, filepath.Join(dir, "2014_0002_cleaned.txt"))

	from, to, err := analyzeYears(2000, 2010, true, true, false, dir)
	require.NoError(t, err)
	assert.Equal(t, []int{2000, 2010}, []int{from, to})

	_, _, err = analyzeYears(2000, 0, true, false, false, dir)
	assert.ErrorContains(t, err, "--skip-fetch")

	from, to, err = analyzeYears(0, 0, false, false, true, dir)
	require.NoError(t, err)
	assert.Equal(t, []int{1999, 2014}, []int{from, to})

	from, to, err = analyzeYears(2005, 0, true, false, true, dir)
	require.NoError(t, err)
	assert.Equal(t, []int{2005, 2014}, []int{from, to})

	year := time.Now().Year()
	from, to, err = analyzeYears(0, 0, false, false, true, filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Equal(t, []int{year, year}, []int{from, to})
}
