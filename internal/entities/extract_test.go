// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entities

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/filing-cloud/pkg/types"
)

// stubRecognizer labels every "Name:LABEL" token in a text. A text
// containing "FAIL" makes the whole call fail.
type stubRecognizer struct {
	mu      sync.Mutex
	calls   int
	batches []int
}

func (s *stubRecognizer) Name() string { return "stub" }

func (s *stubRecognizer) Recognize(ctx context.Context, texts []string) ([][]types.Mention, error) {
	s.mu.Lock()
	s.calls++
	s.batches = append(s.batches, len(texts))
	s.mu.Unlock()

	out := make([][]types.Mention, len(texts))
	for i, text := range texts {
		if strings.Contains(text, "FAIL") {
			return nil, errors.New("recognizer exploded")
		}
		for _, tok := range strings.Split(text, "|") {
			name, label, ok := strings.Cut(strings.TrimSpace(tok), ":")
			if !ok {
				continue
			}
			out[i] = append(out[i], types.Mention{Text: name, Category: types.Category(label)})
		}
	}
	return out, nil
}

func (s *stubRecognizer) Close() error { return nil }

type memCache struct {
	entries map[string]types.Frequencies
	puts    int
}

func newMemCache() *memCache { return &memCache{entries: map[string]types.Frequencies{}} }

func (c *memCache) Get(_ context.Context, recognizer, text string) (types.Frequencies, bool, error) {
	f, ok := c.entries[recognizer+"\x00"+text]
	return f, ok, nil
}

func (c *memCache) Put(_ context.Context, recognizer, text string, counts types.Frequencies) error {
	c.puts++
	c.entries[recognizer+"\x00"+text] = counts
	return nil
}

func TestExtract_BezosExample(t *testing.T) {
	texts := []string{
		"Jeff Bezos:PERSON | Amazon:ORG",
		"Jeff Bezos:PERSON | Antitrust Act:LAW",
	}
	ex := &Extractor{Recognizer: &stubRecognizer{}}

	freq, stats, err := ex.Extract(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, types.Frequencies{"Jeff Bezos": 2, "Antitrust Act": 1}, freq)
	assert.Equal(t, 3, stats.Mentions)
	assert.Equal(t, 0, stats.Failed)
}

func TestExtract_CategoryFilterAndPositiveCounts(t *testing.T) {
	texts := []string{
		"Kindle:PRODUCT | Seattle:GPE | 2020:DATE | Hurricane Sandy:EVENT",
		"Kindle:PRODUCT | kindle:PRODUCT | Amazon Web Services:ORG | :PERSON",
	}
	ex := &Extractor{Recognizer: &stubRecognizer{}}

	freq, _, err := ex.Extract(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, types.Frequencies{"Kindle": 2, "kindle": 1, "Hurricane Sandy": 1}, freq)
	for k, v := range freq {
		assert.GreaterOrEqual(t, v, 1, k)
	}
}

func TestExtract_OrderIndependent(t *testing.T) {
	texts := []string{"A:PERSON | B:LAW", "B:LAW | C:EVENT", "A:PERSON", "D:PRODUCT | A:PERSON"}
	reversed := []string{texts[3], texts[2], texts[1], texts[0]}

	ex := &Extractor{Recognizer: &stubRecognizer{}}
	f1, _, err := ex.Extract(context.Background(), texts)
	require.NoError(t, err)
	f2, _, err := ex.Extract(context.Background(), reversed)
	require.NoError(t, err)
	assert.Equal(t, f1, f2)
}

func TestExtract_BatchInvariance(t *testing.T) {
	texts := []string{"A:PERSON", "B:LAW | A:PERSON", "C:EVENT", "D:PRODUCT", "A:PERSON | D:PRODUCT", "E:PERSON", "F:LAW"}

	var baseline types.Frequencies
	for _, size := range []int{1, 2, 3, 7, 100, 0} {
		rec := &stubRecognizer{}
		ex := &Extractor{Recognizer: rec, BatchSize: size}
		freq, stats, err := ex.Extract(context.Background(), texts)
		require.NoError(t, err)
		if baseline == nil {
			baseline = freq
		}
		assert.Equal(t, baseline, freq, "batch size %d", size)
		if size > 0 {
			assert.Equal(t, (len(texts)+size-1)/size, stats.Batches, "batch size %d", size)
		}
	}
}

func TestExtract_EmptyCorpus(t *testing.T) {
	rec := &stubRecognizer{}
	ex := &Extractor{Recognizer: rec}

	freq, stats, err := ex.Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, freq)
	assert.NotNil(t, freq)
	assert.Equal(t, 0, stats.Batches)
	assert.Equal(t, 0, rec.calls)
}

func TestExtract_NoEntities(t *testing.T) {
	ex := &Extractor{Recognizer: &stubRecognizer{}}
	freq, _, err := ex.Extract(context.Background(), []string{"nothing here", ""})
	require.NoError(t, err)
	assert.Empty(t, freq)
}

func TestExtract_FailingDocumentSkipped(t *testing.T) {
	texts := []string{"A:PERSON", "FAIL", "B:LAW"}
	rec := &stubRecognizer{}
	ex := &Extractor{Recognizer: rec, BatchSize: 10}

	freq, stats, err := ex.Extract(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, types.Frequencies{"A": 1, "B": 1}, freq)
	assert.Equal(t, 1, stats.Failed)
	// One batch call plus one retry per document.
	assert.Equal(t, 4, rec.calls)
}

func TestExtract_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := &Extractor{Recognizer: &stubRecognizer{}}
	_, _, err := ex.Extract(ctx, []string{"A:PERSON"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_CacheDoesNotChangeResult(t *testing.T) {
	texts := []string{"A:PERSON | X:ORG", "B:LAW", "A:PERSON"}
	cache := newMemCache()

	rec1 := &stubRecognizer{}
	cold, s1, err := (&Extractor{Recognizer: rec1, Cache: cache}).Extract(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, 0, s1.CacheHits)
	assert.Equal(t, 3, cache.puts)

	rec2 := &stubRecognizer{}
	warm, s2, err := (&Extractor{Recognizer: rec2, Cache: cache}).Extract(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, cold, warm)
	// "A:PERSON" is cached once but hit twice.
	assert.Equal(t, 3, s2.CacheHits)
	assert.Equal(t, 0, rec2.calls)
}

func TestExtract_FailedDocumentsNotCached(t *testing.T) {
	cache := newMemCache()
	_, _, err := (&Extractor{Recognizer: &stubRecognizer{}, Cache: cache}).Extract(context.Background(), []string{"FAIL", "A:PERSON"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.puts)
}

type shortRecognizer struct{ stubRecognizer }

func (s *shortRecognizer) Recognize(ctx context.Context, texts []string) ([][]types.Mention, error) {
	return [][]types.Mention{}, nil
}

func TestExtract_ResultCountMismatchCountsAsFailure(t *testing.T) {
	freq, stats, err := (&Extractor{Recognizer: &shortRecognizer{}}).Extract(context.Background(), []string{"A:PERSON", "B:LAW"})
	require.NoError(t, err)
	assert.Empty(t, freq)
	assert.Equal(t, 2, stats.Failed)
}

func TestCount(t *testing.T) {
	got := Count([]types.Mention{
		{Text: "Jeff Bezos", Category: types.CategoryPerson},
		{Text: "Jeff Bezos", Category: types.CategoryPerson},
		{Text: "AWS", Category: "ORG"},
		{Text: "Sherman Act", Category: types.CategoryLaw},
	})
	assert.Equal(t, types.Frequencies{"Jeff Bezos": 2, "Sherman Act": 1}, got)
}
