// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package entities reduces a corpus to entity frequencies. A Recognizer
// labels spans; the Extractor keeps mentions whose category is PERSON, EVENT,
// PRODUCT or LAW and counts each exact surface text across all documents.
package entities

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/filing-cloud/internal/logging"
	"github.com/pdiddy/filing-cloud/pkg/types"
)

// DefaultBatchSize is the number of documents sent to a recognizer at once.
const DefaultBatchSize = 1000

// Stats describes one extraction run.
type Stats struct {
	Documents int
	Batches   int
	CacheHits int
	Failed    int
	Mentions  int
}

// Extractor runs a Recognizer over a corpus in batches and aggregates the
// counted mentions. Cache is optional.
type Extractor struct {
	Recognizer Recognizer
	BatchSize  int
	Cache      Cache
	Logger     *log.Logger
}

// Extract returns the corpus-wide frequencies of allowed-category mentions.
// Batch size affects throughput only; the result is the same for any batch
// size and any document order. A batch that fails is retried one document
// at a time and documents that still fail are skipped and counted in
// Stats.Failed. Only context cancellation returns an error.
func (e *Extractor) Extract(ctx context.Context, texts []string) (types.Frequencies, Stats, error) {
	logger := logging.OrDiscard(e.Logger)
	stats := Stats{Documents: len(texts)}
	total := types.Frequencies{}

	name := e.Recognizer.Name()
	var pending []string
	for _, text := range texts {
		if e.Cache != nil {
			counts, ok, err := e.Cache.Get(ctx, name, text)
			if err != nil {
				logger.Warn("entity cache read failed", "err", err)
			} else if ok {
				stats.CacheHits++
				total.Add(counts)
				continue
			}
		}
		pending = append(pending, text)
	}

	size := e.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	for start := 0; start < len(pending); start += size {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		end := min(start+size, len(pending))
		batch := pending[start:end]
		stats.Batches++

		perDoc, err := e.recognize(ctx, batch)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, stats, ctxErr
			}
			logger.Warn("batch failed, retrying per document", "recognizer", name, "documents", len(batch), "err", err)
			perDoc, err = e.recognizeEach(ctx, batch, &stats, logger)
			if err != nil {
				return nil, stats, err
			}
		}

		for i, counts := range perDoc {
			if counts == nil {
				continue
			}
			if e.Cache != nil {
				if err := e.Cache.Put(ctx, name, batch[i], counts); err != nil {
					logger.Warn("entity cache write failed", "err", err)
				}
			}
			total.Add(counts)
		}
	}

	for _, v := range total {
		stats.Mentions += v
	}
	logger.Info("extracted entities",
		"recognizer", name, "documents", stats.Documents, "entities", len(total),
		"mentions", stats.Mentions, "cache_hits", stats.CacheHits, "failed", stats.Failed)
	return total, stats, nil
}

// recognize runs one batch and returns filtered counts per document.
func (e *Extractor) recognize(ctx context.Context, texts []string) ([]types.Frequencies, error) {
	mentions, err := e.Recognizer.Recognize(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(mentions) != len(texts) {
		return nil, fmt.Errorf("recognizer returned %d results for %d documents", len(mentions), len(texts))
	}
	out := make([]types.Frequencies, len(texts))
	for i, m := range mentions {
		out[i] = Count(m)
	}
	return out, nil
}

// recognizeEach runs every document of a failed batch on its own. Failed
// documents get a nil entry.
func (e *Extractor) recognizeEach(ctx context.Context, texts []string, stats *Stats, logger *log.Logger) ([]types.Frequencies, error) {
	out := make([]types.Frequencies, len(texts))
	for i, text := range texts {
		counts, err := e.recognize(ctx, []string{text})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			stats.Failed++
			logger.Warn("skipping document", "recognizer", e.Recognizer.Name(), "bytes", len(text), "err", err)
			continue
		}
		out[i] = counts[0]
	}
	return out, nil
}

// Count keeps mentions of an allowed category and counts their exact text.
func Count(mentions []types.Mention) types.Frequencies {
	counts := types.Frequencies{}
	for _, m := range mentions {
		if m.Text == "" || !m.Category.Allowed() {
			continue
		}
		counts[m.Text]++
	}
	return counts
}
