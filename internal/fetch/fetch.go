// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves annual filings for a company and stores them as
// cleaned text files, one concurrent task per filing year.
package fetch

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/filing-cloud/internal/logging"
)

// Source retrieves the filings of one company for one year.
type Source interface {
	FetchYear(ctx context.Context, symbol string, year int, dir string) ([]string, error)
}

// YearResult holds the outcome of one year's task.
type YearResult struct {
	Year  int
	Files []string
	Err   error
}

// RangeResult holds the outcome of a FetchRange run, one entry per year in
// ascending order.
type RangeResult struct {
	Years []YearResult
}

// Files returns every written or existing file path, sorted.
func (r RangeResult) Files() []string {
	var files []string
	for _, y := range r.Years {
		files = append(files, y.Files...)
	}
	sort.Strings(files)
	return files
}

// Failed returns the years whose task returned an error.
func (r RangeResult) Failed() []YearResult {
	var failed []YearResult
	for _, y := range r.Years {
		if y.Err != nil {
			failed = append(failed, y)
		}
	}
	return failed
}

// HasFailures reports whether any year failed.
func (r RangeResult) HasFailures() bool {
	return len(r.Failed()) > 0
}

// FetchRange runs one task per year in [start, end] with at most concurrency
// tasks in flight, and waits for all of them. A failing year is logged and
// recorded; it never cancels the other years. start > end yields an empty
// result.
func FetchRange(ctx context.Context, src Source, symbol string, start, end int, dir string, concurrency int, logger *log.Logger) RangeResult {
	logger = logging.OrDiscard(logger)
	if end < start {
		return RangeResult{}
	}
	if concurrency < 1 {
		concurrency = 1
	}

	years := make([]YearResult, end-start+1)
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i := range years {
		year := start + i
		g.Go(func() error {
			files, err := src.FetchYear(ctx, symbol, year, dir)
			years[i] = YearResult{Year: year, Files: files, Err: err}
			if err != nil {
				logger.Error("fetch failed", "symbol", symbol, "year", year, "err", err)
			}
			return nil
		})
	}
	g.Wait()

	return RangeResult{Years: years}
}
