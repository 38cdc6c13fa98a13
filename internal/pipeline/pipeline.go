// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one analysis: load the corpus, extract entities,
// curate keywords, then render the word cloud and request the narrative
// concurrently, and finally write the keyword report.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/filing-cloud/internal/corpus"
	"github.com/pdiddy/filing-cloud/internal/curate"
	"github.com/pdiddy/filing-cloud/internal/entities"
	"github.com/pdiddy/filing-cloud/internal/logging"
	"github.com/pdiddy/filing-cloud/pkg/types"
)

// now is replaced in tests.
var now = time.Now

// Extractor reduces document texts to entity frequencies.
type Extractor interface {
	Extract(ctx context.Context, texts []string) (types.Frequencies, entities.Stats, error)
}

// Curator calls the ranking service.
type Curator interface {
	Curate(ctx context.Context, freq types.Frequencies) types.Curation
}

// Renderer draws the visualization.
type Renderer interface {
	Render(weights types.Weights, path string) error
}

// Narrator produces the commentary. It never fails.
type Narrator interface {
	Narrate(ctx context.Context, payload string) string
}

// Pipeline wires the stages together.
type Pipeline struct {
	Extractor Extractor
	Curator   Curator
	Renderer  Renderer
	Narrator  Narrator
	Logger    *log.Logger
}

// Request identifies one run.
type Request struct {
	Symbol     string
	StartYear  int
	EndYear    int
	CorpusDir  string
	ImagePath  string
	ReportPath string
}

// Result is the outcome of a run.
type Result struct {
	Narrative   string
	ImagePath   string
	ReportPath  string
	Source      types.KeywordSource
	Weights     types.Weights
	Frequencies types.Frequencies
	Documents   int
	Skipped     []corpus.Skip
	Stats       entities.Stats
}

// Run executes the pipeline. Per-file read errors and service failures are
// absorbed; Run returns an error only when an output cannot be written or
// ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	logger := logging.OrDiscard(p.Logger).With("symbol", req.Symbol)

	docs, loadReport := corpus.Load(req.CorpusDir, logger)
	logger.Info("corpus loaded", "dir", req.CorpusDir, "documents", len(docs), "skipped", len(loadReport.Skipped))

	freq, stats, err := p.Extractor.Extract(ctx, types.Texts(docs))
	if err != nil {
		return nil, fmt.Errorf("extracting entities: %w", err)
	}

	cur := p.Curator.Curate(ctx, freq)
	weights, source := curate.Select(freq, cur)
	payload := curate.NarrativePayload(cur)
	logger.Info("keywords selected", "source", source, "keywords", len(weights))

	var narrative string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := p.Renderer.Render(weights, req.ImagePath); err != nil {
			return fmt.Errorf("rendering %s: %w", req.ImagePath, err)
		}
		logger.Info("word cloud written", "path", req.ImagePath)
		return nil
	})
	g.Go(func() error {
		narrative = p.Narrator.Narrate(gctx, payload)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if req.ReportPath != "" {
		report := types.KeywordReport{
			Symbol:      req.Symbol,
			StartYear:   req.StartYear,
			EndYear:     req.EndYear,
			Source:      source,
			Documents:   len(docs),
			Entities:    len(freq),
			GeneratedAt: now().UTC(),
			Keywords:    weights.Ranked(),
		}
		if err := WriteReport(req.ReportPath, report); err != nil {
			return nil, err
		}
		logger.Info("keyword report written", "path", req.ReportPath)
	}

	return &Result{
		Narrative:   narrative,
		ImagePath:   req.ImagePath,
		ReportPath:  req.ReportPath,
		Source:      source,
		Weights:     weights,
		Frequencies: freq,
		Documents:   len(docs),
		Skipped:     loadReport.Skipped,
		Stats:       stats,
	}, nil
}

// WriteReport writes the keyword report as YAML through a temp file and
// rename.
func WriteReport(path string, report types.KeywordReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling keyword report: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing keyword report: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReadReport loads a keyword report written by WriteReport.
func ReadReport(path string) (types.KeywordReport, error) {
	var report types.KeywordReport
	data, err := os.ReadFile(path)
	if err != nil {
		return report, err
	}
	if err := yaml.Unmarshal(data, &report); err != nil {
		return report, fmt.Errorf("parsing keyword report: %w", err)
	}
	return report, nil
}
