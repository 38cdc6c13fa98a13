// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/filing-cloud/internal/ai"
	"github.com/pdiddy/filing-cloud/internal/corpus"
	"github.com/pdiddy/filing-cloud/internal/curate"
	"github.com/pdiddy/filing-cloud/internal/narrate"
	"github.com/pdiddy/filing-cloud/internal/pipeline"
	"github.com/pdiddy/filing-cloud/internal/render"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Fetch filings and produce the word cloud and commentary",
	Long: `Analyze fetches the 10-K filings of SYMBOL for the year range (unless
--skip-fetch is given), extracts entities, asks the ranking service for the
most company-specific keywords and draws them as a word cloud. When the
ranking service fails or returns fewer than 10 keywords, the raw entity
counts are drawn instead. The commentary is printed to stdout; the image and
the keyword report are written to --output and --report.

--from and --to are required unless --skip-fetch is given. With --skip-fetch
they only label the report, and when omitted they default to the span of
filing years found in the corpus file names.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	addYearFlags(analyzeCmd, false)
	analyzeCmd.Flags().Bool("skip-fetch", false, "use the corpus already on disk")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	skipFetch, _ := cmd.Flags().GetBool("skip-fetch")

	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	dir, err := corpus.Dir(cfg.Fetch.DataDir, strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}

	from, _ := cmd.Flags().GetInt("from")
	to, _ := cmd.Flags().GetInt("to")
	from, to, err = analyzeYears(from, to, cmd.Flags().Changed("from"), cmd.Flags().Changed("to"), skipFetch, dir)
	if err != nil {
		return err
	}
	req, err := runRequest(args[0], from, to)
	if err != nil {
		return err
	}

	if !skipFetch {
		result, err := fetchFilings(cmd.Context(), cfg.Fetch, req, os.Stderr)
		if err != nil {
			return err
		}
		if result.HasFailures() {
			logger.Warn("continuing with partial corpus", "failed_years", len(result.Failed()))
		}
	}

	chat, err := ai.NewClient(cfg.AI, logger)
	if err != nil {
		return err
	}
	ex, closeFn, err := buildExtractor(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	p := &pipeline.Pipeline{
		Extractor: ex,
		Curator:   curate.New(chat, logger),
		Renderer:  render.New(cfg.Render),
		Narrator:  narrate.New(chat, logger),
		Logger:    logger,
	}
	res, err := p.Run(cmd.Context(), pipeline.Request{
		Symbol:     req.Symbol,
		StartYear:  req.StartYear,
		EndYear:    req.EndYear,
		CorpusDir:  dir,
		ImagePath:  cfg.Output.ImagePath,
		ReportPath: cfg.Output.ReportPath,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Narrative)
	fmt.Fprintf(os.Stderr, "\nAnalysis summary: %d document(s), %d entities, %d %s keywords; image %s, report %s\n",
		res.Documents, len(res.Frequencies), len(res.Weights), res.Source, res.ImagePath, res.ReportPath)
	return nil
}

// analyzeYears resolves the year range of an analyze run. Fetching needs both
// flags. With skipFetch an omitted bound comes from the corpus file names, or
// the current year when no file carries one.
func analyzeYears(from, to int, fromSet, toSet, skipFetch bool, dir string) (int, int, error) {
	if fromSet && toSet {
		return from, to, nil
	}
	if !skipFetch {
		return 0, 0, fmt.Errorf("--from and --to are required unless --skip-fetch is set")
	}
	start, end, ok := corpus.YearRange(dir)
	if !ok {
		start, end = time.Now().Year(), time.Now().Year()
	}
	if !fromSet {
		from = start
	}
	if !toSet {
		to = end
	}
	return from, to, nil
}
