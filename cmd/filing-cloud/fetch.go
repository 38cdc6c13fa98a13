// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/filing-cloud/internal/corpus"
	"github.com/pdiddy/filing-cloud/internal/fetch"
	"github.com/pdiddy/filing-cloud/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch SYMBOL",
	Short: "Download a company's 10-K filings from SEC EDGAR",
	Long: `Fetch resolves SYMBOL to its EDGAR CIK, downloads every 10-K filed in each
year of the range, converts it to text and stores it under
<data-dir>/data-SYMBOL/. Years are fetched concurrently; files already on
disk are skipped. A failed year does not stop the others.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	addYearFlags(fetchCmd, true)
	rootCmd.AddCommand(fetchCmd)
}

func addYearFlags(cmd *cobra.Command, required bool) {
	cmd.Flags().Int("from", 0, "first filing year (inclusive)")
	cmd.Flags().Int("to", 0, "last filing year (inclusive)")
	if required {
		cmd.MarkFlagRequired("from")
		cmd.MarkFlagRequired("to")
	}
}

func yearFlags(cmd *cobra.Command, symbol string) (types.RunRequest, error) {
	from, _ := cmd.Flags().GetInt("from")
	to, _ := cmd.Flags().GetInt("to")
	return runRequest(symbol, from, to)
}

func runFetch(cmd *cobra.Command, args []string) error {
	req, err := yearFlags(cmd, args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}

	result, err := fetchFilings(cmd.Context(), cfg.Fetch, req, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d year(s) failed to fetch", len(result.Failed()))
	}
	return nil
}

// fetchFilings runs the EDGAR source over the request's years and prints a
// line per year and a summary to w.
func fetchFilings(ctx context.Context, cfg types.FetchConfig, req types.RunRequest, w io.Writer) (fetch.RangeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	dir, err := corpus.Dir(cfg.DataDir, req.Symbol)
	if err != nil {
		return fetch.RangeResult{}, err
	}
	src := fetch.NewEdgarSource(httpClient(cfg), cfg, logger)

	result := fetch.FetchRange(ctx, src, req.Symbol, req.StartYear, req.EndYear, dir, cfg.Concurrency, logger)
	for _, y := range result.Years {
		switch {
		case y.Err != nil:
			fmt.Fprintf(w, "failed:  %d (%v)\n", y.Year, y.Err)
		case len(y.Files) == 0:
			fmt.Fprintf(w, "none:    %d\n", y.Year)
		default:
			fmt.Fprintf(w, "fetched: %d (%d file(s))\n", y.Year, len(y.Files))
		}
	}
	fmt.Fprintf(w, "\nFetch summary: %d file(s), %d year(s) failed (total years: %d) in %s\n",
		len(result.Files()), len(result.Failed()), len(result.Years), dir)
	return result, nil
}
