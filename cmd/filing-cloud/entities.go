// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/filing-cloud/internal/corpus"
	"github.com/pdiddy/filing-cloud/pkg/types"
)

var entitiesCmd = &cobra.Command{
	Use:   "entities SYMBOL",
	Short: "Print the entity counts of a fetched corpus",
	Long: `Entities loads <data-dir>/data-SYMBOL/, runs the configured recognizer and
prints the PERSON, EVENT, PRODUCT and LAW mentions ranked by count.`,
	Args: cobra.ExactArgs(1),
	RunE: runEntities,
}

func init() {
	entitiesCmd.Flags().Int("top", 50, "number of entities to print (0 for all)")
	entitiesCmd.Flags().Bool("json", false, "print the full frequency mapping as JSON")
	rootCmd.AddCommand(entitiesCmd)
}

func runEntities(cmd *cobra.Command, args []string) error {
	top, _ := cmd.Flags().GetInt("top")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	dir, err := corpus.Dir(cfg.Fetch.DataDir, strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}

	docs, report := corpus.Load(dir, logger)
	ex, closeFn, err := buildExtractor(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	freq, stats, err := ex.Extract(cmd.Context(), types.Texts(docs))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(freq)
	}

	ranked := freq.Weights().Ranked()
	if top > 0 && len(ranked) > top {
		ranked = ranked[:top]
	}
	for _, rk := range ranked {
		fmt.Fprintf(w, "%6d  %s\n", int(rk.Weight), rk.Keyword)
	}
	fmt.Fprintf(w, "\nEntity summary: %d distinct, %d mentions, %d document(s), %d skipped, %d failed\n",
		len(freq), stats.Mentions, report.Loaded, len(report.Skipped), stats.Failed)
	return nil
}
