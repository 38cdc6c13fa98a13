// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/filing-cloud/internal/corpus"
)

var cleanCmd = &cobra.Command{
	Use:   "clean SYMBOL",
	Short: "Delete a company's corpus and the run artifacts",
	Long: `Clean removes <data-dir>/data-SYMBOL/ together with the word cloud image and
the keyword report. Missing targets are ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	image := viper.GetString("output.image_path")
	report := viper.GetString("output.report_path")
	dir, err := cleanCorpus(viper.GetString("fetch.data_dir"), args[0], image, report)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed: %s, %s, %s\n", dir, image, report)
	return nil
}

// cleanCorpus removes the symbol's corpus directory and the artifacts. The
// symbol is validated before anything is removed.
func cleanCorpus(dataDir, symbol string, artifacts ...string) (string, error) {
	dir, err := corpus.Dir(dataDir, strings.TrimSpace(symbol))
	if err != nil {
		return "", err
	}
	return dir, corpus.Cleanup(dir, artifacts...)
}
