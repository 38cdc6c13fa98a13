// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the filing-cloud CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/filing-cloud/internal/logging"
	"github.com/pdiddy/filing-cloud/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ and .env at startup.
var loadedSecrets map[string]string

// logger is built from --log-level before any command runs.
var logger *log.Logger

// rootCmd is the base command for the filing-cloud CLI.
var rootCmd = &cobra.Command{
	Use:   "filing-cloud",
	Short: "Word clouds and commentary from a company's 10-K filings",
	Long: `filing-cloud downloads a company's annual 10-K filings from SEC EDGAR,
extracts the people, events, products and laws they mention, asks a language
model to rank the most company-specific of them, and draws the result as a
word cloud alongside a short commentary.

Stages are available on their own: fetch downloads filings, entities prints
the extracted entity counts, analyze runs the whole pipeline, and clean
removes a company's corpus and the run artifacts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(os.Stderr, viper.GetString("log_level"))
		if err != nil {
			return err
		}
		logger = l

		fileSecrets, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		envSecrets, err := secrets.LoadEnv(".env")
		if err != nil {
			return err
		}
		loadedSecrets = secrets.Merge(fileSecrets, envSecrets)
		if len(loadedSecrets) > 0 {
			keys := make([]string, 0, len(loadedSecrets))
			for k := range loadedSecrets {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./filing-cloud.yaml or ~/.config/filing-cloud/config.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("data-dir", ".", "base directory holding data-<SYMBOL>/ corpus directories")
	pf.String("output", "vis.png", "word cloud image path")
	pf.String("report", "keywords.yaml", "keyword report path")

	viper.BindPFlag("log_level", pf.Lookup("log-level"))
	viper.BindPFlag("fetch.data_dir", pf.Lookup("data-dir"))
	viper.BindPFlag("output.image_path", pf.Lookup("output"))
	viper.BindPFlag("output.report_path", pf.Lookup("report"))

	setDefaults(viper.GetViper())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("filing-cloud")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "filing-cloud"))
		}
	}

	viper.SetEnvPrefix("FILING_CLOUD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
