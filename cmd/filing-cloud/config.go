// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator"
	"github.com/spf13/viper"

	"github.com/pdiddy/filing-cloud/internal/ai"
	"github.com/pdiddy/filing-cloud/internal/cache"
	"github.com/pdiddy/filing-cloud/internal/corpus"
	"github.com/pdiddy/filing-cloud/internal/entities"
	"github.com/pdiddy/filing-cloud/internal/logging"
	"github.com/pdiddy/filing-cloud/internal/render"
	"github.com/pdiddy/filing-cloud/internal/secrets"
	"github.com/pdiddy/filing-cloud/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "filing-cloud/0.1 admin@example.com"
)

var validate = validator.New()

// setDefaults registers every configuration key so that environment
// variables resolve for keys absent from the config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("fetch.timeout", defaultTimeout)
	v.SetDefault("fetch.user_agent", defaultUserAgent)
	v.SetDefault("fetch.form", "10-K")
	v.SetDefault("fetch.data_dir", ".")
	v.SetDefault("fetch.concurrency", 4)
	v.SetDefault("fetch.requests_per_second", 8.0)

	v.SetDefault("recognizer.backend", string(types.RecognizerLLM))
	v.SetDefault("recognizer.batch_size", entities.DefaultBatchSize)
	v.SetDefault("recognizer.endpoint", "")
	v.SetDefault("recognizer.model", "")
	v.SetDefault("recognizer.cache_path", "")
	v.SetDefault("recognizer.max_retries", 3)

	v.SetDefault("ai.provider", ai.ProviderTogether)
	v.SetDefault("ai.model", ai.DefaultModel)
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.max_retries", 0)

	v.SetDefault("render.width", render.DefaultWidth)
	v.SetDefault("render.height", render.DefaultHeight)
	v.SetDefault("render.max_words", render.DefaultMaxWords)
	v.SetDefault("render.min_font_size", float64(render.DefaultMinFontSize))
	v.SetDefault("render.max_font_size", float64(render.DefaultMaxFontSize))
	v.SetDefault("render.background", render.DefaultBackground)

	v.SetDefault("output.image_path", "vis.png")
	v.SetDefault("output.report_path", "keywords.yaml")
}

// loadConfig assembles and validates the pipeline configuration. An empty
// AI key is filled from the loaded secrets.
func loadConfig(v *viper.Viper, keys map[string]string) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = secrets.APIKey(keys, cfg.AI.Provider)
	}
	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runRequest validates the symbol and year range of a command.
func runRequest(symbol string, from, to int) (types.RunRequest, error) {
	req := types.RunRequest{Symbol: strings.TrimSpace(symbol), StartYear: from, EndYear: to}
	if err := corpus.CheckSymbol(req.Symbol); err != nil {
		return req, fmt.Errorf("invalid request: %w", err)
	}
	if err := validate.Struct(req); err != nil {
		return req, fmt.Errorf("invalid request: %w", err)
	}
	return req, nil
}

func httpClient(cfg types.FetchConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// buildExtractor creates the configured recognizer and optional cache. The
// returned close function releases both. The llm backend shares the ai
// settings, and its model names the cache entries.
func buildExtractor(cfg types.PipelineConfig, l *log.Logger) (*entities.Extractor, func(), error) {
	l = logging.OrDiscard(l)
	var chat ai.Client
	if cfg.Recognizer.Backend == types.RecognizerLLM || cfg.Recognizer.Backend == "" {
		c, err := ai.NewClient(cfg.AI, l)
		if err != nil {
			return nil, nil, err
		}
		chat = c
		cfg.Recognizer.Model = cfg.AI.Model
	}

	rec, err := entities.NewRecognizer(cfg.Recognizer, httpClient(cfg.Fetch), chat, l)
	if err != nil {
		return nil, nil, err
	}

	ex := &entities.Extractor{Recognizer: rec, BatchSize: cfg.Recognizer.BatchSize, Logger: l}
	closers := []func() error{rec.Close}

	if cfg.Recognizer.CachePath != "" {
		store, err := cache.Open(cfg.Recognizer.CachePath)
		if err != nil {
			rec.Close()
			return nil, nil, err
		}
		ex.Cache = store
		closers = append(closers, store.Close)
	}

	return ex, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				l.Warn("close failed", "err", err)
			}
		}
	}, nil
}
