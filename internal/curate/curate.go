// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package curate asks an external ranking service to reduce raw entity
// frequencies to a short list of company-specific keywords, and decides
// whether that list or the raw frequencies drive the visualization.
package curate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/filing-cloud/internal/ai"
	"github.com/pdiddy/filing-cloud/internal/logging"
	"github.com/pdiddy/filing-cloud/pkg/types"
)

// SystemPrompt instructs the ranking service.
const SystemPrompt = `You have been given a JSON object mapping keywords found in a company's 10-K filings to how often they occur. ` +
	`Select the top 100 keywords that are most relevant and specific to this company. Exclude generic terms and words ` +
	`that are typical of 10-K filings in general. Prefer key themes, significant people, pivotal products, notable events, ` +
	`legislation and industry-specific trends that shaped the company. The keywords must be diverse and not similar to ` +
	`each other. They will be drawn as a word cloud weighted by the values you give them. ` +
	`Respond with a single JSON object mapping each keyword to a numeric weight, and nothing else.`

// ServiceError reports a failed ranking service call.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string { return "ranking service: " + e.Err.Error() }
func (e *ServiceError) Unwrap() error { return e.Err }

// ParseError reports a ranking response that is not a JSON object.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parsing ranking response: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// Curator calls the ranking service.
type Curator struct {
	Chat   ai.Client
	Logger *log.Logger
}

// New returns a Curator using chat.
func New(chat ai.Client, logger *log.Logger) *Curator {
	return &Curator{Chat: chat, Logger: logger}
}

// Curate sends freq to the ranking service once and parses the reply.
// Failures never escape as errors: they are recorded in the returned
// Curation, whose Raw then holds an {"error": "..."} payload for service
// failures or the unparseable reply for parse failures.
func (c *Curator) Curate(ctx context.Context, freq types.Frequencies) types.Curation {
	logger := logging.OrDiscard(c.Logger)

	payload, err := json.Marshal(freq)
	if err != nil {
		serr := &ServiceError{Err: fmt.Errorf("encoding frequencies: %w", err)}
		return types.Curation{Raw: ErrorPayload(serr), Err: serr}
	}

	reply, err := c.Chat.Complete(ctx, SystemPrompt, string(payload))
	if err != nil {
		serr := &ServiceError{Err: err}
		logger.Error("keyword ranking failed", "err", err)
		return types.Curation{Raw: ErrorPayload(serr), Err: serr}
	}

	keywords, err := Parse(reply)
	if err != nil {
		logger.Warn("keyword ranking unparseable", "err", err)
		return types.Curation{Raw: reply, Err: err}
	}

	logger.Info("keywords ranked", "keywords", len(keywords), "entities", len(freq))
	return types.Curation{Raw: reply, Keywords: keywords}
}

// Parse decodes a ranking reply. The reply must be a JSON object, optionally
// wrapped in a Markdown code fence. Numeric values become weights;
// non-numeric or non-positive values weigh 1. Blank keys cannot label a word
// and are dropped before the size check. At most
// types.MaxCuratedKeywords entries are kept, highest weights first.
func Parse(reply string) (types.Weights, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(ai.StripFences(reply)), &obj); err != nil {
		return nil, &ParseError{Err: err}
	}
	if obj == nil {
		return nil, &ParseError{Err: fmt.Errorf("response is null, not an object")}
	}

	weights := make(types.Weights, len(obj))
	for k, v := range obj {
		if strings.TrimSpace(k) == "" {
			continue
		}
		w := 1.0
		if f, ok := v.(float64); ok && f > 0 {
			w = f
		}
		weights[k] = w
	}
	return weights.Top(types.MaxCuratedKeywords), nil
}

// Select returns the renderer input for a run: the curated keywords when
// the curation succeeded with at least types.MinCuratedKeywords entries,
// otherwise freq converted value for value.
func Select(freq types.Frequencies, cur types.Curation) (types.Weights, types.KeywordSource) {
	if cur.Usable() {
		return cur.Keywords, types.SourceCurated
	}
	return freq.Weights(), types.SourceFallback
}

// NarrativePayload returns what the narrative service is shown: the raw
// ranking reply, whether or not the curated set was accepted. After a
// service failure that is the {"error": "..."} payload.
func NarrativePayload(cur types.Curation) string {
	return cur.Raw
}

// ErrorPayload renders err as {"error": "..."}.
func ErrorPayload(err error) string {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(data)
}
