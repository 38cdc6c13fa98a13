// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"sort"
	"time"
)

const (
	// MinCuratedKeywords is the smallest curated set the pipeline accepts.
	// Smaller sets are replaced by the raw Frequencies.
	MinCuratedKeywords = 10

	// MaxCuratedKeywords bounds the curated set kept from the ranking service.
	MaxCuratedKeywords = 100
)

// Weights maps a keyword to its prominence in the visualization.
type Weights map[string]float64

// RankedKeyword is one entry of a ranked keyword list.
type RankedKeyword struct {
	Keyword string  `json:"keyword" yaml:"keyword"`
	Weight  float64 `json:"weight" yaml:"weight"`
}

// Ranked returns the weights sorted by weight descending, then keyword
// ascending so equal weights keep a stable order.
func (w Weights) Ranked() []RankedKeyword {
	out := make([]RankedKeyword, 0, len(w))
	for k, v := range w {
		out = append(out, RankedKeyword{Keyword: k, Weight: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out
}

// Top returns the n highest-ranked weights as a new mapping.
func (w Weights) Top(n int) Weights {
	if n <= 0 || len(w) <= n {
		out := make(Weights, len(w))
		for k, v := range w {
			out[k] = v
		}
		return out
	}
	out := make(Weights, n)
	for _, rk := range w.Ranked()[:n] {
		out[rk.Keyword] = rk.Weight
	}
	return out
}

// KeywordSource records which branch of the curation policy produced the
// renderer input.
type KeywordSource string

const (
	SourceCurated  KeywordSource = "curated"
	SourceFallback KeywordSource = "fallback"
)

// Curation is the outcome of one ranking service call.
type Curation struct {
	// Raw is the service response text. When the call failed it holds the
	// structured error payload {"error": "..."}.
	Raw string

	// Keywords is the parsed response, capped at MaxCuratedKeywords. Nil when
	// the call or the parse failed.
	Keywords Weights

	// Err is non-nil when the service call or the parse failed.
	Err error
}

// Usable reports whether the curated set is large enough to replace the raw
// frequencies.
func (c Curation) Usable() bool {
	return c.Err == nil && len(c.Keywords) >= MinCuratedKeywords
}

// KeywordReport is the ranked keyword artifact written after each run.
type KeywordReport struct {
	Symbol      string          `json:"symbol" yaml:"symbol"`
	StartYear   int             `json:"start_year" yaml:"start_year"`
	EndYear     int             `json:"end_year" yaml:"end_year"`
	Source      KeywordSource   `json:"source" yaml:"source"`
	Documents   int             `json:"documents" yaml:"documents"`
	Entities    int             `json:"entities" yaml:"entities"`
	GeneratedAt time.Time       `json:"generated_at" yaml:"generated_at"`
	Keywords    []RankedKeyword `json:"keywords" yaml:"keywords"`
}
