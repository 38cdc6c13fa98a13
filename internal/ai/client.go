// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ai wraps the chat services used for keyword ranking, narration and
// LLM-based entity recognition behind one small interface.
package ai

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/filing-cloud/pkg/types"
)

// Provider names accepted in types.AIConfig.
const (
	ProviderTogether = "together"
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
)

// Defaults for the hosted Together endpoint.
const (
	TogetherBaseURL = "https://api.together.xyz/v1"
	DefaultModel    = "mistralai/Mixtral-8x22B-Instruct-v0.1"
)

// Client sends one system prompt and one user message and returns the
// assistant's reply text.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// NewClient builds the client for cfg.Provider.
func NewClient(cfg types.AIConfig, logger *log.Logger) (Client, error) {
	switch cfg.Provider {
	case ProviderTogether, "":
		if cfg.BaseURL == "" {
			cfg.BaseURL = TogetherBaseURL
		}
		if cfg.Model == "" {
			cfg.Model = DefaultModel
		}
		return NewOpenAIClient(cfg, logger), nil
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, logger), nil
	case ProviderOllama:
		return NewOllamaClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
