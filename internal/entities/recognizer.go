// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entities

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/filing-cloud/internal/ai"
	"github.com/pdiddy/filing-cloud/internal/logging"
	"github.com/pdiddy/filing-cloud/pkg/types"
)

// Recognizer labels entity spans in text. Recognize returns one mention
// slice per input text, in input order. Recognizers are created per run and
// released with Close.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, texts []string) ([][]types.Mention, error)
	Close() error
}

// Cache stores filtered per-document counts between runs.
type Cache interface {
	Get(ctx context.Context, recognizer, text string) (types.Frequencies, bool, error)
	Put(ctx context.Context, recognizer, text string, counts types.Frequencies) error
}

// NewRecognizer builds the recognizer selected by cfg.Backend; an empty
// backend selects llm. chat is only used by the llm backend and may be nil
// otherwise. For llm, cfg.Model names the chat model and becomes part of the
// recognizer name.
func NewRecognizer(cfg types.RecognizerConfig, client *http.Client, chat ai.Client, logger *log.Logger) (Recognizer, error) {
	switch cfg.Backend {
	case types.RecognizerProse:
		logging.OrDiscard(logger).Warn("prose recognizer labels PERSON only; choose spacy or llm to count EVENT, PRODUCT and LAW entities")
		return NewProseRecognizer(), nil
	case types.RecognizerSpacy:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("spacy recognizer requires an endpoint")
		}
		return NewSpacyRecognizer(client, cfg.Endpoint, cfg.Model, logger), nil
	case types.RecognizerLLM, "":
		if chat == nil {
			return nil, fmt.Errorf("llm recognizer requires a chat client")
		}
		return NewLLMRecognizer(chat, cfg.Model, cfg.MaxRetries, logger), nil
	default:
		return nil, fmt.Errorf("unknown recognizer backend %q", cfg.Backend)
	}
}
