// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entities

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/filing-cloud/internal/ai"
	"github.com/pdiddy/filing-cloud/internal/logging"
	"github.com/pdiddy/filing-cloud/pkg/types"
)

// backoffBase controls the base duration for exponential backoff between
// chat retries. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// DefaultChunkSize bounds the characters sent per chat call. Filing texts
// run to hundreds of kilobytes, well past most context windows.
const DefaultChunkSize = 12000

// llmResponse is the structure the model is asked to return.
type llmResponse struct {
	Entities []llmEntity `json:"entities" jsonschema:"description=Every entity occurrence in the text, repeated once per occurrence"`
}

type llmEntity struct {
	Text  string `json:"text" jsonschema:"description=Exact surface text as it appears in the input"`
	Label string `json:"label" jsonschema:"enum=PERSON,enum=EVENT,enum=PRODUCT,enum=LAW"`
}

const llmSystemPrompt = `You are a named-entity recognizer for annual financial filings.
Find every mention of an entity in these categories:
- PERSON: people, including fictional.
- EVENT: named hurricanes, battles, wars, sports events, etc.
- PRODUCT: objects, vehicles, foods, devices, services, etc. (not services of a company as a whole).
- LAW: named documents made into laws.
Copy each mention's text exactly as written. List a mention once per occurrence.
Respond with JSON only, matching this schema:
`

// LLMRecognizer asks a chat model to label entities. Long texts are split
// into chunks on line boundaries.
type LLMRecognizer struct {
	chat       ai.Client
	model      string
	maxRetries int
	chunkSize  int
	system     string
	logger     *log.Logger
}

// NewLLMRecognizer creates a chat-backed recognizer. model identifies the
// chat model behind chat so that cached counts are keyed per model.
func NewLLMRecognizer(chat ai.Client, model string, maxRetries int, logger *log.Logger) *LLMRecognizer {
	schema, err := ai.Schema(&llmResponse{})
	if err != nil {
		schema = `{"entities": [{"text": "string", "label": "PERSON|EVENT|PRODUCT|LAW"}]}`
	}
	return &LLMRecognizer{
		chat:       chat,
		model:      model,
		maxRetries: maxRetries,
		chunkSize:  DefaultChunkSize,
		system:     llmSystemPrompt + schema,
		logger:     logging.OrDiscard(logger),
	}
}

// Name implements Recognizer.
func (r *LLMRecognizer) Name() string {
	if r.model == "" {
		return "llm"
	}
	return "llm:" + r.model
}

// Recognize implements Recognizer.
func (r *LLMRecognizer) Recognize(ctx context.Context, texts []string) ([][]types.Mention, error) {
	out := make([][]types.Mention, len(texts))
	for i, text := range texts {
		var mentions []types.Mention
		for _, chunk := range splitChunks(text, r.chunkSize) {
			resp, err := r.callWithRetry(ctx, chunk)
			if err != nil {
				return nil, err
			}
			for _, ent := range resp.Entities {
				mentions = append(mentions, types.Mention{Text: ent.Text, Category: types.Category(strings.ToUpper(ent.Label))})
			}
		}
		out[i] = mentions
	}
	return out, nil
}

// Close implements Recognizer.
func (r *LLMRecognizer) Close() error { return nil }

func (r *LLMRecognizer) callWithRetry(ctx context.Context, chunk string) (llmResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			r.logger.Debug("retrying entity chat", "attempt", attempt, "backoff", backoff, "err", lastErr)
			select {
			case <-ctx.Done():
				return llmResponse{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		reply, err := r.chat.Complete(ctx, r.system, chunk)
		if err == nil {
			var resp llmResponse
			if err = ai.UnmarshalFlexible(reply, &resp); err == nil {
				return resp, nil
			}
		}
		if ctx.Err() != nil {
			return llmResponse{}, ctx.Err()
		}
		lastErr = err
	}
	return llmResponse{}, fmt.Errorf("after %d retries: %w", r.maxRetries, lastErr)
}

// splitChunks cuts text into pieces of at most size bytes, preferring line
// breaks. A single line longer than size is cut at a space, or hard-cut when
// it has none.
func splitChunks(text string, size int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if size <= 0 || len(text) <= size {
		return []string{text}
	}

	var chunks []string
	for len(text) > size {
		cut := strings.LastIndexByte(text[:size], '\n')
		if cut <= 0 {
			cut = strings.LastIndexByte(text[:size], ' ')
		}
		if cut <= 0 {
			cut = size
			for cut > 1 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimLeft(text[cut:], "\n ")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
