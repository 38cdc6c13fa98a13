// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/pdiddy/filing-cloud/internal/logging"
	"github.com/pdiddy/filing-cloud/pkg/types"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint,
// including Together.
type OpenAIClient struct {
	model  string
	client openai.Client
	logger *log.Logger
}

// NewOpenAIClient creates a client for cfg.BaseURL (the OpenAI default when
// empty). cfg.MaxRetries is passed through unchanged.
func NewOpenAIClient(cfg types.AIConfig, logger *log.Logger) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{
		model:  cfg.Model,
		client: openai.NewClient(opts...),
		logger: logging.OrDiscard(logger),
	}
}

// Complete sends the system and user messages and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	body := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, body)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	c.logger.Debug("chat completion",
		"model", c.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"duration", time.Since(start))

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response from model")
	}
	return resp.Choices[0].Message.Content, nil
}
