// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/ollama/ollama/api"

	"github.com/pdiddy/filing-cloud/internal/logging"
	"github.com/pdiddy/filing-cloud/pkg/types"
)

// OllamaClient talks to a local or proxied Ollama server.
type OllamaClient struct {
	model  string
	client *api.Client
	logger *log.Logger
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewOllamaClient connects to cfg.BaseURL, or to the Ollama default when it
// is empty. A non-empty APIKey is sent as a bearer token.
func NewOllamaClient(cfg types.AIConfig, logger *log.Logger) (*OllamaClient, error) {
	u := &url.URL{Scheme: "http", Host: "localhost:11434"}
	if cfg.BaseURL != "" {
		parsed, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing ollama base URL: %w", err)
		}
		u = parsed
	}

	httpClient := http.DefaultClient
	if cfg.APIKey != "" {
		httpClient = &http.Client{
			Transport: &headerTransport{
				headers: map[string]string{"Authorization": "Bearer " + cfg.APIKey},
				rt:      http.DefaultTransport,
			},
		}
	}

	return &OllamaClient{
		model:  cfg.Model,
		client: api.NewClient(u, httpClient),
		logger: logging.OrDiscard(logger),
	}, nil
}

// Complete sends a non-streaming chat request and returns the reply text.
func (c *OllamaClient) Complete(ctx context.Context, system, user string) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: &stream,
	}

	var final api.ChatResponse
	err := c.client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.Metrics = cr.Metrics
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	c.logger.Debug("ollama chat",
		"model", c.model,
		"prompt_tokens", final.Metrics.PromptEvalCount,
		"completion_tokens", final.Metrics.EvalCount,
		"duration", final.Metrics.TotalDuration)

	return final.Message.Content, nil
}
