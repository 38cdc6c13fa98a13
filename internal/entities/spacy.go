// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entities

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/filing-cloud/internal/httputil"
	"github.com/pdiddy/filing-cloud/internal/logging"
	"github.com/pdiddy/filing-cloud/pkg/types"
)

// DefaultSpacyModel is sent when no model is configured.
const DefaultSpacyModel = "en_core_web_sm"

// SpacyRecognizer calls an HTTP service that runs a spaCy pipeline. One
// request carries a whole batch.
type SpacyRecognizer struct {
	client   *http.Client
	endpoint string
	model    string
	logger   *log.Logger
}

type spacyRequest struct {
	Model string   `json:"model"`
	Texts []string `json:"texts"`
}

type spacyEntity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

type spacyResponse struct {
	Docs []struct {
		Ents []spacyEntity `json:"ents"`
	} `json:"docs"`
}

// NewSpacyRecognizer creates a recognizer posting to endpoint.
func NewSpacyRecognizer(client *http.Client, endpoint, model string, logger *log.Logger) *SpacyRecognizer {
	if client == nil {
		client = http.DefaultClient
	}
	if model == "" {
		model = DefaultSpacyModel
	}
	return &SpacyRecognizer{client: client, endpoint: endpoint, model: model, logger: logging.OrDiscard(logger)}
}

// Name implements Recognizer.
func (r *SpacyRecognizer) Name() string { return "spacy:" + r.model }

// Recognize implements Recognizer.
func (r *SpacyRecognizer) Recognize(ctx context.Context, texts []string) ([][]types.Mention, error) {
	body, err := json.Marshal(spacyRequest{Model: r.model, Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, r.client, req, 0, r.logger)
	if err != nil {
		return nil, fmt.Errorf("spacy request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("spacy service returned HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var sr spacyResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing spacy response: %w", err)
	}
	if len(sr.Docs) != len(texts) {
		return nil, fmt.Errorf("spacy service returned %d docs for %d texts", len(sr.Docs), len(texts))
	}

	out := make([][]types.Mention, len(texts))
	for i, doc := range sr.Docs {
		mentions := make([]types.Mention, 0, len(doc.Ents))
		for _, ent := range doc.Ents {
			mentions = append(mentions, types.Mention{Text: ent.Text, Category: types.Category(ent.Label)})
		}
		out[i] = mentions
	}
	return out, nil
}

// Close implements Recognizer.
func (r *SpacyRecognizer) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
