// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package narrate asks a chat service for a short commentary on the keywords
// behind a word cloud.
package narrate

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/filing-cloud/internal/ai"
	"github.com/pdiddy/filing-cloud/internal/curate"
	"github.com/pdiddy/filing-cloud/internal/logging"
)

// SystemPrompt instructs the narrative service.
const SystemPrompt = `You are given the most important keywords of a company, drawn from its 10-K filings, ` +
	`together with their weights. They have been rendered as a word cloud and shown to the user. ` +
	`Explain what insight these keywords give into the company and why a word cloud is a good way to show them. ` +
	`Comment on some of the individual keywords.`

// Narrator produces the commentary.
type Narrator struct {
	Chat   ai.Client
	Logger *log.Logger
}

// New returns a Narrator using chat.
func New(chat ai.Client, logger *log.Logger) *Narrator {
	return &Narrator{Chat: chat, Logger: logger}
}

// Narrate returns the service's commentary on payload. It always returns a
// string: a failed call or an empty reply yields {"error": "..."}.
func (n *Narrator) Narrate(ctx context.Context, payload string) string {
	logger := logging.OrDiscard(n.Logger)

	reply, err := n.Chat.Complete(ctx, SystemPrompt, payload)
	if err != nil {
		logger.Error("narrative failed", "err", err)
		return curate.ErrorPayload(err)
	}
	if strings.TrimSpace(reply) == "" {
		logger.Warn("narrative empty")
		return curate.ErrorPayload(errors.New("empty narrative response"))
	}
	return reply
}
