// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entities

import (
	"context"
	"fmt"

	"github.com/jdkato/prose/v2"

	"github.com/pdiddy/filing-cloud/pkg/types"
)

// ProseRecognizer runs the prose statistical NER model in process. The
// bundled model only tags PERSON and GPE, so it never yields EVENT, PRODUCT
// or LAW mentions and its GPE spans are dropped here.
type ProseRecognizer struct{}

// NewProseRecognizer returns the in-process recognizer.
func NewProseRecognizer() *ProseRecognizer {
	return &ProseRecognizer{}
}

// Name implements Recognizer.
func (r *ProseRecognizer) Name() string { return "prose" }

// Recognize implements Recognizer.
func (r *ProseRecognizer) Recognize(ctx context.Context, texts []string) ([][]types.Mention, error) {
	out := make([][]types.Mention, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
		if err != nil {
			return nil, fmt.Errorf("prose document %d: %w", i, err)
		}
		ents := doc.Entities()
		mentions := make([]types.Mention, 0, len(ents))
		for _, ent := range ents {
			if types.Category(ent.Label) != types.CategoryPerson {
				continue
			}
			mentions = append(mentions, types.Mention{Text: ent.Text, Category: types.CategoryPerson})
		}
		out[i] = mentions
	}
	return out, nil
}

// Close implements Recognizer.
func (r *ProseRecognizer) Close() error { return nil }
