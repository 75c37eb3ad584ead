package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/detekoi/iron-golem/logger"
	"github.com/detekoi/iron-golem/models"
	"github.com/detekoi/iron-golem/stores"
)

// StreamChat starts the primary reply stream for a turn. history carries
// the full transcript including the newest user utterance; summary, when
// present, is injected as synthetic context turns ahead of it. Chunks
// arrive on the first channel in generation order; a send on the second
// channel is fatal to the turn and terminates the stream. Both channels
// are closed when the stream ends.
func (c *Client) StreamChat(ctx context.Context, history []models.ChatMessage, summary *models.SessionSummary, edition string) (<-chan models.StreamChunk, <-chan error) {
	chunkChan := make(chan models.StreamChunk)
	errChan := make(chan error, 1)

	full := injectSummary(stores.SanitizeHistory(history), summary)
	if len(full) == 0 {
		errChan <- fmt.Errorf("no usable messages in history")
		close(errChan)
		close(chunkChan)
		return chunkChan, errChan
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: SystemInstruction(edition)}},
		},
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}

	timer := c.log.StartTimer()
	stream := c.genai.Models.GenerateContentStream(ctx, c.model, toContents(full), cfg)

	go func() {
		defer close(chunkChan)
		defer close(errChan)

		chunks := 0
		for resp, err := range stream {
			if err != nil {
				c.log.Error("Reply stream failed", logger.Fields{
					"model":  c.model,
					"chunks": chunks,
					"error":  err.Error(),
				})
				errChan <- fmt.Errorf("reply stream failed: %w", err)
				return
			}

			chunk := models.StreamChunk{Text: resp.Text()}
			if len(resp.Candidates) > 0 && resp.Candidates[0].GroundingMetadata != nil {
				if data, err := json.Marshal(resp.Candidates[0].GroundingMetadata); err == nil {
					chunk.Grounding = data
				}
			}
			if chunk.Text == "" && len(chunk.Grounding) == 0 {
				continue
			}

			select {
			case chunkChan <- chunk:
				chunks++
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}

		timer.Done("Reply stream finished", logger.Fields{
			"model":  c.model,
			"chunks": chunks,
		})
	}()

	return chunkChan, errChan
}
