package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/detekoi/iron-golem/models"
)

// titleContextTurns caps how much of the conversation feeds title
// generation.
const titleContextTurns = 4

// GenerateTitle produces a short session title from the opening turns of
// a conversation. Empty or unusable model output falls back to the
// placeholder name.
func (c *Client) GenerateTitle(ctx context.Context, msgs []models.ChatMessage) (string, error) {
	if len(msgs) == 0 {
		return "", fmt.Errorf("no messages to title")
	}
	if len(msgs) > titleContextTurns {
		msgs = msgs[:titleContextTurns]
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model,
		genai.Text(titlePrompt(msgs)),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: titleInstruction}},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("title generation failed: %w", err)
	}

	title := strings.TrimSpace(resp.Text())
	title = strings.Trim(title, `"'`)
	if title == "" {
		return models.DefaultSessionName, nil
	}
	return title, nil
}
