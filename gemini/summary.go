package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/detekoi/iron-golem/logger"
	"github.com/detekoi/iron-golem/models"
	"github.com/detekoi/iron-golem/schemas"
)

// summarySchema constrains the summarization call to the session summary
// document shape. Inventory maps are left as free-form objects.
var summarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summaryVersion": {Type: genai.TypeString},
		"lastUpdated":    {Type: genai.TypeString, Description: "ISO8601 timestamp"},
		"currentProjects": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":        {Type: genai.TypeString},
					"type":        {Type: genai.TypeString},
					"status":      {Type: genai.TypeString, Enum: []string{"planning", "in-progress", "completed"}},
					"description": {Type: genai.TypeString},
					"progress":    {Type: genai.TypeNumber},
					"nextSteps":   {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"blockers":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				},
				Required: []string{"name", "type", "status", "description", "progress", "nextSteps"},
			},
		},
		"knowledgeBase": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"mechanicsLearned":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"recipesKnown":         {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"strategiesDiscovered": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			},
			Required: []string{"mechanicsLearned", "recipesKnown", "strategiesDiscovered"},
		},
		"goals": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"shortTerm": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"longTerm":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			},
			Required: []string{"shortTerm", "longTerm"},
		},
	},
	Required: []string{"summaryVersion", "lastUpdated", "currentProjects", "knowledgeBase", "goals"},
}

// Summarize extracts a structured session summary from a transcript.
// The model output is defaulted and validated; if it still fails
// validation, a minimal valid fallback is returned instead of an error.
// Only transport-level failures surface as errors.
func (c *Client) Summarize(ctx context.Context, msgs []models.ChatMessage) (*models.SessionSummary, error) {
	if len(msgs) == 0 {
		return nil, fmt.Errorf("no messages to summarize")
	}

	timer := c.log.StartTimer()
	resp, err := c.genai.Models.GenerateContent(ctx, c.model,
		genai.Text(summaryPrompt(msgs)),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   summarySchema,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("summarization call failed: %w", err)
	}

	var summary models.SessionSummary
	if err := json.Unmarshal([]byte(resp.Text()), &summary); err != nil {
		c.log.Warn("Summary output was not valid JSON, using fallback", logger.Fields{
			"error":  err.Error(),
			"output": logger.Preview(resp.Text(), logger.PreviewLen),
		})
		fallback := schemas.FallbackSummary()
		return &fallback, nil
	}

	summary.SummaryVersion = models.SummaryVersion
	summary.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	schemas.ApplyDefaults(&summary)

	if err := schemas.ValidateSummary(&summary); err != nil {
		c.log.Warn("Summary failed validation, using fallback", logger.Fields{
			"error": err.Error(),
		})
		fallback := schemas.FallbackSummary()
		return &fallback, nil
	}

	timer.Done("Session summarized", logger.Fields{
		"model":    c.model,
		"messages": len(msgs),
		"projects": len(summary.CurrentProjects),
	})
	return &summary, nil
}
