package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/detekoi/iron-golem/logger"
	"github.com/detekoi/iron-golem/models"
)

// Client wraps the generative model API with the three call shapes this
// service needs: the streaming reply, best-effort side-calls (intent
// routing, recipe generation, titles) and structured summarization.
// Construct one at startup and share it; it is safe for concurrent use.
type Client struct {
	genai       *genai.Client
	model       string
	routerModel string
	log         *logger.Logger

	// The two recipe-pipeline stages, swappable in tests. NewClient binds
	// them to ClassifyRecipeIntent and GenerateRecipe.
	classifyFn func(ctx context.Context, utterance string) (bool, error)
	generateFn func(ctx context.Context, utterance, edition string) (*models.CraftingRecipe, error)
}

// Options configures a Client. Model is the primary reply model,
// RouterModel the cheaper classifier used only for yes/no intent routing.
type Options struct {
	APIKey      string
	Model       string
	RouterModel string
	Log         *logger.Logger
}

// NewClient builds a Client against the Gemini API backend.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if opts.RouterModel == "" {
		opts.RouterModel = opts.Model
	}
	if opts.Log == nil {
		opts.Log = logger.New("gemini")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c := &Client{
		genai:       gc,
		model:       opts.Model,
		routerModel: opts.RouterModel,
		log:         opts.Log,
	}
	c.classifyFn = c.ClassifyRecipeIntent
	c.generateFn = c.GenerateRecipe
	return c, nil
}

// Model returns the primary model name.
func (c *Client) Model() string { return c.model }

// RouterModel returns the classifier model name.
func (c *Client) RouterModel() string { return c.routerModel }

// toContents converts a transcript to provider content blocks. Empty
// turns are preserved here; callers sanitize history before conversion.
func toContents(msgs []models.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(msgs))
	for _, msg := range msgs {
		parts := make([]*genai.Part, 0, len(msg.Parts))
		for _, p := range msg.Parts {
			parts = append(parts, &genai.Part{Text: p.Text})
		}
		contents = append(contents, &genai.Content{
			Role:  msg.Role,
			Parts: parts,
		})
	}
	return contents
}

// injectSummary prefixes a transcript with the session context as a
// synthetic user/model exchange, so the provider treats it as prior
// conversation rather than instructions.
func injectSummary(history []models.ChatMessage, summary *models.SessionSummary) []models.ChatMessage {
	if summary == nil {
		return history
	}
	context, err := summaryContextMessage(summary)
	if err != nil {
		return history
	}
	injected := make([]models.ChatMessage, 0, len(history)+2)
	injected = append(injected,
		models.NewTextMessage(models.RoleUser, context),
		models.NewTextMessage(models.RoleModel, summaryAckMessage),
	)
	return append(injected, history...)
}
