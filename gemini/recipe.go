package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/detekoi/iron-golem/logger"
	"github.com/detekoi/iron-golem/models"
	"github.com/detekoi/iron-golem/schemas"
)

// recipeToolName is the function the recipe call is constrained to.
const recipeToolName = "display_crafting_recipe"

var recipeTool = &genai.Tool{
	FunctionDeclarations: []*genai.FunctionDeclaration{
		{
			Name:        recipeToolName,
			Description: "Display a 3x3 crafting grid for a craftable Minecraft item.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"slots": {
						Type:        genai.TypeArray,
						Description: "Exactly 9 item identifiers, row major; \"air\" for empty slots.",
						Items:       &genai.Schema{Type: genai.TypeString},
					},
					"outputItem": {
						Type:        genai.TypeString,
						Description: "Identifier of the crafted item.",
					},
					"outputAmount": {
						Type:        genai.TypeInteger,
						Description: "How many items one craft produces.",
					},
				},
				Required: []string{"slots", "outputItem", "outputAmount"},
			},
		},
	},
}

// ClassifyRecipeIntent asks the router model whether the utterance is a
// crafting-recipe request. Any failure is reported as an error; callers
// treat errors as "no".
func (c *Client) ClassifyRecipeIntent(ctx context.Context, utterance string) (bool, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.routerModel,
		genai.Text(utterance),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: routerInstruction}},
			},
		},
	)
	if err != nil {
		return false, fmt.Errorf("router classification failed: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(resp.Text()))
	answer = strings.Trim(answer, `."'`)
	switch answer {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	return false, fmt.Errorf("router gave non-binary answer %q", answer)
}

// GenerateRecipe asks the primary model for a structured crafting grid.
// The call is constrained to emit exactly one recipe tool invocation; the
// result is normalized before return.
func (c *Client) GenerateRecipe(ctx context.Context, utterance, edition string) (*models.CraftingRecipe, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, c.model,
		genai.Text(utterance),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: recipeInstruction + editionNote(edition)}},
			},
			Tools: []*genai.Tool{recipeTool},
			ToolConfig: &genai.ToolConfig{
				FunctionCallingConfig: &genai.FunctionCallingConfig{
					Mode:                 genai.FunctionCallingConfigModeAny,
					AllowedFunctionNames: []string{recipeToolName},
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("recipe generation failed: %w", err)
	}

	calls := resp.FunctionCalls()
	if len(calls) == 0 {
		return nil, fmt.Errorf("recipe call produced no tool invocation")
	}
	call := calls[0]
	if call.Name != recipeToolName {
		return nil, fmt.Errorf("unexpected tool invocation %q", call.Name)
	}

	args, err := json.Marshal(call.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool args: %w", err)
	}
	var recipe models.CraftingRecipe
	if err := json.Unmarshal(args, &recipe); err != nil {
		return nil, fmt.Errorf("failed to decode recipe args: %w", err)
	}
	if err := schemas.NormalizeRecipe(&recipe); err != nil {
		return nil, fmt.Errorf("unusable recipe payload: %w", err)
	}
	return &recipe, nil
}

// FetchRecipe runs the two-stage recipe pipeline: classify intent on the
// router model, then generate the grid only when the answer is yes. Both
// stages are best-effort: any failure resolves to nil so the main reply
// is never affected.
func (c *Client) FetchRecipe(ctx context.Context, utterance, edition string) *models.CraftingRecipe {
	wanted, err := c.classifyFn(ctx, utterance)
	if err != nil {
		c.log.Warn("Recipe intent classification failed, assuming no", logger.Fields{
			"model": c.routerModel,
			"error": err.Error(),
		})
		return nil
	}
	if !wanted {
		return nil
	}

	recipe, err := c.generateFn(ctx, utterance, edition)
	if err != nil {
		c.log.Warn("Recipe generation failed, continuing without card", logger.Fields{
			"model": c.model,
			"error": err.Error(),
		})
		return nil
	}
	c.log.Info("Recipe generated", logger.Fields{
		"outputItem": recipe.OutputItem,
	})
	return recipe
}

func editionNote(edition string) string {
	if edition == models.EditionBedrock {
		return "\nThe player is on Bedrock Edition."
	}
	return "\nThe player is on Java Edition."
}
