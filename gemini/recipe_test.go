package gemini

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/detekoi/iron-golem/logger"
	"github.com/detekoi/iron-golem/models"
)

func pipelineClient(
	classify func(ctx context.Context, utterance string) (bool, error),
	generate func(ctx context.Context, utterance, edition string) (*models.CraftingRecipe, error),
) *Client {
	return &Client{
		model:       "primary",
		routerModel: "router",
		log:         logger.NewWithWriters("test", io.Discard, io.Discard, io.Discard),
		classifyFn:  classify,
		generateFn:  generate,
	}
}

func TestFetchRecipe_ClassificationFailureResolvesToNil(t *testing.T) {
	generateCalled := false
	c := pipelineClient(
		func(ctx context.Context, utterance string) (bool, error) {
			return false, fmt.Errorf("router unavailable")
		},
		func(ctx context.Context, utterance, edition string) (*models.CraftingRecipe, error) {
			generateCalled = true
			return &models.CraftingRecipe{}, nil
		},
	)

	recipe := c.FetchRecipe(context.Background(), "how do I craft a chest?", models.EditionJava)
	if recipe != nil {
		t.Errorf("Expected nil recipe on classification failure, got %+v", recipe)
	}
	if generateCalled {
		t.Error("Expected generation stage to be skipped when classification fails")
	}
}

func TestFetchRecipe_NoIntentSkipsGeneration(t *testing.T) {
	generateCalled := false
	c := pipelineClient(
		func(ctx context.Context, utterance string) (bool, error) {
			return false, nil
		},
		func(ctx context.Context, utterance, edition string) (*models.CraftingRecipe, error) {
			generateCalled = true
			return &models.CraftingRecipe{}, nil
		},
	)

	recipe := c.FetchRecipe(context.Background(), "what biome do pandas spawn in?", models.EditionJava)
	if recipe != nil {
		t.Errorf("Expected nil recipe for non-recipe intent, got %+v", recipe)
	}
	if generateCalled {
		t.Error("Expected generation stage to be skipped for non-recipe intent")
	}
}

func TestFetchRecipe_GenerationFailureResolvesToNil(t *testing.T) {
	c := pipelineClient(
		func(ctx context.Context, utterance string) (bool, error) {
			return true, nil
		},
		func(ctx context.Context, utterance, edition string) (*models.CraftingRecipe, error) {
			return nil, fmt.Errorf("tool call produced no invocation")
		},
	)

	recipe := c.FetchRecipe(context.Background(), "how do I craft a piston?", models.EditionJava)
	if recipe != nil {
		t.Errorf("Expected nil recipe on generation failure, got %+v", recipe)
	}
}

func TestFetchRecipe_BothStagesSucceed(t *testing.T) {
	want := &models.CraftingRecipe{
		Slots:        []string{"air", "air", "air", "oak_planks", "oak_planks", "air", "oak_planks", "oak_planks", "air"},
		OutputItem:   "crafting_table",
		OutputAmount: 1,
	}
	c := pipelineClient(
		func(ctx context.Context, utterance string) (bool, error) {
			return true, nil
		},
		func(ctx context.Context, utterance, edition string) (*models.CraftingRecipe, error) {
			return want, nil
		},
	)

	recipe := c.FetchRecipe(context.Background(), "how do I craft a crafting table?", models.EditionJava)
	if recipe != want {
		t.Errorf("Expected the generated recipe, got %+v", recipe)
	}
}
