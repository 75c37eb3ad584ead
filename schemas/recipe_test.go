package schemas

import (
	"testing"

	"github.com/detekoi/iron-golem/models"
)

func TestNormalizeRecipe_PadsSlots(t *testing.T) {
	r := &models.CraftingRecipe{
		Slots:      []string{"stick", "stick"},
		OutputItem: "Ladder",
	}
	if err := NormalizeRecipe(r); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(r.Slots) != models.RecipeGridSize {
		t.Errorf("Expected %d slots, got %d", models.RecipeGridSize, len(r.Slots))
	}
	if r.Slots[8] != models.EmptySlot {
		t.Errorf("Expected padded slot to be %q, got %q", models.EmptySlot, r.Slots[8])
	}
	if r.OutputAmount != 1 {
		t.Errorf("Expected default output amount 1, got %d", r.OutputAmount)
	}
}

func TestNormalizeRecipe_EmptySlotNames(t *testing.T) {
	r := &models.CraftingRecipe{
		Slots:        []string{"", "iron ingot", "", "", "", "", "", "", ""},
		OutputItem:   "Iron Nugget",
		OutputAmount: 9,
	}
	if err := NormalizeRecipe(r); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.Slots[0] != models.EmptySlot {
		t.Errorf("Expected blank slot normalized to %q, got %q", models.EmptySlot, r.Slots[0])
	}
}

func TestNormalizeRecipe_Errors(t *testing.T) {
	if err := NormalizeRecipe(nil); err == nil {
		t.Error("Expected error for nil recipe")
	}

	noOutput := &models.CraftingRecipe{Slots: []string{"plank"}}
	if err := NormalizeRecipe(noOutput); err == nil {
		t.Error("Expected error for missing output item")
	}

	tooMany := &models.CraftingRecipe{
		Slots:      make([]string, models.RecipeGridSize+1),
		OutputItem: "Chest",
	}
	if err := NormalizeRecipe(tooMany); err == nil {
		t.Error("Expected error for oversized slot list")
	}
}
