package schemas

import (
	"fmt"

	"github.com/detekoi/iron-golem/models"
)

// NormalizeRecipe validates a recipe payload and pads short slot lists to
// the full grid. The model occasionally returns fewer than nine slots for
// shapeless recipes; anything beyond the grid is an error, not a guess.
func NormalizeRecipe(r *models.CraftingRecipe) error {
	if r == nil {
		return fmt.Errorf("recipe is nil")
	}
	if r.OutputItem == "" {
		return fmt.Errorf("recipe has no output item")
	}
	if len(r.Slots) > models.RecipeGridSize {
		return fmt.Errorf("recipe has %d slots, grid holds %d", len(r.Slots), models.RecipeGridSize)
	}
	for len(r.Slots) < models.RecipeGridSize {
		r.Slots = append(r.Slots, models.EmptySlot)
	}
	for i, slot := range r.Slots {
		if slot == "" {
			r.Slots[i] = models.EmptySlot
		}
	}
	if r.OutputAmount < 1 {
		r.OutputAmount = 1
	}
	return nil
}
