package models

// RecipeGridSize is the number of slots in a crafting grid (3x3, row major).
const RecipeGridSize = 9

// EmptySlot marks an unused grid slot.
const EmptySlot = "air"

// CraftingRecipe is the structured side-payload produced by the recipe
// tool call. Slots is always RecipeGridSize entries, row major, with
// EmptySlot for unused positions.
type CraftingRecipe struct {
	Slots        []string `json:"slots"`
	OutputItem   string   `json:"outputItem"`
	OutputAmount int      `json:"outputAmount"`
}
