package drinks

import (
	"encoding/json"
	"fmt"
)

// Ingredient is one component of a recipe
type Ingredient struct {
	Color string `json:"color"`
	Name  string `json:"name"`
	Parts int    `json:"parts"`
}

// Drink is a persisted drink record. ID is assigned by the store.
type Drink struct {
	ID     int64
	Title  string
	Recipe []Ingredient
}

// Short is the public list projection
type Short struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Long is the detailed projection including the recipe
type Long struct {
	ID     int64        `json:"id"`
	Title  string       `json:"title"`
	Recipe []Ingredient `json:"recipe"`
}

// Short returns the list projection
func (d Drink) Short() Short {
	return Short{ID: d.ID, Title: d.Title}
}

// Long returns the detailed projection. A nil recipe renders as [].
func (d Drink) Long() Long {
	recipe := d.Recipe
	if recipe == nil {
		recipe = []Ingredient{}
	}
	return Long{ID: d.ID, Title: d.Title, Recipe: recipe}
}

// ShortList projects a slice of drinks
func ShortList(items []Drink) []Short {
	out := make([]Short, 0, len(items))
	for _, d := range items {
		out = append(out, d.Short())
	}
	return out
}

// LongList projects a slice of drinks
func LongList(items []Drink) []Long {
	out := make([]Long, 0, len(items))
	for _, d := range items {
		out = append(out, d.Long())
	}
	return out
}

// EncodeRecipe serializes a recipe for the text column
func EncodeRecipe(recipe []Ingredient) (string, error) {
	if recipe == nil {
		recipe = []Ingredient{}
	}
	data, err := json.Marshal(recipe)
	if err != nil {
		return "", fmt.Errorf("failed to encode recipe: %w", err)
	}
	return string(data), nil
}

// DecodeRecipe parses the stored recipe text
func DecodeRecipe(raw string) ([]Ingredient, error) {
	var recipe []Ingredient
	if err := json.Unmarshal([]byte(raw), &recipe); err != nil {
		return nil, fmt.Errorf("failed to decode recipe: %w", err)
	}
	if recipe == nil {
		recipe = []Ingredient{}
	}
	return recipe, nil
}
