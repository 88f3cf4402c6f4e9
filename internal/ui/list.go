package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/foodgram/internal/models"
)

var (
	_ list.Item = recipeItem{}
)

// recipeItem wraps [models.RecipeView] to implement [list.Item].
type recipeItem struct {
	recipe *models.RecipeView
}

func (i recipeItem) FilterValue() string { return i.recipe.Name }
func (i recipeItem) Title() string       { return i.recipe.Name }
func (i recipeItem) Description() string {
	desc := fmt.Sprintf("%d min • %d ingredients", i.recipe.CookingTime, len(i.recipe.Ingredients))
	if i.recipe.Author != nil {
		desc = fmt.Sprintf("%s • by %s", desc, i.recipe.Author.Username)
	}
	if len(i.recipe.Tags) > 0 {
		names := make([]string, len(i.recipe.Tags))
		for n, t := range i.recipe.Tags {
			names[n] = t.Name
		}
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(names, ", "))
	}
	return desc
}
