package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/foodgram/internal/shared"
)

// Limits bounds the numeric fields of a recipe.
type Limits struct {
	MinCookingTime      int
	MaxCookingTime      int
	MinIngredientAmount int
	MaxIngredientAmount int
}

// DefaultLimits returns the stock cooking time and amount bounds.
func DefaultLimits() Limits {
	return Limits{
		MinCookingTime:      1,
		MaxCookingTime:      600,
		MinIngredientAmount: 1,
		MaxIngredientAmount: 5000,
	}
}

// IngredientLine is one ingredient of a recipe with its amount in the ingredient's unit.
type IngredientLine struct {
	IngredientID    string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// Recipe is the aggregate root: recipe fields plus its ingredient lines and tags.
type Recipe struct {
	base
	AuthorID    string
	Name        string
	Text        string
	Image       string
	CookingTime int
	PublishedAt time.Time
	Ingredients []IngredientLine
	Tags        []*Tag
}

// NewRecipe creates a [Recipe] owned by authorID from a validated draft.
func NewRecipe(sequence int, authorID string, draft *RecipeDraft) *Recipe {
	r := &Recipe{base: newBase(sequence), AuthorID: authorID}
	r.PublishedAt = r.createdAt
	r.Apply(draft)
	return r
}

// Apply copies the draft's scalar fields onto r. Lines and tags are written separately.
func (r *Recipe) Apply(draft *RecipeDraft) {
	r.Name = draft.Name
	r.Text = draft.Text
	r.Image = draft.Image
	r.CookingTime = draft.CookingTime
}

// Validate checks the persisted fields of the recipe.
func (r *Recipe) Validate() error {
	if r.AuthorID == "" {
		return shared.NewValidationError("author", "recipe must have an author")
	}
	if r.Name == "" {
		return shared.NewValidationError("name", "this field is required")
	}
	if r.CookingTime <= 0 {
		return shared.NewValidationError("cooking_time", "must be positive")
	}
	return nil
}

// TagIDs returns the ids of the recipe's tags in order.
func (r *Recipe) TagIDs() []string {
	ids := make([]string, len(r.Tags))
	for i, t := range r.Tags {
		ids[i] = t.ID()
	}
	return ids
}

// DraftIngredient references an existing ingredient by id with the amount to use.
type DraftIngredient struct {
	ID     string `json:"id" validate:"required"`
	Amount int    `json:"amount"`
}

// RecipeDraft is the input for creating or fully replacing a recipe.
type RecipeDraft struct {
	Name        string            `json:"name" validate:"required,max=256"`
	Text        string            `json:"text" validate:"required"`
	Image       string            `json:"image" validate:"required"`
	CookingTime int               `json:"cooking_time"`
	Ingredients []DraftIngredient `json:"ingredients" validate:"required,min=1,dive"`
	Tags        []string          `json:"tags" validate:"required,min=1,dive,required"`
}

// Validate performs the structural checks that need no database access.
//
// Failures are reported as [shared.ValidationError] naming the offending field.
func (d *RecipeDraft) Validate(limits Limits) error {
	if err := shared.ValidateStruct(d); err != nil {
		return err
	}

	if d.CookingTime < limits.MinCookingTime || d.CookingTime > limits.MaxCookingTime {
		return shared.NewValidationError("cooking_time", "must be between %d and %d", limits.MinCookingTime, limits.MaxCookingTime)
	}

	seen := make(map[string]struct{}, len(d.Ingredients))
	for i, line := range d.Ingredients {
		if _, dup := seen[line.ID]; dup {
			return shared.NewValidationError("ingredients", "ingredient %s is listed more than once", line.ID)
		}
		seen[line.ID] = struct{}{}

		if line.Amount < limits.MinIngredientAmount || line.Amount > limits.MaxIngredientAmount {
			return shared.NewValidationError(fmt.Sprintf("ingredients[%d].amount", i),
				"must be between %d and %d", limits.MinIngredientAmount, limits.MaxIngredientAmount)
		}
	}

	tags := make(map[string]struct{}, len(d.Tags))
	for _, id := range d.Tags {
		if _, dup := tags[id]; dup {
			return shared.NewValidationError("tags", "tag %s is listed more than once", id)
		}
		tags[id] = struct{}{}
	}

	return nil
}

// IngredientIDs returns the referenced ingredient ids in draft order.
func (d *RecipeDraft) IngredientIDs() []string {
	ids := make([]string, len(d.Ingredients))
	for i, line := range d.Ingredients {
		ids[i] = line.ID
	}
	return ids
}

// RecipeView is a recipe as seen by a particular viewer.
type RecipeView struct {
	*Recipe
	Author           *User
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeFilter narrows a recipe listing.
type RecipeFilter struct {
	AuthorID    string
	TagSlugs    []string
	FavoritedBy string // only recipes favorited by this user
	InCartOf    string // only recipes in this user's cart
	Limit       int
	Offset      int
}

// RecipePage is one page of a recipe listing.
type RecipePage struct {
	Count   int
	Recipes []*Recipe
}
