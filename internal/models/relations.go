package models

import "time"

// RecipeMark is a (user, recipe) pair such as a favorite or a shopping cart entry.
type RecipeMark struct {
	UserID    string
	RecipeID  string
	CreatedAt time.Time
}

// Subscription records that UserID follows AuthorID.
type Subscription struct {
	UserID    string
	AuthorID  string
	CreatedAt time.Time
}

// FollowedAuthor is an author in a subscription listing with a preview of their recipes.
type FollowedAuthor struct {
	Author       *User
	Recipes      []*Recipe
	RecipesCount int
}

// ShoppingListItem is the total amount of one ingredient across every recipe in a cart.
type ShoppingListItem struct {
	IngredientName  string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	TotalAmount     int    `json:"amount"`
}

// ShoppingList is a user's aggregated cart as of Date, ready for rendering.
type ShoppingList struct {
	Owner *User
	Items []ShoppingListItem
	Date  time.Time
}
