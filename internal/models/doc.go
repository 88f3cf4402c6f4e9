// Package models defines domain entities and persistence interfaces for the foodgram recipe service.
//
// Persistent entities implement [Model] and carry an id, a creation sequence and timestamps:
//   - [User] : accounts that author recipes and follow other users (soft deleted)
//   - [Ingredient] : reference data, unique by name and measurement unit
//   - [Tag] : recipe labels with a unique name and slug
//   - [Recipe] : the aggregate root owning its [IngredientLine] rows and tag links
//
// Input and read types:
//   - [RecipeDraft] : the validated input for creating or replacing a recipe
//   - [RecipeView] : a recipe plus viewer-specific favorite and cart flags
//   - [ShoppingListItem] : one aggregated line of a shopping list
//
// The Repository[T] interface defines standard CRUD operations for database access.
package models
