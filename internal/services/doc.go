// Package services implements the recipe sharing operations on top of the repositories.
//
// # Recipe aggregate
//
// [RecipeService] owns the recipe aggregate. Create and Update validate a [models.RecipeDraft]
// before any database work, then check that every referenced ingredient and tag exists, write the
// recipe row and replace its ingredient lines and tag links inside one transaction.
// Updates are always full replacements.
//
// # Shopping list
//
// [ShoppingListService] sums the ingredient lines of every recipe in a user's cart, grouped by
// ingredient name and measurement unit.
//
// # Relations
//
// [MarkService] handles favorites and shopping cart entries; [SubscriptionService] handles
// follower to author subscriptions. Uniqueness is enforced by the database and surfaces as
// [shared.ErrConflict].
//
// # Actors
//
// Every call that mutates state takes an explicit [Actor]. The anonymous actor may read only;
// mutations return [shared.ErrUnauthorized]. Ownership failures return [shared.ErrForbidden].
package services
