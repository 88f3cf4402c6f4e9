// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository runs against a [Querier], which is either the connection pool or a transaction, so
// the same code serves single statements and the multi-step recipe writes. [Store] bundles the repositories
// and [Store.WithTx] rebinds all of them to one transaction.
//
// Key Implementations:
//   - [UserRepository] : user accounts with soft deletes and username lookups
//   - [IngredientRepository] : immutable ingredient reference data with prefix search
//   - [TagRepository] : tags with slug lookups
//   - [RecipeRepository] : the recipe aggregate with wholesale replacement of lines and tag links
//   - [MarkRepository] : favorites and shopping cart (user, recipe) pairs
//   - [SubscriptionRepository] : follower to author pairs
//   - [ShoppingListRepository] : grouped ingredient totals over a user's cart
//   - [IngredientSink] : duplicate-tolerant ingredient inserts for bulk loading
//
// Constraint failures reported by SQLite are translated into the shared sentinels: unique violations into
// shared.ErrConflict and foreign key violations into shared.ErrNotFound.
//
// Sequence numbers provide stable, human-readable ordering (e.g., user #42, recipe #15) independent of UUIDs.
// The [NextSequence] function increments per-table counters in dedicated sequence tables.
package repositories
