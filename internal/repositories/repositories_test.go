package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func mustUser(t *testing.T, store *Store, username string) *models.User {
	t.Helper()
	user := models.NewUser(0, username+"@example.com", username)
	if err := store.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func mustIngredient(t *testing.T, store *Store, name, unit string) *models.Ingredient {
	t.Helper()
	ing := models.NewIngredient(0, name, unit)
	if err := store.Ingredients.Create(context.Background(), ing); err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ing
}

func mustTag(t *testing.T, store *Store, slug string) *models.Tag {
	t.Helper()
	tag := models.NewTag(0, slug, slug)
	if err := store.Tags.Create(context.Background(), tag); err != nil {
		t.Fatalf("failed to create tag %s: %v", slug, err)
	}
	return tag
}

// mustRecipe writes a recipe with lines and tags in one transaction, the way the recipe service does.
func mustRecipe(t *testing.T, store *Store, author *models.User, name string, lines []models.DraftIngredient, tags ...*models.Tag) *models.Recipe {
	t.Helper()
	ctx := context.Background()

	tagIDs := make([]string, len(tags))
	for i, tag := range tags {
		tagIDs[i] = tag.ID()
	}
	draft := &models.RecipeDraft{Name: name, Text: "text", Image: "img.png", CookingTime: 10, Ingredients: lines, Tags: tagIDs}

	recipe := models.NewRecipe(0, author.ID(), draft)
	err := store.WithTx(ctx, func(tx *Store) error {
		if err := tx.Recipes.Create(ctx, recipe); err != nil {
			return err
		}
		if err := tx.Recipes.ReplaceIngredients(ctx, recipe.ID(), lines); err != nil {
			return err
		}
		return tx.Recipes.ReplaceTags(ctx, recipe.ID(), tagIDs)
	})
	if err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	return recipe
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(ctx, db, "recipes")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(ctx, db, "nonexistent"); err == nil {
		t.Error("expected error for a table without a sequence")
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		user := models.NewUser(0, "test@example.com", "tester")

		if err := store.Users.Create(ctx, user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		if user.ID() == "" {
			t.Error("user ID should be set after creation")
		}
		if user.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", user.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		user := models.NewUser(0, "test@example.com", "tester")
		user.FirstName = "Test"
		user.IsStaff = true
		if err := store.Users.Create(ctx, user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		retrieved, err := store.Users.Get(ctx, user.ID())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}

		if retrieved.Email != user.Email || retrieved.Username != user.Username {
			t.Errorf("expected %s/%s, got %s/%s", user.Email, user.Username, retrieved.Email, retrieved.Username)
		}
		if !retrieved.IsStaff || retrieved.FirstName != "Test" {
			t.Errorf("staff flag or first name not persisted: %+v", retrieved)
		}

		byName, err := store.Users.GetByUsername(ctx, "tester")
		if err != nil || byName.ID() != user.ID() {
			t.Errorf("GetByUsername returned %v, %v", byName, err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		user := mustUser(t, store, "tester")

		user.LastName = "Updated"
		if err := store.Users.Update(ctx, user); err != nil {
			t.Fatalf("failed to update user: %v", err)
		}

		retrieved, err := store.Users.Get(ctx, user.ID())
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if retrieved.LastName != "Updated" {
			t.Errorf("expected last name Updated, got %s", retrieved.LastName)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		user := mustUser(t, store, "tester")

		if err := store.Users.Delete(ctx, user.ID()); err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}

		if _, err := store.Users.Get(ctx, user.ID()); err == nil {
			t.Error("soft-deleted user should not be returned")
		}

		exists, err := store.Users.Exists(ctx, user.ID())
		if err != nil || exists {
			t.Errorf("soft-deleted user should not exist, got %v, %v", exists, err)
		}
	})

	t.Run("List", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		alice := mustUser(t, store, "alice")
		bob := mustUser(t, store, "bob")
		mustUser(t, store, "carol")

		all, err := store.Users.List(ctx, nil)
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 users, got %d", len(all))
		}
		if all[0].Username != "alice" {
			t.Errorf("users should be ordered by sequence, got %s first", all[0].Username)
		}

		some, err := store.Users.List(ctx, map[string]any{"ids": []string{bob.ID(), alice.ID()}})
		if err != nil {
			t.Fatalf("failed to list users by id: %v", err)
		}
		if len(some) != 2 {
			t.Errorf("expected 2 users, got %d", len(some))
		}

		byEmail, err := store.Users.List(ctx, map[string]any{"email": "bob@example.com"})
		if err != nil || len(byEmail) != 1 || byEmail[0].ID() != bob.ID() {
			t.Errorf("email filter returned %v, %v", byEmail, err)
		}
	})
}

func TestCatalogRepositories(t *testing.T) {
	ctx := context.Background()

	t.Run("Ingredient Search", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		mustIngredient(t, store, "sugar", "g")
		mustIngredient(t, store, "Salt", "g")
		mustIngredient(t, store, "salmon", "g")
		mustIngredient(t, store, "50%_cream", "ml")

		got, err := store.Ingredients.Search(ctx, "sa", 0)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 matches, got %d", len(got))
		}
		if got[0].Name != "salmon" || got[1].Name != "Salt" {
			t.Errorf("expected case-insensitive name order [salmon Salt], got [%s %s]", got[0].Name, got[1].Name)
		}

		literal, err := store.Ingredients.Search(ctx, "50%_", 0)
		if err != nil || len(literal) != 1 {
			t.Errorf("wildcards in the prefix should match literally, got %d, %v", len(literal), err)
		}

		limited, err := store.Ingredients.Search(ctx, "", 2)
		if err != nil || len(limited) != 2 {
			t.Errorf("expected 2 results with limit, got %d, %v", len(limited), err)
		}

		n, err := store.Ingredients.Count(ctx)
		if err != nil || n != 4 {
			t.Errorf("expected 4 ingredients, got %d, %v", n, err)
		}
	})

	t.Run("Ingredient Missing", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		flour := mustIngredient(t, store, "flour", "g")

		missing, err := store.Ingredients.Missing(ctx, []string{flour.ID(), "nope", "gone"})
		if err != nil {
			t.Fatalf("missing failed: %v", err)
		}
		if len(missing) != 2 || missing[0] != "nope" || missing[1] != "gone" {
			t.Errorf("unexpected missing ids %v", missing)
		}
	})

	t.Run("Tags", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		breakfast := mustTag(t, store, "breakfast")
		mustTag(t, store, "dinner")

		tags, err := store.Tags.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(tags) != 2 || tags[0].Slug != "breakfast" {
			t.Errorf("unexpected tags %v", tags)
		}

		bySlug, err := store.Tags.GetBySlug(ctx, "breakfast")
		if err != nil || bySlug.ID() != breakfast.ID() {
			t.Errorf("GetBySlug returned %v, %v", bySlug, err)
		}
	})
}

func TestRecipeRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create And Get", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		author := mustUser(t, store, "chef")
		flour := mustIngredient(t, store, "flour", "g")
		milk := mustIngredient(t, store, "milk", "ml")
		tag := mustTag(t, store, "breakfast")

		lines := []models.DraftIngredient{{ID: milk.ID(), Amount: 300}, {ID: flour.ID(), Amount: 200}}
		recipe := mustRecipe(t, store, author, "Pancakes", lines, tag)

		got, err := store.Recipes.Get(ctx, recipe.ID())
		if err != nil {
			t.Fatalf("failed to get recipe: %v", err)
		}

		if got.AuthorID != author.ID() || got.Name != "Pancakes" {
			t.Errorf("unexpected recipe %+v", got)
		}
		if len(got.Ingredients) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(got.Ingredients))
		}
		if got.Ingredients[0].IngredientID != milk.ID() || got.Ingredients[0].Amount != 300 || got.Ingredients[0].MeasurementUnit != "ml" {
			t.Errorf("lines should come back in write order, got %+v", got.Ingredients)
		}
		if len(got.Tags) != 1 || got.Tags[0].Slug != "breakfast" {
			t.Errorf("unexpected tags %v", got.Tags)
		}

		bySeq, err := store.Recipes.GetBySequence(ctx, recipe.Sequence())
		if err != nil || bySeq.ID() != recipe.ID() {
			t.Errorf("GetBySequence returned %v, %v", bySeq, err)
		}
	})

	t.Run("Replace Lines", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		author := mustUser(t, store, "chef")
		a := mustIngredient(t, store, "a", "g")
		b := mustIngredient(t, store, "b", "g")
		c := mustIngredient(t, store, "c", "g")
		tag := mustTag(t, store, "t")

		recipe := mustRecipe(t, store, author, "R", []models.DraftIngredient{{ID: a.ID(), Amount: 2}, {ID: b.ID(), Amount: 3}}, tag)

		err := store.WithTx(ctx, func(tx *Store) error {
			return tx.Recipes.ReplaceIngredients(ctx, recipe.ID(), []models.DraftIngredient{{ID: b.ID(), Amount: 5}, {ID: c.ID(), Amount: 1}})
		})
		if err != nil {
			t.Fatalf("replace failed: %v", err)
		}

		lines, err := store.Recipes.Ingredients(ctx, recipe.ID())
		if err != nil {
			t.Fatalf("failed to read lines: %v", err)
		}
		got := map[string]int{}
		for _, l := range lines {
			got[l.Name] = l.Amount
		}
		if len(got) != 2 || got["b"] != 5 || got["c"] != 1 {
			t.Errorf("expected {b:5 c:1}, got %v", got)
		}
	})

	t.Run("List Filters", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		alice := mustUser(t, store, "alice")
		bob := mustUser(t, store, "bob")
		salt := mustIngredient(t, store, "salt", "g")
		breakfast := mustTag(t, store, "breakfast")
		dinner := mustTag(t, store, "dinner")
		line := []models.DraftIngredient{{ID: salt.ID(), Amount: 1}}

		r1 := mustRecipe(t, store, alice, "Eggs", line, breakfast)
		r2 := mustRecipe(t, store, alice, "Steak", line, dinner)
		r3 := mustRecipe(t, store, bob, "Toast", line, breakfast, dinner)

		if _, err := store.Favorites.Add(ctx, bob.ID(), r1.ID()); err != nil {
			t.Fatalf("favorite failed: %v", err)
		}
		if _, err := store.Cart.Add(ctx, bob.ID(), r2.ID()); err != nil {
			t.Fatalf("cart failed: %v", err)
		}

		tc := []struct {
			name   string
			filter models.RecipeFilter
			want   []string
		}{
			{name: "all newest first", filter: models.RecipeFilter{}, want: []string{r3.ID(), r2.ID(), r1.ID()}},
			{name: "author", filter: models.RecipeFilter{AuthorID: alice.ID()}, want: []string{r2.ID(), r1.ID()}},
			{name: "tag", filter: models.RecipeFilter{TagSlugs: []string{"breakfast"}}, want: []string{r3.ID(), r1.ID()}},
			{name: "any of tags", filter: models.RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}}, want: []string{r3.ID(), r2.ID(), r1.ID()}},
			{name: "favorited", filter: models.RecipeFilter{FavoritedBy: bob.ID()}, want: []string{r1.ID()}},
			{name: "in cart", filter: models.RecipeFilter{InCartOf: bob.ID()}, want: []string{r2.ID()}},
			{name: "page", filter: models.RecipeFilter{Limit: 1, Offset: 1}, want: []string{r2.ID()}},
		}

		for _, c := range tc {
			t.Run(c.name, func(t *testing.T) {
				page, err := store.Recipes.List(ctx, c.filter)
				if err != nil {
					t.Fatalf("list failed: %v", err)
				}
				got := make([]string, len(page.Recipes))
				for i, r := range page.Recipes {
					got[i] = r.ID()
				}
				if fmt.Sprint(got) != fmt.Sprint(c.want) {
					t.Errorf("expected %v, got %v", c.want, got)
				}
			})
		}

		page, err := store.Recipes.List(ctx, models.RecipeFilter{Limit: 1})
		if err != nil || page.Count != 3 {
			t.Errorf("count should ignore pagination, got %v, %v", page, err)
		}

		n, err := store.Recipes.CountByAuthor(ctx, alice.ID())
		if err != nil || n != 2 {
			t.Errorf("expected alice to have 2 recipes, got %d, %v", n, err)
		}
	})

	t.Run("Delete Cascades", func(t *testing.T) {
		db := setupTestDB(t)
		store := NewStore(db)
		author := mustUser(t, store, "chef")
		eater := mustUser(t, store, "eater")
		salt := mustIngredient(t, store, "salt", "g")
		tag := mustTag(t, store, "t")
		recipe := mustRecipe(t, store, author, "R", []models.DraftIngredient{{ID: salt.ID(), Amount: 1}}, tag)

		if _, err := store.Favorites.Add(ctx, eater.ID(), recipe.ID()); err != nil {
			t.Fatalf("favorite failed: %v", err)
		}
		if _, err := store.Cart.Add(ctx, eater.ID(), recipe.ID()); err != nil {
			t.Fatalf("cart failed: %v", err)
		}

		if err := store.Recipes.Delete(ctx, recipe.ID()); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		for _, table := range []string{"recipe_ingredients", "recipe_tags", "favorites", "shopping_cart"} {
			var n int
			if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
				t.Fatalf("count %s: %v", table, err)
			}
			if n != 0 {
				t.Errorf("expected %s to be empty after cascade, got %d rows", table, n)
			}
		}
	})
}

func TestShoppingListRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Aggregate", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		author := mustUser(t, store, "chef")
		buyer := mustUser(t, store, "buyer")
		flour := mustIngredient(t, store, "flour", "g")
		sugar := mustIngredient(t, store, "sugar", "g")
		tag := mustTag(t, store, "baking")

		r1 := mustRecipe(t, store, author, "Bread", []models.DraftIngredient{{ID: flour.ID(), Amount: 200}}, tag)
		r2 := mustRecipe(t, store, author, "Cake", []models.DraftIngredient{{ID: flour.ID(), Amount: 100}, {ID: sugar.ID(), Amount: 50}}, tag)

		for _, r := range []*models.Recipe{r1, r2} {
			if _, err := store.Cart.Add(ctx, buyer.ID(), r.ID()); err != nil {
				t.Fatalf("cart add failed: %v", err)
			}
		}

		items, err := store.ShoppingList.Aggregate(ctx, buyer.ID())
		if err != nil {
			t.Fatalf("aggregate failed: %v", err)
		}

		want := []models.ShoppingListItem{
			{IngredientName: "flour", MeasurementUnit: "g", TotalAmount: 300},
			{IngredientName: "sugar", MeasurementUnit: "g", TotalAmount: 50},
		}
		if fmt.Sprint(items) != fmt.Sprint(want) {
			t.Errorf("expected %v, got %v", want, items)
		}
	})

	t.Run("Same Name Different Units", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		author := mustUser(t, store, "chef")
		grams := mustIngredient(t, store, "butter", "g")
		spoons := mustIngredient(t, store, "butter", "tbsp")
		tag := mustTag(t, store, "t")

		r := mustRecipe(t, store, author, "R", []models.DraftIngredient{{ID: spoons.ID(), Amount: 2}, {ID: grams.ID(), Amount: 30}}, tag)
		if _, err := store.Cart.Add(ctx, author.ID(), r.ID()); err != nil {
			t.Fatalf("cart add failed: %v", err)
		}

		items, err := store.ShoppingList.Aggregate(ctx, author.ID())
		if err != nil {
			t.Fatalf("aggregate failed: %v", err)
		}
		if len(items) != 2 || items[0].MeasurementUnit != "g" || items[1].MeasurementUnit != "tbsp" {
			t.Errorf("expected two butter rows ordered by unit, got %v", items)
		}
	})

	t.Run("Empty Cart", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		user := mustUser(t, store, "nobody")

		items, err := store.ShoppingList.Aggregate(ctx, user.ID())
		if err != nil {
			t.Fatalf("aggregate failed: %v", err)
		}
		if items == nil || len(items) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", items)
		}
	})
}

func TestSubscriptionRepository(t *testing.T) {
	ctx := context.Background()
	store := NewStore(setupTestDB(t))
	reader := mustUser(t, store, "reader")
	zed := mustUser(t, store, "zed")
	amy := mustUser(t, store, "amy")

	for _, author := range []*models.User{amy, zed} {
		if _, err := store.Subscriptions.Create(ctx, reader.ID(), author.ID()); err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}
	}

	ids, total, err := store.Subscriptions.Authors(ctx, reader.ID(), 10, 0)
	if err != nil {
		t.Fatalf("authors failed: %v", err)
	}
	if total != 2 || len(ids) != 2 || ids[0] != zed.ID() || ids[1] != amy.ID() {
		t.Errorf("expected [zed amy], newest subscription first, got %v (total %d)", ids, total)
	}

	exists, err := store.Subscriptions.Exists(ctx, reader.ID(), zed.ID())
	if err != nil || !exists {
		t.Errorf("expected subscription to exist, got %v, %v", exists, err)
	}

	if err := store.Subscriptions.Delete(ctx, reader.ID(), zed.ID()); err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}
	ids, total, _ = store.Subscriptions.Authors(ctx, reader.ID(), 0, 0)
	if total != 1 || len(ids) != 1 {
		t.Errorf("expected one remaining subscription, got %v", ids)
	}
}

func TestIngredientSink(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	sink := NewIngredientSink(db)

	batch := []*models.Ingredient{
		models.NewIngredient(0, "flour", "g"),
		models.NewIngredient(0, "milk", "ml"),
	}
	created, skipped, err := sink.WriteBatch(ctx, batch)
	if err != nil || created != 2 || skipped != 0 {
		t.Fatalf("first batch: created=%d skipped=%d err=%v", created, skipped, err)
	}

	again := []*models.Ingredient{
		models.NewIngredient(0, "flour", "g"),
		models.NewIngredient(0, "flour", "kg"),
	}
	created, skipped, err = sink.WriteBatch(ctx, again)
	if err != nil || created != 1 || skipped != 1 {
		t.Errorf("second batch: created=%d skipped=%d err=%v", created, skipped, err)
	}

	invalid := []*models.Ingredient{models.NewIngredient(0, "eggs", "pcs"), models.NewIngredient(0, "", "g")}
	if _, _, err := sink.WriteBatch(ctx, invalid); err == nil {
		t.Error("expected invalid ingredient to fail the batch")
	}

	n, _ := NewStore(db).Ingredients.Count(ctx)
	if n != 3 {
		t.Errorf("failed batch should roll back, expected 3 ingredients, got %d", n)
	}
}
