package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/shared"
)

func TestUserRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			store := NewStore(setupTestDB(t))
			user := models.NewUser(0, "", "tester")

			err := store.Users.Create(ctx, user)
			if !errors.Is(err, shared.ErrValidation) {
				t.Fatalf("expected validation error for empty email, got %v", err)
			}
		})

		t.Run("DuplicateEmail", func(t *testing.T) {
			store := NewStore(setupTestDB(t))
			if err := store.Users.Create(ctx, models.NewUser(0, "test@example.com", "one")); err != nil {
				t.Fatalf("failed to create first user: %v", err)
			}

			err := store.Users.Create(ctx, models.NewUser(0, "test@example.com", "two"))
			if !errors.Is(err, shared.ErrConflict) {
				t.Fatalf("expected conflict for duplicate email, got %v", err)
			}
		})

		t.Run("DuplicateUsername", func(t *testing.T) {
			store := NewStore(setupTestDB(t))
			mustUser(t, store, "taken")

			err := store.Users.Create(ctx, models.NewUser(0, "other@example.com", "taken"))
			if !errors.Is(err, shared.ErrConflict) {
				t.Fatalf("expected conflict for duplicate username, got %v", err)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			store := NewStore(setupTestDB(t))

			_, err := store.Users.Get(ctx, "nonexistent-id")
			if !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			store := NewStore(setupTestDB(t))
			user := models.NewUser(0, "test@example.com", "tester")
			user.SetID("nonexistent-id")

			if err := store.Users.Update(ctx, user); !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
		})

		t.Run("Deleted", func(t *testing.T) {
			store := NewStore(setupTestDB(t))
			user := mustUser(t, store, "tester")
			if err := store.Users.Delete(ctx, user.ID()); err != nil {
				t.Fatalf("failed to delete user: %v", err)
			}

			user.LastName = "Ghost"
			if err := store.Users.Update(ctx, user); !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected not found when updating a deleted user, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("Twice", func(t *testing.T) {
			store := NewStore(setupTestDB(t))
			user := mustUser(t, store, "tester")
			if err := store.Users.Delete(ctx, user.ID()); err != nil {
				t.Fatalf("failed to delete user: %v", err)
			}
			if err := store.Users.Delete(ctx, user.ID()); !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected not found on second delete, got %v", err)
			}
		})
	})
}

func TestCatalogRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("DuplicateIngredient", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		mustIngredient(t, store, "flour", "g")

		err := store.Ingredients.Create(ctx, models.NewIngredient(0, "flour", "g"))
		if !errors.Is(err, shared.ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("IngredientInUse", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		author := mustUser(t, store, "chef")
		salt := mustIngredient(t, store, "salt", "g")
		tag := mustTag(t, store, "t")
		mustRecipe(t, store, author, "R", []models.DraftIngredient{{ID: salt.ID(), Amount: 1}}, tag)

		if err := store.Ingredients.Delete(ctx, salt.ID()); !errors.Is(err, shared.ErrConflict) {
			t.Fatalf("expected conflict deleting a used ingredient, got %v", err)
		}
	})

	t.Run("DuplicateSlug", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		mustTag(t, store, "lunch")

		err := store.Tags.Create(ctx, models.NewTag(0, "Lunch time", "lunch"))
		if !errors.Is(err, shared.ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("TagNotFound", func(t *testing.T) {
		store := NewStore(setupTestDB(t))

		if _, err := store.Tags.GetBySlug(ctx, "missing"); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestRecipeRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("UnknownAuthor", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		draft := &models.RecipeDraft{Name: "R", Text: "t", Image: "i", CookingTime: 5}

		err := store.Recipes.Create(ctx, models.NewRecipe(0, "ghost", draft))
		if !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected not found for unknown author, got %v", err)
		}
	})

	t.Run("UnknownIngredientRollsBack", func(t *testing.T) {
		db := setupTestDB(t)
		store := NewStore(db)
		author := mustUser(t, store, "chef")
		draft := &models.RecipeDraft{Name: "R", Text: "t", Image: "i", CookingTime: 5}

		err := store.WithTx(ctx, func(tx *Store) error {
			recipe := models.NewRecipe(0, author.ID(), draft)
			if err := tx.Recipes.Create(ctx, recipe); err != nil {
				return err
			}
			return tx.Recipes.ReplaceIngredients(ctx, recipe.ID(), []models.DraftIngredient{{ID: "ghost", Amount: 1}})
		})
		if !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected not found for unknown ingredient, got %v", err)
		}

		n, err := store.Recipes.CountByAuthor(ctx, author.ID())
		if err != nil || n != 0 {
			t.Errorf("recipe row should be rolled back, got %d, %v", n, err)
		}
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		author := mustUser(t, store, "chef")
		salt := mustIngredient(t, store, "salt", "g")
		tag := mustTag(t, store, "t")
		recipe := mustRecipe(t, store, author, "R", []models.DraftIngredient{{ID: salt.ID(), Amount: 1}}, tag)

		err := store.Recipes.ReplaceIngredients(ctx, recipe.ID(), []models.DraftIngredient{{ID: salt.ID(), Amount: 0}})
		if !errors.Is(err, shared.ErrValidation) {
			t.Fatalf("expected validation error from CHECK, got %v", err)
		}
	})

	t.Run("DuplicateLine", func(t *testing.T) {
		store := NewStore(setupTestDB(t))
		author := mustUser(t, store, "chef")
		salt := mustIngredient(t, store, "salt", "g")
		tag := mustTag(t, store, "t")
		recipe := mustRecipe(t, store, author, "R", []models.DraftIngredient{{ID: salt.ID(), Amount: 1}}, tag)

		lines := []models.DraftIngredient{{ID: salt.ID(), Amount: 1}, {ID: salt.ID(), Amount: 2}}
		if err := store.Recipes.ReplaceIngredients(ctx, recipe.ID(), lines); !errors.Is(err, shared.ErrConflict) {
			t.Fatalf("expected conflict for a repeated ingredient, got %v", err)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		store := NewStore(setupTestDB(t))

		if _, err := store.Recipes.Get(ctx, "ghost"); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
		if _, err := store.Recipes.GetBySequence(ctx, 99); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected not found by sequence, got %v", err)
		}
		if err := store.Recipes.Delete(ctx, "ghost"); !errors.Is(err, shared.ErrNotFound) {
			t.Fatalf("expected not found on delete, got %v", err)
		}
	})

	t.Run("NestedTransaction", func(t *testing.T) {
		store := NewStore(setupTestDB(t))

		err := store.WithTx(ctx, func(tx *Store) error {
			return tx.WithTx(ctx, func(*Store) error { return nil })
		})
		if err == nil {
			t.Fatal("expected error for nested transaction")
		}
	})
}

func TestRelationRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Store, *models.User, *models.Recipe) {
		store := NewStore(setupTestDB(t))
		author := mustUser(t, store, "chef")
		salt := mustIngredient(t, store, "salt", "g")
		tag := mustTag(t, store, "t")
		recipe := mustRecipe(t, store, author, "R", []models.DraftIngredient{{ID: salt.ID(), Amount: 1}}, tag)
		return store, author, recipe
	}

	for _, name := range []string{"favorites", "cart"} {
		t.Run(name, func(t *testing.T) {
			store, user, recipe := setup(t)
			marks := store.Favorites
			if name == "cart" {
				marks = store.Cart
			}

			if _, err := marks.Add(ctx, user.ID(), recipe.ID()); err != nil {
				t.Fatalf("first add failed: %v", err)
			}
			if _, err := marks.Add(ctx, user.ID(), recipe.ID()); !errors.Is(err, shared.ErrConflict) {
				t.Errorf("expected conflict on second add, got %v", err)
			}
			if _, err := marks.Add(ctx, user.ID(), "ghost"); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected not found for unknown recipe, got %v", err)
			}

			if err := marks.Remove(ctx, user.ID(), recipe.ID()); err != nil {
				t.Fatalf("remove failed: %v", err)
			}
			if err := marks.Remove(ctx, user.ID(), recipe.ID()); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected not found on second remove, got %v", err)
			}
		})
	}

	t.Run("subscriptions", func(t *testing.T) {
		store, author, _ := setup(t)
		reader := mustUser(t, store, "reader")

		if _, err := store.Subscriptions.Create(ctx, author.ID(), author.ID()); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected validation error for self subscription, got %v", err)
		}
		if _, err := store.Subscriptions.Create(ctx, reader.ID(), author.ID()); err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}
		if _, err := store.Subscriptions.Create(ctx, reader.ID(), author.ID()); !errors.Is(err, shared.ErrConflict) {
			t.Errorf("expected conflict on duplicate subscription, got %v", err)
		}
		if err := store.Subscriptions.Delete(ctx, author.ID(), reader.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected not found for missing subscription, got %v", err)
		}
	})
}

func TestTranslateError(t *testing.T) {
	plain := fmt.Errorf("disk on fire")
	if got := translateError(plain); got != plain {
		t.Errorf("non-sqlite errors should pass through, got %v", got)
	}
}
