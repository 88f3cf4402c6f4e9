package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/repositories"
	"github.com/desertthunder/foodgram/internal/shared"
)

// RecipeService creates, replaces, reads and deletes recipe aggregates.
//
// Every write runs in a single transaction: the recipe row, its ingredient lines and its tag links
// are committed together or not at all.
type RecipeService struct {
	store  *repositories.Store
	opts   Options
	logger *log.Logger
}

// NewRecipeService creates a new [RecipeService].
func NewRecipeService(store *repositories.Store, opts Options, logger *log.Logger) *RecipeService {
	return &RecipeService{store: store, opts: opts, logger: shared.WithLogger(logger, "service", "recipes")}
}

// RecipeQuery selects and pages a recipe listing.
type RecipeQuery struct {
	AuthorID         string
	TagSlugs         []string
	IsFavorited      bool // ignored for anonymous viewers
	IsInShoppingCart bool // ignored for anonymous viewers
	Page             Page
}

// RecipeListing is one page of recipes as seen by a viewer.
type RecipeListing struct {
	Count   int
	Page    int
	Limit   int
	Recipes []*models.RecipeView
}

// Create validates draft and writes a new recipe authored by actor.
func (s *RecipeService) Create(ctx context.Context, actor Actor, draft *models.RecipeDraft) (*models.Recipe, error) {
	if err := actor.require(); err != nil {
		return nil, err
	}
	if err := draft.Validate(s.opts.Limits); err != nil {
		return nil, err
	}

	var created *models.Recipe
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		exists, err := tx.Users.Exists(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: unknown user %s", shared.ErrUnauthorized, actor.UserID)
		}

		if err := checkReferences(ctx, tx, draft); err != nil {
			return err
		}

		recipe := models.NewRecipe(0, actor.UserID, draft)
		if err := tx.Recipes.Create(ctx, recipe); err != nil {
			return err
		}
		if err := writeComponents(ctx, tx, recipe.ID(), draft); err != nil {
			return err
		}

		created, err = tx.Recipes.Get(ctx, recipe.ID())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("recipe created", "id", created.ID(), "sequence", created.Sequence(), "author", actor.UserID)
	return created, nil
}

// Update replaces the recipe's fields, ingredient lines and tags with draft.
//
// Only the author or a staff user may update; existence and permission are checked before the
// draft is validated. Lines and tags absent from draft are removed.
func (s *RecipeService) Update(ctx context.Context, actor Actor, id string, draft *models.RecipeDraft) (*models.Recipe, error) {
	if err := actor.require(); err != nil {
		return nil, err
	}

	var updated *models.Recipe
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		recipe, err := tx.Recipes.Get(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanEdit(recipe.AuthorID) {
			return shared.Forbiddenf("only the author may change recipe %s", id)
		}
		if err := draft.Validate(s.opts.Limits); err != nil {
			return err
		}

		if err := checkReferences(ctx, tx, draft); err != nil {
			return err
		}

		recipe.Apply(draft)
		if err := tx.Recipes.Update(ctx, recipe); err != nil {
			return err
		}
		if err := writeComponents(ctx, tx, recipe.ID(), draft); err != nil {
			return err
		}

		updated, err = tx.Recipes.Get(ctx, recipe.ID())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("recipe updated", "id", id, "by", actor.UserID)
	return updated, nil
}

// Get returns the recipe with its author and the viewer's favorite and cart flags.
func (s *RecipeService) Get(ctx context.Context, viewer Actor, id string) (*models.RecipeView, error) {
	recipe, err := s.store.Recipes.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	views, err := s.views(ctx, viewer, []*models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// List returns one page of recipes, newest first.
func (s *RecipeService) List(ctx context.Context, viewer Actor, q RecipeQuery) (*RecipeListing, error) {
	page, offset := s.opts.normalize(q.Page)
	filter := models.RecipeFilter{
		AuthorID: q.AuthorID,
		TagSlugs: q.TagSlugs,
		Limit:    page.Limit,
		Offset:   offset,
	}
	if !viewer.IsAnonymous() {
		if q.IsFavorited {
			filter.FavoritedBy = viewer.UserID
		}
		if q.IsInShoppingCart {
			filter.InCartOf = viewer.UserID
		}
	}

	result, err := s.store.Recipes.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	views, err := s.views(ctx, viewer, result.Recipes)
	if err != nil {
		return nil, err
	}
	return &RecipeListing{Count: result.Count, Page: page.Number, Limit: page.Limit, Recipes: views}, nil
}

// Delete removes the recipe. Its lines, tag links, favorites and cart entries go with it.
func (s *RecipeService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := actor.require(); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		recipe, err := tx.Recipes.Get(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanEdit(recipe.AuthorID) {
			return shared.Forbiddenf("only the author may delete recipe %s", id)
		}
		return tx.Recipes.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("recipe deleted", "id", id, "by", actor.UserID)
	return nil
}

// ShortLink returns the stable short path of a recipe, e.g. "/r/1b".
func (s *RecipeService) ShortLink(ctx context.Context, id string) (string, error) {
	recipe, err := s.store.Recipes.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return "/r/" + shared.EncodeShortCode(recipe.Sequence()), nil
}

// ResolveShortLink returns the recipe a short code points at.
func (s *RecipeService) ResolveShortLink(ctx context.Context, code string) (*models.Recipe, error) {
	sequence, err := shared.DecodeShortCode(code)
	if err != nil {
		return nil, shared.NotFoundf("short link %q", code)
	}
	return s.store.Recipes.GetBySequence(ctx, sequence)
}

func (s *RecipeService) views(ctx context.Context, viewer Actor, recipes []*models.Recipe) ([]*models.RecipeView, error) {
	authors, err := authorsByID(ctx, s.store, recipes)
	if err != nil {
		return nil, err
	}

	views := make([]*models.RecipeView, len(recipes))
	for i, recipe := range recipes {
		view := &models.RecipeView{Recipe: recipe, Author: authors[recipe.AuthorID]}
		if !viewer.IsAnonymous() {
			if view.IsFavorited, err = s.store.Favorites.Exists(ctx, viewer.UserID, recipe.ID()); err != nil {
				return nil, err
			}
			if view.IsInShoppingCart, err = s.store.Cart.Exists(ctx, viewer.UserID, recipe.ID()); err != nil {
				return nil, err
			}
		}
		views[i] = view
	}
	return views, nil
}

func authorsByID(ctx context.Context, store *repositories.Store, recipes []*models.Recipe) (map[string]*models.User, error) {
	seen := map[string]bool{}
	ids := []string{}
	for _, r := range recipes {
		if !seen[r.AuthorID] {
			seen[r.AuthorID] = true
			ids = append(ids, r.AuthorID)
		}
	}

	users, err := store.Users.List(ctx, map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID()] = u
	}
	return byID, nil
}

// checkReferences verifies that every ingredient and tag in draft exists.
func checkReferences(ctx context.Context, tx *repositories.Store, draft *models.RecipeDraft) error {
	missing, err := tx.Ingredients.Missing(ctx, draft.IngredientIDs())
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return shared.NewValidationError("ingredients", "unknown ingredient %s", strings.Join(missing, ", "))
	}

	missing, err = tx.Tags.Missing(ctx, draft.Tags)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return shared.NewValidationError("tags", "unknown tag %s", strings.Join(missing, ", "))
	}
	return nil
}

func writeComponents(ctx context.Context, tx *repositories.Store, recipeID string, draft *models.RecipeDraft) error {
	if err := tx.Recipes.ReplaceIngredients(ctx, recipeID, draft.Ingredients); err != nil {
		return err
	}
	return tx.Recipes.ReplaceTags(ctx, recipeID, draft.Tags)
}
