package services

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/repositories"
	"github.com/desertthunder/foodgram/internal/shared"
)

// MarkService adds and removes a user's marks on recipes: favorites or shopping cart entries.
type MarkService struct {
	store  *repositories.Store
	marks  func(*repositories.Store) *repositories.MarkRepository
	logger *log.Logger
}

// NewFavoriteService creates a [MarkService] over favorites.
func NewFavoriteService(store *repositories.Store, logger *log.Logger) *MarkService {
	return &MarkService{
		store:  store,
		marks:  func(s *repositories.Store) *repositories.MarkRepository { return s.Favorites },
		logger: shared.WithLogger(logger, "service", "favorites"),
	}
}

// NewCartService creates a [MarkService] over the shopping cart.
func NewCartService(store *repositories.Store, logger *log.Logger) *MarkService {
	return &MarkService{
		store:  store,
		marks:  func(s *repositories.Store) *repositories.MarkRepository { return s.Cart },
		logger: shared.WithLogger(logger, "service", "cart"),
	}
}

// Add marks the recipe for actor and returns it.
//
// An unknown recipe yields [shared.ErrNotFound]; marking twice yields [shared.ErrConflict].
func (s *MarkService) Add(ctx context.Context, actor Actor, recipeID string) (*models.Recipe, error) {
	if err := actor.require(); err != nil {
		return nil, err
	}

	var recipe *models.Recipe
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		var err error
		if recipe, err = tx.Recipes.Get(ctx, recipeID); err != nil {
			return err
		}

		marks := s.marks(tx)
		if _, err := marks.Add(ctx, actor.UserID, recipeID); err != nil {
			if errors.Is(err, shared.ErrConflict) {
				return shared.Conflictf("%s for recipe %s already exists", marks.Label(), recipeID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("mark added", "recipe", recipeID, "user", actor.UserID)
	return recipe, nil
}

// Remove clears the mark. An unknown recipe or an absent mark yields [shared.ErrNotFound].
func (s *MarkService) Remove(ctx context.Context, actor Actor, recipeID string) error {
	if err := actor.require(); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		exists, err := tx.Recipes.Exists(ctx, recipeID)
		if err != nil {
			return err
		}
		if !exists {
			return shared.NotFoundf("recipe %s", recipeID)
		}
		return s.marks(tx).Remove(ctx, actor.UserID, recipeID)
	})
	if err != nil {
		return err
	}

	s.logger.Debug("mark removed", "recipe", recipeID, "user", actor.UserID)
	return nil
}

// SubscriptionService manages which authors a user follows.
type SubscriptionService struct {
	store  *repositories.Store
	opts   Options
	logger *log.Logger
}

// NewSubscriptionService creates a new [SubscriptionService].
func NewSubscriptionService(store *repositories.Store, opts Options, logger *log.Logger) *SubscriptionService {
	return &SubscriptionService{store: store, opts: opts, logger: shared.WithLogger(logger, "service", "subscriptions")}
}

// SubscriptionListing is one page of followed authors.
type SubscriptionListing struct {
	Count   int
	Page    int
	Limit   int
	Authors []*models.FollowedAuthor
}

// Subscribe makes actor follow authorID and returns the author with a preview of their recipes.
func (s *SubscriptionService) Subscribe(ctx context.Context, actor Actor, authorID string, recipesLimit int) (*models.FollowedAuthor, error) {
	if err := actor.require(); err != nil {
		return nil, err
	}
	if actor.UserID == authorID {
		return nil, shared.NewValidationError("author", "cannot subscribe to yourself")
	}

	var followed *models.FollowedAuthor
	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		author, err := tx.Users.Get(ctx, authorID)
		if err != nil {
			return err
		}
		if _, err := tx.Subscriptions.Create(ctx, actor.UserID, authorID); err != nil {
			if errors.Is(err, shared.ErrConflict) {
				return shared.Conflictf("already subscribed to %s", author.Username)
			}
			return err
		}
		followed, err = s.followed(ctx, tx, author, recipesLimit)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscribed", "user", actor.UserID, "author", authorID)
	return followed, nil
}

// Unsubscribe stops actor following authorID.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, actor Actor, authorID string) error {
	if err := actor.require(); err != nil {
		return err
	}
	if actor.UserID == authorID {
		return shared.NewValidationError("author", "cannot unsubscribe from yourself")
	}

	err := s.store.WithTx(ctx, func(tx *repositories.Store) error {
		if _, err := tx.Users.Get(ctx, authorID); err != nil {
			return err
		}
		return tx.Subscriptions.Delete(ctx, actor.UserID, authorID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("unsubscribed", "user", actor.UserID, "author", authorID)
	return nil
}

// List returns the authors actor follows, newest subscription first, each with up to recipesLimit of their
// newest recipes and their total recipe count. recipesLimit <= 0 uses the configured default.
func (s *SubscriptionService) List(ctx context.Context, actor Actor, p Page, recipesLimit int) (*SubscriptionListing, error) {
	if err := actor.require(); err != nil {
		return nil, err
	}

	page, offset := s.opts.normalize(p)
	ids, total, err := s.store.Subscriptions.Authors(ctx, actor.UserID, page.Limit, offset)
	if err != nil {
		return nil, err
	}

	users, err := s.store.Users.List(ctx, map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID()] = u
	}

	listing := &SubscriptionListing{Count: total, Page: page.Number, Limit: page.Limit, Authors: []*models.FollowedAuthor{}}
	for _, id := range ids {
		author, ok := byID[id]
		if !ok {
			continue
		}
		followed, err := s.followed(ctx, s.store, author, recipesLimit)
		if err != nil {
			return nil, err
		}
		listing.Authors = append(listing.Authors, followed)
	}
	return listing, nil
}

// IsSubscribed reports whether actor follows authorID. The anonymous actor follows nobody.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, actor Actor, authorID string) (bool, error) {
	if actor.IsAnonymous() || actor.UserID == authorID {
		return false, nil
	}
	return s.store.Subscriptions.Exists(ctx, actor.UserID, authorID)
}

func (s *SubscriptionService) followed(ctx context.Context, store *repositories.Store, author *models.User, recipesLimit int) (*models.FollowedAuthor, error) {
	if recipesLimit <= 0 {
		recipesLimit = s.opts.RecipesLimit
	}

	recipes, err := store.Recipes.LatestByAuthor(ctx, author.ID(), recipesLimit)
	if err != nil {
		return nil, err
	}
	count, err := store.Recipes.CountByAuthor(ctx, author.ID())
	if err != nil {
		return nil, err
	}
	return &models.FollowedAuthor{Author: author, Recipes: recipes, RecipesCount: count}, nil
}
