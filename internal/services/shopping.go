package services

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/repositories"
	"github.com/desertthunder/foodgram/internal/shared"
)

// ShoppingListService turns a user's cart into a summed list of ingredients.
type ShoppingListService struct {
	store  *repositories.Store
	logger *log.Logger
	now    func() time.Time
}

// NewShoppingListService creates a new [ShoppingListService].
func NewShoppingListService(store *repositories.Store, logger *log.Logger) *ShoppingListService {
	return &ShoppingListService{
		store:  store,
		logger: shared.WithLogger(logger, "service", "shopping"),
		now:    time.Now,
	}
}

// Aggregate sums the ingredient lines of every recipe in userID's cart by (name, unit), ordered by name.
//
// It only reads, so repeated calls with an unchanged cart return equal results.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID string) ([]models.ShoppingListItem, error) {
	return s.store.ShoppingList.Aggregate(ctx, userID)
}

// Build aggregates actor's cart together with the owner and date the renderers print.
func (s *ShoppingListService) Build(ctx context.Context, actor Actor) (*models.ShoppingList, error) {
	if err := actor.require(); err != nil {
		return nil, err
	}

	owner, err := s.store.Users.Get(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	items, err := s.Aggregate(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("shopping list built", "user", owner.Username, "items", len(items))
	return &models.ShoppingList{Owner: owner, Items: items, Date: s.now()}, nil
}
