package ui

import (
	"context"

	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/services"
	"github.com/desertthunder/foodgram/internal/shared"
)

// CartSource is the data the shopping list TUI reads and mutates on behalf of one user.
type CartSource interface {
	CartRecipes(ctx context.Context) ([]*models.RecipeView, error)
	ShoppingList(ctx context.Context) (*models.ShoppingList, error)
	RemoveFromCart(ctx context.Context, recipeID string) error
}

// ServiceSource implements [CartSource] over [services.Services] for a fixed actor.
type ServiceSource struct {
	svc   *services.Services
	actor services.Actor
}

// NewServiceSource creates a [ServiceSource] acting as actor.
func NewServiceSource(svc *services.Services, actor services.Actor) *ServiceSource {
	return &ServiceSource{svc: svc, actor: actor}
}

// CartRecipes pages through every recipe in the actor's cart.
func (s *ServiceSource) CartRecipes(ctx context.Context) ([]*models.RecipeView, error) {
	if s.actor.IsAnonymous() {
		return nil, shared.ErrUnauthorized
	}

	var recipes []*models.RecipeView
	for page := 1; ; page++ {
		listing, err := s.svc.Recipes.List(ctx, s.actor, services.RecipeQuery{
			IsInShoppingCart: true,
			Page:             services.Page{Number: page, Limit: 50},
		})
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, listing.Recipes...)
		if len(listing.Recipes) == 0 || listing.Page*listing.Limit >= listing.Count {
			return recipes, nil
		}
	}
}

func (s *ServiceSource) ShoppingList(ctx context.Context) (*models.ShoppingList, error) {
	return s.svc.ShoppingList.Build(ctx, s.actor)
}

func (s *ServiceSource) RemoveFromCart(ctx context.Context, recipeID string) error {
	return s.svc.Cart.Remove(ctx, s.actor, recipeID)
}
