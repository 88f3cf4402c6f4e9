package services

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/repositories"
	"github.com/desertthunder/foodgram/internal/shared"
)

// Actor is the user on whose behalf an operation runs.
//
// The zero value is the anonymous viewer, which may read but never mutate.
type Actor struct {
	UserID  string
	IsStaff bool
}

// Anonymous returns the anonymous [Actor].
func Anonymous() Actor { return Actor{} }

// IsAnonymous reports whether no user is attached.
func (a Actor) IsAnonymous() bool { return a.UserID == "" }

// CanEdit reports whether a may modify content owned by authorID.
func (a Actor) CanEdit(authorID string) bool {
	return !a.IsAnonymous() && (a.UserID == authorID || a.IsStaff)
}

func (a Actor) require() error {
	if a.IsAnonymous() {
		return shared.ErrUnauthorized
	}
	return nil
}

// Options carries the tunables shared by every service.
type Options struct {
	Limits          models.Limits
	DefaultPageSize int
	MaxPageSize     int
	RecipesLimit    int
}

// DefaultOptions returns the stock limits and page sizes.
func DefaultOptions() Options {
	return Options{
		Limits:          models.DefaultLimits(),
		DefaultPageSize: 6,
		MaxPageSize:     50,
		RecipesLimit:    3,
	}
}

// OptionsFromConfig builds [Options] from the [limits] section of config. Zero values fall back to the defaults.
func OptionsFromConfig(config *shared.Config) Options {
	opts := DefaultOptions()
	l := config.Limits

	if l.MinCookingTime > 0 {
		opts.Limits.MinCookingTime = l.MinCookingTime
	}
	if l.MaxCookingTime > 0 {
		opts.Limits.MaxCookingTime = l.MaxCookingTime
	}
	if l.MinIngredientAmount > 0 {
		opts.Limits.MinIngredientAmount = l.MinIngredientAmount
	}
	if l.MaxIngredientAmount > 0 {
		opts.Limits.MaxIngredientAmount = l.MaxIngredientAmount
	}
	if l.DefaultPageSize > 0 {
		opts.DefaultPageSize = l.DefaultPageSize
	}
	if l.MaxPageSize > 0 {
		opts.MaxPageSize = l.MaxPageSize
	}
	if l.RecipesLimit > 0 {
		opts.RecipesLimit = l.RecipesLimit
	}
	return opts
}

// Page is a 1-based page request.
type Page struct {
	Number int
	Limit  int
}

// normalize clamps p to valid bounds and returns the row offset.
func (o Options) normalize(p Page) (Page, int) {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit <= 0 {
		p.Limit = o.DefaultPageSize
	}
	if o.MaxPageSize > 0 && p.Limit > o.MaxPageSize {
		p.Limit = o.MaxPageSize
	}
	return p, (p.Number - 1) * p.Limit
}

// Services bundles every service over one [repositories.Store].
type Services struct {
	Recipes       *RecipeService
	ShoppingList  *ShoppingListService
	Favorites     *MarkService
	Cart          *MarkService
	Subscriptions *SubscriptionService
	Catalog       *CatalogService
}

// New wires all services to store.
func New(store *repositories.Store, opts Options, logger *log.Logger) *Services {
	return &Services{
		Recipes:       NewRecipeService(store, opts, logger),
		ShoppingList:  NewShoppingListService(store, logger),
		Favorites:     NewFavoriteService(store, logger),
		Cart:          NewCartService(store, logger),
		Subscriptions: NewSubscriptionService(store, opts, logger),
		Catalog:       NewCatalogService(store, opts, logger),
	}
}
