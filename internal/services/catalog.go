package services

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/repositories"
	"github.com/desertthunder/foodgram/internal/shared"
)

// CatalogService reads and maintains reference data: tags, ingredients and user accounts.
type CatalogService struct {
	store  *repositories.Store
	opts   Options
	logger *log.Logger
}

// UserListing is one page of user accounts.
type UserListing struct {
	Count int
	Page  int
	Limit int
	Users []*models.User
}

// NewCatalogService creates a new [CatalogService].
func NewCatalogService(store *repositories.Store, opts Options, logger *log.Logger) *CatalogService {
	return &CatalogService{store: store, opts: opts, logger: shared.WithLogger(logger, "service", "catalog")}
}

// Tags lists every tag.
func (s *CatalogService) Tags(ctx context.Context) ([]*models.Tag, error) {
	return s.store.Tags.List(ctx)
}

// Tag returns a tag by id.
func (s *CatalogService) Tag(ctx context.Context, id string) (*models.Tag, error) {
	return s.store.Tags.Get(ctx, id)
}

// CreateTag adds a tag.
func (s *CatalogService) CreateTag(ctx context.Context, name, slug string) (*models.Tag, error) {
	tag := models.NewTag(0, name, slug)
	if err := s.store.Tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	s.logger.Info("tag created", "slug", slug)
	return tag, nil
}

// Ingredients lists ingredients whose name starts with prefix, case-insensitively.
func (s *CatalogService) Ingredients(ctx context.Context, prefix string, limit int) ([]*models.Ingredient, error) {
	return s.store.Ingredients.Search(ctx, prefix, limit)
}

// Ingredient returns an ingredient by id.
func (s *CatalogService) Ingredient(ctx context.Context, id string) (*models.Ingredient, error) {
	return s.store.Ingredients.Get(ctx, id)
}

// CreateIngredient adds an ingredient.
func (s *CatalogService) CreateIngredient(ctx context.Context, name, unit string) (*models.Ingredient, error) {
	ing := models.NewIngredient(0, name, unit)
	if err := s.store.Ingredients.Create(ctx, ing); err != nil {
		return nil, err
	}
	s.logger.Info("ingredient created", "name", name, "unit", unit)
	return ing, nil
}

// CreateUser registers an account.
func (s *CatalogService) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.store.Users.Create(ctx, user); err != nil {
		return err
	}
	s.logger.Info("user created", "username", user.Username, "staff", user.IsStaff)
	return nil
}

// Users lists active users.
func (s *CatalogService) Users(ctx context.Context) ([]*models.User, error) {
	return s.store.Users.List(ctx, nil)
}

// UserPage returns one page of active users in creation order.
func (s *CatalogService) UserPage(ctx context.Context, p Page) (*UserListing, error) {
	page, offset := s.opts.normalize(p)
	users, total, err := s.store.Users.Page(ctx, page.Limit, offset)
	if err != nil {
		return nil, err
	}
	return &UserListing{Count: total, Page: page.Number, Limit: page.Limit, Users: users}, nil
}

// Me returns the acting user's own account.
func (s *CatalogService) Me(ctx context.Context, actor Actor) (*models.User, error) {
	if err := actor.require(); err != nil {
		return nil, err
	}
	return s.store.Users.Get(ctx, actor.UserID)
}

// User finds an active user by id or, failing that, by username.
func (s *CatalogService) User(ctx context.Context, ref string) (*models.User, error) {
	if shared.IsID(ref) {
		return s.store.Users.Get(ctx, ref)
	}
	return s.store.Users.GetByUsername(ctx, ref)
}
