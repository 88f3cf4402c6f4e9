package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/services"
)

type tagResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ingredientResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type userResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type recipeResponse struct {
	ID               string                  `json:"id"`
	Tags             []tagResponse           `json:"tags"`
	Author           *userResponse           `json:"author"`
	Ingredients      []models.IngredientLine `json:"ingredients"`
	IsFavorited      bool                    `json:"is_favorited"`
	IsInShoppingCart bool                    `json:"is_in_shopping_cart"`
	Name             string                  `json:"name"`
	Image            string                  `json:"image"`
	Text             string                  `json:"text"`
	CookingTime      int                     `json:"cooking_time"`
}

// shortRecipeResponse is the compact form used by favorites, cart and subscription previews.
type shortRecipeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type followedAuthorResponse struct {
	userResponse
	Recipes      []shortRecipeResponse `json:"recipes"`
	RecipesCount int                   `json:"recipes_count"`
}

// pageResponse is the paginated envelope: count, neighbour page links and results.
type pageResponse[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func newTagResponse(t *models.Tag) tagResponse {
	return tagResponse{ID: t.ID(), Name: t.Name, Slug: t.Slug}
}

func newIngredientResponse(i *models.Ingredient) ingredientResponse {
	return ingredientResponse{ID: i.ID(), Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func newUserResponse(u *models.User, subscribed bool) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:           u.ID(),
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// userResponse resolves whether viewer follows u.
func (s *Server) userResponse(ctx context.Context, viewer services.Actor, u *models.User) (*userResponse, error) {
	subscribed, err := s.services.Subscriptions.IsSubscribed(ctx, viewer, u.ID())
	if err != nil {
		return nil, err
	}
	return newUserResponse(u, subscribed), nil
}

func newShortRecipeResponse(r *models.Recipe) shortRecipeResponse {
	return shortRecipeResponse{ID: r.ID(), Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

func newFollowedAuthorResponse(f *models.FollowedAuthor) followedAuthorResponse {
	recipes := make([]shortRecipeResponse, len(f.Recipes))
	for i, r := range f.Recipes {
		recipes[i] = newShortRecipeResponse(r)
	}
	return followedAuthorResponse{
		userResponse: *newUserResponse(f.Author, true),
		Recipes:      recipes,
		RecipesCount: f.RecipesCount,
	}
}

// recipeResponses converts views, resolving each distinct author's subscription flag once.
func (s *Server) recipeResponses(ctx context.Context, viewer services.Actor, views []*models.RecipeView) ([]recipeResponse, error) {
	subscribed := map[string]bool{}
	out := make([]recipeResponse, len(views))

	for i, v := range views {
		followed, ok := subscribed[v.AuthorID]
		if !ok {
			var err error
			if followed, err = s.services.Subscriptions.IsSubscribed(ctx, viewer, v.AuthorID); err != nil {
				return nil, err
			}
			subscribed[v.AuthorID] = followed
		}

		tags := make([]tagResponse, len(v.Tags))
		for n, t := range v.Tags {
			tags[n] = newTagResponse(t)
		}
		lines := v.Ingredients
		if lines == nil {
			lines = []models.IngredientLine{}
		}

		out[i] = recipeResponse{
			ID:               v.ID(),
			Tags:             tags,
			Author:           newUserResponse(v.Author, followed),
			Ingredients:      lines,
			IsFavorited:      v.IsFavorited,
			IsInShoppingCart: v.IsInShoppingCart,
			Name:             v.Name,
			Image:            v.Image,
			Text:             v.Text,
			CookingTime:      v.CookingTime,
		}
	}
	return out, nil
}

func (s *Server) recipeResponse(ctx context.Context, viewer services.Actor, view *models.RecipeView) (recipeResponse, error) {
	out, err := s.recipeResponses(ctx, viewer, []*models.RecipeView{view})
	if err != nil {
		return recipeResponse{}, err
	}
	return out[0], nil
}

// newPage wraps results with links to the neighbouring pages of r's URL.
func newPage[T any](r *http.Request, count, page, limit int, results []T) pageResponse[T] {
	out := pageResponse[T]{Count: count, Results: results}
	if out.Results == nil {
		out.Results = []T{}
	}
	if page*limit < count {
		out.Next = pageLink(r, page+1)
	}
	if page > 1 {
		out.Previous = pageLink(r, page-1)
	}
	return out
}

func pageLink(r *http.Request, page int) *string {
	u := url.URL{Path: r.URL.Path}
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}
