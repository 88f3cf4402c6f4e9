package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/foodgram/internal/formatter"
	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/services"
	"github.com/desertthunder/foodgram/internal/shared"
)

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.services.Catalog.Tags(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]tagResponse, len(tags))
	for i, t := range tags {
		out[i] = newTagResponse(t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getTag(w http.ResponseWriter, r *http.Request) {
	tag, err := s.services.Catalog.Tag(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTagResponse(tag))
}

func (s *Server) listIngredients(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ingredients, err := s.services.Catalog.Ingredients(r.Context(), strings.TrimSpace(r.URL.Query().Get("name")), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]ingredientResponse, len(ingredients))
	for i, ing := range ingredients {
		out[i] = newIngredientResponse(ing)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getIngredient(w http.ResponseWriter, r *http.Request) {
	ing, err := s.services.Catalog.Ingredient(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newIngredientResponse(ing))
}

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	viewer := ActorFrom(r.Context())

	page, err := queryPage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := services.RecipeQuery{
		AuthorID:         r.URL.Query().Get("author"),
		TagSlugs:         r.URL.Query()["tags"],
		IsFavorited:      queryFlag(r, "is_favorited"),
		IsInShoppingCart: queryFlag(r, "is_in_shopping_cart"),
		Page:             page,
	}

	listing, err := s.services.Recipes.List(r.Context(), viewer, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	results, err := s.recipeResponses(r.Context(), viewer, listing.Recipes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(r, listing.Count, listing.Page, listing.Limit, results))
}

func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request) {
	viewer := ActorFrom(r.Context())

	view, err := s.services.Recipes.Get(r.Context(), viewer, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecipe(w, r, http.StatusOK, viewer, view)
}

func (s *Server) createRecipe(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())

	var draft models.RecipeDraft
	if err := decodeBody(w, r, &draft); err != nil {
		s.writeError(w, r, err)
		return
	}

	recipe, err := s.services.Recipes.Create(r.Context(), actor, &draft)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	RecipeMutations.WithLabelValues("create").Inc()

	s.respondWithRecipe(w, r, http.StatusCreated, actor, recipe.ID())
}

// updateRecipe serves both PUT and PATCH; either way the body replaces the whole recipe.
func (s *Server) updateRecipe(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())

	var draft models.RecipeDraft
	if err := decodeBody(w, r, &draft); err != nil {
		s.writeError(w, r, err)
		return
	}

	recipe, err := s.services.Recipes.Update(r.Context(), actor, r.PathValue("id"), &draft)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	RecipeMutations.WithLabelValues("update").Inc()

	s.respondWithRecipe(w, r, http.StatusOK, actor, recipe.ID())
}

func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Recipes.Delete(r.Context(), ActorFrom(r.Context()), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	RecipeMutations.WithLabelValues("delete").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) recipeLink(w http.ResponseWriter, r *http.Request) {
	path, err := s.services.Recipes.ShortLink(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"short-link": s.absoluteURL(path)})
}

func (s *Server) followShortLink(w http.ResponseWriter, r *http.Request) {
	recipe, err := s.services.Recipes.ResolveShortLink(r.Context(), r.PathValue("code"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, s.absoluteURL("/recipes/"+recipe.ID()), http.StatusFound)
}

// addMark returns a handler that adds the recipe to the mark set served by svc (favorites or cart).
func (s *Server) addMark(svc *services.MarkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipe, err := svc.Add(r.Context(), ActorFrom(r.Context()), r.PathValue("id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		RecipeMutations.WithLabelValues("mark_add").Inc()
		writeJSON(w, http.StatusCreated, newShortRecipeResponse(recipe))
	}
}

func (s *Server) removeMark(svc *services.MarkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Remove(r.Context(), ActorFrom(r.Context()), r.PathValue("id")); err != nil {
			s.writeError(w, r, err)
			return
		}
		RecipeMutations.WithLabelValues("mark_remove").Inc()
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) downloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	format, err := formatter.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.services.ShoppingList.Build(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data, err := formatter.RenderShoppingList(list, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	listing, err := s.services.Catalog.UserPage(r.Context(), page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	viewer := ActorFrom(r.Context())
	results := make([]userResponse, len(listing.Users))
	for i, u := range listing.Users {
		resp, err := s.userResponse(r.Context(), viewer, u)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		results[i] = *resp
	}
	writeJSON(w, http.StatusOK, newPage(r, listing.Count, listing.Page, listing.Limit, results))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !shared.IsID(id) {
		s.writeError(w, r, shared.NotFoundf("user %s", id))
		return
	}

	user, err := s.services.Catalog.User(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.userResponse(r.Context(), ActorFrom(r.Context()), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	user, err := s.services.Catalog.Me(r.Context(), actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user, false))
}

func (s *Server) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	recipesLimit, err := queryInt(r, "recipes_limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	listing, err := s.services.Subscriptions.List(r.Context(), ActorFrom(r.Context()), page, recipesLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	results := make([]followedAuthorResponse, len(listing.Authors))
	for i, f := range listing.Authors {
		results[i] = newFollowedAuthorResponse(f)
	}
	writeJSON(w, http.StatusOK, newPage(r, listing.Count, listing.Page, listing.Limit, results))
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	recipesLimit, err := queryInt(r, "recipes_limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	followed, err := s.services.Subscriptions.Subscribe(r.Context(), ActorFrom(r.Context()), r.PathValue("id"), recipesLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newFollowedAuthorResponse(followed))
}

func (s *Server) unsubscribe(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Subscriptions.Unsubscribe(r.Context(), ActorFrom(r.Context()), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondWithRecipe re-reads the recipe as the actor sees it and writes it.
func (s *Server) respondWithRecipe(w http.ResponseWriter, r *http.Request, status int, actor services.Actor, id string) {
	view, err := s.services.Recipes.Get(r.Context(), actor, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeRecipe(w, r, status, actor, view)
}

func (s *Server) writeRecipe(w http.ResponseWriter, r *http.Request, status int, viewer services.Actor, view *models.RecipeView) {
	out, err := s.recipeResponse(r.Context(), viewer, view)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, out)
}

func (s *Server) absoluteURL(path string) string {
	return strings.TrimRight(s.config.Server.BaseURL, "/") + path
}

func queryPage(r *http.Request) (services.Page, error) {
	number, err := queryInt(r, "page")
	if err != nil {
		return services.Page{}, err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return services.Page{}, err
	}
	return services.Page{Number: number, Limit: limit}, nil
}
