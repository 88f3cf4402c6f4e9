package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/foodgram/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCartFetched MsgKind = iota
	MsgShoppingListBuilt
	MsgRecipeRemoved
	MsgExported
)

type cartFetched struct {
	recipes []*models.RecipeView
	err     error
}

type shoppingListBuilt struct {
	list *models.ShoppingList
	err  error
}

type recipeRemoved struct {
	recipe *models.RecipeView
	err    error
}

type exported struct {
	path string
	err  error
}

// cartFetchedMsg is the constructor for [MsgCartFetched]
func cartFetchedMsg(recipes []*models.RecipeView, err error) Msg {
	return Msg{kind: MsgCartFetched, data: cartFetched{recipes, err}}
}

// shoppingListBuiltMsg is the constructor for [MsgShoppingListBuilt]
func shoppingListBuiltMsg(list *models.ShoppingList, err error) Msg {
	return Msg{kind: MsgShoppingListBuilt, data: shoppingListBuilt{list, err}}
}

// recipeRemovedMsg is the constructor for [MsgRecipeRemoved]
func recipeRemovedMsg(recipe *models.RecipeView, err error) Msg {
	return Msg{kind: MsgRecipeRemoved, data: recipeRemoved{recipe, err}}
}

// exportedMsg is the constructor for [MsgExported]
func exportedMsg(path string, err error) Msg {
	return Msg{kind: MsgExported, data: exported{path, err}}
}
