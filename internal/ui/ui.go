package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/foodgram/internal/formatter"
	"github.com/desertthunder/foodgram/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CartView ViewState = iota
	ShoppingView
	ConfirmView
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	source     CartSource
	exportDir  string
	width      int
	height     int
	recipeList list.Model
	recipes    []*models.RecipeView
	shopping   *models.ShoppingList
	checked    map[string]bool
	cursor     int
	pending    *models.RecipeView
	status     string
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model reading from source. Exports are written to exportDir.
func NewModel(ctx context.Context, source CartSource, exportDir string) *Model {
	return &Model{
		ctx:        ctx,
		view:       CartView,
		source:     source,
		exportDir:  exportDir,
		recipeList: newRecipeList(nil, 0, 0),
		checked:    map[string]bool{},
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init loads the cart and its shopping list.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchCart(), m.buildShoppingList())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recipeList.SetSize(max(0, msg.Width-4), max(0, msg.Height-8))
		return m, nil

	case tea.KeyMsg:
		if m.recipeList.FilterState() == list.Filtering {
			return m.updateList(msg)
		}
		switch m.view {
		case CartView:
			return m.handleCartKeys(msg)
		case ShoppingView:
			return m.handleShoppingKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCartFetched:
		data := msg.data.(cartFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.recipes = data.recipes
		m.recipeList = newRecipeList(data.recipes, max(0, m.width-4), max(0, m.height-8))

	case MsgShoppingListBuilt:
		data := msg.data.(shoppingListBuilt)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.shopping = data.list
		m.cursor = min(m.cursor, max(0, len(data.list.Items)-1))

	case MsgRecipeRemoved:
		data := msg.data.(recipeRemoved)
		m.view = CartView
		m.pending = nil
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Could not remove %s: %v", data.recipe.Name, data.err))
			return m, nil
		}
		m.status = styles.ok.Render(fmt.Sprintf("Removed %s from the cart", data.recipe.Name))
		return m, tea.Batch(m.fetchCart(), m.buildShoppingList())

	case MsgExported:
		data := msg.data.(exported)
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Export failed: %v", data.err))
			return m, nil
		}
		m.status = styles.ok.Render("Saved " + data.path)
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	var body string
	switch m.view {
	case CartView:
		body = m.renderCart()
	case ShoppingView:
		body = m.renderShoppingList()
	case ConfirmView:
		body = m.renderConfirm()
	}
	if m.status != "" {
		body = fmt.Sprintf("%s\n%s", body, m.status)
	}
	return body
}

func (m *Model) handleCartKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.swap):
		m.view = ShoppingView
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = ""
		return m, tea.Batch(m.fetchCart(), m.buildShoppingList())
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.recipeList.SelectedItem().(recipeItem); ok {
			m.pending = item.recipe
			m.view = ConfirmView
		}
		return m, nil
	}
	return m.updateList(msg)
}

func (m *Model) handleShoppingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.items()

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.swap):
		m.view = CartView
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.toggle):
		if len(items) > 0 {
			k := itemKey(items[m.cursor])
			m.checked[k] = !m.checked[k]
		}
	case key.Matches(msg, m.keys.export):
		return m, m.export()
	case key.Matches(msg, m.keys.reload):
		m.status = ""
		return m, m.buildShoppingList()
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		if m.pending != nil {
			return m, m.removeRecipe(m.pending)
		}
		m.view = CartView
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.pending = nil
		m.view = CartView
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != CartView {
		return m, nil
	}
	var cmd tea.Cmd
	m.recipeList, cmd = m.recipeList.Update(msg)
	return m, cmd
}

// Checked reports whether the shopping list item for the ingredient is checked off.
func (m *Model) Checked(item models.ShoppingListItem) bool {
	return m.checked[itemKey(item)]
}

func (m *Model) items() []models.ShoppingListItem {
	if m.shopping == nil {
		return nil
	}
	return m.shopping.Items
}

func (m *Model) fetchCart() tea.Cmd {
	return func() tea.Msg {
		recipes, err := m.source.CartRecipes(m.ctx)
		return cartFetchedMsg(recipes, err)
	}
}

func (m *Model) buildShoppingList() tea.Cmd {
	return func() tea.Msg {
		list, err := m.source.ShoppingList(m.ctx)
		return shoppingListBuiltMsg(list, err)
	}
}

func (m *Model) removeRecipe(recipe *models.RecipeView) tea.Cmd {
	return func() tea.Msg {
		return recipeRemovedMsg(recipe, m.source.RemoveFromCart(m.ctx, recipe.ID()))
	}
}

// export writes the unchecked items, i.e. what is still left to buy.
func (m *Model) export() tea.Cmd {
	if m.shopping == nil {
		return nil
	}

	remaining := *m.shopping
	remaining.Items = nil
	for _, item := range m.shopping.Items {
		if !m.Checked(item) {
			remaining.Items = append(remaining.Items, item)
		}
	}
	path := filepath.Join(m.exportDir, formatter.FormatText.Filename())

	return func() tea.Msg {
		written, err := formatter.WriteShoppingList(&remaining, formatter.FormatText, path)
		return exportedMsg(written, err)
	}
}

func (m *Model) renderCart() string {
	helpKeys := []key.Binding{m.keys.swap, m.keys.remove, m.keys.reload, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.recipeList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderShoppingList() string {
	var b strings.Builder
	items := m.items()

	owner := "you"
	if m.shopping != nil && m.shopping.Owner != nil {
		owner = m.shopping.Owner.Username
	}
	done := 0
	for _, item := range items {
		if m.Checked(item) {
			done++
		}
	}
	b.WriteString(styles.title.Render(fmt.Sprintf("Shopping list for %s (%d/%d)", owner, done, len(items))))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(styles.help.Render("The cart is empty."))
		b.WriteString("\n")
	}
	for i, item := range items {
		line := fmt.Sprintf("%s - %d %s", item.IngredientName, item.TotalAmount, item.MeasurementUnit)
		box := "[ ]"
		if m.Checked(item) {
			box = "[x]"
			line = styles.checked.Render(line)
		}
		prefix := "  "
		if i == m.cursor {
			prefix = styles.cursor.Render("> ")
		}
		fmt.Fprintf(&b, "%s%s %s\n", prefix, box, line)
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.toggle, m.keys.export, m.keys.swap, m.keys.quit}
	fmt.Fprintf(&b, "\n%s", m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderConfirm() string {
	if m.pending == nil {
		return ""
	}
	title := styles.warn.Render(fmt.Sprintf("Remove '%s' from the cart?", m.pending.Name))
	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n\n%s", title, m.help.ShortHelpView(helpKeys))
}

func newRecipeList(recipes []*models.RecipeView, width, height int) list.Model {
	items := make([]list.Item, len(recipes))
	for i, r := range recipes {
		items[i] = recipeItem{recipe: r}
	}
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = fmt.Sprintf("Shopping cart (%d recipes)", len(recipes))
	return l
}

func itemKey(item models.ShoppingListItem) string {
	return item.IngredientName + "|" + item.MeasurementUnit
}
