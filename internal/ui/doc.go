// Package ui implements the interactive shopping cart checker using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [CartView] : Browse the recipes in the cart (filterable list)
//  2. [ShoppingView] : The aggregated shopping list, with items checked off while shopping
//  3. [ConfirmView] : Confirm removing a recipe from the cart
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving results of
// [CartSource] calls via the Msg union type. Removing a recipe reloads both the cart and the shopping list.
// Exporting writes the items that are not yet checked off to shopping_list.txt.
//
// Keyboard navigation uses vim-style bindings (j/k, space, tab, d, e, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
