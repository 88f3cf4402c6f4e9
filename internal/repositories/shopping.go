package repositories

import (
	"context"
	"fmt"

	"github.com/desertthunder/foodgram/internal/models"
)

// ShoppingListRepository computes shopping lists from cart contents.
type ShoppingListRepository struct {
	db Querier
}

// NewShoppingListRepository creates a new [ShoppingListRepository].
func NewShoppingListRepository(db Querier) *ShoppingListRepository {
	return &ShoppingListRepository{db: db}
}

// Aggregate sums the ingredient lines of every recipe in userID's cart, grouped by ingredient name and
// measurement unit and ordered by name then unit. An empty cart yields an empty slice.
//
// The same ingredient name in two units produces two items.
func (r *ShoppingListRepository) Aggregate(ctx context.Context, userID string) ([]models.ShoppingListItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.name, i.measurement_unit, SUM(ri.amount) AS total
		FROM shopping_cart c
		JOIN recipe_ingredients ri ON ri.recipe_id = c.recipe_id
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE c.user_id = ?
		GROUP BY i.name, i.measurement_unit
		ORDER BY i.name ASC, i.measurement_unit ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}
	defer rows.Close()

	items := []models.ShoppingListItem{}
	for rows.Next() {
		var item models.ShoppingListItem
		if err := rows.Scan(&item.IngredientName, &item.MeasurementUnit, &item.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan shopping list item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}
