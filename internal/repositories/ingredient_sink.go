package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/shared"
)

// IngredientSink writes batches of ingredients for bulk loading.
//
// Each batch runs in its own transaction. Rows that already exist (same name and unit) are skipped
// rather than failing the batch.
type IngredientSink struct {
	store *Store
}

// NewIngredientSink creates an [IngredientSink] over db.
func NewIngredientSink(db *sql.DB) *IngredientSink {
	return &IngredientSink{store: NewStore(db)}
}

// WriteBatch inserts ingredients and reports how many were created and how many were duplicates.
func (s *IngredientSink) WriteBatch(ctx context.Context, batch []*models.Ingredient) (created, skipped int, err error) {
	err = s.store.WithTx(ctx, func(tx *Store) error {
		created, skipped = 0, 0
		for _, ing := range batch {
			if err := tx.Ingredients.Create(ctx, ing); err != nil {
				if errors.Is(err, shared.ErrConflict) {
					skipped++
					continue
				}
				return fmt.Errorf("ingredient %q (%s): %w", ing.Name, ing.MeasurementUnit, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return created, skipped, nil
}
