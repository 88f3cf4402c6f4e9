package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/shared"
)

// MarkRepository persists (user, recipe) pairs in a single table: favorites or the shopping cart.
//
// The table's primary key makes a pair unique; a second Add yields [shared.ErrConflict].
type MarkRepository struct {
	db    Querier
	table string
	label string
}

// NewFavoriteRepository creates a [MarkRepository] over the favorites table.
func NewFavoriteRepository(db Querier) *MarkRepository {
	return &MarkRepository{db: db, table: "favorites", label: "favorite"}
}

// NewCartRepository creates a [MarkRepository] over the shopping_cart table.
func NewCartRepository(db Querier) *MarkRepository {
	return &MarkRepository{db: db, table: "shopping_cart", label: "shopping cart entry"}
}

// Label names the kind of mark for error messages.
func (r *MarkRepository) Label() string { return r.label }

// Add records the pair. Unknown users or recipes yield [shared.ErrNotFound].
func (r *MarkRepository) Add(ctx context.Context, userID, recipeID string) (*models.RecipeMark, error) {
	mark := &models.RecipeMark{UserID: userID, RecipeID: recipeID, CreatedAt: time.Now().UTC()}

	query := fmt.Sprintf(`INSERT INTO %s (user_id, recipe_id, created_at) VALUES (?, ?, ?)`, r.table)
	if _, err := r.db.ExecContext(ctx, query, userID, recipeID, mark.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to add %s: %w", r.label, translateError(err))
	}
	return mark, nil
}

// Remove deletes the pair, returning [shared.ErrNotFound] when it was not recorded.
func (r *MarkRepository) Remove(ctx context.Context, userID, recipeID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = ? AND recipe_id = ?`, r.table)
	result, err := r.db.ExecContext(ctx, query, userID, recipeID)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", r.label, err)
	}

	rows, err := affected(result)
	if err != nil {
		return err
	}
	if rows == 0 {
		return shared.NotFoundf("%s for recipe %s", r.label, recipeID)
	}
	return nil
}

// Exists reports whether the pair is recorded.
func (r *MarkRepository) Exists(ctx context.Context, userID, recipeID string) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE user_id = ? AND recipe_id = ?)`, r.table)
	if err := r.db.QueryRowContext(ctx, query, userID, recipeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s: %w", r.label, err)
	}
	return exists, nil
}

// Clear removes every pair belonging to userID and returns how many were removed.
func (r *MarkRepository) Clear(ctx context.Context, userID string) (int, error) {
	result, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = ?`, r.table), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", r.label, err)
	}
	rows, err := affected(result)
	return int(rows), err
}

// SubscriptionRepository persists follower to author [models.Subscription] pairs.
type SubscriptionRepository struct {
	db Querier
}

// NewSubscriptionRepository creates a new [SubscriptionRepository].
func NewSubscriptionRepository(db Querier) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create records that userID follows authorID.
//
// Duplicates yield [shared.ErrConflict]; a self-subscription violates the table CHECK and yields [shared.ErrValidation].
func (r *SubscriptionRepository) Create(ctx context.Context, userID, authorID string) (*models.Subscription, error) {
	sub := &models.Subscription{UserID: userID, AuthorID: authorID, CreatedAt: time.Now().UTC()}

	_, err := r.db.ExecContext(ctx, `INSERT INTO subscriptions (user_id, author_id, created_at) VALUES (?, ?, ?)`,
		userID, authorID, sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", translateError(err))
	}
	return sub, nil
}

// Delete removes the subscription, returning [shared.ErrNotFound] when it does not exist.
func (r *SubscriptionRepository) Delete(ctx context.Context, userID, authorID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE user_id = ? AND author_id = ?`, userID, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	rows, err := affected(result)
	if err != nil {
		return err
	}
	if rows == 0 {
		return shared.NotFoundf("subscription to %s", authorID)
	}
	return nil
}

// Exists reports whether userID follows authorID.
func (r *SubscriptionRepository) Exists(ctx context.Context, userID, authorID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE user_id = ? AND author_id = ?)`,
		userID, authorID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return exists, nil
}

// Authors returns one page of the ids of authors userID follows, newest subscription first, with the total count.
func (r *SubscriptionRepository) Authors(ctx context.Context, userID string, limit, offset int) ([]string, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM subscriptions s
		JOIN users u ON u.id = s.author_id AND u.deleted_at IS NULL
		WHERE s.user_id = ?
	`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	query := `
		SELECT s.author_id FROM subscriptions s
		JOIN users u ON u.id = s.author_id AND u.deleted_at IS NULL
		WHERE s.user_id = ?
		ORDER BY s.created_at DESC, s.rowid DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, max(offset, 0))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, 0, fmt.Errorf("failed to scan subscription: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, total, nil
}
