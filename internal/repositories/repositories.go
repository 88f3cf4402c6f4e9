// package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] or a narrower interface for a specific entity type,
// handling CRUD operations, sequence generation and constraint error translation.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/foodgram/internal/shared"
	"github.com/mattn/go-sqlite3"
)

// Querier is the subset of [sql.DB] and [sql.Tx] used by repositories, so the same
// repository code runs inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers provide human-readable ordering for entities (e.g., user #42, recipe #15).
// Recipes also use them for short links.
func NextSequence(ctx context.Context, q Querier, table string) (int, error) {
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)

	var sequence int
	if err := q.QueryRowContext(ctx, query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return sequence, nil
}

// Store bundles every repository over one [Querier].
type Store struct {
	db            *sql.DB
	Users         *UserRepository
	Ingredients   *IngredientRepository
	Tags          *TagRepository
	Recipes       *RecipeRepository
	Favorites     *MarkRepository
	Cart          *MarkRepository
	Subscriptions *SubscriptionRepository
	ShoppingList  *ShoppingListRepository
}

// NewStore creates a [Store] whose repositories run directly against db.
func NewStore(db *sql.DB) *Store {
	s := newStore(db)
	s.db = db
	return s
}

func newStore(q Querier) *Store {
	return &Store{
		Users:         NewUserRepository(q),
		Ingredients:   NewIngredientRepository(q),
		Tags:          NewTagRepository(q),
		Recipes:       NewRecipeRepository(q),
		Favorites:     NewFavoriteRepository(q),
		Cart:          NewCartRepository(q),
		Subscriptions: NewSubscriptionRepository(q),
		ShoppingList:  NewShoppingListRepository(q),
	}
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sql.DB { return s.db }

// WithTx runs fn with a [Store] bound to a single transaction.
//
// The transaction commits when fn returns nil and rolls back otherwise. Connections are opened
// with _txlock=immediate, so the write lock is held for the whole of fn.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.db == nil {
		return fmt.Errorf("store is already bound to a transaction")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newStore(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", translateError(err))
	}
	return nil
}

// translateError maps SQLite constraint failures onto the domain sentinels.
//
// UNIQUE and PRIMARY KEY violations become [shared.ErrConflict], FOREIGN KEY violations
// become [shared.ErrNotFound] and CHECK violations become [shared.ErrValidation].
func translateError(err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.Code != sqlite3.ErrConstraint {
		return err
	}

	switch se.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %v", shared.ErrConflict, err)
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: referenced row does not exist: %v", shared.ErrNotFound, err)
	case sqlite3.ErrConstraintCheck:
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	default:
		return err
	}
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func affected(result sql.Result) (int64, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}
