package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/shared"
)

// IngredientRepository persists [models.Ingredient] reference data.
//
// Ingredients are immutable once created: there is no update, and delete is refused while a recipe uses the ingredient.
type IngredientRepository struct {
	db Querier
}

// NewIngredientRepository creates a new [IngredientRepository].
func NewIngredientRepository(db Querier) *IngredientRepository {
	return &IngredientRepository{db: db}
}

// Create inserts an ingredient. A duplicate (name, unit) pair yields [shared.ErrConflict].
func (r *IngredientRepository) Create(ctx context.Context, ing *models.Ingredient) error {
	if err := ing.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "ingredients")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	ing.SetID(shared.GenerateID())
	ing.SetSequence(sequence)

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO ingredients (id, sequence, name, measurement_unit, created_at) VALUES (?, ?, ?, ?, ?)`,
		ing.ID(), sequence, ing.Name, ing.MeasurementUnit, ing.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert ingredient: %w", translateError(err))
	}
	return nil
}

// Get retrieves an ingredient by ID.
func (r *IngredientRepository) Get(ctx context.Context, id string) (*models.Ingredient, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, sequence, name, measurement_unit, created_at FROM ingredients WHERE id = ?`, id)

	ing, err := scanIngredient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.NotFoundf("ingredient %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredient: %w", err)
	}
	return ing, nil
}

// Delete removes an ingredient that no recipe references.
func (r *IngredientRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ingredients WHERE id = ?`, id)
	if err != nil {
		if errors.Is(translateError(err), shared.ErrNotFound) {
			return shared.Conflictf("ingredient %s is used by recipes", id)
		}
		return fmt.Errorf("failed to delete ingredient: %w", err)
	}
	rows, err := affected(result)
	if err != nil {
		return err
	}
	if rows == 0 {
		return shared.NotFoundf("ingredient %s", id)
	}
	return nil
}

// Search lists ingredients whose name starts with prefix, case-insensitively, ordered by name.
// An empty prefix lists everything; limit <= 0 means no limit.
func (r *IngredientRepository) Search(ctx context.Context, prefix string, limit int) ([]*models.Ingredient, error) {
	query := `SELECT id, sequence, name, measurement_unit, created_at FROM ingredients`
	args := []any{}

	if prefix != "" {
		query += ` WHERE name LIKE ? ESCAPE '\'`
		args = append(args, escapeLike(prefix)+"%")
	}
	query += ` ORDER BY name COLLATE NOCASE ASC, measurement_unit ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []*models.Ingredient{}
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ingredients, nil
}

// Missing returns the ids from ids that have no ingredient row, preserving input order.
func (r *IngredientRepository) Missing(ctx context.Context, ids []string) ([]string, error) {
	return missingIDs(ctx, r.db, "ingredients", ids)
}

// Count returns the number of ingredients.
func (r *IngredientRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingredients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count ingredients: %w", err)
	}
	return n, nil
}

func scanIngredient(row rowScanner) (*models.Ingredient, error) {
	var (
		id        string
		sequence  int
		name      string
		unit      string
		createdAt time.Time
	)
	if err := row.Scan(&id, &sequence, &name, &unit, &createdAt); err != nil {
		return nil, err
	}

	ing := models.NewIngredient(sequence, name, unit)
	ing.SetID(id)
	ing.SetCreatedAt(createdAt)
	ing.SetUpdatedAt(createdAt)
	return ing, nil
}

// TagRepository persists [models.Tag] rows.
type TagRepository struct {
	db Querier
}

// NewTagRepository creates a new [TagRepository].
func NewTagRepository(db Querier) *TagRepository {
	return &TagRepository{db: db}
}

// Create inserts a tag. A duplicate name or slug yields [shared.ErrConflict].
func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if err := tag.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "tags")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	tag.SetID(shared.GenerateID())
	tag.SetSequence(sequence)

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO tags (id, sequence, name, slug, created_at) VALUES (?, ?, ?, ?, ?)`,
		tag.ID(), sequence, tag.Name, tag.Slug, tag.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", translateError(err))
	}
	return nil
}

// Get retrieves a tag by ID.
func (r *TagRepository) Get(ctx context.Context, id string) (*models.Tag, error) {
	return r.getBy(ctx, "id", id)
}

// GetBySlug retrieves a tag by slug.
func (r *TagRepository) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	return r.getBy(ctx, "slug", slug)
}

func (r *TagRepository) getBy(ctx context.Context, column, value string) (*models.Tag, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, sequence, name, slug, created_at FROM tags WHERE `+column+` = ?`, value)

	tag, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.NotFoundf("tag %s", value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tag: %w", err)
	}
	return tag, nil
}

// List returns all tags in creation order.
func (r *TagRepository) List(ctx context.Context) ([]*models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, sequence, name, slug, created_at FROM tags ORDER BY sequence ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// ForRecipe returns the tags linked to a recipe in the order they were attached.
func (r *TagRepository) ForRecipe(ctx context.Context, recipeID string) ([]*models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.sequence, t.name, t.slug, t.created_at
		FROM recipe_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id = ?
		ORDER BY rt.rowid ASC
	`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// Missing returns the ids from ids that have no tag row, preserving input order.
func (r *TagRepository) Missing(ctx context.Context, ids []string) ([]string, error) {
	return missingIDs(ctx, r.db, "tags", ids)
}

func collectTags(rows *sql.Rows) ([]*models.Tag, error) {
	tags := []*models.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tags, nil
}

func scanTag(row rowScanner) (*models.Tag, error) {
	var (
		id        string
		sequence  int
		name      string
		slug      string
		createdAt time.Time
	)
	if err := row.Scan(&id, &sequence, &name, &slug, &createdAt); err != nil {
		return nil, err
	}

	tag := models.NewTag(sequence, name, slug)
	tag.SetID(id)
	tag.SetCreatedAt(createdAt)
	tag.SetUpdatedAt(createdAt)
	return tag, nil
}

// missingIDs reports which of ids are absent from table.
func missingIDs(ctx context.Context, q Querier, table string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT id FROM %s WHERE id IN (%s)", table, placeholders(len(ids)))
	rows, err := q.QueryContext(ctx, query, stringArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
