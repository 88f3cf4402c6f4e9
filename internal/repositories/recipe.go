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

// RecipeRepository persists the [models.Recipe] aggregate: the recipe row, its ingredient lines and tag links.
//
// Multi-step writes are expected to run on a transaction-bound repository (see [Store.WithTx]).
type RecipeRepository struct {
	db   Querier
	tags *TagRepository
}

// NewRecipeRepository creates a new [RecipeRepository].
func NewRecipeRepository(db Querier) *RecipeRepository {
	return &RecipeRepository{db: db, tags: NewTagRepository(db)}
}

const recipeColumns = `r.id, r.sequence, r.author_id, r.name, r.text, r.image, r.cooking_time, r.published_at, r.created_at, r.updated_at`

// Create inserts the recipe row with a generated ID and sequence. Lines and tags are written with
// [RecipeRepository.ReplaceIngredients] and [RecipeRepository.ReplaceTags].
func (r *RecipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	if err := recipe.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "recipes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	recipe.SetID(shared.GenerateID())
	recipe.SetSequence(sequence)

	query := `
		INSERT INTO recipes (id, sequence, author_id, name, text, image, cooking_time, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query, recipe.ID(), sequence, recipe.AuthorID, recipe.Name, recipe.Text,
		recipe.Image, recipe.CookingTime, recipe.PublishedAt, recipe.CreatedAt(), recipe.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert recipe: %w", translateError(err))
	}
	return nil
}

// Get retrieves a recipe by ID with its ingredient lines and tags.
func (r *RecipeRepository) Get(ctx context.Context, id string) (*models.Recipe, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes r WHERE r.id = ?`, id)
	return r.getHydrated(ctx, row, id)
}

// GetBySequence retrieves a recipe by its sequence number.
func (r *RecipeRepository) GetBySequence(ctx context.Context, sequence int) (*models.Recipe, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes r WHERE r.sequence = ?`, sequence)
	return r.getHydrated(ctx, row, fmt.Sprintf("#%d", sequence))
}

func (r *RecipeRepository) getHydrated(ctx context.Context, row *sql.Row, label string) (*models.Recipe, error) {
	recipe, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.NotFoundf("recipe %s", label)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe: %w", err)
	}

	if err := r.hydrate(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

// Exists reports whether a recipe with id exists.
func (r *RecipeRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM recipes WHERE id = ?)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check recipe: %w", err)
	}
	return exists, nil
}

// Update writes the recipe's scalar fields. The author and publication time never change.
func (r *RecipeRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	if err := recipe.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `
		UPDATE recipes
		SET name = ?, text = ?, image = ?, cooking_time = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, recipe.Name, recipe.Text, recipe.Image, recipe.CookingTime, now, recipe.ID())
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", translateError(err))
	}

	rows, err := affected(result)
	if err != nil {
		return err
	}
	if rows == 0 {
		return shared.NotFoundf("recipe %s", recipe.ID())
	}

	recipe.SetUpdatedAt(now)
	return nil
}

// Delete removes a recipe. Lines, tag links, favorites and cart entries cascade.
func (r *RecipeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	rows, err := affected(result)
	if err != nil {
		return err
	}
	if rows == 0 {
		return shared.NotFoundf("recipe %s", id)
	}
	return nil
}

// ReplaceIngredients deletes every ingredient line of the recipe and inserts lines in one statement.
func (r *RecipeRepository) ReplaceIngredients(ctx context.Context, recipeID string, lines []models.DraftIngredient) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = ?`, recipeID); err != nil {
		return fmt.Errorf("failed to clear recipe ingredients: %w", err)
	}
	if len(lines) == 0 {
		return nil
	}

	values := make([]string, len(lines))
	args := make([]any, 0, len(lines)*3)
	for i, line := range lines {
		values[i] = "(?, ?, ?)"
		args = append(args, recipeID, line.ID, line.Amount)
	}

	query := `INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount) VALUES ` + strings.Join(values, ", ")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert recipe ingredients: %w", translateError(err))
	}
	return nil
}

// ReplaceTags deletes every tag link of the recipe and links tagIDs in one statement.
func (r *RecipeRepository) ReplaceTags(ctx context.Context, recipeID string, tagIDs []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = ?`, recipeID); err != nil {
		return fmt.Errorf("failed to clear recipe tags: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}

	values := make([]string, len(tagIDs))
	args := make([]any, 0, len(tagIDs)*2)
	for i, id := range tagIDs {
		values[i] = "(?, ?)"
		args = append(args, recipeID, id)
	}

	query := `INSERT INTO recipe_tags (recipe_id, tag_id) VALUES ` + strings.Join(values, ", ")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert recipe tags: %w", translateError(err))
	}
	return nil
}

// Ingredients returns the recipe's ingredient lines in the order they were written.
func (r *RecipeRepository) Ingredients(ctx context.Context, recipeID string) ([]models.IngredientLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ri.ingredient_id, i.name, i.measurement_unit, ri.amount
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ?
		ORDER BY ri.rowid ASC
	`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe ingredients: %w", err)
	}
	defer rows.Close()

	lines := []models.IngredientLine{}
	for rows.Next() {
		var line models.IngredientLine
		if err := rows.Scan(&line.IngredientID, &line.Name, &line.MeasurementUnit, &line.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan recipe ingredient: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}

// List returns one page of recipes matching filter, newest first, with the total match count.
func (r *RecipeRepository) List(ctx context.Context, filter models.RecipeFilter) (*models.RecipePage, error) {
	where, args := recipeWhere(filter)

	page := &models.RecipePage{Recipes: []*models.Recipe{}}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes r`+where, args...).Scan(&page.Count); err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	query := `SELECT ` + recipeColumns + ` FROM recipes r` + where + ` ORDER BY r.published_at DESC, r.sequence DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, max(filter.Offset, 0))
	}

	recipes, err := r.queryRecipes(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	page.Recipes = recipes
	return page, nil
}

// LatestByAuthor returns up to limit of the author's newest recipes. limit <= 0 means all.
func (r *RecipeRepository) LatestByAuthor(ctx context.Context, authorID string, limit int) ([]*models.Recipe, error) {
	page, err := r.List(ctx, models.RecipeFilter{AuthorID: authorID, Limit: limit})
	if err != nil {
		return nil, err
	}
	return page.Recipes, nil
}

// CountByAuthor returns how many recipes authorID has published.
func (r *RecipeRepository) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes WHERE author_id = ?`, authorID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return n, nil
}

// queryRecipes runs query and hydrates each result after the cursor is closed,
// so it is safe on a single-connection pool.
func (r *RecipeRepository) queryRecipes(ctx context.Context, query string, args ...any) ([]*models.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}

	recipes := []*models.Recipe{}
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	for _, recipe := range recipes {
		if err := r.hydrate(ctx, recipe); err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

func (r *RecipeRepository) hydrate(ctx context.Context, recipe *models.Recipe) error {
	lines, err := r.Ingredients(ctx, recipe.ID())
	if err != nil {
		return err
	}
	tags, err := r.tags.ForRecipe(ctx, recipe.ID())
	if err != nil {
		return err
	}
	recipe.Ingredients = lines
	recipe.Tags = tags
	return nil
}

func recipeWhere(filter models.RecipeFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if filter.AuthorID != "" {
		clauses = append(clauses, "r.author_id = ?")
		args = append(args, filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		clauses = append(clauses, `EXISTS (
			SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = r.id AND t.slug IN (`+placeholders(len(filter.TagSlugs))+`))`)
		args = append(args, stringArgs(filter.TagSlugs)...)
	}
	if filter.FavoritedBy != "" {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = r.id AND f.user_id = ?)")
		args = append(args, filter.FavoritedBy)
	}
	if filter.InCartOf != "" {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM shopping_cart c WHERE c.recipe_id = r.id AND c.user_id = ?)")
		args = append(args, filter.InCartOf)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanRecipe(row rowScanner) (*models.Recipe, error) {
	var (
		id          string
		sequence    int
		authorID    string
		name        string
		text        string
		image       string
		cookingTime int
		publishedAt time.Time
		createdAt   time.Time
		updatedAt   time.Time
	)

	if err := row.Scan(&id, &sequence, &authorID, &name, &text, &image, &cookingTime, &publishedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        name,
		Text:        text,
		Image:       image,
		CookingTime: cookingTime,
		PublishedAt: publishedAt,
	}
	recipe.SetID(id)
	recipe.SetSequence(sequence)
	recipe.SetCreatedAt(createdAt)
	recipe.SetUpdatedAt(updatedAt)
	return recipe, nil
}
