package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/repositories"
	"github.com/desertthunder/foodgram/internal/server"
	"github.com/desertthunder/foodgram/internal/shared"
	"github.com/desertthunder/foodgram/internal/tasks"
	"github.com/urfave/cli/v3"
)

type userRow struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
}

type tagRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ingredientRow struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// UsersCreate registers an account.
func (r *Runner) UsersCreate(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.open(ctx)
	if err != nil {
		return err
	}

	user := models.NewUser(0, cmd.String("email"), cmd.String("username"))
	user.FirstName = cmd.String("first-name")
	user.LastName = cmd.String("last-name")
	user.IsStaff = cmd.Bool("staff")

	if err := svc.Catalog.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return r.writePlain("✓ Created user %s (%s)\n", user.Username, user.ID())
}

// UsersList prints active users.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.open(ctx)
	if err != nil {
		return err
	}

	users, err := svc.Catalog.Users(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if cmd.Bool("json") {
		rows := make([]userRow, len(users))
		for i, u := range users {
			rows[i] = userRow{u.ID(), u.Username, u.Email, u.FirstName, u.LastName, u.IsStaff}
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%d users", len(users)))
	for _, u := range users {
		staff := ""
		if u.IsStaff {
			staff = " [staff]"
		}
		r.writePlain("%-20s %-32s %s%s\n", u.Username, u.Email, u.ID(), staff)
	}
	return nil
}

// UsersToken prints a signed bearer token for a user.
func (r *Runner) UsersToken(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("user")
	if ref == "" {
		return fmt.Errorf("%w: user id or username", shared.ErrMissingArgument)
	}

	svc, err := r.open(ctx)
	if err != nil {
		return err
	}
	actor, err := r.actor(ctx, svc, ref)
	if err != nil {
		return err
	}

	token, err := server.IssueToken([]byte(r.config.Auth.JWTSecret), actor, cmd.Duration("ttl"))
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	return r.writePlain("%s\n", token)
}

// TagsCreate adds a tag.
func (r *Runner) TagsCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: tag name", shared.ErrMissingArgument)
	}

	svc, err := r.open(ctx)
	if err != nil {
		return err
	}
	tag, err := svc.Catalog.CreateTag(ctx, name, cmd.String("slug"))
	if err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return r.writePlain("✓ Created tag %s (%s)\n", tag.Slug, tag.ID())
}

// TagsList prints every tag.
func (r *Runner) TagsList(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.open(ctx)
	if err != nil {
		return err
	}
	tags, err := svc.Catalog.Tags(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tags: %w", err)
	}

	if cmd.Bool("json") {
		rows := make([]tagRow, len(tags))
		for i, tag := range tags {
			rows[i] = tagRow{tag.ID(), tag.Name, tag.Slug}
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%d tags", len(tags)))
	for _, tag := range tags {
		r.writePlain("%-16s %-24s %s\n", tag.Slug, tag.Name, tag.ID())
	}
	return nil
}

// IngredientsLoad bulk loads the ingredient catalog from a file, reporting progress as batches commit.
func (r *Runner) IngredientsLoad(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path to a CSV or JSON file", shared.ErrMissingArgument)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	if _, err := r.open(ctx); err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	importer := tasks.NewIngredientImporter(repositories.NewIngredientSink(r.db))
	result, err := importer.Import(ctx, progress, file, tasks.ImportOpts{
		Format:     cmd.String("format"),
		BatchSize:  int(cmd.Int("batch-size")),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  float64(cmd.Float("rate")),
	})
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	r.writePlainHeader("Ingredient import")
	r.writePlain("Format:   %s\n", result.Format)
	r.writePlain("Total:    %d\n", result.Total)
	r.writePlain("Created:  %d\n", result.Created)
	r.writePlain("Skipped:  %d\n", result.Skipped)
	r.writePlain("Failed:   %d\n", result.Failed)
	return result.Err()
}

// IngredientsCreate adds one ingredient.
func (r *Runner) IngredientsCreate(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.open(ctx)
	if err != nil {
		return err
	}
	ing, err := svc.Catalog.CreateIngredient(ctx, cmd.String("name"), cmd.String("unit"))
	if err != nil {
		return fmt.Errorf("failed to create ingredient: %w", err)
	}
	return r.writePlain("✓ Created ingredient %s, %s (%s)\n", ing.Name, ing.MeasurementUnit, ing.ID())
}

// IngredientsList searches the catalog by name prefix.
func (r *Runner) IngredientsList(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.open(ctx)
	if err != nil {
		return err
	}
	ingredients, err := svc.Catalog.Ingredients(ctx, cmd.String("prefix"), int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to list ingredients: %w", err)
	}

	if cmd.Bool("json") {
		rows := make([]ingredientRow, len(ingredients))
		for i, ing := range ingredients {
			rows[i] = ingredientRow{ing.ID(), ing.Name, ing.MeasurementUnit}
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%d ingredients", len(ingredients)))
	for _, ing := range ingredients {
		r.writePlain("%-32s %-10s %s\n", ing.Name, ing.MeasurementUnit, ing.ID())
	}
	return nil
}
