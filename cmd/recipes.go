package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/foodgram/internal/formatter"
	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/services"
	"github.com/desertthunder/foodgram/internal/shared"
	"github.com/desertthunder/foodgram/internal/tasks"
	"github.com/urfave/cli/v3"
)

// RecipesList prints one page of recipes, filtered like the API listing.
func (r *Runner) RecipesList(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.open(ctx)
	if err != nil {
		return err
	}
	actor, err := r.actor(ctx, svc, cmd.String("as"))
	if err != nil {
		return err
	}

	query := services.RecipeQuery{
		AuthorID:         cmd.String("author"),
		TagSlugs:         cmd.StringSlice("tag"),
		IsFavorited:      cmd.Bool("favorited"),
		IsInShoppingCart: cmd.Bool("in-cart"),
		Page:             services.Page{Number: int(cmd.Int("page")), Limit: int(cmd.Int("limit"))},
	}
	if (query.IsFavorited || query.IsInShoppingCart) && actor.IsAnonymous() {
		return fmt.Errorf("%w: --favorited and --in-cart require --as", shared.ErrMissingArgument)
	}

	listing, err := svc.Recipes.List(ctx, actor, query)
	if err != nil {
		return fmt.Errorf("failed to list recipes: %w", err)
	}

	if cmd.Bool("json") {
		docs := make([]formatter.RecipeDocument, len(listing.Recipes))
		for i, view := range listing.Recipes {
			docs[i] = formatter.NewRecipeDocument(view)
		}
		return r.writeJSON(docs, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Recipes %d of %d (page %d)", len(listing.Recipes), listing.Count, listing.Page))
	for _, view := range listing.Recipes {
		r.writePlain("%s %-32s %4d min  %-24s %s\n", markers(view), view.Name, view.CookingTime, tagSlugs(view.Tags), view.ID())
	}
	return nil
}

// RecipesShow prints one recipe.
func (r *Runner) RecipesShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: recipe id", shared.ErrMissingArgument)
	}

	svc, err := r.open(ctx)
	if err != nil {
		return err
	}
	actor, err := r.actor(ctx, svc, cmd.String("as"))
	if err != nil {
		return err
	}

	view, err := svc.Recipes.Get(ctx, actor, id)
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(formatter.NewRecipeDocument(view), cmd.Bool("pretty"))
	case cmd.Bool("markdown"):
		doc, err := formatter.RecipeToMarkdown(view)
		if err != nil {
			return err
		}
		return r.writePlain("%s", doc)
	}

	r.writePlainHeader(view.Name)
	if view.Author != nil {
		r.writePlain("By %s\n", view.Author.FullName())
	}
	r.writePlain("Cooking time: %d min\n", view.CookingTime)
	r.writePlain("Tags: %s\n", tagSlugs(view.Tags))
	r.writePlainln("Ingredients")
	for _, line := range view.Ingredients {
		r.writePlain("  - %s, %d %s\n", line.Name, line.Amount, line.MeasurementUnit)
	}
	r.writePlainln("Method")
	return r.writePlain("%s\n", strings.TrimSpace(view.Text))
}

// RecipesLink prints the short link for a recipe.
func (r *Runner) RecipesLink(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: recipe id", shared.ErrMissingArgument)
	}

	svc, err := r.open(ctx)
	if err != nil {
		return err
	}
	path, err := svc.Recipes.ShortLink(ctx, id)
	if err != nil {
		return err
	}
	return r.writePlain("%s%s\n", strings.TrimRight(r.config.Server.BaseURL, "/"), path)
}

// RecipesExport writes recipes to files with a worker pool, defaulting to every recipe.
func (r *Runner) RecipesExport(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.open(ctx)
	if err != nil {
		return err
	}

	ids := cmd.StringSlice("id")
	if len(ids) == 0 {
		if ids, err = r.allRecipeIDs(ctx, svc); err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		return r.writePlain("No recipes to export\n")
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	exporter := tasks.NewRecipeExporter(svc.Recipes)
	result, err := exporter.BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  float64(cmd.Float("rate")),
	})
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlainHeader("Recipe export")
	r.writePlain("Directory:  %s\n", result.OutputDirectory)
	r.writePlain("Exported:   %d/%d\n", result.SuccessfulExports, result.TotalRecipes)
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  ✗ %s: %s\n", res.RecipeID, res.ErrorText)
		}
	}
	r.writePlain("Manifest:   %s\n", result.ManifestPath)

	if result.FailedExports > 0 {
		return fmt.Errorf("%d of %d recipes failed to export", result.FailedExports, result.TotalRecipes)
	}
	return nil
}

func (r *Runner) allRecipeIDs(ctx context.Context, svc *services.Services) ([]string, error) {
	var ids []string
	for page := 1; ; page++ {
		listing, err := svc.Recipes.List(ctx, services.Anonymous(), services.RecipeQuery{
			Page: services.Page{Number: page, Limit: 50},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list recipes: %w", err)
		}
		for _, view := range listing.Recipes {
			ids = append(ids, view.ID())
		}
		if len(listing.Recipes) == 0 || listing.Page*listing.Limit >= listing.Count {
			return ids, nil
		}
	}
}

func markers(view *models.RecipeView) string {
	fav, cart := " ", " "
	if view.IsFavorited {
		fav = "♥"
	}
	if view.IsInShoppingCart {
		cart = "🛒"
	}
	return fav + cart
}

func tagSlugs(tags []*models.Tag) string {
	slugs := make([]string, len(tags))
	for i, tag := range tags {
		slugs[i] = tag.Slug
	}
	return strings.Join(slugs, ",")
}
