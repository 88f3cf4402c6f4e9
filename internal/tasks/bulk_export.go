package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/foodgram/internal/formatter"
	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/services"
	"github.com/desertthunder/foodgram/internal/shared"
	"golang.org/x/time/rate"
)

// RecipeFetcher loads a recipe as seen by a viewer. [services.RecipeService] implements it.
type RecipeFetcher interface {
	Get(ctx context.Context, viewer services.Actor, id string) (*models.RecipeView, error)
}

// BulkExportOpts contains configuration for bulk recipe exports.
type BulkExportOpts struct {
	Format     string  // Export format: json or markdown
	OutputDir  string  // Base output directory (default: recipes_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 4)
	RateLimit  float64 // Recipe loads per second (default: 50)
}

// RecipeExportResult is the outcome of exporting one recipe.
type RecipeExportResult struct {
	RecipeID   string   `json:"recipe_id"`
	RecipeName string   `json:"recipe_name"`
	Success    bool     `json:"success"`
	Files      []string `json:"files,omitempty"`
	Error      error    `json:"-"`
	ErrorText  string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalRecipes      int                  `json:"total_recipes"`
	SuccessfulExports int                  `json:"successful_exports"`
	FailedExports     int                  `json:"failed_exports"`
	OutputDirectory   string               `json:"output_directory"`
	Format            string               `json:"format"`
	ExportedAt        time.Time            `json:"exported_at"`
	Results           []RecipeExportResult `json:"results"`
	ManifestPath      string               `json:"-"`
}

type recipeExportJob struct {
	view *models.RecipeView
}

// RecipeExporter writes recipes to files.
type RecipeExporter struct {
	source RecipeFetcher
}

// NewRecipeExporter creates a [RecipeExporter] loading recipes from source.
func NewRecipeExporter(source RecipeFetcher) *RecipeExporter {
	return &RecipeExporter{source: source}
}

// BulkExport exports recipes concurrently with rate limiting and progress tracking.
//
// A producer loads each recipe (rate limited) and hands it to a pool of workers that render and
// write the files. Failures are recorded per recipe; a manifest summarizing the run is written last.
func (e *RecipeExporter) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: recipe source not initialized", shared.ErrMissingArgument)
	}

	if opts.Format == "" {
		opts.Format = "json"
	}
	if opts.Format != "json" && opts.Format != "markdown" {
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("recipes_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 50.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalRecipes:    len(ids),
		OutputDirectory: opts.OutputDir,
		Format:          opts.Format,
		ExportedAt:      time.Now().UTC(),
		Results:         make([]RecipeExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan recipeExportJob, len(ids))
	results := make(chan RecipeExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			view, err := e.source.Get(ctx, services.Anonymous(), id)
			if err != nil {
				results <- RecipeExportResult{
					RecipeID:   id,
					RecipeName: fmt.Sprintf("Unknown (%s)", id),
					Error:      fmt.Errorf("failed to load recipe: %w", err),
				}
				continue
			}

			sendProgress(prog, fetchRecipesUpdate(i+1, len(ids), view.Name))
			jobs <- recipeExportJob{view: view}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Error != nil {
			res.ErrorText = res.Error.Error()
		}
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.RecipeName, len(res.Files)))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(ids), res.RecipeName, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export interrupted: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

// exportWorker renders recipes from the jobs channel until it closes.
func (e *RecipeExporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan recipeExportJob,
	results chan<- RecipeExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- exportSingleRecipe(job, opts)
	}
}

func exportSingleRecipe(j recipeExportJob, opts BulkExportOpts) RecipeExportResult {
	result := RecipeExportResult{
		RecipeID:   j.view.ID(),
		RecipeName: j.view.Name,
		Files:      []string{},
	}
	base := filepath.Join(opts.OutputDir, fmt.Sprintf("recipe_%d", j.view.Sequence()))

	var (
		path string
		data []byte
		err  error
	)
	switch opts.Format {
	case "markdown":
		path = base + ".md"
		data, err = formatter.RecipeToMarkdown(j.view)
	default:
		path = base + ".json"
		data, err = shared.MarshalJSON(formatter.NewRecipeDocument(j.view), true)
	}
	if err != nil {
		result.Error = fmt.Errorf("%s render failed: %w", opts.Format, err)
		return result
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		result.Error = fmt.Errorf("%s write failed: %w", opts.Format, err)
		return result
	}

	result.Files = []string{path}
	result.Success = true
	return result
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
