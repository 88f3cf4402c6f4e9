// Package tasks runs the long operations behind the CLI: bulk ingredient loading and bulk recipe export.
//
// # Ingredient import
//
// [IngredientImporter] parses CSV (name,measurement_unit rows) or JSON (plain records or database
// fixture entries) and writes the ingredients in batches through an [IngredientWriter]
// (repositories.IngredientSink). Each batch is one transaction; ingredients that already exist
// are skipped.
//
// # Recipe export
//
// [RecipeExporter.BulkExport] loads recipes through a [RecipeFetcher] and renders them to JSON or
// Markdown files with a worker pool, then writes export_manifest.json.
//
// # Progress Reporting
//
// Both operations send [ProgressUpdate] values on an optional channel. Sends never block: when the
// consumer falls behind, updates are dropped.
package tasks
