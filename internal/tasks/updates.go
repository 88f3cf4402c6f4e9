package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ParseInput Phase = iota
	WriteIngredients
	FetchRecipes
	ExportRecipes
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case ParseInput:
		return "parse_input"
	case WriteIngredients:
		return "write_ingredients"
	case FetchRecipes:
		return "fetch_recipes"
	case ExportRecipes:
		return "export_recipes"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func parsedInputUpdate(count int, format string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ParseInput,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Parsed %d ingredients (%s)", count, format),
		Data:    count,
	}
}

func batchWrittenUpdate(step, total int, res BatchResult) ProgressUpdate {
	if res.Error != nil {
		return ProgressUpdate{
			Phase:   WriteIngredients,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ batch %d: %v", step, total, res.Index+1, res.Error),
			Data:    res,
		}
	}
	return ProgressUpdate{
		Phase:   WriteIngredients,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ batch %d: %d created, %d skipped", step, total, res.Index+1, res.Created, res.Skipped),
		Data:    res,
	}
}

func fetchRecipesUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRecipes,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Loading: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRecipes,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRecipes,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written to %s", path),
	}
}
