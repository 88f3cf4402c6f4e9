package tasks

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/shared"
	"golang.org/x/time/rate"
)

// IngredientRecord is one row of an ingredient import file.
type IngredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// fixtureRecord accepts both plain records and database fixture entries ({"fields": {...}}).
type fixtureRecord struct {
	IngredientRecord
	Fields *IngredientRecord `json:"fields"`
}

// ParseIngredients reads ingredient records from r.
//
// format is "csv" (rows of name,measurement_unit with an optional header), "json" (an array of records
// or fixture entries) or empty to detect from the first non-space byte.
func ParseIngredients(r io.Reader, format string) ([]IngredientRecord, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read input: %w", err)
	}

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = detectFormat(data)
	}

	var records []IngredientRecord
	switch format {
	case "csv":
		records, err = parseCSV(data)
	case "json":
		records, err = parseJSON(data)
	default:
		return nil, "", fmt.Errorf("%w: unknown import format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return nil, format, err
	}
	return records, format, nil
}

func detectFormat(data []byte) string {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return "json"
	}
	return "csv"
}

func parseCSV(data []byte) ([]IngredientRecord, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed CSV: %v", shared.ErrInvalidInput, err)
	}

	records := make([]IngredientRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 && strings.EqualFold(row[0], "name") && strings.EqualFold(row[1], "measurement_unit") {
			continue
		}
		records = append(records, IngredientRecord{Name: strings.TrimSpace(row[0]), MeasurementUnit: strings.TrimSpace(row[1])})
	}
	return records, nil
}

func parseJSON(data []byte) ([]IngredientRecord, error) {
	var raw []fixtureRecord
	if err := shared.UnmarshalJSON(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", shared.ErrInvalidInput, err)
	}

	records := make([]IngredientRecord, len(raw))
	for i, r := range raw {
		rec := r.IngredientRecord
		if r.Fields != nil {
			rec = *r.Fields
		}
		records[i] = IngredientRecord{Name: strings.TrimSpace(rec.Name), MeasurementUnit: strings.TrimSpace(rec.MeasurementUnit)}
	}
	return records, nil
}

// IngredientWriter persists one batch of ingredients, reporting created and duplicate counts.
type IngredientWriter interface {
	WriteBatch(ctx context.Context, batch []*models.Ingredient) (created, skipped int, err error)
}

// ImportOpts configures an ingredient import.
type ImportOpts struct {
	Format     string  // csv, json or empty to detect
	BatchSize  int     // Ingredients per transaction (default: 200)
	NumWorkers int     // Concurrent writers (default: 2, max: 4)
	RateLimit  float64 // Batches per second; <= 0 means unlimited
}

// BatchResult is the outcome of writing one batch.
type BatchResult struct {
	Index   int
	Size    int
	Created int
	Skipped int
	Error   error
}

// ImportResult summarizes an ingredient import.
type ImportResult struct {
	Format  string
	Total   int
	Created int
	Skipped int
	Failed  int
	Batches []BatchResult
}

// IngredientImporter bulk loads ingredient reference data.
type IngredientImporter struct {
	writer IngredientWriter
}

// NewIngredientImporter creates an [IngredientImporter] writing through w.
func NewIngredientImporter(w IngredientWriter) *IngredientImporter {
	return &IngredientImporter{writer: w}
}

// Import parses r and writes its ingredients in batches using a small worker pool.
//
// Duplicates of existing ingredients are skipped. Invalid rows fail their whole batch; other batches
// still commit, and the failures are reported in the result.
func (i *IngredientImporter) Import(ctx context.Context, prog chan<- ProgressUpdate, r io.Reader, opts ImportOpts) (*ImportResult, error) {
	if i.writer == nil {
		return nil, fmt.Errorf("%w: ingredient writer not initialized", shared.ErrMissingArgument)
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = 200
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 2
	}
	if opts.NumWorkers > 4 {
		opts.NumWorkers = 4
	}

	records, format, err := ParseIngredients(r, opts.Format)
	if err != nil {
		return nil, err
	}
	sendProgress(prog, parsedInputUpdate(len(records), format))

	result := &ImportResult{Format: format, Total: len(records)}
	batches := chunk(records, opts.BatchSize)
	if len(batches) == 0 {
		return result, nil
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	type job struct {
		index   int
		records []IngredientRecord
	}
	jobs := make(chan job, len(batches))
	results := make(chan BatchResult, len(batches))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					results <- BatchResult{Index: j.index, Size: len(j.records), Error: ctx.Err()}
					continue
				}
				results <- i.writeBatch(ctx, j.index, j.records)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for idx, batch := range batches {
			if err := limiter.Wait(ctx); err != nil {
				for rest := idx; rest < len(batches); rest++ {
					results <- BatchResult{Index: rest, Size: len(batches[rest]), Error: err}
				}
				return
			}
			jobs <- job{index: idx, records: batch}
		}
	}()

	for completed := 1; completed <= len(batches); completed++ {
		res := <-results
		result.Batches = append(result.Batches, res)
		if res.Error != nil {
			result.Failed += res.Size
		} else {
			result.Created += res.Created
			result.Skipped += res.Skipped
		}
		sendProgress(prog, batchWrittenUpdate(completed, len(batches), res))
	}
	wg.Wait()

	slices.SortFunc(result.Batches, func(a, b BatchResult) int { return a.Index - b.Index })

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("import interrupted: %w", err)
	}
	return result, nil
}

func (i *IngredientImporter) writeBatch(ctx context.Context, index int, records []IngredientRecord) BatchResult {
	res := BatchResult{Index: index, Size: len(records)}

	batch := make([]*models.Ingredient, len(records))
	for n, rec := range records {
		batch[n] = models.NewIngredient(0, rec.Name, rec.MeasurementUnit)
	}

	created, skipped, err := i.writer.WriteBatch(ctx, batch)
	if err != nil {
		res.Error = err
		return res
	}
	res.Created, res.Skipped = created, skipped
	return res
}

// Err joins the errors of every failed batch, or returns nil.
func (r *ImportResult) Err() error {
	var errs []error
	for _, b := range r.Batches {
		if b.Error != nil {
			errs = append(errs, fmt.Errorf("batch %d: %w", b.Index+1, b.Error))
		}
	}
	return errors.Join(errs...)
}

func chunk[T any](items []T, size int) [][]T {
	var out [][]T
	for start := 0; start < len(items); start += size {
		out = append(out, items[start:min(start+size, len(items))])
	}
	return out
}
