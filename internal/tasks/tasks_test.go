package tasks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/repositories"
	"github.com/desertthunder/foodgram/internal/shared"
	tu "github.com/desertthunder/foodgram/internal/testing"
)

// mockWriter records batches and fails any batch containing failOn.
type mockWriter struct {
	mu      sync.Mutex
	seen    map[string]bool
	batches int
	failOn  string
}

func (m *mockWriter) WriteBatch(ctx context.Context, batch []*models.Ingredient) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++

	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	for _, ing := range batch {
		if m.failOn != "" && ing.Name == m.failOn {
			return 0, 0, errors.New("write failed")
		}
	}

	created, skipped := 0, 0
	for _, ing := range batch {
		key := ing.Name + "|" + ing.MeasurementUnit
		if m.seen[key] {
			skipped++
			continue
		}
		m.seen[key] = true
		created++
	}
	return created, skipped, nil
}

func TestParseIngredients(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		format     string
		wantFormat string
		want       []IngredientRecord
		wantErr    error
	}{
		{
			name:       "csv without header",
			input:      "flour,g\nmilk, ml\n",
			wantFormat: "csv",
			want:       []IngredientRecord{{"flour", "g"}, {"milk", "ml"}},
		},
		{
			name:       "csv with header",
			input:      "name,measurement_unit\nsalt,g\n",
			format:     "csv",
			wantFormat: "csv",
			want:       []IngredientRecord{{"salt", "g"}},
		},
		{
			name:       "csv with quoted comma",
			input:      "\"cheese, grated\",g\n",
			wantFormat: "csv",
			want:       []IngredientRecord{{"cheese, grated", "g"}},
		},
		{
			name:       "plain json",
			input:      `[{"name":"flour","measurement_unit":"g"}]`,
			wantFormat: "json",
			want:       []IngredientRecord{{"flour", "g"}},
		},
		{
			name:       "fixture json",
			input:      `[{"model":"recipes.ingredient","pk":1,"fields":{"name":"sugar","measurement_unit":"g"}}]`,
			format:     "json",
			wantFormat: "json",
			want:       []IngredientRecord{{"sugar", "g"}},
		},
		{
			name:    "csv wrong column count",
			input:   "flour,g,extra\n",
			wantErr: shared.ErrInvalidInput,
		},
		{
			name:    "malformed json",
			input:   `[{"name":`,
			wantErr: shared.ErrInvalidInput,
		},
		{
			name:    "unknown format",
			input:   "flour,g",
			format:  "xml",
			wantErr: shared.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, format, err := ParseIngredients(strings.NewReader(tt.input), tt.format)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseIngredients() error = %v", err)
			}
			if format != tt.wantFormat {
				t.Errorf("format = %s, want %s", format, tt.wantFormat)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d records, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("record %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}

	t.Run("read error", func(t *testing.T) {
		if _, _, err := ParseIngredients(&tu.FReader{}, "csv"); err == nil {
			t.Error("expected error from failing reader")
		}
	})
}

func TestIngredientImporter_Import(t *testing.T) {
	input := "a,g\nb,g\nc,g\na,g\nd,ml\n"

	t.Run("batches and duplicates", func(t *testing.T) {
		writer := &mockWriter{}
		importer := NewIngredientImporter(writer)

		result, err := importer.Import(context.Background(), nil, strings.NewReader(input), ImportOpts{BatchSize: 2, NumWorkers: 1})
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if result.Total != 5 || result.Created != 4 || result.Skipped != 1 || result.Failed != 0 {
			t.Errorf("unexpected result %+v", result)
		}
		if writer.batches != 3 || len(result.Batches) != 3 {
			t.Errorf("expected 3 batches, got %d", writer.batches)
		}
		for i, b := range result.Batches {
			if b.Index != i {
				t.Errorf("batches should be ordered by index, got %d at %d", b.Index, i)
			}
		}
	})

	t.Run("failed batch", func(t *testing.T) {
		writer := &mockWriter{failOn: "c"}
		importer := NewIngredientImporter(writer)

		result, err := importer.Import(context.Background(), nil, strings.NewReader(input), ImportOpts{BatchSize: 2, NumWorkers: 3})
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if result.Failed != 2 {
			t.Errorf("expected the 2-row batch to fail, got %d", result.Failed)
		}
		if result.Err() == nil {
			t.Error("expected joined batch error")
		}
	})

	t.Run("progress", func(t *testing.T) {
		progressCh := make(chan ProgressUpdate, 100)
		importer := NewIngredientImporter(&mockWriter{})

		if _, err := importer.Import(context.Background(), progressCh, strings.NewReader(input), ImportOpts{BatchSize: 2}); err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		close(progressCh)

		phases := map[Phase]int{}
		for update := range progressCh {
			phases[update.Phase]++
		}
		if phases[ParseInput] != 1 || phases[WriteIngredients] != 3 {
			t.Errorf("unexpected progress phases %v", phases)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		importer := NewIngredientImporter(&mockWriter{})
		result, err := importer.Import(ctx, nil, strings.NewReader(input), ImportOpts{BatchSize: 1})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if result.Created != 0 {
			t.Errorf("nothing should be written after cancel, got %d", result.Created)
		}
	})

	t.Run("nil writer", func(t *testing.T) {
		if _, err := NewIngredientImporter(nil).Import(context.Background(), nil, strings.NewReader(input), ImportOpts{}); err == nil {
			t.Error("expected error for nil writer")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		result, err := NewIngredientImporter(&mockWriter{}).Import(context.Background(), nil, strings.NewReader(""), ImportOpts{})
		if err != nil || result.Total != 0 {
			t.Errorf("expected empty result, got %+v, %v", result, err)
		}
	})
}

func TestIngredientImporter_Database(t *testing.T) {
	db := tu.MustOpenDB(t)
	importer := NewIngredientImporter(repositories.NewIngredientSink(db))
	input := `[{"fields":{"name":"flour","measurement_unit":"g"}},{"fields":{"name":"flour","measurement_unit":"g"}},{"name":"milk","measurement_unit":"ml"}]`

	result, err := importer.Import(context.Background(), nil, strings.NewReader(input), ImportOpts{BatchSize: 10})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.Created != 2 || result.Skipped != 1 {
		t.Errorf("expected 2 created and 1 skipped, got %+v", result)
	}

	again, err := importer.Import(context.Background(), nil, strings.NewReader(input), ImportOpts{})
	if err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	if again.Created != 0 || again.Skipped != 3 {
		t.Errorf("re-import should skip everything, got %+v", again)
	}

	n, _ := repositories.NewStore(db).Ingredients.Count(context.Background())
	if n != 2 {
		t.Errorf("expected 2 ingredients, got %d", n)
	}
}

func TestProgressUpdate_NonBlocking(t *testing.T) {
	progressCh := make(chan ProgressUpdate)
	importer := NewIngredientImporter(&mockWriter{})

	done := make(chan error)
	go func() {
		_, err := importer.Import(context.Background(), progressCh, strings.NewReader("a,g\nb,g\n"), ImportOpts{BatchSize: 1})
		done <- err
	}()

	if err := <-done; err != nil {
		t.Errorf("Import() error = %v", err)
	}
}

func TestPhaseString(t *testing.T) {
	for phase, want := range map[Phase]string{
		ParseInput:       "parse_input",
		WriteIngredients: "write_ingredients",
		ExportRecipes:    "export_recipes",
		Phase(99):        "",
	} {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
