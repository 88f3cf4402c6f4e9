// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/repositories"
	"github.com/desertthunder/foodgram/internal/shared"
)

// MustOpenStore opens an in-memory database with every migration applied.
func MustOpenStore(t *testing.T) *repositories.Store {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if _, err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return repositories.NewStore(db)
}

// MustOpenDB is [MustOpenStore] for callers that want the raw pool.
func MustOpenDB(t *testing.T) *sql.DB {
	t.Helper()
	return MustOpenStore(t).DB()
}

// DiscardLogger returns a logger that writes nowhere.
func DiscardLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

// Fixtures seeds reference data into a store.
type Fixtures struct {
	t     *testing.T
	store *repositories.Store
}

// NewFixtures creates [Fixtures] over store.
func NewFixtures(t *testing.T, store *repositories.Store) *Fixtures {
	return &Fixtures{t: t, store: store}
}

// User creates an active user named username.
func (f *Fixtures) User(username string) *models.User {
	f.t.Helper()
	user := models.NewUser(0, username+"@example.com", username)
	if err := f.store.Users.Create(context.Background(), user); err != nil {
		f.t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// Staff creates a staff user named username.
func (f *Fixtures) Staff(username string) *models.User {
	f.t.Helper()
	user := models.NewUser(0, username+"@example.com", username)
	user.IsStaff = true
	if err := f.store.Users.Create(context.Background(), user); err != nil {
		f.t.Fatalf("failed to create staff user %s: %v", username, err)
	}
	return user
}

// Ingredient creates an ingredient.
func (f *Fixtures) Ingredient(name, unit string) *models.Ingredient {
	f.t.Helper()
	ing := models.NewIngredient(0, name, unit)
	if err := f.store.Ingredients.Create(context.Background(), ing); err != nil {
		f.t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ing
}

// Tag creates a tag whose name and slug are both slug.
func (f *Fixtures) Tag(slug string) *models.Tag {
	f.t.Helper()
	tag := models.NewTag(0, slug, slug)
	if err := f.store.Tags.Create(context.Background(), tag); err != nil {
		f.t.Fatalf("failed to create tag %s: %v", slug, err)
	}
	return tag
}

// Draft builds a valid recipe draft from alternating ingredient and amount pairs.
func Draft(name string, tags []*models.Tag, lines ...any) *models.RecipeDraft {
	draft := &models.RecipeDraft{Name: name, Text: "Mix and cook.", Image: "data:image/png;base64,AA==", CookingTime: 15}
	for i := 0; i+1 < len(lines); i += 2 {
		ing := lines[i].(*models.Ingredient)
		draft.Ingredients = append(draft.Ingredients, models.DraftIngredient{ID: ing.ID(), Amount: lines[i+1].(int)})
	}
	for _, tag := range tags {
		draft.Tags = append(draft.Tags, tag.ID())
	}
	return draft
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// FReader simulates a failure when reading an upload or import file
type FReader struct{}

func (f *FReader) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FReader) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MustWriteFile writes content to path.
func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
