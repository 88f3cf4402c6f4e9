package formatter

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/shared"
	th "github.com/desertthunder/foodgram/internal/testing"
)

func sampleList() *models.ShoppingList {
	return &models.ShoppingList{
		Owner: models.NewUser(1, "cook@example.com", "cook"),
		Date:  time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC),
		Items: []models.ShoppingListItem{
			{IngredientName: "flour", MeasurementUnit: "g", TotalAmount: 300},
			{IngredientName: "sugar", MeasurementUnit: "g", TotalAmount: 50},
		},
	}
}

func sampleRecipe() *models.RecipeView {
	author := models.NewUser(1, "cook@example.com", "cook")
	author.FirstName = "Ada"
	author.LastName = "Cook"

	recipe := &models.Recipe{
		AuthorID:    "author-id",
		Name:        "Pancakes",
		Text:        "Mix and fry.\n",
		Image:       "https://img.example.com/p.png",
		CookingTime: 20,
		PublishedAt: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		Ingredients: []models.IngredientLine{{IngredientID: "i1", Name: "flour", MeasurementUnit: "g", Amount: 200}},
		Tags:        []*models.Tag{models.NewTag(1, "Breakfast", "breakfast")},
	}
	recipe.SetID("recipe-id")
	recipe.SetSequence(7)
	return &models.RecipeView{Recipe: recipe, Author: author}
}

func TestShoppingListExporters(t *testing.T) {
	t.Run("ShoppingListToText", func(t *testing.T) {
		data, err := ShoppingListToText(sampleList())
		if err != nil {
			t.Fatalf("ShoppingListToText failed: %v", err)
		}

		want := "Shopping list for cook\nDate: 05.03.2024\n\n1. flour - 300 g\n2. sugar - 50 g\n"
		if string(data) != want {
			t.Errorf("unexpected text:\n%q\nwant:\n%q", string(data), want)
		}
	})

	t.Run("ShoppingListToText Empty", func(t *testing.T) {
		list := sampleList()
		list.Items = nil

		data, err := ShoppingListToText(list)
		if err != nil {
			t.Fatalf("ShoppingListToText failed: %v", err)
		}
		if !strings.HasSuffix(string(data), "Date: 05.03.2024\n\n") {
			t.Errorf("empty list should have only the header, got %q", string(data))
		}
	})

	t.Run("ShoppingListToCSV", func(t *testing.T) {
		data, err := ShoppingListToCSV(sampleList())
		if err != nil {
			t.Fatalf("ShoppingListToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Ingredient,Amount,Unit\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "flour,300,g") {
			t.Errorf("CSV missing flour row, got: %s", output)
		}
	})

	t.Run("ShoppingListToMarkdown", func(t *testing.T) {
		data, err := ShoppingListToMarkdown(sampleList())
		if err != nil {
			t.Fatalf("ShoppingListToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "# Shopping list for cook") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "- [ ] sugar - 50 g") {
			t.Errorf("Markdown missing sugar item")
		}
		if !strings.Contains(output, "**Items**: 2") {
			t.Errorf("Markdown missing item count")
		}
	})

	t.Run("Missing Owner", func(t *testing.T) {
		list := sampleList()
		list.Owner = nil

		data, _ := ShoppingListToText(list)
		if !strings.HasPrefix(string(data), "Shopping list for unknown\n") {
			t.Errorf("unexpected header %q", string(data))
		}
	})
}

func TestFormat(t *testing.T) {
	tc := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "TXT", want: FormatText},
		{in: "csv", want: FormatCSV},
		{in: "markdown", want: FormatMarkdown},
		{in: "pdf", wantErr: true},
	}

	for _, c := range tc {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseFormat(c.in)
			if c.wantErr {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Errorf("expected invalid argument, got %v", err)
				}
				return
			}
			if err != nil || got != c.want {
				t.Errorf("ParseFormat(%q) = %v, %v", c.in, got, err)
			}
		})
	}

	if FormatText.Filename() != "shopping_list.txt" {
		t.Errorf("unexpected filename %s", FormatText.Filename())
	}
	if !strings.HasPrefix(FormatCSV.ContentType(), "text/csv") {
		t.Errorf("unexpected content type %s", FormatCSV.ContentType())
	}
	if _, err := RenderShoppingList(sampleList(), Format("pdf")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriteShoppingList(t *testing.T) {
	t.Run("Writes File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "list.md")

		written, err := WriteShoppingList(sampleList(), FormatMarkdown, path)
		if err != nil {
			t.Fatalf("WriteShoppingList failed: %v", err)
		}

		th.AssertFileExists(t, written)
		if content := th.MustReadFile(t, written); !strings.Contains(content, "flour") {
			t.Errorf("written file missing items: %s", content)
		}
	})

	t.Run("Default Name", func(t *testing.T) {
		dir := t.TempDir()
		wd := th.MustGetwd(t)
		th.MustChdir(t, dir)
		t.Cleanup(func() { th.MustChdir(t, wd) })

		written, err := WriteShoppingList(sampleList(), FormatText, "")
		if err != nil {
			t.Fatalf("WriteShoppingList failed: %v", err)
		}
		if written != "shopping_list.txt" {
			t.Errorf("expected default filename, got %s", written)
		}
	})

	t.Run("Bad Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "list.txt")
		if _, err := WriteShoppingList(sampleList(), FormatText, path); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})
}

func TestRecipeExporters(t *testing.T) {
	t.Run("RecipeToMarkdown", func(t *testing.T) {
		data, err := RecipeToMarkdown(sampleRecipe())
		if err != nil {
			t.Fatalf("RecipeToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Pancakes",
			"![Pancakes](https://img.example.com/p.png)",
			"**Author**: Ada Cook",
			"**Cooking time**: 20 min",
			"**Tags**: breakfast",
			"- flour - 200 g",
			"## Method\n\nMix and fry.\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("Inline Image Skipped", func(t *testing.T) {
		view := sampleRecipe()
		view.Image = "data:image/png;base64,AA=="

		data, _ := RecipeToMarkdown(view)
		if strings.Contains(string(data), "![") {
			t.Error("inline images should not be embedded")
		}
	})

	t.Run("RecipesToJSON", func(t *testing.T) {
		data, err := RecipesToJSON([]*models.RecipeView{sampleRecipe()})
		if err != nil {
			t.Fatalf("RecipesToJSON failed: %v", err)
		}

		var docs []RecipeDocument
		if err := shared.UnmarshalJSON(data, &docs); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(docs) != 1 || docs[0].Author != "cook" || docs[0].Tags[0] != "breakfast" || docs[0].Sequence != 7 {
			t.Errorf("unexpected document %+v", docs)
		}
	})
}
