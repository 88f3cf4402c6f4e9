// package formatter renders shopping lists and recipes to text, CSV, Markdown and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/foodgram/internal/models"
	"github.com/desertthunder/foodgram/internal/shared"
)

// Format names a shopping list rendering.
type Format string

const (
	FormatText     Format = "txt"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
)

// dateLayout is dd.mm.yyyy.
const dateLayout = "02.01.2006"

// ParseFormat accepts "txt", "csv" or "md" (and a few long spellings). Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// ContentType is the HTTP media type of the rendering.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Filename is the download name of the rendering.
func (f Format) Filename() string {
	return "shopping_list." + string(f)
}

// RenderShoppingList renders list in format.
func RenderShoppingList(list *models.ShoppingList, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return ShoppingListToText(list)
	case FormatCSV:
		return ShoppingListToCSV(list)
	case FormatMarkdown:
		return ShoppingListToMarkdown(list)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ShoppingListToText renders the plain text download: a header naming the owner and date, a blank
// line, then one numbered "name - amount unit" line per item.
func ShoppingListToText(list *models.ShoppingList) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Shopping list for %s\n", ownerName(list)))
	buf.WriteString(fmt.Sprintf("Date: %s\n\n", list.Date.Format(dateLayout)))

	for i, item := range list.Items {
		buf.WriteString(fmt.Sprintf("%d. %s - %d %s\n", i+1, item.IngredientName, item.TotalAmount, item.MeasurementUnit))
	}

	return buf.Bytes(), nil
}

// ShoppingListToCSV renders list with columns: Ingredient, Amount, Unit
func ShoppingListToCSV(list *models.ShoppingList) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Ingredient", "Amount", "Unit"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range list.Items {
		record := []string{item.IngredientName, strconv.Itoa(item.TotalAmount), item.MeasurementUnit}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ShoppingListToMarkdown renders list as a Markdown checklist
func ShoppingListToMarkdown(list *models.ShoppingList) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Shopping list for %s\n\n", ownerName(list)))
	buf.WriteString(fmt.Sprintf("**Date**: %s\n", list.Date.Format(dateLayout)))
	buf.WriteString(fmt.Sprintf("**Items**: %d\n\n", len(list.Items)))

	for _, item := range list.Items {
		buf.WriteString(fmt.Sprintf("- [ ] %s - %d %s\n", item.IngredientName, item.TotalAmount, item.MeasurementUnit))
	}

	return buf.Bytes(), nil
}

// WriteShoppingList renders list to path, defaulting to the format's download name.
func WriteShoppingList(list *models.ShoppingList, format Format, path string) (string, error) {
	if path == "" {
		path = format.Filename()
	}

	data, err := RenderShoppingList(list, format)
	if err != nil {
		return "", fmt.Errorf("failed to render shopping list: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write shopping list: %w", err)
	}

	return path, nil
}

func ownerName(list *models.ShoppingList) string {
	if list.Owner == nil {
		return "unknown"
	}
	return list.Owner.Username
}

// RecipeToMarkdown renders a recipe card.
func RecipeToMarkdown(view *models.RecipeView) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", view.Name))

	if view.Image != "" && !strings.HasPrefix(view.Image, "data:") {
		buf.WriteString(fmt.Sprintf("![%s](%s)\n\n", view.Name, view.Image))
	}

	if view.Author != nil {
		buf.WriteString(fmt.Sprintf("**Author**: %s\n", view.Author.FullName()))
	}
	buf.WriteString(fmt.Sprintf("**Cooking time**: %d min\n", view.CookingTime))
	if len(view.Tags) > 0 {
		slugs := make([]string, len(view.Tags))
		for i, tag := range view.Tags {
			slugs[i] = tag.Slug
		}
		buf.WriteString(fmt.Sprintf("**Tags**: %s\n", strings.Join(slugs, ", ")))
	}
	buf.WriteString(fmt.Sprintf("**Published**: %s\n\n", view.PublishedAt.Format(time.DateOnly)))

	buf.WriteString("## Ingredients\n\n")
	for _, line := range view.Ingredients {
		buf.WriteString(fmt.Sprintf("- %s - %d %s\n", line.Name, line.Amount, line.MeasurementUnit))
	}

	buf.WriteString("\n## Method\n\n")
	buf.WriteString(strings.TrimSpace(view.Text))
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

// RecipeDocument is the portable JSON form of a recipe.
type RecipeDocument struct {
	ID          string                  `json:"id"`
	Sequence    int                     `json:"sequence"`
	Author      string                  `json:"author"`
	Name        string                  `json:"name"`
	Text        string                  `json:"text"`
	Image       string                  `json:"image"`
	CookingTime int                     `json:"cooking_time"`
	PublishedAt time.Time               `json:"published_at"`
	Tags        []string                `json:"tags"`
	Ingredients []models.IngredientLine `json:"ingredients"`
}

// NewRecipeDocument copies view into a [RecipeDocument].
func NewRecipeDocument(view *models.RecipeView) RecipeDocument {
	doc := RecipeDocument{
		ID:          view.ID(),
		Sequence:    view.Sequence(),
		Author:      view.AuthorID,
		Name:        view.Name,
		Text:        view.Text,
		Image:       view.Image,
		CookingTime: view.CookingTime,
		PublishedAt: view.PublishedAt,
		Tags:        make([]string, len(view.Tags)),
		Ingredients: view.Ingredients,
	}
	if view.Author != nil {
		doc.Author = view.Author.Username
	}
	for i, tag := range view.Tags {
		doc.Tags[i] = tag.Slug
	}
	if doc.Ingredients == nil {
		doc.Ingredients = []models.IngredientLine{}
	}
	return doc
}

// RecipesToJSON renders recipes as an indented JSON array.
func RecipesToJSON(views []*models.RecipeView) ([]byte, error) {
	docs := make([]RecipeDocument, len(views))
	for i, v := range views {
		docs[i] = NewRecipeDocument(v)
	}
	return shared.MarshalJSON(docs, true)
}
