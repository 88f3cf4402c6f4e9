package models

import (
	"github.com/desertthunder/foodgram/internal/shared"
)

// Ingredient is immutable reference data: a named ingredient in a fixed measurement unit.
//
// The (name, measurement unit) pair is unique.
type Ingredient struct {
	base
	Name            string `json:"name" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=50"`
}

// NewIngredient creates an [Ingredient].
func NewIngredient(sequence int, name, unit string) *Ingredient {
	return &Ingredient{base: newBase(sequence), Name: name, MeasurementUnit: unit}
}

func (i *Ingredient) Validate() error {
	return shared.ValidateStruct(i)
}

// Tag is a label attached to recipes, addressed by slug in filters.
type Tag struct {
	base
	Name string `json:"name" validate:"required,max=32"`
	Slug string `json:"slug" validate:"required,max=32,slug"`
}

// NewTag creates a [Tag].
func NewTag(sequence int, name, slug string) *Tag {
	return &Tag{base: newBase(sequence), Name: name, Slug: slug}
}

func (t *Tag) Validate() error {
	return shared.ValidateStruct(t)
}
