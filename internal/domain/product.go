package domain

import (
	"strings"
	"time"
)

// Product category constants.
const (
	CategoryElectronics = "Electronics"
	CategoryFashion     = "Fashion"
	CategoryHome        = "Home"
	CategoryBooks       = "Books"
	CategoryToys        = "Toys"
	CategorySports      = "Sports"
	CategoryBeauty      = "Beauty"
)

// Product color constants.
const (
	ColorRed   = "Red"
	ColorBlue  = "Blue"
	ColorGreen = "Green"
	ColorBlack = "Black"
	ColorWhite = "White"
)

// Defaults applied when a product is created without a category or color.
const (
	DefaultCategory = CategoryElectronics
	DefaultColor    = ColorBlack
)

// FilterAll is the catalog filter value that disables a category or color filter.
const FilterAll = "all"

// Field constraints shared by the HTTP layer and the services.
const (
	MinNameLength        = 3
	MinDescriptionLength = 10
)

// Product represents a product in the catalog. Rating is derived from the
// product's reviews and is never set by clients.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	OldPrice    float64   `json:"oldPrice"`
	Image       string    `json:"image"`
	Color       string    `json:"color"`
	Rating      float64   `json:"rating"`
	AuthorID    string    `json:"authorId"`
	Author      *Author   `json:"author"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductPatch holds the authored fields an update may change. Nil fields are
// left untouched.
type ProductPatch struct {
	Name        *string
	Category    *string
	Description *string
	Price       *float64
	OldPrice    *float64
	Image       *string
	Color       *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.Description == nil &&
		p.Price == nil && p.OldPrice == nil && p.Image == nil && p.Color == nil
}

// Apply copies the set fields of the patch onto product.
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.OldPrice != nil {
		product.OldPrice = *p.OldPrice
	}
	if p.Image != nil {
		product.Image = *p.Image
	}
	if p.Color != nil {
		product.Color = *p.Color
	}
}

// ValidCategories returns the set of valid product categories.
func ValidCategories() []string {
	return []string{
		CategoryElectronics, CategoryFashion, CategoryHome, CategoryBooks,
		CategoryToys, CategorySports, CategoryBeauty,
	}
}

// IsValidCategory checks whether the given string is a valid product category.
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories() {
		if c == category {
			return true
		}
	}
	return false
}

// ValidColors returns the set of valid product colors.
func ValidColors() []string {
	return []string{ColorRed, ColorBlue, ColorGreen, ColorBlack, ColorWhite}
}

// IsValidColor checks whether the given string is a valid product color.
func IsValidColor(color string) bool {
	for _, c := range ValidColors() {
		if c == color {
			return true
		}
	}
	return false
}
