package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxMenuItemPrice is the largest price a decimal(6,2) column can hold.
var MaxMenuItemPrice = decimal.RequireFromString("9999.99")

// MenuItem represents a dish in the catalog.
// The slug is the primary key and is derived from the title when absent.
type MenuItem struct {
	Slug       string          `gorm:"primaryKey;size:255"`
	Title      string          `gorm:"size:255;not null"`
	Price      decimal.Decimal `gorm:"type:decimal(6,2);not null;index"`
	Featured   bool            `gorm:"not null;index"`
	CategoryID uint            `gorm:"not null;index"`
	Category   Category        `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (m *MenuItem) TableName() string {
	return "menu_items"
}

// Normalize validates the writable fields and fills the slug.
func (m *MenuItem) Normalize() error {
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		return Validation("title is required")
	}
	if err := ValidatePrice(m.Price); err != nil {
		return err
	}
	if m.CategoryID == 0 {
		return Validation("category is required")
	}
	slug, err := normalizeSlug(m.Slug, m.Title)
	if err != nil {
		return err
	}
	m.Slug = slug
	return nil
}

// ValidatePrice checks that a menu price is non-negative, has at most two
// fractional digits and fits the column.
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return Validation("price must not be negative")
	}
	if !price.Equal(price.Round(2)) {
		return Validation("price must have at most 2 decimal places")
	}
	if price.GreaterThan(MaxMenuItemPrice) {
		return Validation("price must not exceed %s", MaxMenuItemPrice.StringFixed(2))
	}
	return nil
}
