package models

import "strings"

// Category represents a menu category.
// It includes a unique slug and a human-readable title.
type Category struct {
	ID    uint   `gorm:"primaryKey"`
	Title string `gorm:"size:255;not null"`
	Slug  string `gorm:"size:255;uniqueIndex;not null"`
}

func (c *Category) TableName() string {
	return "categories"
}

// Normalize validates the title and fills the slug before the category is written.
func (c *Category) Normalize() error {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return Validation("title is required")
	}
	slug, err := normalizeSlug(c.Slug, c.Title)
	if err != nil {
		return err
	}
	c.Slug = slug
	return nil
}
