package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrEmptyCategoryName = errors.New("category name is required")

// Category groups products for browsing and reporting.
type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedBy   int64
	UpdatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewCategory validates and constructs a category.
func NewCategory(name, description string, createdBy int64) (*Category, error) {
	category := &Category{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedBy:   createdBy,
		UpdatedBy:   createdBy,
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}
	return category, nil
}

// Validate enforces invariants on the category.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCategoryName
	}
	return nil
}
