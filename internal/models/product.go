package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a catalog item as returned by the backend.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Category    string          `json:"category"`
	InStock     bool            `json:"inStock"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductInput is the payload for creating a product.
type ProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl" validate:"omitempty,url"`
	Category    string          `json:"category" validate:"required"`
	InStock     bool            `json:"inStock"`
}

// ProductPatch is a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ImageURL    *string          `json:"imageUrl,omitempty" validate:"omitempty,url"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,min=1"`
	InStock     *bool            `json:"inStock,omitempty"`
}

// NewProduct builds a product from a create payload.
func NewProduct(id string, in ProductInput, now time.Time) Product {
	return Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		Category:    in.Category,
		InStock:     in.InStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Empty reports whether the patch carries no fields.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.ImageURL == nil && p.Category == nil && p.InStock == nil
}

// Apply merges the supplied fields into product and bumps UpdatedAt.
func (p ProductPatch) Apply(product *Product, now time.Time) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.ImageURL != nil {
		product.ImageURL = *p.ImageURL
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.InStock != nil {
		product.InStock = *p.InStock
	}
	product.UpdatedAt = now
}

// PriceErrors returns validation messages for negative prices.
func PriceErrors(price *decimal.Decimal) []string {
	if price != nil && price.IsNegative() {
		return []string{"Price must be a non-negative amount."}
	}
	return nil
}
