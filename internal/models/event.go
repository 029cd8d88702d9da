package models

import "time"

// Product change actions published on the change feed.
const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
)

// ProductEvent describes a change to the catalog.
type ProductEvent struct {
	Action     string    `json:"action"`
	ProductID  string    `json:"productId"`
	Product    *Product  `json:"product,omitempty"` // Nil for deletions
	OccurredAt time.Time `json:"occurredAt"`
}
