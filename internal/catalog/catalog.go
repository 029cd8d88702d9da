// Package catalog bundles the demo product dataset shared by the mock
// provider and the backend seeder.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/isdelr/storefront/internal/models"
)

//go:embed products.json
var productsJSON []byte

type document struct {
	Data []models.Product `json:"data"`
}

// Products decodes the bundled dataset. Each call returns a fresh copy.
func Products() ([]models.Product, error) {
	return Decode(productsJSON)
}

// Decode parses a {"data": [...]} product document.
func Decode(raw []byte) ([]models.Product, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode product dataset: %w", err)
	}
	return doc.Data, nil
}
