package storefront

import (
	"sort"
	"strings"

	"github.com/isdelr/storefront/internal/models"
)

// Filter narrows an already loaded page by a case-insensitive search term
// (name or description) and an exact category. It is presentation only;
// the backend is never asked to filter.
func Filter(products []models.Product, search, category string) []models.Product {
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if category != "" && p.Category != category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories lists the distinct categories present in products.
func Categories(products []models.Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		if _, ok := seen[p.Category]; ok || p.Category == "" {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
