package catalog

import "testing"

func TestProductsDataset(t *testing.T) {
	products, err := Products()
	if err != nil {
		t.Fatalf("Products() error = %v", err)
	}
	if len(products) != 12 {
		t.Fatalf("len = %d, want 12", len(products))
	}
	seen := map[string]bool{}
	for _, p := range products {
		if p.ID == "" || p.Name == "" || p.Category == "" {
			t.Errorf("incomplete product %+v", p)
		}
		if p.Price.IsNegative() {
			t.Errorf("product %s has negative price", p.ID)
		}
		if p.CreatedAt.IsZero() {
			t.Errorf("product %s missing createdAt", p.ID)
		}
		if seen[p.ID] {
			t.Errorf("duplicate id %s", p.ID)
		}
		seen[p.ID] = true
	}
	if !seen["1"] {
		t.Error("expected product with id 1")
	}
}

func TestProductsReturnsCopies(t *testing.T) {
	a, _ := Products()
	a[0].Name = "changed"
	b, _ := Products()
	if b[0].Name == "changed" {
		t.Error("Products() should not share state between calls")
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := Decode([]byte("{not json")); err == nil {
		t.Error("expected decode error")
	}
}
