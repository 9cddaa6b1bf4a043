package domain

import "testing"

func sampleProduct() Product {
	return Product{
		ID:         "prod-1",
		Name:       "NVIDIA GeForce RTX 4090",
		Brand:      "NVIDIA",
		Category:   "gpu",
		PriceMinor: 189999,
		Stock:      3,
		SKU:        "GPU-RTX4090",
	}
}

func TestProduct_MatchesQuery(t *testing.T) {
	p := sampleProduct()

	cases := []struct {
		query string
		want  bool
	}{
		{"rtx", true},
		{"RTX 4090", true},
		{"nvidia", true},
		{"GPU", true},
		{"amd", false},
		{"", false},
		{"   ", false},
	}

	for _, tc := range cases {
		if got := p.MatchesQuery(tc.query); got != tc.want {
			t.Errorf("MatchesQuery(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}

func TestProduct_MatchesSKU(t *testing.T) {
	p := sampleProduct()

	if !p.MatchesSKU("gpu-rtx4090") {
		t.Error("expected case-insensitive sku match")
	}
	if !p.MatchesSKU("  GPU-RTX4090  ") {
		t.Error("expected trimmed sku match")
	}
	if p.MatchesSKU("GPU-RTX4080") {
		t.Error("unexpected match for different sku")
	}
}

func TestProduct_ValidateInvariants(t *testing.T) {
	p := sampleProduct()
	if errs := p.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected valid product, got %v", errs)
	}

	bad := Product{PriceMinor: -1, Stock: -2}
	errs := bad.ValidateInvariants()
	if len(errs) != 4 {
		t.Fatalf("expected 4 violations, got %d: %v", len(errs), errs)
	}
}
