package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSKUFilter_Matches(t *testing.T) {
	t.Parallel()
	snap := SKUSnapshot{SKU: "SKU-001", Brand: "Glow"}

	tests := []struct {
		name   string
		filter SKUFilter
		want   bool
	}{
		{"empty filter", SKUFilter{}, true},
		{"sku match ignores case", SKUFilter{SKUs: []string{"sku-001"}}, true},
		{"sku miss", SKUFilter{SKUs: []string{"SKU-002"}}, false},
		{"brand match", SKUFilter{Brands: []string{" glow "}}, true},
		{"brand miss", SKUFilter{SKUs: []string{"SKU-001"}, Brands: []string{"Matte"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.filter.Matches(snap))
		})
	}
}
