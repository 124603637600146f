package variant

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goflare.io/storefront/models"
)

func storage(s string) *string {
	return &s
}

func phoneVariants() []models.ProductVariant {
	return []models.ProductVariant{
		{ID: 1, Color: "black", Storage: storage("128GB"), ImageURLs: []string{"black-1.png", "black-2.png"}, Price: decimal.NewFromInt(1000), StockQuantity: 3},
		{ID: 2, Color: "red", Storage: storage("256GB"), ImageURLs: []string{"red-1.png"}, Price: decimal.NewFromInt(1200), PercentageOff: 10},
		{ID: 3, Color: "Black", Storage: storage("256GB"), Price: decimal.NewFromInt(1100), StockQuantity: 1},
		{ID: 4, Color: "red", Storage: storage("512GB"), Price: decimal.NewFromInt(1400)},
	}
}

func TestColorsAndStorages(t *testing.T) {
	variants := phoneVariants()

	assert.Equal(t, []string{"black", "red"}, Colors(variants))
	assert.Equal(t, []string{"128GB", "256GB", "512GB"}, Storages(variants))
	assert.Equal(t, []string{"128GB", "256GB"}, StoragesForColor(variants, "BLACK"))
	assert.Equal(t, []string{"256GB", "512GB"}, StoragesForColor(variants, "red"))
	assert.Empty(t, StoragesForColor(variants, "green"))
}

func TestStorages_SkipsVariantsWithoutStorage(t *testing.T) {
	variants := []models.ProductVariant{
		{ID: 1, Color: "white"},
		{ID: 2, Color: "black", Storage: storage("")},
	}

	assert.Empty(t, Storages(variants))
	assert.False(t, HasStorage(variants))
	assert.Equal(t, []string{"white", "black"}, Colors(variants))
}

func TestResolve(t *testing.T) {
	variants := phoneVariants()

	tests := []struct {
		name string
		sel  Selection
		want int64
	}{
		{"exact", Selection{Color: "red", Storage: "512GB"}, 4},
		{"case insensitive", Selection{Color: "BLACK", Storage: "256gb"}, 3},
		{"missing pairing falls back to first", Selection{Color: "red", Storage: "128GB"}, 1},
		{"unknown color falls back to first", Selection{Color: "gold", Storage: "128GB"}, 1},
		{"empty selection falls back to first", Selection{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(variants, tt.sel)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestResolve_FallbackToFirstVariant(t *testing.T) {
	variants := []models.ProductVariant{
		{ID: 10, Color: "black", Storage: storage("128GB")},
		{ID: 11, Color: "red", Storage: storage("256GB")},
	}

	got, ok := Resolve(variants, Selection{Color: "red", Storage: "128GB"})
	require.True(t, ok)
	assert.Equal(t, "black", got.Color)
	assert.Equal(t, int64(10), got.ID)
}

func TestResolve_IgnoresStorageWhenProductHasNone(t *testing.T) {
	variants := []models.ProductVariant{
		{ID: 1, Color: "white"},
		{ID: 2, Color: "black"},
	}

	got, ok := Resolve(variants, Selection{Color: "black", Storage: "64GB"})
	require.True(t, ok)
	assert.Equal(t, int64(2), got.ID)
}

func TestResolve_FirstMatchOnDuplicates(t *testing.T) {
	variants := []models.ProductVariant{
		{ID: 1, Color: "black", Storage: storage("128GB")},
		{ID: 2, Color: "red", Storage: storage("128GB")},
		{ID: 3, Color: "red", Storage: storage("128GB")},
	}

	got, ok := Resolve(variants, Selection{Color: "red", Storage: "128GB"})
	require.True(t, ok)
	assert.Equal(t, int64(2), got.ID)
}

func TestResolve_NoVariants(t *testing.T) {
	_, ok := Resolve(nil, Selection{Color: "red"})
	assert.False(t, ok)
}

func TestChangeColor(t *testing.T) {
	variants := phoneVariants()

	tests := []struct {
		name     string
		current  Selection
		newColor string
		want     Selection
	}{
		{"keeps storage offered by new color", Selection{"black", "256GB"}, "red", Selection{"red", "256GB"}},
		{"picks first storage of new color", Selection{"black", "128GB"}, "red", Selection{"red", "256GB"}},
		{"keeps storage for color without storages", Selection{"black", "128GB"}, "gold", Selection{"gold", "128GB"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChangeColor(variants, tt.current, tt.newColor))
		})
	}
}

func TestDefault(t *testing.T) {
	variants := phoneVariants()

	assert.Equal(t, Selection{"black", "128GB"}, Default(variants, Selection{}))
	assert.Equal(t, Selection{"red", "256GB"}, Default(variants, Selection{Color: "red"}))
	assert.Equal(t, Selection{"red", "512GB"}, Default(variants, Selection{Color: "red", Storage: "512GB"}))
	assert.Equal(t, Selection{Color: "x"}, Default(nil, Selection{Color: "x"}))
}

func TestGallery(t *testing.T) {
	variants := phoneVariants()

	assert.Equal(t, []string{"red-1.png"}, Gallery(variants, variants[1]))
	assert.Equal(t, []string{"black-1.png", "black-2.png"}, Gallery(variants, variants[2]))
	assert.Empty(t, Gallery(nil, models.ProductVariant{}))

	got := Gallery(variants, variants[0])
	got[0] = "changed"
	assert.Equal(t, "black-1.png", variants[0].ImageURLs[0])
}
