package variant

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"golang.org/x/text/language"

	"goflare.io/storefront/models"
)

func TestDiscountedPrice(t *testing.T) {
	tests := []struct {
		name  string
		price string
		pct   int
		want  string
	}{
		{"twenty percent", "1000", 20, "800"},
		{"no discount", "1000", 0, "1000"},
		{"fractional", "19.99", 15, "16.9915"},
		{"full", "250", 100, "0"},
		{"negative clamps to zero", "1000", -5, "1000"},
		{"over hundred clamps", "1000", 150, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiscountedPrice(decimal.RequireFromString(tt.price), tt.pct)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestPriceOf(t *testing.T) {
	discounted := PriceOf(models.ProductVariant{Price: decimal.NewFromInt(1000), PercentageOff: 20})
	assert.True(t, discounted.Discounted.Equal(decimal.NewFromInt(800)))
	assert.True(t, discounted.Original.Equal(decimal.NewFromInt(1000)))
	assert.True(t, discounted.ShowOriginal)

	full := PriceOf(models.ProductVariant{Price: decimal.NewFromInt(1000)})
	assert.True(t, full.Discounted.Equal(full.Original))
	assert.False(t, full.ShowOriginal)
}

func TestFormatter(t *testing.T) {
	usd, err := NewFormatter(language.English, stripe.CurrencyUSD)
	require.NoError(t, err)
	assert.Contains(t, usd.Format(decimal.NewFromInt(800)), "800.00")
	assert.Contains(t, usd.Format(decimal.RequireFromString("16.9915")), "16.99")
	assert.Equal(t, stripe.CurrencyUSD, usd.Currency())

	eur, err := NewFormatter(language.German, stripe.CurrencyEUR)
	require.NoError(t, err)
	assert.Contains(t, eur.Format(decimal.NewFromInt(800)), "800,00")

	_, err = NewFormatter(language.English, stripe.Currency("zzz"))
	assert.Error(t, err)
}

func TestFormatter_KeepsEveryDigit(t *testing.T) {
	tests := []struct {
		name   string
		tag    language.Tag
		code   stripe.Currency
		amount string
		want   string
	}{
		{"vnd beyond float precision", language.English, stripe.CurrencyVND, "12345678901234567", "12,345,678,901,234,567"},
		{"usd beyond float precision", language.English, stripe.CurrencyUSD, "1234567890123456.78", "1,234,567,890,123,456.78"},
		{"eur separators", language.German, stripe.CurrencyEUR, "1234567.05", "1.234.567,05"},
		{"fraction below ten", language.English, stripe.CurrencyUSD, "3.0449", "3.04"},
		{"negative", language.English, stripe.CurrencyUSD, "-0.5", "-0.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFormatter(tt.tag, tt.code)
			require.NoError(t, err)

			got := f.Format(decimal.RequireFromString(tt.amount))
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestSelect(t *testing.T) {
	usd, err := NewFormatter(language.English, stripe.CurrencyUSD)
	require.NoError(t, err)

	product := &models.Product{ID: 7, Name: "Phone", Variants: phoneVariants()}

	view, err := Select(product, Selection{Color: "red", Storage: "256GB"}, usd)
	require.NoError(t, err)

	assert.Equal(t, int64(2), view.Variant.ID)
	assert.Equal(t, []string{"black", "red"}, view.Colors)
	assert.Equal(t, []string{"256GB", "512GB"}, view.StoragesForColor)
	assert.Equal(t, []string{"red-1.png"}, view.Gallery)
	assert.True(t, view.Price.ShowOriginal)
	assert.Contains(t, view.DisplayPrice, "080.00")
	assert.Contains(t, view.DisplayOriginal, "200.00")
	assert.False(t, view.InStock)
}

func TestSelect_DefaultsAndNoDiscount(t *testing.T) {
	product := &models.Product{ID: 7, Variants: phoneVariants()}

	view, err := Select(product, Selection{}, nil)
	require.NoError(t, err)

	assert.Equal(t, Selection{"black", "128GB"}, view.Selection)
	assert.Equal(t, int64(1), view.Variant.ID)
	assert.False(t, view.Price.ShowOriginal)
	assert.Empty(t, view.DisplayOriginal)
	assert.True(t, view.InStock)
}

func TestSelectColor(t *testing.T) {
	product := &models.Product{ID: 7, Variants: phoneVariants()}

	view, err := SelectColor(product, Selection{"black", "128GB"}, "red", nil)
	require.NoError(t, err)
	assert.Equal(t, Selection{"red", "256GB"}, view.Selection)
	assert.Equal(t, int64(2), view.Variant.ID)
}

func TestSelect_NoVariants(t *testing.T) {
	_, err := Select(&models.Product{ID: 1}, Selection{}, nil)
	assert.ErrorIs(t, err, ErrNoVariants)

	_, err = Select(nil, Selection{}, nil)
	assert.ErrorIs(t, err, ErrNoVariants)

	_, err = SelectColor(&models.Product{ID: 1}, Selection{}, "red", nil)
	assert.ErrorIs(t, err, ErrNoVariants)
}
