package variant

import (
	"github.com/shopspring/decimal"

	"goflare.io/storefront/models"
)

var hundred = decimal.NewFromInt(100)

// Price is the derived display price of one variant. It is computed on read and
// never stored.
type Price struct {
	Original      decimal.Decimal `json:"original"`
	Discounted    decimal.Decimal `json:"discounted"`
	PercentageOff int             `json:"percentageOff"`
	// ShowOriginal tells the page to strike through Original.
	ShowOriginal bool `json:"showOriginal"`
}

// DiscountedPrice is price * (100 - percentageOff) / 100, with percentageOff
// clamped to [0, 100]. No rounding is applied here.
func DiscountedPrice(price decimal.Decimal, percentageOff int) decimal.Decimal {
	pct := ClampPercentage(percentageOff)
	if pct == 0 {
		return price
	}
	return price.Mul(decimal.NewFromInt(int64(100 - pct))).Div(hundred)
}

func ClampPercentage(pct int) int {
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}

func PriceOf(v models.ProductVariant) Price {
	pct := ClampPercentage(v.PercentageOff)
	return Price{
		Original:      v.Price,
		Discounted:    DiscountedPrice(v.Price, pct),
		PercentageOff: pct,
		ShowOriginal:  pct > 0,
	}
}
