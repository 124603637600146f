package variant

import (
	"errors"

	"goflare.io/storefront/models"
)

// ErrNoVariants means no price or gallery can be derived for the product.
var ErrNoVariants = errors.New("product has no variants")

// View is everything the product detail page renders for one selection.
type View struct {
	ProductID        int64                 `json:"productId"`
	Name             string                `json:"name"`
	Description      string                `json:"description"`
	Colors           []string              `json:"colors"`
	Storages         []string              `json:"storages"`
	StoragesForColor []string              `json:"storagesForColor"`
	Selection        Selection             `json:"selection"`
	Variant          models.ProductVariant `json:"variant"`
	Price            Price                 `json:"price"`
	DisplayPrice     string                `json:"displayPrice"`
	DisplayOriginal  string                `json:"displayOriginal,omitempty"`
	Gallery          []string              `json:"gallery"`
	InStock          bool                  `json:"inStock"`
}

// Select derives the page state for sel. Blank fields of sel are defaulted. A
// nil formatter leaves the display prices empty.
func Select(product *models.Product, sel Selection, f *Formatter) (*View, error) {
	if product == nil || len(product.Variants) == 0 {
		return nil, ErrNoVariants
	}

	variants := product.Variants
	sel = Default(variants, sel)

	v, _ := Resolve(variants, sel)
	price := PriceOf(v)

	view := &View{
		ProductID:        product.ID,
		Name:             product.Name,
		Description:      product.Description,
		Colors:           Colors(variants),
		Storages:         Storages(variants),
		StoragesForColor: StoragesForColor(variants, sel.Color),
		Selection:        sel,
		Variant:          v,
		Price:            price,
		Gallery:          Gallery(variants, v),
		InStock:          v.InStock(),
	}

	if f != nil {
		view.DisplayPrice = f.Format(price.Discounted)
		if price.ShowOriginal {
			view.DisplayOriginal = f.Format(price.Original)
		}
	}

	return view, nil
}

// SelectColor applies a color change to current and derives the new page state.
func SelectColor(product *models.Product, current Selection, newColor string, f *Formatter) (*View, error) {
	if product == nil || len(product.Variants) == 0 {
		return nil, ErrNoVariants
	}
	return Select(product, ChangeColor(product.Variants, current, newColor), f)
}
