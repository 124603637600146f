package storefront

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"goflare.io/storefront/variant"
)

func (s *service) ProductDetail(ctx context.Context, productID int64, sel variant.Selection, tag language.Tag) (*variant.View, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	view, err := variant.Select(product, sel, s.bundle.Formatter(tag))
	if errors.Is(err, variant.ErrNoVariants) {
		return nil, fmt.Errorf("%w: product %d: %w", ErrVariantUnavailable, productID, err)
	}
	return view, err
}

// ChangeColor keeps the current storage when the new color offers it and
// otherwise falls back to the first storage of that color.
func (s *service) ChangeColor(ctx context.Context, productID int64, current variant.Selection, newColor string, tag language.Tag) (*variant.View, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	view, err := variant.SelectColor(product, current, newColor, s.bundle.Formatter(tag))
	if errors.Is(err, variant.ErrNoVariants) {
		return nil, fmt.Errorf("%w: product %d: %w", ErrVariantUnavailable, productID, err)
	}
	return view, err
}
