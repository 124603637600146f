// Package variant maps a shopper's color and storage choice onto a concrete
// product variant and derives what the product page shows for it.
//
// Matching is always first-match in catalog order and never fails on missing
// combinations: an unknown pairing falls back to the product's first variant.
package variant

import (
	"strings"

	"goflare.io/storefront/models"
)

// Selection is the color/storage pair picked on the product page.
type Selection struct {
	Color   string `json:"color"`
	Storage string `json:"storage,omitempty"`
}

// Colors returns the distinct colors across variants in first-seen order.
func Colors(variants []models.ProductVariant) []string {
	out := make([]string, 0, len(variants))
	seen := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		out = appendDistinct(out, seen, v.Color)
	}
	return out
}

// Storages returns the distinct storages among variants that declare one.
func Storages(variants []models.ProductVariant) []string {
	out := make([]string, 0, len(variants))
	seen := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		if v.HasStorage() {
			out = appendDistinct(out, seen, *v.Storage)
		}
	}
	return out
}

// StoragesForColor returns the storages offered in color.
func StoragesForColor(variants []models.ProductVariant, color string) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for _, v := range variants {
		if v.HasStorage() && equal(v.Color, color) {
			out = appendDistinct(out, seen, *v.Storage)
		}
	}
	return out
}

// HasStorage reports whether any variant has a storage dimension.
func HasStorage(variants []models.ProductVariant) bool {
	for _, v := range variants {
		if v.HasStorage() {
			return true
		}
	}
	return false
}

// Resolve returns the first variant matching sel. Storage only takes part in
// the match when the product has storage-bearing variants. Without a match the
// first variant is returned; ok is false only when variants is empty.
func Resolve(variants []models.ProductVariant, sel Selection) (models.ProductVariant, bool) {
	if len(variants) == 0 {
		return models.ProductVariant{}, false
	}

	withStorage := HasStorage(variants)
	for _, v := range variants {
		if !equal(v.Color, sel.Color) {
			continue
		}
		if withStorage && !equal(v.StorageValue(), sel.Storage) {
			continue
		}
		return v, true
	}

	return variants[0], true
}

// ChangeColor moves current to newColor. The current storage is kept when the
// new color offers it, otherwise the first storage of the new color is picked.
func ChangeColor(variants []models.ProductVariant, current Selection, newColor string) Selection {
	next := Selection{Color: newColor, Storage: current.Storage}

	storages := StoragesForColor(variants, newColor)
	if len(storages) == 0 {
		return next
	}
	for _, s := range storages {
		if equal(s, current.Storage) {
			return next
		}
	}

	next.Storage = storages[0]
	return next
}

// Default fills the blanks of sel with the first color and the first storage
// that color offers.
func Default(variants []models.ProductVariant, sel Selection) Selection {
	if len(variants) == 0 {
		return sel
	}

	if strings.TrimSpace(sel.Color) == "" {
		sel.Color = variants[0].Color
	}
	if strings.TrimSpace(sel.Storage) == "" {
		if storages := StoragesForColor(variants, sel.Color); len(storages) > 0 {
			sel.Storage = storages[0]
		}
	}
	return sel
}

// Gallery returns the images of selected, or those of the first variant when
// selected has none.
func Gallery(variants []models.ProductVariant, selected models.ProductVariant) []string {
	images := selected.ImageURLs
	if len(images) == 0 && len(variants) > 0 {
		images = variants[0].ImageURLs
	}

	out := make([]string, len(images))
	copy(out, images)
	return out
}

func appendDistinct(out []string, seen map[string]struct{}, value string) []string {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return out
	}
	if _, ok := seen[key]; ok {
		return out
	}
	seen[key] = struct{}{}
	return append(out, value)
}

func equal(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
