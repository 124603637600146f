package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product 代表商品
type Product struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CategoryID  int64            `json:"categoryId"`
	ImageURL    string           `json:"imageUrl"`
	Variants    []ProductVariant `json:"variants"`
	CreatedAt   time.Time        `json:"createdAt,omitempty"`
	UpdatedAt   time.Time        `json:"updatedAt,omitempty"`
}

// ProductVariant 代表商品的一個可購買規格 (SKU)
// Storage is nil for products without a storage dimension, e.g. accessories.
type ProductVariant struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"productId"`
	Color         string          `json:"color"`
	Storage       *string         `json:"storage"`
	RAM           string          `json:"ram,omitempty"`
	ImageURLs     []string        `json:"imageUrls"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	PercentageOff int             `json:"percentageOff"`
}

func (v ProductVariant) HasStorage() bool {
	return v.Storage != nil && *v.Storage != ""
}

func (v ProductVariant) StorageValue() string {
	if v.Storage == nil {
		return ""
	}
	return *v.Storage
}

func (v ProductVariant) InStock() bool {
	return v.StockQuantity > 0
}

// ProductQuery filters the backend's product listing.
type ProductQuery struct {
	Page       int
	Limit      int
	CategoryID int64
	Search     string
}

// Page is one page of a backend listing.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ProductInput is the admin create/update body.
type ProductInput struct {
	Name        string         `json:"name" validate:"required,max=200"`
	Description string         `json:"description"`
	CategoryID  int64          `json:"categoryId" validate:"required,gt=0"`
	ImageURL    string         `json:"imageUrl" validate:"omitempty,url"`
	Variants    []VariantInput `json:"variants" validate:"dive"`
}

type VariantInput struct {
	Color         string          `json:"color" validate:"required"`
	Storage       *string         `json:"storage"`
	RAM           string          `json:"ram"`
	ImageURLs     []string        `json:"imageUrls" validate:"dive,url"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity" validate:"gte=0"`
	PercentageOff int             `json:"percentageOff" validate:"gte=0,lte=100"`
}
