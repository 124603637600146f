package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"

	"goflare.io/storefront/models/enum"
)

// Order 代表訂單, as returned by the backend once created.
type Order struct {
	ID          int64            `json:"id"`
	UserID      string           `json:"userId"`
	AddressID   int64            `json:"addressId"`
	PromotionID int64            `json:"promotionId,omitempty"`
	Status      enum.OrderStatus `json:"status"`
	Currency    stripe.Currency  `json:"currency,omitempty"`
	Subtotal    decimal.Decimal  `json:"subtotal"`
	Discount    decimal.Decimal  `json:"discount"`
	Total       decimal.Decimal  `json:"total"`
	Items       []OrderItem      `json:"items"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// OrderItem 代表訂單中的單個商品項目
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	VariantID int64           `json:"variantId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CanCancel reports whether the shopper may still cancel the order.
func (o *Order) CanCancel() bool {
	switch o.Status {
	case enum.OrderStatusPending, enum.OrderStatusProcessing:
		return true
	default:
		return false
	}
}

// AllowChangeStatus guards the admin status dropdown against impossible transitions.
func (o *Order) AllowChangeStatus(next enum.OrderStatus) bool {
	if !next.Valid() || o.Status == next {
		return false
	}

	switch o.Status {
	case enum.OrderStatusPending:
		return true
	case enum.OrderStatusProcessing:
		return next != enum.OrderStatusPending
	case enum.OrderStatusShipped:
		return next == enum.OrderStatusCompleted || next == enum.OrderStatusRefunded
	case enum.OrderStatusCompleted:
		return next == enum.OrderStatusRefunded
	default:
		return false
	}
}
