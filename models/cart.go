package models

// Cart 代表購物車
// It is the whole persisted record for one owner; product and pricing data are
// never copied into it and are joined on read instead.
type Cart struct {
	UserID      string     `json:"userId,omitempty"`
	AddressID   *int64     `json:"addressId,omitempty"`
	PromotionID *int64     `json:"promotionId,omitempty"`
	Items       []CartItem `json:"items"`
}

// CartItem 代表購物車中的單個商品項目
type CartItem struct {
	VariantID int64 `json:"variantId"`
	Quantity  int   `json:"quantity"`
}

// OrderPayload is the body of the backend's create-order request.
type OrderPayload struct {
	UserID      string             `json:"userId"`
	AddressID   int64              `json:"addressId"`
	PromotionID int64              `json:"promotionId"`
	OrderItems  []OrderItemPayload `json:"orderItems"`
}

type OrderItemPayload struct {
	VariantID int64 `json:"variantId"`
	Quantity  int   `json:"quantity"`
}

func NewCart() *Cart {
	return &Cart{Items: []CartItem{}}
}

// Clone returns a deep copy so callers can never reach into a store's state.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return NewCart()
	}

	out := &Cart{
		UserID: c.UserID,
		Items:  make([]CartItem, len(c.Items)),
	}
	copy(out.Items, c.Items)

	if c.AddressID != nil {
		id := *c.AddressID
		out.AddressID = &id
	}
	if c.PromotionID != nil {
		id := *c.PromotionID
		out.PromotionID = &id
	}

	return out
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}
