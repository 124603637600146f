package cart

import (
	"math"

	"goflare.io/storefront/models"
)

// MaxQuantity is the largest quantity a single entry can hold. Sums saturate
// here so a quantity never wraps, and the value fits the INT column of the
// account cart table.
const MaxQuantity = math.MaxInt32

// The functions in this file are the cart's state transitions. Each one takes the
// previous aggregate and returns a new one; the input is never modified. Together
// they keep two invariants: at most one item per variant id, and every quantity >= 1.

// AddItem merges item into c. An existing entry for the same variant has its
// quantity increased; otherwise the item is appended. Non-positive quantities
// are ignored and the result is capped at MaxQuantity.
func AddItem(c *models.Cart, item models.CartItem) *models.Cart {
	next := c.Clone()
	if item.Quantity <= 0 {
		return next
	}
	item.Quantity = min(item.Quantity, MaxQuantity)

	for i := range next.Items {
		if next.Items[i].VariantID == item.VariantID {
			next.Items[i].Quantity = addQuantity(next.Items[i].Quantity, item.Quantity)
			return next
		}
	}

	next.Items = append(next.Items, item)
	return next
}

// RemoveItem drops the entry for variantID. Removing an absent variant is a no-op.
func RemoveItem(c *models.Cart, variantID int64) *models.Cart {
	next := c.Clone()

	items := next.Items[:0]
	for _, it := range next.Items {
		if it.VariantID != variantID {
			items = append(items, it)
		}
	}
	next.Items = items

	return next
}

// UpdateQuantity replaces the quantity stored for variantID. A quantity <= 0
// removes the entry; larger ones are capped at MaxQuantity. Updating a variant
// that is not in the cart changes nothing.
func UpdateQuantity(c *models.Cart, variantID int64, quantity int) *models.Cart {
	if quantity <= 0 {
		return RemoveItem(c, variantID)
	}
	quantity = min(quantity, MaxQuantity)

	next := c.Clone()
	for i := range next.Items {
		if next.Items[i].VariantID == variantID {
			next.Items[i].Quantity = quantity
			break
		}
	}

	return next
}

// Clear resets the items and the checkout options. The owning user is kept.
func Clear(c *models.Cart) *models.Cart {
	next := models.NewCart()
	if c != nil {
		next.UserID = c.UserID
	}
	return next
}

// SetUser records the account that owns the cart.
func SetUser(c *models.Cart, userID string) *models.Cart {
	next := c.Clone()
	next.UserID = userID
	return next
}

// SetAddress sets the delivery address; nil unsets it.
func SetAddress(c *models.Cart, addressID *int64) *models.Cart {
	next := c.Clone()
	next.AddressID = copyID(addressID)
	return next
}

// SetPromotion sets the promotion; nil unsets it.
func SetPromotion(c *models.Cart, promotionID *int64) *models.Cart {
	next := c.Clone()
	next.PromotionID = copyID(promotionID)
	return next
}

// Merge folds from into into with AddItem semantics. Owner, address and promotion
// of into take precedence; from only fills the ones into leaves unset.
func Merge(into, from *models.Cart) *models.Cart {
	next := into.Clone()
	if from == nil {
		return next
	}

	for _, it := range from.Items {
		next = AddItem(next, it)
	}

	if next.UserID == "" {
		next.UserID = from.UserID
	}
	if next.AddressID == nil {
		next.AddressID = copyID(from.AddressID)
	}
	if next.PromotionID == nil {
		next.PromotionID = copyID(from.PromotionID)
	}

	return next
}

// RemoveOrdered takes the lines of a placed order out of c. Each line lowers
// the quantity of its variant and drops the entry once nothing is left, so
// anything added after the order was built stays in the cart. A cart left
// empty is cleared along with its address and promotion.
func RemoveOrdered(c *models.Cart, ordered []models.OrderItemPayload) *models.Cart {
	next := c.Clone()
	for _, line := range ordered {
		next = UpdateQuantity(next, line.VariantID, Quantity(next, line.VariantID)-line.Quantity)
	}

	if len(next.Items) == 0 {
		return Clear(next)
	}
	return next
}

// Normalize repairs a record read from storage so it satisfies the invariants:
// duplicates are folded together in first-seen order and non-positive
// quantities are dropped.
func Normalize(c *models.Cart) *models.Cart {
	if c == nil {
		return models.NewCart()
	}

	next := c.Clone()
	next.Items = []models.CartItem{}

	out := next
	for _, it := range c.Items {
		out = AddItem(out, it)
	}
	return out
}

// TotalItems is the sum of all quantities, not the number of entries.
func TotalItems(c *models.Cart) int {
	if c == nil {
		return 0
	}

	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}

// Quantity returns the quantity held for variantID, or zero.
func Quantity(c *models.Cart, variantID int64) int {
	if c == nil {
		return 0
	}
	for _, it := range c.Items {
		if it.VariantID == variantID {
			return it.Quantity
		}
	}
	return 0
}

// OrderItems projects the items into the order API's line shape.
func OrderItems(c *models.Cart) []models.OrderItemPayload {
	if c == nil {
		return []models.OrderItemPayload{}
	}

	out := make([]models.OrderItemPayload, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, models.OrderItemPayload{
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
		})
	}
	return out
}

// OrderPayload projects the cart into the create-order body. Unset optional
// fields become "" and 0; they are never omitted.
func OrderPayload(c *models.Cart) models.OrderPayload {
	payload := models.OrderPayload{
		OrderItems: OrderItems(c),
	}
	if c == nil {
		return payload
	}

	payload.UserID = c.UserID
	if c.AddressID != nil {
		payload.AddressID = *c.AddressID
	}
	if c.PromotionID != nil {
		payload.PromotionID = *c.PromotionID
	}

	return payload
}

func addQuantity(a, b int) int {
	if a > MaxQuantity-b {
		return MaxQuantity
	}
	return a + b
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
