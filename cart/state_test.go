package cart

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goflare.io/storefront/models"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func TestAddItem_MergesSameVariant(t *testing.T) {
	c := models.NewCart()
	c = AddItem(c, models.CartItem{VariantID: 5, Quantity: 2})
	c = AddItem(c, models.CartItem{VariantID: 5, Quantity: 3})

	require.Len(t, c.Items, 1)
	assert.Equal(t, models.CartItem{VariantID: 5, Quantity: 5}, c.Items[0])
}

func TestAddItem_NoDuplicatesAcrossSequence(t *testing.T) {
	adds := []models.CartItem{
		{VariantID: 1, Quantity: 1},
		{VariantID: 2, Quantity: 4},
		{VariantID: 1, Quantity: 2},
		{VariantID: 3, Quantity: 1},
		{VariantID: 2, Quantity: 1},
		{VariantID: 1, Quantity: 7},
	}

	c := models.NewCart()
	want := map[int64]int{}
	for _, it := range adds {
		c = AddItem(c, it)
		want[it.VariantID] += it.Quantity
	}

	seen := map[int64]bool{}
	for _, it := range c.Items {
		assert.False(t, seen[it.VariantID], "duplicate entry for variant %d", it.VariantID)
		seen[it.VariantID] = true
		assert.Equal(t, want[it.VariantID], it.Quantity)
	}
	assert.Len(t, c.Items, len(want))

	// first-seen order is kept
	assert.Equal(t, []int64{1, 2, 3}, []int64{c.Items[0].VariantID, c.Items[1].VariantID, c.Items[2].VariantID})
}

func TestAddItem_IgnoresNonPositiveQuantity(t *testing.T) {
	c := AddItem(models.NewCart(), models.CartItem{VariantID: 1, Quantity: 2})

	assert.Equal(t, c, AddItem(c, models.CartItem{VariantID: 1, Quantity: 0}))
	assert.Equal(t, c, AddItem(c, models.CartItem{VariantID: 9, Quantity: -3}))
}

func TestAddItem_SaturatesQuantity(t *testing.T) {
	tests := []struct {
		name string
		adds []int
		want int
	}{
		{"max int plus one", []int{math.MaxInt, 1}, MaxQuantity},
		{"sum past cap", []int{MaxQuantity - 1, 5}, MaxQuantity},
		{"at cap", []int{MaxQuantity - 3, 3}, MaxQuantity},
		{"below cap", []int{10, 20}, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := models.NewCart()
			for _, q := range tt.adds {
				c = AddItem(c, models.CartItem{VariantID: 5, Quantity: q})
			}

			require.Len(t, c.Items, 1)
			assert.Equal(t, tt.want, c.Items[0].Quantity)
			assert.Equal(t, tt.want, TotalItems(c))
		})
	}
}

func TestAddItem_DoesNotMutateInput(t *testing.T) {
	before := AddItem(models.NewCart(), models.CartItem{VariantID: 1, Quantity: 1})
	after := AddItem(before, models.CartItem{VariantID: 1, Quantity: 1})

	assert.Equal(t, 1, before.Items[0].Quantity)
	assert.Equal(t, 2, after.Items[0].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	base := AddItem(AddItem(models.NewCart(),
		models.CartItem{VariantID: 5, Quantity: 2}),
		models.CartItem{VariantID: 6, Quantity: 1})

	tests := []struct {
		name     string
		variant  int64
		quantity int
		want     []models.CartItem
	}{
		{"replace", 5, 9, []models.CartItem{{VariantID: 5, Quantity: 9}, {VariantID: 6, Quantity: 1}}},
		{"zero removes", 5, 0, []models.CartItem{{VariantID: 6, Quantity: 1}}},
		{"negative removes", 5, -1, []models.CartItem{{VariantID: 6, Quantity: 1}}},
		{"absent variant", 42, 3, []models.CartItem{{VariantID: 5, Quantity: 2}, {VariantID: 6, Quantity: 1}}},
		{"capped", 6, math.MaxInt, []models.CartItem{{VariantID: 5, Quantity: 2}, {VariantID: 6, Quantity: MaxQuantity}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpdateQuantity(base, tt.variant, tt.quantity)
			assert.Equal(t, tt.want, got.Items)
			for _, it := range got.Items {
				assert.Positive(t, it.Quantity)
			}
		})
	}
}

func TestRemoveItem_Idempotent(t *testing.T) {
	c := AddItem(AddItem(models.NewCart(),
		models.CartItem{VariantID: 1, Quantity: 1}),
		models.CartItem{VariantID: 2, Quantity: 2})

	once := RemoveItem(c, 1)
	twice := RemoveItem(once, 1)

	assert.Equal(t, once, twice)
	assert.Equal(t, []models.CartItem{{VariantID: 2, Quantity: 2}}, twice.Items)
	assert.Equal(t, once, RemoveItem(once, 99))
}

func TestTotalItems_SumsQuantities(t *testing.T) {
	c := AddItem(AddItem(models.NewCart(),
		models.CartItem{VariantID: 1, Quantity: 2}),
		models.CartItem{VariantID: 2, Quantity: 3})

	assert.Equal(t, 5, TotalItems(c))
	assert.Equal(t, 0, TotalItems(nil))
	assert.Equal(t, 3, Quantity(c, 2))
	assert.Equal(t, 0, Quantity(c, 3))
}

func TestClear_KeepsOwner(t *testing.T) {
	c := SetUser(models.NewCart(), "u-1")
	c = SetAddress(c, int64Ptr(3))
	c = AddItem(c, models.CartItem{VariantID: 1, Quantity: 1})

	cleared := Clear(c)
	assert.Equal(t, "u-1", cleared.UserID)
	assert.Nil(t, cleared.AddressID)
	assert.Empty(t, cleared.Items)
	assert.NotNil(t, cleared.Items)
}

func TestOrderPayload_Defaults(t *testing.T) {
	payload := OrderPayload(models.NewCart())

	assert.Equal(t, "", payload.UserID)
	assert.Equal(t, int64(0), payload.AddressID)
	assert.Equal(t, int64(0), payload.PromotionID)
	assert.NotNil(t, payload.OrderItems)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"","addressId":0,"promotionId":0,"orderItems":[]}`, string(raw))
}

func TestOrderPayload_Projection(t *testing.T) {
	c := SetUser(models.NewCart(), "u-7")
	c = SetAddress(c, int64Ptr(11))
	c = SetPromotion(c, int64Ptr(4))
	c = AddItem(c, models.CartItem{VariantID: 3, Quantity: 2})

	payload := OrderPayload(c)
	assert.Equal(t, models.OrderPayload{
		UserID:      "u-7",
		AddressID:   11,
		PromotionID: 4,
		OrderItems:  []models.OrderItemPayload{{VariantID: 3, Quantity: 2}},
	}, payload)
}

func TestSetAddress_CopiesPointer(t *testing.T) {
	id := int64(8)
	c := SetAddress(models.NewCart(), &id)
	id = 9

	assert.Equal(t, int64(8), *c.AddressID)
	assert.Nil(t, SetAddress(c, nil).AddressID)
}

func TestMerge(t *testing.T) {
	into := SetUser(models.NewCart(), "u-1")
	into = SetAddress(into, int64Ptr(1))
	into = AddItem(into, models.CartItem{VariantID: 1, Quantity: 1})

	from := SetAddress(models.NewCart(), int64Ptr(2))
	from = SetPromotion(from, int64Ptr(5))
	from = AddItem(from, models.CartItem{VariantID: 1, Quantity: 2})
	from = AddItem(from, models.CartItem{VariantID: 2, Quantity: 1})

	merged := Merge(into, from)

	assert.Equal(t, "u-1", merged.UserID)
	assert.Equal(t, int64(1), *merged.AddressID)
	assert.Equal(t, int64(5), *merged.PromotionID)
	assert.Equal(t, []models.CartItem{{VariantID: 1, Quantity: 3}, {VariantID: 2, Quantity: 1}}, merged.Items)

	assert.Equal(t, into.Clone(), Merge(into, nil))
}

func TestNormalize(t *testing.T) {
	raw := &models.Cart{Items: []models.CartItem{
		{VariantID: 1, Quantity: 1},
		{VariantID: 2, Quantity: 0},
		{VariantID: 1, Quantity: 4},
		{VariantID: 3, Quantity: -2},
	}}

	got := Normalize(raw)
	assert.Equal(t, []models.CartItem{{VariantID: 1, Quantity: 5}}, got.Items)
	assert.Equal(t, models.NewCart(), Normalize(nil))
}

func TestRemoveOrdered(t *testing.T) {
	ordered := []models.OrderItemPayload{{VariantID: 1, Quantity: 2}, {VariantID: 2, Quantity: 1}}

	tests := []struct {
		name string
		cart *models.Cart
		want []models.CartItem
	}{
		{
			name: "exactly the order",
			cart: &models.Cart{Items: []models.CartItem{{VariantID: 1, Quantity: 2}, {VariantID: 2, Quantity: 1}}},
			want: []models.CartItem{},
		},
		{
			name: "line added meanwhile",
			cart: &models.Cart{Items: []models.CartItem{{VariantID: 1, Quantity: 2}, {VariantID: 2, Quantity: 1}, {VariantID: 3, Quantity: 4}}},
			want: []models.CartItem{{VariantID: 3, Quantity: 4}},
		},
		{
			name: "quantity raised meanwhile",
			cart: &models.Cart{Items: []models.CartItem{{VariantID: 1, Quantity: 5}, {VariantID: 2, Quantity: 1}}},
			want: []models.CartItem{{VariantID: 1, Quantity: 3}},
		},
		{
			name: "line removed meanwhile",
			cart: &models.Cart{Items: []models.CartItem{{VariantID: 1, Quantity: 1}}},
			want: []models.CartItem{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cart.UserID = "u1"
			tt.cart.AddressID = int64Ptr(7)

			got := RemoveOrdered(tt.cart, ordered)
			assert.Equal(t, tt.want, got.Items)
			assert.Equal(t, "u1", got.UserID)
			if len(tt.want) == 0 {
				assert.Nil(t, got.AddressID)
			} else {
				assert.Equal(t, int64(7), *got.AddressID)
			}
		})
	}
}
