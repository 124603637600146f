package storefront

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"goflare.io/storefront/api"
	"goflare.io/storefront/cart"
	"goflare.io/storefront/models"
	"goflare.io/storefront/variant"
)

const defaultHydrateLimit = 8

// CartLine is one cart entry joined with current catalog data.
type CartLine struct {
	VariantID    int64           `json:"variantId"`
	Quantity     int             `json:"quantity"`
	ProductID    int64           `json:"productId,omitempty"`
	Name         string          `json:"name,omitempty"`
	Color        string          `json:"color,omitempty"`
	Storage      string          `json:"storage,omitempty"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	Price        variant.Price   `json:"price"`
	LineTotal    decimal.Decimal `json:"lineTotal"`
	DisplayPrice string          `json:"displayPrice,omitempty"`
	DisplayTotal string          `json:"displayTotal,omitempty"`
	InStock      bool            `json:"inStock"`
	// Unavailable lines stay in the cart but are left out of every total.
	Unavailable bool `json:"unavailable"`
}

type CartView struct {
	Items           []CartLine      `json:"items"`
	TotalItems      int             `json:"totalItems"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	Currency        stripe.Currency `json:"currency"`
	DisplaySubtotal string          `json:"displaySubtotal"`
	DisplayDiscount string          `json:"displayDiscount"`
	DisplayTotal    string          `json:"displayTotal"`
	AddressID       *int64          `json:"addressId,omitempty"`
	PromotionID     *int64          `json:"promotionId,omitempty"`
}

func (s *service) GetCart(ctx context.Context, owner string) (*models.Cart, error) {
	store, err := s.carts.Open(ctx, owner)
	if err != nil {
		return nil, err
	}
	return store.Snapshot(), nil
}

func (s *service) AddToCart(ctx context.Context, owner string, item models.CartItem) (*models.Cart, error) {
	store, err := s.carts.Open(ctx, owner)
	if err != nil {
		return nil, err
	}
	return store.AddItem(ctx, item), nil
}

func (s *service) RemoveFromCart(ctx context.Context, owner string, variantID int64) (*models.Cart, error) {
	store, err := s.carts.Open(ctx, owner)
	if err != nil {
		return nil, err
	}
	return store.RemoveItem(ctx, variantID), nil
}

func (s *service) UpdateCartQuantity(ctx context.Context, owner string, variantID int64, quantity int) (*models.Cart, error) {
	store, err := s.carts.Open(ctx, owner)
	if err != nil {
		return nil, err
	}
	return store.UpdateQuantity(ctx, variantID, quantity), nil
}

func (s *service) ClearCart(ctx context.Context, owner string) (*models.Cart, error) {
	store, err := s.carts.Open(ctx, owner)
	if err != nil {
		return nil, err
	}
	return store.ClearCart(ctx), nil
}

func (s *service) SetCheckoutOptions(ctx context.Context, owner string, addressID, promotionID *int64) (*models.Cart, error) {
	store, err := s.carts.Open(ctx, owner)
	if err != nil {
		return nil, err
	}
	return store.SetCheckoutOptions(ctx, addressID, promotionID), nil
}

func (s *service) GetOrderPayload(ctx context.Context, owner string) (models.OrderPayload, error) {
	store, err := s.carts.Open(ctx, owner)
	if err != nil {
		return models.OrderPayload{}, err
	}
	return store.GetOrderPayload(), nil
}

// ViewCart joins the cart with the catalog. A line whose variant no longer
// exists is kept and flagged instead of failing the view.
func (s *service) ViewCart(ctx context.Context, owner string, tag language.Tag) (*CartView, error) {
	store, err := s.carts.Open(ctx, owner)
	if err != nil {
		return nil, err
	}
	snapshot := store.Snapshot()

	lines := make([]CartLine, len(snapshot.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.hydrateLimit)

	for i, item := range snapshot.Items {
		g.Go(func() error {
			line, err := s.hydrate(gctx, item)
			if err != nil {
				return fmt.Errorf("failed to hydrate variant %d: %w", item.VariantID, err)
			}
			lines[i] = line
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	formatter := s.bundle.Formatter(tag)
	view := &CartView{
		Items:       lines,
		TotalItems:  cart.TotalItems(snapshot),
		Subtotal:    decimal.Zero,
		Total:       decimal.Zero,
		Currency:    formatter.Currency(),
		AddressID:   snapshot.AddressID,
		PromotionID: snapshot.PromotionID,
	}

	for i := range view.Items {
		line := &view.Items[i]
		if line.Unavailable {
			continue
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		view.Subtotal = view.Subtotal.Add(line.Price.Original.Mul(qty))
		view.Total = view.Total.Add(line.LineTotal)
		line.DisplayPrice = formatter.Format(line.Price.Discounted)
		line.DisplayTotal = formatter.Format(line.LineTotal)
	}
	view.Discount = view.Subtotal.Sub(view.Total)
	view.DisplaySubtotal = formatter.Format(view.Subtotal)
	view.DisplayDiscount = formatter.Format(view.Discount)
	view.DisplayTotal = formatter.Format(view.Total)

	return view, nil
}

func (s *service) hydrate(ctx context.Context, item models.CartItem) (CartLine, error) {
	line := CartLine{
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
		LineTotal: decimal.Zero,
	}

	v, err := s.catalog.GetVariant(ctx, item.VariantID)
	if errors.Is(err, api.ErrNotFound) {
		line.Unavailable = true
		return line, nil
	}
	if err != nil {
		return line, err
	}

	line.ProductID = v.ProductID
	line.Color = v.Color
	line.Storage = v.StorageValue()
	line.Price = variant.PriceOf(*v)
	line.LineTotal = line.Price.Discounted.Mul(decimal.NewFromInt(int64(item.Quantity)))
	line.InStock = v.InStock()
	if len(v.ImageURLs) > 0 {
		line.ImageURL = v.ImageURLs[0]
	}

	product, err := s.catalog.GetProduct(ctx, v.ProductID)
	switch {
	case errors.Is(err, api.ErrNotFound):
		line.Unavailable = true
	case err != nil:
		return line, err
	default:
		line.Name = product.Name
		if line.ImageURL == "" {
			line.ImageURL = product.ImageURL
		}
	}

	return line, nil
}

// Checkout places an order for the signed-in owner's cart. Once the backend
// has accepted the order its lines are taken out of the cart; anything added
// while the order was being placed stays.
func (s *service) Checkout(ctx context.Context, owner string) (*models.Order, error) {
	userID, ok := cart.UserIDFromOwner(owner)
	if !ok || api.TokenFrom(ctx) == "" {
		return nil, ErrUnauthenticated
	}

	store, err := s.carts.Open(ctx, owner)
	if err != nil {
		return nil, err
	}

	payload := store.GetOrderPayload()
	if len(payload.OrderItems) == 0 {
		return nil, ErrEmptyCart
	}
	payload.UserID = userID

	key := uuid.NewString()
	order, err := s.order.Create(ctx, payload, key)
	if err != nil {
		s.logger.Warn("Checkout failed, cart kept",
			zap.String("owner", owner),
			zap.String("idempotency_key", key),
			zap.Error(err))
		return nil, err
	}

	left := store.RemoveOrdered(ctx, payload.OrderItems)
	s.logger.Info("Checkout completed",
		zap.String("owner", owner),
		zap.Int64("order_id", order.ID),
		zap.Int("lines", len(payload.OrderItems)),
		zap.Int("items_left", cart.TotalItems(left)))

	return order, nil
}
