package httpapi

import (
	"net/http"

	"goflare.io/storefront/cart"
	"goflare.io/storefront/i18n"
	"goflare.io/storefront/models"
)

type addItemRequest struct {
	VariantID int64 `json:"variantId" validate:"required,gt=0"`
	// Quantity defaults to 1.
	Quantity int `json:"quantity" validate:"gte=0,lte=999"`
}

type updateQuantityRequest struct {
	// Quantity <= 0 removes the item.
	Quantity *int `json:"quantity" validate:"required,lte=999"`
}

type checkoutOptionsRequest struct {
	AddressID   *int64 `json:"addressId" validate:"omitempty,gt=0"`
	PromotionID *int64 `json:"promotionId" validate:"omitempty,gt=0"`
}

type cartResponse struct {
	Cart       *models.Cart `json:"cart"`
	TotalItems int          `json:"totalItems"`
	Message    string       `json:"message,omitempty"`
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, c *models.Cart, messageKey string) {
	resp := cartResponse{Cart: c, TotalItems: cart.TotalItems(c)}
	if messageKey != "" {
		resp.Message = h.bundle.Message(localeFrom(r.Context()), messageKey)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) viewCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.svc.ViewCart(ctx, identityFrom(ctx).owner(), localeFrom(ctx))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx := r.Context()
	c, err := h.svc.AddToCart(ctx, identityFrom(ctx).owner(), models.CartItem{VariantID: req.VariantID, Quantity: req.Quantity})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondCart(w, r, c, i18n.MsgAddedToCart)
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	variantID, err := pathID(r, "variantId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req updateQuantityRequest
	if err = h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	c, err := h.svc.UpdateCartQuantity(ctx, identityFrom(ctx).owner(), variantID, *req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondCart(w, r, c, "")
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	variantID, err := pathID(r, "variantId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	c, err := h.svc.RemoveFromCart(ctx, identityFrom(ctx).owner(), variantID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondCart(w, r, c, "")
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := h.svc.ClearCart(ctx, identityFrom(ctx).owner())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondCart(w, r, c, i18n.MsgCartCleared)
}

func (h *Handler) setCheckoutOptions(w http.ResponseWriter, r *http.Request) {
	var req checkoutOptionsRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	c, err := h.svc.SetCheckoutOptions(ctx, identityFrom(ctx).owner(), req.AddressID, req.PromotionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondCart(w, r, c, "")
}

func (h *Handler) orderPayload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	payload, err := h.svc.GetOrderPayload(ctx, identityFrom(ctx).owner())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

type checkoutResponse struct {
	Order   *models.Order `json:"order"`
	Message string        `json:"message"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	order, err := h.svc.Checkout(ctx, identityFrom(ctx).owner())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkoutResponse{
		Order:   order,
		Message: h.bundle.Message(localeFrom(ctx), i18n.MsgOrderPlaced),
	})
}
