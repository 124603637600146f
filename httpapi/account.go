package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"goflare.io/storefront/i18n"
	"goflare.io/storefront/models"
)

type sessionResponse struct {
	User models.User `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var input models.LoginInput
	if err := h.decode(r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	session, err := h.svc.Login(ctx, identityFrom(ctx).guestOwner(), &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.completeSignIn(w, r, session, http.StatusOK)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var input models.RegisterInput
	if err := h.decode(r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	session, err := h.svc.Register(ctx, identityFrom(ctx).guestOwner(), &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.completeSignIn(w, r, session, http.StatusCreated)
}

func (h *Handler) completeSignIn(w http.ResponseWriter, r *http.Request, session *models.Session, status int) {
	if err := h.signIn(w, r, session); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, status, sessionResponse{User: session.User})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.svc.Logout(ctx, identityFrom(ctx).UserID); err != nil {
		// the session is dropped regardless
		h.logger.Warn("Failed to apply logout cart policy", zap.Error(err))
	}
	if err := h.signOut(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: h.bundle.Message(localeFrom(ctx), i18n.MsgLoggedOut)})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Me(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var input models.ProfileInput
	if err := h.decode(r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.svc.ListAddresses(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addresses)
}

func (h *Handler) createAddress(w http.ResponseWriter, r *http.Request) {
	var input models.AddressInput
	if err := h.decode(r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	address, err := h.svc.CreateAddress(r.Context(), &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, address)
}

func (h *Handler) deleteAddress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.svc.DeleteAddress(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	orders, err := h.svc.ListMyOrders(r.Context(), page, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.svc.CancelOrder(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
