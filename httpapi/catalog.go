package httpapi

import (
	"net/http"
	"strconv"

	"goflare.io/storefront/models"
	"goflare.io/storefront/variant"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

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
	var categoryID int64
	if raw := q.Get("category"); raw != "" {
		if categoryID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			h.writeError(w, r, errInvalidBody)
			return
		}
	}

	products, err := h.svc.ListProducts(r.Context(), models.ProductQuery{
		Page:       page,
		Limit:      limit,
		CategoryID: categoryID,
		Search:     q.Get("q"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) productDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sel := variant.Selection{
		Color:   r.URL.Query().Get("color"),
		Storage: r.URL.Query().Get("storage"),
	}
	view, err := h.svc.ProductDetail(r.Context(), id, sel, localeFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// changeColor takes the new color in color and the current storage in storage.
func (h *Handler) changeColor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	current := variant.Selection{Storage: r.URL.Query().Get("storage")}
	view, err := h.svc.ChangeColor(r.Context(), id, current, r.URL.Query().Get("color"), localeFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) categoryTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.CategoryTree(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}
