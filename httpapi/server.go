// Package httpapi is the JSON API the storefront UI talks to.
package httpapi

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"goflare.io/storefront"
	"goflare.io/storefront/i18n"
)

const DefaultSessionName = "storefront_session"

type Options struct {
	SessionName string
	// BackendState reports the backend circuit breaker on /healthz. Optional.
	BackendState func() string
}

type Handler struct {
	svc      storefront.Service
	store    sessions.Store
	bundle   *i18n.Bundle
	validate *validator.Validate
	opts     Options
	logger   *zap.Logger
}

func New(svc storefront.Service, store sessions.Store, bundle *i18n.Bundle, logger *zap.Logger, opts Options) *Handler {
	if opts.SessionName == "" {
		opts.SessionName = DefaultSessionName
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	// report json field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return &Handler{
		svc:      svc,
		store:    store,
		bundle:   bundle,
		validate: validate,
		opts:     opts,
		logger:   logger,
	}
}

// NewCookieStore returns the session store the handler keeps client identity in.
func NewCookieStore(secret []byte, maxAge time.Duration, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(h.logRequests)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.identify)
		r.Use(h.negotiateLocale)

		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.productDetail)
		r.Get("/products/{id}/color", h.changeColor)
		r.Get("/categories", h.categoryTree)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.viewCart)
			r.Delete("/", h.clearCart)
			r.Post("/items", h.addItem)
			r.Patch("/items/{variantId}", h.updateQuantity)
			r.Delete("/items/{variantId}", h.removeItem)
			r.Put("/options", h.setCheckoutOptions)
			r.Get("/payload", h.orderPayload)
		})
		r.Post("/checkout", h.checkout)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.login)
			r.Post("/register", h.register)
			r.Post("/logout", h.logout)
		})

		r.Route("/me", func(r chi.Router) {
			r.Use(h.requireUser)
			r.Get("/", h.me)
			r.Put("/", h.updateProfile)
			r.Get("/addresses", h.listAddresses)
			r.Post("/addresses", h.createAddress)
			r.Delete("/addresses/{id}", h.deleteAddress)
			r.Get("/orders", h.listMyOrders)
			r.Get("/orders/{id}", h.getOrder)
			r.Post("/orders/{id}/cancel", h.cancelOrder)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Get("/products", h.listProducts)
			r.Post("/products", h.createProduct)
			r.Get("/products/{id}", h.getProduct)
			r.Put("/products/{id}", h.updateProduct)
			r.Delete("/products/{id}", h.deleteProduct)
			r.Get("/categories", h.listCategories)
			r.Post("/categories", h.createCategory)
			r.Put("/categories/{id}", h.updateCategory)
			r.Delete("/categories/{id}", h.deleteCategory)
			r.Get("/orders", h.listOrders)
			r.Patch("/orders/{id}/status", h.updateOrderStatus)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if h.opts.BackendState != nil {
		body["backend"] = h.opts.BackendState()
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			}
			if status >= http.StatusInternalServerError {
				h.logger.Error("Request failed", fields...)
				return
			}
			h.logger.Info("Request handled", fields...)
		}()

		next.ServeHTTP(ww, r)
	})
}
