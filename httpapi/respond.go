package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"goflare.io/storefront"
	"goflare.io/storefront/api"
	"goflare.io/storefront/i18n"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string            `json:"error"`
	Detail string            `json:"detail,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

var errInvalidBody = errors.New("invalid request body")

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handler) writeMessage(w http.ResponseWriter, r *http.Request, status int, key string) {
	writeJSON(w, status, errorResponse{Error: h.bundle.Message(localeFrom(r.Context()), key)})
}

// writeError is the one place errors become status codes.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	tag := localeFrom(r.Context())

	var (
		status int
		key    string
		detail string
		verrs  validator.ValidationErrors
	)

	switch {
	case errors.As(err, &verrs):
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  h.bundle.Message(tag, i18n.MsgInvalidRequest),
			Fields: fields,
		})
		return
	case errors.Is(err, errInvalidBody):
		status, key, detail = http.StatusBadRequest, i18n.MsgInvalidRequest, err.Error()
	case errors.Is(err, storefront.ErrUnauthenticated), errors.Is(err, api.ErrUnauthorized):
		status, key = http.StatusUnauthorized, i18n.MsgUnauthenticated
	case errors.Is(err, api.ErrForbidden):
		status, key = http.StatusForbidden, i18n.MsgForbidden
	case errors.Is(err, storefront.ErrVariantUnavailable):
		status, key = http.StatusNotFound, i18n.MsgVariantUnavailable
	case errors.Is(err, api.ErrNotFound):
		status, key = http.StatusNotFound, i18n.MsgNotFound
	case errors.Is(err, storefront.ErrEmptyCart):
		status, key = http.StatusUnprocessableEntity, i18n.MsgEmptyCart
	case errors.Is(err, api.ErrInvalidRequest):
		status, key = http.StatusBadRequest, i18n.MsgInvalidRequest
		detail = backendMessage(err)
	case errors.Is(err, api.ErrConflict):
		status, key = http.StatusConflict, i18n.MsgConflict
		detail = backendMessage(err)
	case errors.Is(err, api.ErrUnavailable), errors.Is(err, gobreaker.ErrOpenState):
		status, key = http.StatusServiceUnavailable, i18n.MsgBackendUnavailable
	case api.StatusCode(err) != 0:
		status, key = http.StatusBadGateway, i18n.MsgBackendFailed
	default:
		status, key = http.StatusInternalServerError, i18n.MsgInternal
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request error",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}

	writeJSON(w, status, errorResponse{
		Error:  h.bundle.Message(tag, key),
		Detail: detail,
	})
}

func backendMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// decode reads a JSON body into dst and validates it.
func (h *Handler) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	return h.validate.Struct(dst)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad %s %q", errInvalidBody, name, chi.URLParam(r, name))
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s %q", errInvalidBody, name, raw)
	}
	return v, nil
}
