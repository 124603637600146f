package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"goflare.io/storefront/api"
	"goflare.io/storefront/cart"
	"goflare.io/storefront/i18n"
	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
)

const (
	keyGuestID = "guest_id"
	keyUserID  = "user_id"
	keyToken   = "token"
	keyRole    = "role"
)

type identityKey struct{}

type localeKey struct{}

// identity is who the client is, as recorded in its session cookie.
type identity struct {
	GuestID string
	UserID  string
	Token   string
	Role    enum.Role
}

// owner is the cart the client is working on.
func (id identity) owner() string {
	if id.UserID != "" {
		return cart.UserOwner(id.UserID)
	}
	return cart.GuestOwner(id.GuestID)
}

func (id identity) guestOwner() string {
	if id.GuestID == "" {
		return ""
	}
	return cart.GuestOwner(id.GuestID)
}

func identityFromSession(session *sessions.Session) identity {
	str := func(key string) string {
		v, _ := session.Values[key].(string)
		return v
	}
	return identity{
		GuestID: str(keyGuestID),
		UserID:  str(keyUserID),
		Token:   str(keyToken),
		Role:    enum.Role(str(keyRole)),
	}
}

func identityFrom(ctx context.Context) identity {
	id, _ := ctx.Value(identityKey{}).(identity)
	return id
}

func localeFrom(ctx context.Context) language.Tag {
	tag, ok := ctx.Value(localeKey{}).(language.Tag)
	if !ok {
		return language.English
	}
	return tag
}

// identify loads the session and mints a guest id on first contact. The
// access token, if any, is attached for backend calls.
func (h *Handler) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := h.store.Get(r, h.opts.SessionName)
		if err != nil {
			h.logger.Debug("Discarding unreadable session", zap.Error(err))
		}

		id := identityFromSession(session)
		if id.UserID == "" && id.GuestID == "" {
			id.GuestID = uuid.NewString()
			session.Values[keyGuestID] = id.GuestID
			if err = session.Save(r, w); err != nil {
				h.logger.Warn("Failed to save session", zap.Error(err))
			}
		}

		ctx := context.WithValue(r.Context(), identityKey{}, id)
		ctx = api.WithToken(ctx, id.Token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) negotiateLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie := ""
		if c, err := r.Cookie(i18n.CookieName); err == nil {
			cookie = c.Value
		}

		tag := h.bundle.Negotiate(r.URL.Query().Get("locale"), cookie, r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", tag.String())
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), localeKey{}, tag)))
	})
}

func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identityFrom(r.Context()).UserID == "" {
			h.writeMessage(w, r, http.StatusUnauthorized, i18n.MsgUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := identityFrom(r.Context())
		switch {
		case id.UserID == "":
			h.writeMessage(w, r, http.StatusUnauthorized, i18n.MsgUnauthenticated)
		case id.Role != enum.RoleAdmin:
			h.writeMessage(w, r, http.StatusForbidden, i18n.MsgForbidden)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// signIn replaces the guest identity with the account one. The guest cart has
// already been merged by then.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, s *models.Session) error {
	session, _ := h.store.Get(r, h.opts.SessionName)
	delete(session.Values, keyGuestID)
	session.Values[keyUserID] = s.User.ID
	session.Values[keyToken] = s.AccessToken
	session.Values[keyRole] = string(s.User.Role)
	return session.Save(r, w)
}

// signOut starts a fresh guest session.
func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := h.store.Get(r, h.opts.SessionName)
	delete(session.Values, keyUserID)
	delete(session.Values, keyToken)
	delete(session.Values, keyRole)
	session.Values[keyGuestID] = uuid.NewString()
	return session.Save(r, w)
}
