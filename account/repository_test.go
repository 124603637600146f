package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goflare.io/storefront/api"
	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
)

func newRepository(t *testing.T, handler http.Handler) Repository {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(api.Config{BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	return NewRepository(client, zap.NewNop())
}

func TestRepository_Login(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in models.LoginInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))

		switch in.Password {
		case "secret1":
			_ = json.NewEncoder(w).Encode(models.Session{
				AccessToken: "tok",
				User:        models.User{ID: "u1", Email: in.Email, Role: enum.RoleAdmin},
			})
		case "partial":
			_ = json.NewEncoder(w).Encode(models.Session{})
		default:
			http.Error(w, `{"message":"invalid credentials"}`, http.StatusUnauthorized)
		}
	})
	repo := newRepository(t, mux)
	ctx := context.Background()

	session, err := repo.Login(ctx, &models.LoginInput{Email: "a@b.c", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "tok", session.AccessToken)
	assert.True(t, session.User.IsAdmin())

	_, err = repo.Login(ctx, &models.LoginInput{Email: "a@b.c", Password: "wrong1"})
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	_, err = repo.Login(ctx, &models.LoginInput{Email: "a@b.c", Password: "partial"})
	assert.Error(t, err)
}

func TestRepository_ProfileForwardsToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		user := models.User{ID: "u1", FullName: "Ann"}
		if r.Method == http.MethodPut {
			var in models.ProfileInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			user.FullName = in.FullName
		}
		_ = json.NewEncoder(w).Encode(user)
	})
	repo := newRepository(t, mux)

	_, err := repo.Me(context.Background())
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	ctx := api.WithToken(context.Background(), "tok")
	me, err := repo.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ann", me.FullName)

	updated, err := repo.UpdateProfile(ctx, &models.ProfileInput{FullName: "Anna"})
	require.NoError(t, err)
	assert.Equal(t, "Anna", updated.FullName)
}

func TestRepository_Addresses(t *testing.T) {
	var deleted bool

	mux := http.NewServeMux()
	mux.HandleFunc("/users/me/addresses", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var in models.AddressInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(models.Address{ID: 2, City: in.City})
			return
		}
		_, _ = w.Write([]byte("null"))
	})
	mux.HandleFunc("/users/me/addresses/2", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	})
	repo := newRepository(t, mux)
	ctx := context.Background()

	addresses, err := repo.ListAddresses(ctx)
	require.NoError(t, err)
	assert.NotNil(t, addresses)
	assert.Empty(t, addresses)

	address, err := repo.CreateAddress(ctx, &models.AddressInput{City: "Hanoi"})
	require.NoError(t, err)
	assert.Equal(t, "Hanoi", address.City)

	require.NoError(t, repo.DeleteAddress(ctx, 2))
	assert.True(t, deleted)
}

func TestRepository_Logout(t *testing.T) {
	var called bool
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})
	repo := newRepository(t, mux)

	require.NoError(t, repo.Logout(context.Background()))
	assert.True(t, called)
}
