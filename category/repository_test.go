package category

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goflare.io/storefront/api"
	"goflare.io/storefront/cache"
	"goflare.io/storefront/models"
)

func id(v int64) *int64 {
	return &v
}

func newRepository(t *testing.T, handler http.Handler) *repository {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(api.Config{BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	c, err := cache.New(cache.Config{MaxItems: 100, TTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return NewRepository(client, c, zap.NewNop()).(*repository)
}

func TestRepository_ListCachesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	var listHits atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		listHits.Add(1)
		_ = json.NewEncoder(w).Encode([]models.Category{
			{ID: 1, Name: "Phones"},
			{ID: 2, Name: "Cases", ParentID: id(1)},
			{ID: 3, Name: "Chargers", ParentID: id(1)},
		})
	})
	mux.HandleFunc("/categories/2", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	r := newRepository(t, mux)

	categories, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 3)
	r.cache.Wait()

	subs, err := r.ListSubcategories(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, subs, 2)
	assert.Equal(t, int32(1), listHits.Load())

	// callers get copies
	categories[0].Name = "changed"
	again, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Phones", again[0].Name)

	require.NoError(t, r.Delete(ctx, 2))
	_, err = r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), listHits.Load())
}

func TestRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/categories/5", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			hits.Add(1)
			_ = json.NewEncoder(w).Encode(models.Category{ID: 5, Name: "Audio"})
		case http.MethodPut:
			var in models.CategoryInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			_ = json.NewEncoder(w).Encode(models.Category{ID: 5, Name: in.Name})
		}
	})
	mux.HandleFunc("/categories/6", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r := newRepository(t, mux)

	c, err := r.GetByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Audio", c.Name)
	r.cache.Wait()

	_, err = r.GetByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	updated, err := r.Update(ctx, 5, &models.CategoryInput{Name: "Sound"})
	require.NoError(t, err)
	assert.Equal(t, "Sound", updated.Name)

	_, err = r.GetByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())

	_, err = r.GetByID(ctx, 6)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestRepository_Create(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.Category{ID: 9, Name: "Tablets"})
	})
	r := newRepository(t, mux)

	c, err := r.Create(context.Background(), &models.CategoryInput{Name: "Tablets"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), c.ID)
}

func TestBuildTree(t *testing.T) {
	categories := []*models.Category{
		{ID: 1, Name: "Phones"},
		{ID: 2, Name: "Cases", ParentID: id(1)},
		{ID: 4, Name: "Leather", ParentID: id(2)},
		{ID: 3, Name: "Laptops"},
		{ID: 5, Name: "Orphan", ParentID: id(99)},
	}

	roots := BuildTree(categories)
	require.Len(t, roots, 3)
	assert.Equal(t, "Phones", roots[0].Name)
	assert.Equal(t, "Laptops", roots[1].Name)
	assert.Equal(t, "Orphan", roots[2].Name)

	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "Cases", roots[0].Children[0].Name)
	require.Len(t, roots[0].Children[0].Children, 1)
	assert.Equal(t, "Leather", roots[0].Children[0].Children[0].Name)

	assert.Empty(t, BuildTree(nil))
}
