package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goflare.io/storefront/api"
	"goflare.io/storefront/cache"
	"goflare.io/storefront/models"
)

type backend struct {
	productHits atomic.Int32
	listHits    atomic.Int32
	variantHits atomic.Int32
	price       atomic.Int64
}

func (b *backend) product() models.Product {
	return models.Product{
		ID:   1,
		Name: "Phone",
		Variants: []models.ProductVariant{
			{ID: 10, ProductID: 1, Color: "black", Price: decimal.NewFromInt(b.price.Load())},
		},
	}
}

func (b *backend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			b.productHits.Add(1)
			_ = json.NewEncoder(w).Encode(b.product())
		case http.MethodPut:
			var in models.ProductInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			b.price.Store(in.Variants[0].Price.IntPart())
			_ = json.NewEncoder(w).Encode(b.product())
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/products/404", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no such product"}`, http.StatusNotFound)
	})
	mux.HandleFunc("/variants/20", func(w http.ResponseWriter, r *http.Request) {
		b.variantHits.Add(1)
		_ = json.NewEncoder(w).Encode(models.ProductVariant{ID: 20, ProductID: 2, Color: "red"})
	})
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(models.Product{ID: 2, Name: "Case"})
			return
		}
		b.listHits.Add(1)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "3", r.URL.Query().Get("categoryId"))
		_ = json.NewEncoder(w).Encode(models.Page[models.Product]{Items: []models.Product{b.product()}, Total: 1, Page: 2, Limit: 100})
	})
	return mux
}

func newRepository(t *testing.T) (*repository, *backend) {
	t.Helper()

	b := &backend{}
	b.price.Store(1000)
	srv := httptest.NewServer(b.handler(t))
	t.Cleanup(srv.Close)

	client, err := api.NewClient(api.Config{BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	c, err := cache.New(cache.Config{MaxItems: 100, TTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return NewRepository(client, c, zap.NewNop()).(*repository), b
}

func TestRepository_GetProductIsCached(t *testing.T) {
	ctx := context.Background()
	r, b := newRepository(t)

	p, err := r.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Phone", p.Name)
	r.cache.Wait()

	_, err = r.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), b.productHits.Load())

	// variants of a fetched product are served from the cache too
	v, err := r.GetVariant(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "black", v.Color)
	assert.Equal(t, int32(0), b.variantHits.Load())
}

func TestRepository_GetVariant(t *testing.T) {
	ctx := context.Background()
	r, b := newRepository(t)

	v, err := r.GetVariant(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.ProductID)
	r.cache.Wait()

	_, err = r.GetVariant(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, int32(1), b.variantHits.Load())
}

func TestRepository_GetProductNotFound(t *testing.T) {
	r, _ := newRepository(t)

	_, err := r.GetProduct(context.Background(), 404)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestRepository_ListProductsNormalizesAndCaches(t *testing.T) {
	ctx := context.Background()
	r, b := newRepository(t)

	query := models.ProductQuery{Page: 2, Limit: 500, CategoryID: 3}
	page, err := r.ListProducts(ctx, query)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	r.cache.Wait()

	_, err = r.ListProducts(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, int32(1), b.listHits.Load())

	// a write drops cached listings
	_, err = r.CreateProduct(ctx, &models.ProductInput{Name: "Case", CategoryID: 3})
	require.NoError(t, err)
	_, err = r.ListProducts(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, int32(2), b.listHits.Load())
}

func TestRepository_UpdateProductEvicts(t *testing.T) {
	ctx := context.Background()
	r, b := newRepository(t)

	_, err := r.GetProduct(ctx, 1)
	require.NoError(t, err)
	r.cache.Wait()

	updated, err := r.UpdateProduct(ctx, 1, &models.ProductInput{
		Name:       "Phone",
		CategoryID: 1,
		Variants:   []models.VariantInput{{Color: "black", Price: decimal.NewFromInt(900)}},
	})
	require.NoError(t, err)
	assert.True(t, updated.Variants[0].Price.Equal(decimal.NewFromInt(900)))

	p, err := r.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.True(t, p.Variants[0].Price.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, int32(2), b.productHits.Load())
}

func TestRepository_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	r, b := newRepository(t)

	_, err := r.GetProduct(ctx, 1)
	require.NoError(t, err)
	r.cache.Wait()

	require.NoError(t, r.DeleteProduct(ctx, 1))
	_, ok := r.cache.Get(productKey(1))
	assert.False(t, ok)
	_, ok = r.cache.Get(variantKey(10))
	assert.False(t, ok)
	assert.Equal(t, int32(1), b.productHits.Load())
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, models.ProductQuery{Page: 1, Limit: 12}, normalizeQuery(models.ProductQuery{}))
	assert.Equal(t, models.ProductQuery{Page: 3, Limit: 100, Search: "x"}, normalizeQuery(models.ProductQuery{Page: 3, Limit: 1000, Search: "x"}))
}
