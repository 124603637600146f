package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"goflare.io/storefront/api"
	"goflare.io/storefront/cache"
	"goflare.io/storefront/models"
)

const (
	defaultPage  = 1
	defaultLimit = 12
	maxLimit     = 100
)

var _ Repository = (*repository)(nil)

// Repository reads the product catalog from the backend. Reads are cached in
// process; admin writes evict what they touch.
type Repository interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	GetVariant(ctx context.Context, id int64) (*models.ProductVariant, error)
	ListProducts(ctx context.Context, query models.ProductQuery) (*models.Page[models.Product], error)
	CreateProduct(ctx context.Context, input *models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, input *models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type repository struct {
	client *api.Client
	cache  *cache.Cache
	logger *zap.Logger
}

func NewRepository(client *api.Client, cache *cache.Cache, logger *zap.Logger) Repository {
	return &repository{
		client: client,
		cache:  cache,
		logger: logger,
	}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func variantKey(id int64) string {
	return fmt.Sprintf("variant:%d", id)
}

func (r *repository) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	if product, ok := cache.Get[models.Product](r.cache, productKey(id)); ok {
		return &product, nil
	}

	var product models.Product
	if err := r.client.Get(ctx, fmt.Sprintf("/products/%d", id), nil, &product); err != nil {
		r.logger.Error("Failed to get product", zap.Int64("product_id", id), zap.Error(err))
		return nil, err
	}

	r.cacheProduct(&product)
	return &product, nil
}

func (r *repository) GetVariant(ctx context.Context, id int64) (*models.ProductVariant, error) {
	if variant, ok := cache.Get[models.ProductVariant](r.cache, variantKey(id)); ok {
		return &variant, nil
	}

	var variant models.ProductVariant
	if err := r.client.Get(ctx, fmt.Sprintf("/variants/%d", id), nil, &variant); err != nil {
		r.logger.Error("Failed to get variant", zap.Int64("variant_id", id), zap.Error(err))
		return nil, err
	}

	if !r.cache.Set(variantKey(id), variant) {
		r.logger.Debug("Variant not cached", zap.Int64("variant_id", id))
	}
	return &variant, nil
}

func (r *repository) ListProducts(ctx context.Context, query models.ProductQuery) (*models.Page[models.Product], error) {
	query = normalizeQuery(query)
	cacheKey := r.cache.Versioned(fmt.Sprintf("products:%d:%d:%d:%s", query.Page, query.Limit, query.CategoryID, query.Search))

	if page, ok := cache.Get[models.Page[models.Product]](r.cache, cacheKey); ok {
		return &page, nil
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("limit", strconv.Itoa(query.Limit))
	if query.CategoryID > 0 {
		params.Set("categoryId", strconv.FormatInt(query.CategoryID, 10))
	}
	if query.Search != "" {
		params.Set("search", query.Search)
	}

	var page models.Page[models.Product]
	if err := r.client.Get(ctx, "/products", params, &page); err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, err
	}
	if page.Items == nil {
		page.Items = []models.Product{}
	}

	r.cache.Set(cacheKey, page)
	return &page, nil
}

func (r *repository) CreateProduct(ctx context.Context, input *models.ProductInput) (*models.Product, error) {
	var product models.Product
	if err := r.client.Post(ctx, "/products", input, &product); err != nil {
		r.logger.Error("Failed to create product", zap.Error(err))
		return nil, err
	}

	r.cache.Bump()
	return &product, nil
}

func (r *repository) UpdateProduct(ctx context.Context, id int64, input *models.ProductInput) (*models.Product, error) {
	var product models.Product
	if err := r.client.Put(ctx, fmt.Sprintf("/products/%d", id), input, &product); err != nil {
		r.logger.Error("Failed to update product", zap.Int64("product_id", id), zap.Error(err))
		return nil, err
	}

	r.invalidate(id)
	r.invalidateVariants(product.Variants)
	return &product, nil
}

func (r *repository) DeleteProduct(ctx context.Context, id int64) error {
	if err := r.client.Delete(ctx, fmt.Sprintf("/products/%d", id), nil); err != nil {
		r.logger.Error("Failed to delete product", zap.Int64("product_id", id), zap.Error(err))
		return err
	}

	r.invalidate(id)
	return nil
}

func (r *repository) cacheProduct(product *models.Product) {
	if !r.cache.Set(productKey(product.ID), *product) {
		r.logger.Debug("Product not cached", zap.Int64("product_id", product.ID))
	}
	for _, v := range product.Variants {
		r.cache.Set(variantKey(v.ID), v)
	}
}

// invalidate evicts the product, the variants it had when cached, and every
// cached listing.
func (r *repository) invalidate(id int64) {
	if old, ok := cache.Get[models.Product](r.cache, productKey(id)); ok {
		r.invalidateVariants(old.Variants)
	}
	r.cache.Delete(productKey(id))
	r.cache.Bump()
}

func (r *repository) invalidateVariants(variants []models.ProductVariant) {
	for _, v := range variants {
		r.cache.Delete(variantKey(v.ID))
	}
}

func normalizeQuery(q models.ProductQuery) models.ProductQuery {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return q
}
