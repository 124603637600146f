package category

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"goflare.io/storefront/api"
	"goflare.io/storefront/cache"
	"goflare.io/storefront/models"
)

const listKey = "categories"

var _ Repository = (*repository)(nil)

type Repository interface {
	Create(ctx context.Context, input *models.CategoryInput) (*models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	Update(ctx context.Context, id int64, input *models.CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.Category, error)
	ListSubcategories(ctx context.Context, parentID int64) ([]*models.Category, error)
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

func categoryKey(id int64) string {
	return fmt.Sprintf("category:%d", id)
}

func (r *repository) Create(ctx context.Context, input *models.CategoryInput) (*models.Category, error) {
	var category models.Category
	if err := r.client.Post(ctx, "/categories", input, &category); err != nil {
		r.logger.Error("Failed to create category", zap.Error(err))
		return nil, err
	}

	// 更新快取
	r.cache.Delete(listKey)
	if !r.cache.Set(categoryKey(category.ID), category) {
		r.logger.Warn("Failed to cache category", zap.Int64("category_id", category.ID))
	}

	return &category, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	// 嘗試從快取中獲取
	if category, ok := cache.Get[models.Category](r.cache, categoryKey(id)); ok {
		return &category, nil
	}

	var category models.Category
	if err := r.client.Get(ctx, fmt.Sprintf("/categories/%d", id), nil, &category); err != nil {
		r.logger.Error("Failed to get category", zap.Int64("category_id", id), zap.Error(err))
		return nil, err
	}

	r.cache.Set(categoryKey(id), category)
	return &category, nil
}

func (r *repository) Update(ctx context.Context, id int64, input *models.CategoryInput) (*models.Category, error) {
	var category models.Category
	if err := r.client.Put(ctx, fmt.Sprintf("/categories/%d", id), input, &category); err != nil {
		r.logger.Error("Failed to update category", zap.Int64("category_id", id), zap.Error(err))
		return nil, err
	}

	r.invalidate(id)
	return &category, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Delete(ctx, fmt.Sprintf("/categories/%d", id), nil); err != nil {
		r.logger.Error("Failed to delete category", zap.Int64("category_id", id), zap.Error(err))
		return err
	}

	r.invalidate(id)
	return nil
}

// List returns every category; the backend's category set is small enough to
// be fetched and cached whole.
func (r *repository) List(ctx context.Context) ([]*models.Category, error) {
	if categories, ok := cache.Get[[]models.Category](r.cache, listKey); ok {
		return toPointers(categories), nil
	}

	var categories []models.Category
	if err := r.client.Get(ctx, "/categories", nil, &categories); err != nil {
		r.logger.Error("Failed to list categories", zap.Error(err))
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}

	if !r.cache.Set(listKey, categories) {
		r.logger.Warn("Failed to cache categories")
	}
	return toPointers(categories), nil
}

func (r *repository) ListSubcategories(ctx context.Context, parentID int64) ([]*models.Category, error) {
	categories, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Category, 0)
	for _, c := range categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *repository) invalidate(id int64) {
	r.cache.Delete(categoryKey(id), listKey)
}

// toPointers copies so callers never share the cached slice.
func toPointers(categories []models.Category) []*models.Category {
	out := make([]*models.Category, 0, len(categories))
	for i := range categories {
		c := categories[i]
		out = append(out, &c)
	}
	return out
}
