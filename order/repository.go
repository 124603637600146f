package order

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"goflare.io/storefront/api"
	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
)

var _ Repository = (*repository)(nil)

// Repository talks to the backend's order API. Orders are never cached: their
// status changes outside this process.
type Repository interface {
	Create(ctx context.Context, payload models.OrderPayload, idempotencyKey string) (*models.Order, error)
	Get(ctx context.Context, orderID int64) (*models.Order, error)
	ListMine(ctx context.Context, page, limit int) (*models.Page[models.Order], error)
	ListAll(ctx context.Context, status enum.OrderStatus, page, limit int) (*models.Page[models.Order], error)
	UpdateStatus(ctx context.Context, orderID int64, status enum.OrderStatus) (*models.Order, error)
	Cancel(ctx context.Context, orderID int64) (*models.Order, error)
}

type repository struct {
	client *api.Client
	logger *zap.Logger
}

func NewRepository(client *api.Client, logger *zap.Logger) Repository {
	return &repository{
		client: client,
		logger: logger,
	}
}

func (r *repository) Create(ctx context.Context, payload models.OrderPayload, idempotencyKey string) (*models.Order, error) {
	if payload.OrderItems == nil {
		payload.OrderItems = []models.OrderItemPayload{}
	}

	var order models.Order
	if err := r.client.Post(ctx, "/orders", payload, &order, api.WithIdempotencyKey(idempotencyKey)); err != nil {
		r.logger.Error("Failed to create order",
			zap.String("user_id", payload.UserID),
			zap.String("idempotency_key", idempotencyKey),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("Order created", zap.Int64("order_id", order.ID), zap.String("user_id", payload.UserID))
	return &order, nil
}

func (r *repository) Get(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	if err := r.client.Get(ctx, fmt.Sprintf("/orders/%d", orderID), nil, &order); err != nil {
		r.logger.Error("Failed to get order", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListMine(ctx context.Context, page, limit int) (*models.Page[models.Order], error) {
	return r.list(ctx, "/orders/me", pageQuery(page, limit))
}

func (r *repository) ListAll(ctx context.Context, status enum.OrderStatus, page, limit int) (*models.Page[models.Order], error) {
	query := pageQuery(page, limit)
	if status != "" {
		query.Set("status", string(status))
	}
	return r.list(ctx, "/orders", query)
}

func (r *repository) UpdateStatus(ctx context.Context, orderID int64, status enum.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", api.ErrInvalidRequest, status)
	}

	current, err := r.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !current.AllowChangeStatus(status) {
		return nil, fmt.Errorf("%w: order %d cannot move from %s to %s", api.ErrConflict, orderID, current.Status, status)
	}

	var order models.Order
	body := map[string]enum.OrderStatus{"status": status}
	if err = r.client.Patch(ctx, fmt.Sprintf("/orders/%d/status", orderID), body, &order); err != nil {
		r.logger.Error("Failed to update order status",
			zap.Int64("order_id", orderID),
			zap.String("status", string(status)),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("Order status updated", zap.Int64("order_id", orderID), zap.String("status", string(status)))
	return &order, nil
}

func (r *repository) Cancel(ctx context.Context, orderID int64) (*models.Order, error) {
	current, err := r.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !current.CanCancel() {
		return nil, fmt.Errorf("%w: order %d is %s", api.ErrConflict, orderID, current.Status)
	}

	var order models.Order
	if err = r.client.Post(ctx, fmt.Sprintf("/orders/%d/cancel", orderID), nil, &order); err != nil {
		r.logger.Error("Failed to cancel order", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, err
	}
	return &order, nil
}

func (r *repository) list(ctx context.Context, path string, query url.Values) (*models.Page[models.Order], error) {
	var page models.Page[models.Order]
	if err := r.client.Get(ctx, path, query, &page); err != nil {
		r.logger.Error("Failed to list orders", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	if page.Items == nil {
		page.Items = []models.Order{}
	}
	return &page, nil
}

func pageQuery(page, limit int) url.Values {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
}
