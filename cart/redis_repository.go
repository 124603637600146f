package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"goflare.io/storefront/models"
)

var _ Repository = (*redisRepository)(nil)

type redisRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisRepository stores each cart as one JSON value under
// "cart-storage:<owner>". A positive ttl expires carts that stop being touched;
// every save refreshes it.
func NewRedisRepository(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) Repository {
	return &redisRepository{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func storageKey(owner string) string {
	return fmt.Sprintf("%s:%s", StorageName, owner)
}

func (r *redisRepository) Load(ctx context.Context, owner string) (*models.Cart, error) {
	raw, err := r.client.Get(ctx, storageKey(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to load cart from redis", zap.String("owner", owner), zap.Error(err))
		return nil, err
	}

	c, err := decode(raw)
	if err != nil {
		r.logger.Warn("Discarding unreadable cart record", zap.String("owner", owner), zap.Error(err))
		return nil, ErrNotFound
	}
	return c, nil
}

func (r *redisRepository) Save(ctx context.Context, owner string, cart *models.Cart) error {
	raw, err := encode(cart)
	if err != nil {
		return err
	}

	if err = r.client.Set(ctx, storageKey(owner), raw, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save cart to redis", zap.String("owner", owner), zap.Error(err))
		return err
	}
	return nil
}

func (r *redisRepository) Delete(ctx context.Context, owner string) error {
	if err := r.client.Del(ctx, storageKey(owner)).Err(); err != nil {
		r.logger.Error("Failed to delete cart from redis", zap.String("owner", owner), zap.Error(err))
		return err
	}
	return nil
}
