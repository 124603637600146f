package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix  = "cart-event:"
	DefaultTTL = 10 * time.Minute
)

var _ Repository = (*repository)(nil)

// Repository remembers which cart events were already handled.
type Repository interface {
	// MarkAsProcessed records id and reports whether this call was the first to do so.
	MarkAsProcessed(ctx context.Context, id string) (bool, error)
	IsProcessed(ctx context.Context, id string) (bool, error)
}

type repository struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

func NewRepository(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) Repository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &repository{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *repository) MarkAsProcessed(ctx context.Context, id string) (bool, error) {
	first, err := r.client.SetNX(ctx, keyPrefix+id, time.Now().UTC().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event %s as processed: %w", id, err)
	}
	return first, nil
}

func (r *repository) IsProcessed(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, keyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check event %s: %w", id, err)
	}
	return n > 0, nil
}

type memoryRepository struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	processed map[string]time.Time
}

// NewMemoryRepository de-duplicates within one process only.
func NewMemoryRepository(ttl time.Duration) Repository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryRepository{
		ttl:       ttl,
		now:       time.Now,
		processed: make(map[string]time.Time),
	}
}

func (r *memoryRepository) MarkAsProcessed(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for key, expires := range r.processed {
		if now.After(expires) {
			delete(r.processed, key)
		}
	}

	if _, ok := r.processed[id]; ok {
		return false, nil
	}
	r.processed[id] = now.Add(r.ttl)
	return true, nil
}

func (r *memoryRepository) IsProcessed(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expires, ok := r.processed[id]
	return ok && !r.now().After(expires), nil
}
