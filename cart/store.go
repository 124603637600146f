package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
)

type changeFunc func(ctx context.Context, owner string, eventType enum.CartEventType)

// Store holds the live cart of one owner. Every mutation is applied in memory
// first and then written through to the repository. When the write fails the
// in-memory cart stays authoritative and the store is retried on the next
// mutation or Flush.
type Store struct {
	mu       sync.Mutex
	owner    string
	cart     *models.Cart
	dirty    bool
	lastUsed time.Time

	// unloaded is set when the stored record could not be read. The next
	// write reads it again and folds it in rather than overwriting it.
	unloaded bool
	// retire lists owners whose records are deleted after the next save.
	retire []string

	repo     Repository
	logger   *zap.Logger
	now      func() time.Time
	onChange changeFunc
}

// NewStore wraps initial (nil means empty) for owner. initial is copied.
func NewStore(owner string, initial *models.Cart, repo Repository, logger *zap.Logger) *Store {
	return newStore(owner, initial, repo, logger, time.Now, nil)
}

func newStore(owner string, initial *models.Cart, repo Repository, logger *zap.Logger, now func() time.Time, onChange changeFunc) *Store {
	return &Store{
		owner:    owner,
		cart:     Normalize(initial),
		lastUsed: now(),
		repo:     repo,
		logger:   logger,
		now:      now,
		onChange: onChange,
	}
}

func (s *Store) Owner() string {
	return s.owner
}

// AddItem adds item.Quantity units of item.VariantID and returns the new cart.
func (s *Store) AddItem(ctx context.Context, item models.CartItem) *models.Cart {
	return s.mutate(ctx, enum.CartEventTypeUpdated, func(c *models.Cart) *models.Cart {
		return AddItem(c, item)
	})
}

// RemoveItem drops variantID from the cart.
func (s *Store) RemoveItem(ctx context.Context, variantID int64) *models.Cart {
	return s.mutate(ctx, enum.CartEventTypeUpdated, func(c *models.Cart) *models.Cart {
		return RemoveItem(c, variantID)
	})
}

// UpdateQuantity sets the quantity of variantID; quantity <= 0 removes it.
func (s *Store) UpdateQuantity(ctx context.Context, variantID int64, quantity int) *models.Cart {
	return s.mutate(ctx, enum.CartEventTypeUpdated, func(c *models.Cart) *models.Cart {
		return UpdateQuantity(c, variantID, quantity)
	})
}

// ClearCart empties the cart and resets its checkout options.
func (s *Store) ClearCart(ctx context.Context) *models.Cart {
	return s.mutate(ctx, enum.CartEventTypeCleared, Clear)
}

// SetAddress sets the delivery address; nil unsets it.
func (s *Store) SetAddress(ctx context.Context, addressID *int64) *models.Cart {
	return s.mutate(ctx, enum.CartEventTypeUpdated, func(c *models.Cart) *models.Cart {
		return SetAddress(c, addressID)
	})
}

// SetPromotion sets the promotion; nil unsets it.
func (s *Store) SetPromotion(ctx context.Context, promotionID *int64) *models.Cart {
	return s.mutate(ctx, enum.CartEventTypeUpdated, func(c *models.Cart) *models.Cart {
		return SetPromotion(c, promotionID)
	})
}

// SetCheckoutOptions sets address and promotion with a single write.
func (s *Store) SetCheckoutOptions(ctx context.Context, addressID, promotionID *int64) *models.Cart {
	return s.mutate(ctx, enum.CartEventTypeUpdated, func(c *models.Cart) *models.Cart {
		return SetPromotion(SetAddress(c, addressID), promotionID)
	})
}

// RemoveOrdered takes the lines of a placed order out of the cart.
func (s *Store) RemoveOrdered(ctx context.Context, ordered []models.OrderItemPayload) *models.Cart {
	return s.mutate(ctx, enum.CartEventTypeUpdated, func(c *models.Cart) *models.Cart {
		return RemoveOrdered(c, ordered)
	})
}

// GetTotalItems is the sum of all quantities in the cart.
func (s *Store) GetTotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalItems(s.cart)
}

// GetOrderPayload projects the cart into the create-order body.
func (s *Store) GetOrderPayload() models.OrderPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return OrderPayload(s.cart)
}

// GetOrderItems projects the items into order lines.
func (s *Store) GetOrderItems() []models.OrderItemPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return OrderItems(s.cart)
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() *models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Dirty reports whether the cart holds changes the repository has not stored.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Flush retries a failed write. It is a no-op for a clean store.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	return s.persistLocked(ctx)
}

func (s *Store) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastUsed)
}

// retireOnSave deletes the record of owner once this cart has been saved.
func (s *Store) retireOnSave(owner string) {
	s.mu.Lock()
	s.retire = append(s.retire, owner)
	s.mu.Unlock()
}

func (s *Store) markUnloaded() {
	s.mu.Lock()
	s.unloaded = true
	s.dirty = true
	s.mu.Unlock()
}

func (s *Store) mutate(ctx context.Context, eventType enum.CartEventType, transition func(*models.Cart) *models.Cart) *models.Cart {
	c, _ := s.apply(ctx, eventType, transition)
	return c
}

// apply runs transition and writes the result through. The cart is returned
// even when the write fails; the error only reports that the store is dirty.
func (s *Store) apply(ctx context.Context, eventType enum.CartEventType, transition func(*models.Cart) *models.Cart) (*models.Cart, error) {
	s.mu.Lock()
	s.cart = transition(s.cart)
	s.lastUsed = s.now()
	err := s.persistLocked(ctx)
	snapshot := s.cart.Clone()
	s.mu.Unlock()

	if err == nil && s.onChange != nil {
		s.onChange(ctx, s.owner, eventType)
	}
	return snapshot, err
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.unloaded {
		if err := s.reloadLocked(ctx); err != nil {
			s.dirty = true
			s.logger.Warn("Failed to read stored cart, keeping in-memory state",
				zap.String("owner", s.owner),
				zap.Error(err))
			return err
		}
	}

	if err := s.repo.Save(ctx, s.owner, s.cart); err != nil {
		s.dirty = true
		s.logger.Warn("Failed to persist cart, keeping in-memory state",
			zap.String("owner", s.owner),
			zap.Error(err))
		return err
	}
	s.dirty = false

	for _, owner := range s.retire {
		if err := s.repo.Delete(ctx, owner); err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.Warn("Failed to delete merged cart", zap.String("owner", owner), zap.Error(err))
		}
	}
	s.retire = nil
	return nil
}

// reloadLocked folds the stored record into a cart that was started without it.
func (s *Store) reloadLocked(ctx context.Context) error {
	stored, err := s.repo.Load(ctx, s.owner)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return err
	default:
		s.cart = Merge(s.cart, Normalize(stored))
	}
	s.unloaded = false
	return nil
}
