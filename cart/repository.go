package cart

import (
	"context"
	"errors"
	"strings"
	"sync"

	"goflare.io/storefront/models"
)

// StorageName is the fixed name every persisted cart record is filed under.
const StorageName = "cart-storage"

const (
	guestPrefix = "guest:"
	userPrefix  = "user:"
)

var ErrNotFound = errors.New("cart not found")

var (
	_ Repository = (*memoryRepository)(nil)
	_ Repository = (*routingRepository)(nil)
)

// Repository persists whole cart aggregates keyed by owner.
type Repository interface {
	Load(ctx context.Context, owner string) (*models.Cart, error)
	Save(ctx context.Context, owner string, cart *models.Cart) error
	Delete(ctx context.Context, owner string) error
}

// GuestOwner is the owner key of an anonymous session's cart.
func GuestOwner(guestID string) string {
	return guestPrefix + guestID
}

// UserOwner is the owner key of a signed-in account's cart.
func UserOwner(userID string) string {
	return userPrefix + userID
}

func IsUserOwner(owner string) bool {
	return strings.HasPrefix(owner, userPrefix)
}

// UserIDFromOwner returns the user id embedded in a user owner key.
func UserIDFromOwner(owner string) (string, bool) {
	if !IsUserOwner(owner) {
		return "", false
	}
	return strings.TrimPrefix(owner, userPrefix), true
}

type memoryRepository struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

// NewMemoryRepository keeps carts in process memory. Records are stored encoded
// so a load always returns a value detached from what was saved.
func NewMemoryRepository() Repository {
	return &memoryRepository{carts: make(map[string][]byte)}
}

func (r *memoryRepository) Load(_ context.Context, owner string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	raw, ok := r.carts[owner]
	if !ok {
		return nil, ErrNotFound
	}
	return decode(raw)
}

func (r *memoryRepository) Save(_ context.Context, owner string, cart *models.Cart) error {
	raw, err := encode(cart)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.carts[owner] = raw
	r.mu.Unlock()

	return nil
}

func (r *memoryRepository) Delete(_ context.Context, owner string) error {
	r.mu.Lock()
	delete(r.carts, owner)
	r.mu.Unlock()
	return nil
}

type routingRepository struct {
	guests Repository
	users  Repository
}

// NewRoutingRepository files guest carts in guests and account carts in users.
func NewRoutingRepository(guests, users Repository) Repository {
	return &routingRepository{guests: guests, users: users}
}

func (r *routingRepository) pick(owner string) Repository {
	if IsUserOwner(owner) {
		return r.users
	}
	return r.guests
}

func (r *routingRepository) Load(ctx context.Context, owner string) (*models.Cart, error) {
	return r.pick(owner).Load(ctx, owner)
}

func (r *routingRepository) Save(ctx context.Context, owner string, cart *models.Cart) error {
	return r.pick(owner).Save(ctx, owner, cart)
}

func (r *routingRepository) Delete(ctx context.Context, owner string) error {
	return r.pick(owner).Delete(ctx, owner)
}
