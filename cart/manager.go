package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
)

// Notifier publishes cart changes to other instances.
type Notifier interface {
	Publish(ctx context.Context, event *models.CartEvent) error
}

type ManagerOption func(*Manager)

func WithNotifier(n Notifier) ManagerOption {
	return func(m *Manager) {
		m.notifier = n
	}
}

func WithLogoutPolicy(p enum.LogoutPolicy) ManagerOption {
	return func(m *Manager) {
		m.policy = p
	}
}

// WithIdleTimeout evicts stores that have not been touched for d. Zero keeps
// them for the life of the manager.
func WithIdleTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.idleTimeout = d
	}
}

func withClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager owns every live Store of the process, keyed by owner.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store

	repo        Repository
	notifier    Notifier
	policy      enum.LogoutPolicy
	idleTimeout time.Duration
	origin      string
	now         func() time.Time
	logger      *zap.Logger

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewManager(repo Repository, logger *zap.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		stores: make(map[string]*Store),
		repo:   repo,
		policy: enum.LogoutPolicyKeep,
		origin: uuid.NewString(),
		now:    time.Now,
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.idleTimeout > 0 {
		go m.janitor()
	} else {
		close(m.done)
	}

	return m
}

// Origin identifies this manager in the events it publishes.
func (m *Manager) Origin() string {
	return m.origin
}

func (m *Manager) LogoutPolicy() enum.LogoutPolicy {
	return m.policy
}

// Open returns the live store for owner, loading it from the repository on
// first use. An owner without a stored cart starts empty. When the repository
// cannot be read the store also starts empty and stays dirty; its next write
// reads the stored record again and merges it in.
func (m *Manager) Open(ctx context.Context, owner string) (*Store, error) {
	m.mu.Lock()
	if s, ok := m.stores[owner]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	initial, err := m.load(ctx, owner)
	unloaded := err != nil
	if unloaded {
		m.logger.Warn("Failed to load cart, starting from an empty one",
			zap.String("owner", owner),
			zap.Error(err))
		initial = models.NewCart()
	}
	if userID, ok := UserIDFromOwner(owner); ok && initial.UserID == "" {
		initial.UserID = userID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// another request may have loaded it meanwhile
	if s, ok := m.stores[owner]; ok {
		return s, nil
	}

	s := newStore(owner, initial, m.repo, m.logger, m.now, m.publish)
	if unloaded {
		s.markUnloaded()
	}
	m.stores[owner] = s
	return s, nil
}

// Login moves the guest cart into the account cart of userID. Items present in
// both are summed; the account's address and promotion win over the guest's.
// The guest record is deleted only after the merged cart has been saved; if
// the save fails it is deleted by the store's next successful write.
func (m *Manager) Login(ctx context.Context, guestOwner, userID string) (*Store, error) {
	userStore, err := m.Open(ctx, UserOwner(userID))
	if err != nil {
		return nil, err
	}

	guest, err := m.peek(ctx, guestOwner)
	merged := guestOwner != "" && err == nil
	if err != nil {
		// the guest record stays for a later session to pick up
		m.logger.Warn("Failed to read guest cart, skipping merge",
			zap.String("guest", guestOwner),
			zap.Error(err))
	}

	_, err = userStore.apply(ctx, enum.CartEventTypeMerged, func(c *models.Cart) *models.Cart {
		return SetUser(Merge(c, guest), userID)
	})

	if merged {
		m.forget(guestOwner)
		if err != nil {
			userStore.retireOnSave(guestOwner)
		} else {
			m.deleteMerged(ctx, guestOwner)
		}
	}

	m.logger.Info("Guest cart merged into account cart",
		zap.String("guest", guestOwner),
		zap.String("user_id", userID),
		zap.Int("total_items", userStore.GetTotalItems()),
		zap.Bool("saved", err == nil))

	return userStore, nil
}

func (m *Manager) deleteMerged(ctx context.Context, owner string) {
	if err := m.repo.Delete(ctx, owner); err != nil && !errors.Is(err, ErrNotFound) {
		m.logger.Warn("Failed to delete merged guest cart", zap.String("owner", owner), zap.Error(err))
		return
	}
	m.publish(ctx, owner, enum.CartEventTypeDeleted)
}

// Logout applies the configured logout policy to the account cart of userID
// and releases it from memory.
func (m *Manager) Logout(ctx context.Context, userID string) error {
	owner := UserOwner(userID)

	if m.policy == enum.LogoutPolicyClear {
		s, err := m.Open(ctx, owner)
		if err != nil {
			return err
		}
		s.ClearCart(ctx)
	}

	m.mu.Lock()
	s, ok := m.stores[owner]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	if err := s.Flush(ctx); err != nil {
		// still dirty, leave it for the janitor or Close
		return nil
	}
	m.forget(owner)
	return nil
}

// Invalidate drops the cached store of owner so the next Open reloads it. A
// dirty store is flushed first and kept if the flush fails.
func (m *Manager) Invalidate(ctx context.Context, owner string) {
	m.mu.Lock()
	s, ok := m.stores[owner]
	m.mu.Unlock()
	if !ok {
		return
	}

	if err := s.Flush(ctx); err != nil {
		m.logger.Warn("Keeping unsaved cart after remote change",
			zap.String("owner", owner),
			zap.Error(err))
		return
	}

	m.mu.Lock()
	if cur, ok := m.stores[owner]; ok && cur == s {
		delete(m.stores, owner)
	}
	m.mu.Unlock()

	m.logger.Debug("Cart invalidated", zap.String("owner", owner))
}

// Len is the number of live stores.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

// Close stops the janitor and flushes every dirty store.
func (m *Manager) Close(ctx context.Context) error {
	m.closeOnce.Do(func() {
		close(m.stop)
	})
	<-m.done

	m.mu.Lock()
	stores := make([]*Store, 0, len(m.stores))
	for _, s := range m.stores {
		stores = append(stores, s)
	}
	m.mu.Unlock()

	var errs []error
	for _, s := range stores {
		if err := s.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to flush cart %s: %w", s.Owner(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) load(ctx context.Context, owner string) (*models.Cart, error) {
	c, err := m.repo.Load(ctx, owner)
	if errors.Is(err, ErrNotFound) {
		return models.NewCart(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return c, nil
}

// peek reads a cart without caching a store for it.
func (m *Manager) peek(ctx context.Context, owner string) (*models.Cart, error) {
	if owner == "" {
		return nil, nil
	}

	m.mu.Lock()
	s, ok := m.stores[owner]
	m.mu.Unlock()
	if ok {
		return s.Snapshot(), nil
	}

	return m.load(ctx, owner)
}

func (m *Manager) forget(owner string) {
	m.mu.Lock()
	delete(m.stores, owner)
	m.mu.Unlock()
}

func (m *Manager) publish(ctx context.Context, owner string, eventType enum.CartEventType) {
	if m.notifier == nil {
		return
	}

	event := &models.CartEvent{
		ID:         uuid.NewString(),
		Origin:     m.origin,
		Owner:      owner,
		Type:       eventType,
		OccurredAt: m.now().UTC(),
	}
	if err := m.notifier.Publish(ctx, event); err != nil {
		m.logger.Warn("Failed to publish cart event",
			zap.String("owner", owner),
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}

func (m *Manager) janitor() {
	defer close(m.done)

	interval := m.idleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			m.evictIdle(ctx)
			cancel()
		}
	}
}

// evictIdle releases stores idle for longer than the idle timeout. A dirty store
// is flushed first and kept if the flush fails.
func (m *Manager) evictIdle(ctx context.Context) int {
	now := m.now()

	m.mu.Lock()
	idle := make([]*Store, 0)
	for _, s := range m.stores {
		if s.idleSince(now) >= m.idleTimeout {
			idle = append(idle, s)
		}
	}
	m.mu.Unlock()

	evicted := 0
	for _, s := range idle {
		if err := s.Flush(ctx); err != nil {
			continue
		}

		m.mu.Lock()
		// a request may have touched it after the scan
		if cur, ok := m.stores[s.Owner()]; ok && cur == s && s.idleSince(now) >= m.idleTimeout {
			delete(m.stores, s.Owner())
			evicted++
		}
		m.mu.Unlock()
	}

	if evicted > 0 {
		m.logger.Debug("Evicted idle carts", zap.Int("count", evicted))
	}
	return evicted
}
