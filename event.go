package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"goflare.io/storefront/cart"
	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
)

const (
	subjectPrefix = "storefront.cart."
	subjectAll    = subjectPrefix + ">"
)

var _ cart.Notifier = (*EventManager)(nil)

// EventProcessor handles a cart event received from another instance.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, event *models.CartEvent) error
}

// EventManager carries cart change events between instances over NATS. With a
// nil connection it publishes nothing and subscribes to nothing.
type EventManager struct {
	natsConn *nats.Conn
	logger   *zap.Logger

	mu           sync.Mutex
	subscription *nats.Subscription
}

func NewEventManager(natsConn *nats.Conn, logger *zap.Logger) *EventManager {
	return &EventManager{
		natsConn: natsConn,
		logger:   logger,
	}
}

func Subject(eventType enum.CartEventType) string {
	return subjectPrefix + string(eventType)
}

func (em *EventManager) Publish(_ context.Context, event *models.CartEvent) error {
	if em.natsConn == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal cart event: %w", err)
	}
	if err = em.natsConn.Publish(Subject(event.Type), data); err != nil {
		return fmt.Errorf("failed to publish cart event: %w", err)
	}
	return nil
}

func (em *EventManager) SubscribeToEvents(wp *WorkerPool) error {
	if em.natsConn == nil {
		return nil
	}

	sub, err := em.natsConn.Subscribe(subjectAll, em.handle(wp))
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subjectAll, err)
	}

	em.mu.Lock()
	em.subscription = sub
	em.mu.Unlock()

	em.logger.Info("Subscribed to cart events", zap.String("subject", subjectAll))
	return nil
}

func (em *EventManager) handle(wp *WorkerPool) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var event models.CartEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			em.logger.Error("Failed to unmarshal event", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		if event.ID == "" || event.Owner == "" {
			em.logger.Warn("Dropping incomplete cart event", zap.String("subject", msg.Subject))
			return
		}

		wp.Submit(context.Background(), &event)
	}
}

// Close drains the subscription so in-flight messages still reach the pool.
func (em *EventManager) Close() error {
	em.mu.Lock()
	sub := em.subscription
	em.subscription = nil
	em.mu.Unlock()

	if sub == nil {
		return nil
	}
	return sub.Drain()
}

// ProcessEvent reloads the local copy of a cart another instance changed.
// Events are de-duplicated per instance, so every instance still sees each
// event once.
func (s *service) ProcessEvent(ctx context.Context, event *models.CartEvent) error {
	origin := s.carts.Origin()
	if event.Origin == origin {
		return nil
	}

	first, err := s.event.MarkAsProcessed(ctx, origin+":"+event.ID)
	if err != nil {
		// invalidating twice is harmless
		s.logger.Warn("Failed to de-duplicate cart event", zap.String("event_id", event.ID), zap.Error(err))
		first = true
	}
	if !first {
		return nil
	}

	s.carts.Invalidate(ctx, event.Owner)
	return nil
}
