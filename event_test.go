package storefront

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goflare.io/storefront/cart"
	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
)

type recordingProcessor struct {
	mu     sync.Mutex
	events []*models.CartEvent
	block  chan struct{}
}

func (p *recordingProcessor) ProcessEvent(_ context.Context, event *models.CartEvent) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "storefront.cart.merged", Subject(enum.CartEventTypeMerged))
}

func TestEventManager_WithoutConnection(t *testing.T) {
	em := NewEventManager(nil, zap.NewNop())

	assert.NoError(t, em.Publish(context.Background(), &models.CartEvent{ID: "e1", Type: enum.CartEventTypeUpdated}))
	assert.NoError(t, em.SubscribeToEvents(NewWorkerPool(1, &recordingProcessor{}, zap.NewNop())))
	assert.NoError(t, em.Close())
}

func TestEventManager_Handle(t *testing.T) {
	p := &recordingProcessor{}
	wp := NewWorkerPool(2, p, zap.NewNop())
	em := NewEventManager(nil, zap.NewNop())
	handle := em.handle(wp)

	data, err := json.Marshal(models.CartEvent{ID: "e1", Origin: "other", Owner: "guest:g1", Type: enum.CartEventTypeUpdated})
	require.NoError(t, err)

	handle(&nats.Msg{Subject: Subject(enum.CartEventTypeUpdated), Data: data})
	handle(&nats.Msg{Subject: Subject(enum.CartEventTypeUpdated), Data: []byte("{not json")})
	handle(&nats.Msg{Subject: Subject(enum.CartEventTypeUpdated), Data: []byte(`{"id":"e2"}`)})

	wp.Shutdown()
	require.Equal(t, 1, p.count())
	assert.Equal(t, "guest:g1", p.events[0].Owner)
}

func TestWorkerPool(t *testing.T) {
	p := &recordingProcessor{}
	wp := NewWorkerPool(3, p, zap.NewNop())

	for i := 0; i < 50; i++ {
		assert.True(t, wp.Submit(context.Background(), &models.CartEvent{ID: "e"}))
	}

	wp.Shutdown()
	assert.Equal(t, 50, p.count())

	assert.False(t, wp.Submit(context.Background(), &models.CartEvent{ID: "late"}))
	// a second shutdown is a no-op
	wp.Shutdown()
}

func TestWorkerPool_FullQueueDrops(t *testing.T) {
	p := &recordingProcessor{block: make(chan struct{})}
	wp := NewWorkerPool(1, p, zap.NewNop())

	accepted := 0
	for i := 0; i < defaultQueueSize+10; i++ {
		if wp.Submit(context.Background(), &models.CartEvent{ID: "e"}) {
			accepted++
		}
	}
	assert.Less(t, accepted, defaultQueueSize+10)

	close(p.block)
	wp.Shutdown()
	assert.Equal(t, accepted, p.count())
}

func TestService_ProcessEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := cart.GuestOwner("g1")

	_, err := f.svc.AddToCart(ctx, owner, models.CartItem{VariantID: 10, Quantity: 1})
	require.NoError(t, err)
	require.Equal(t, 1, f.carts.Len())

	// our own event
	require.NoError(t, f.svc.ProcessEvent(ctx, &models.CartEvent{ID: "e1", Origin: f.carts.Origin(), Owner: owner}))
	assert.Equal(t, 1, f.carts.Len())

	remote := &models.CartEvent{ID: "e2", Origin: "other", Owner: owner, Type: enum.CartEventTypeUpdated, OccurredAt: time.Now()}
	require.NoError(t, f.svc.ProcessEvent(ctx, remote))
	assert.Equal(t, 0, f.carts.Len())

	// a redelivery of the same event is ignored
	_, err = f.svc.GetCart(ctx, owner)
	require.NoError(t, err)
	require.NoError(t, f.svc.ProcessEvent(ctx, remote))
	assert.Equal(t, 1, f.carts.Len())

	// the reloaded store still has the persisted items
	c, err := f.svc.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
}
