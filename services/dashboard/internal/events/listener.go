package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/appetiteclub/kitchenscreen/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
)

// Refresher pulls a fresh kitchen snapshot.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Unsubscriber is implemented by subscribers that can release a topic
// without closing their connection.
type Unsubscriber interface {
	Unsubscribe(topic string) error
}

// OrderListener refreshes the dashboard when the kitchen announces an order write.
type OrderListener struct {
	subscriber events.Subscriber
	refresher  Refresher
	logger     aqm.Logger
	active     atomic.Bool
}

func NewOrderListener(subscriber events.Subscriber, refresher Refresher, logger aqm.Logger) *OrderListener {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &OrderListener{
		subscriber: subscriber,
		refresher:  refresher,
		logger:     logger,
	}
}

func (l *OrderListener) Start(ctx context.Context) error {
	if l.subscriber == nil {
		l.logger.Info("No subscriber configured, order notifications disabled")
		return nil
	}

	l.logger.Info("Starting OrderListener for topic: " + event.OrderNotificationsTopic)
	l.active.Store(true)

	if err := l.subscriber.Subscribe(ctx, event.OrderNotificationsTopic, l.handleEvent); err != nil {
		l.active.Store(false)
		return fmt.Errorf("failed to subscribe to %s: %w", event.OrderNotificationsTopic, err)
	}

	l.logger.Info("OrderListener started successfully")
	return nil
}

// Stop releases the subscription. Notifications already in flight are ignored.
func (l *OrderListener) Stop(ctx context.Context) error {
	if !l.active.Swap(false) {
		return nil
	}

	u, ok := l.subscriber.(Unsubscriber)
	if !ok {
		return nil
	}
	if err := u.Unsubscribe(event.OrderNotificationsTopic); err != nil {
		return fmt.Errorf("failed to unsubscribe from %s: %w", event.OrderNotificationsTopic, err)
	}
	l.logger.Info("OrderListener stopped")
	return nil
}

func (l *OrderListener) handleEvent(ctx context.Context, msg []byte) error {
	if !l.active.Load() {
		return nil
	}

	var n event.OrderNotification
	if err := json.Unmarshal(msg, &n); err != nil {
		l.logger.Errorf("Failed to unmarshal notification: %v", err)
		return nil
	}

	if !n.IsOrderCreated() {
		return nil
	}

	l.logger.Debug("order notification received", "shop_id", n.ShopID)
	if err := l.refresher.Refresh(ctx); err != nil {
		l.logger.Debug("refresh after notification failed", "error", err)
	}
	return nil
}
