package pkg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/appetiteclub/kitchenscreen/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/nats-io/nats.go"
)

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("kitchenscreen-publisher"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	return p.conn.Publish(topic, msg)
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// PublishOrderNotification announces an order write on the notifications topic.
func PublishOrderNotification(ctx context.Context, publisher events.Publisher, shopID int64) error {
	if publisher == nil {
		return nil
	}
	data, err := json.Marshal(event.NewOrderNotification(shopID))
	if err != nil {
		return fmt.Errorf("cannot encode order notification: %w", err)
	}
	return publisher.Publish(ctx, event.OrderNotificationsTopic, data)
}

type NATSSubscriber struct {
	conn   *nats.Conn
	logger aqm.Logger

	mu   sync.Mutex
	subs map[string][]*nats.Subscription
}

func NewNATSSubscriber(url string, logger aqm.Logger) (*NATSSubscriber, error) {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	conn, err := nats.Connect(url, nats.Name("kitchenscreen-subscriber"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSSubscriber{conn: conn, logger: logger, subs: map[string][]*nats.Subscription{}}, nil
}

func (s *NATSSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	sub, err := s.conn.Subscribe(topic, func(msg *nats.Msg) {
		if err := handler(ctx, msg.Data); err != nil {
			s.logger.Error("nats handler failed", "topic", topic, "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.subs[topic] = append(s.subs[topic], sub)
	s.mu.Unlock()
	return nil
}

// Unsubscribe drops every subscription on topic. The connection stays open.
func (s *NATSSubscriber) Unsubscribe(topic string) error {
	s.mu.Lock()
	subs := s.subs[topic]
	delete(s.subs, topic)
	s.mu.Unlock()

	var errs []error
	for _, sub := range subs {
		if err := sub.Unsubscribe(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *NATSSubscriber) Close() error {
	s.mu.Lock()
	for _, subs := range s.subs {
		for _, sub := range subs {
			_ = sub.Unsubscribe()
		}
	}
	s.subs = map[string][]*nats.Subscription{}
	s.mu.Unlock()

	s.conn.Close()
	return nil
}
