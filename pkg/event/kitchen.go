package event

import "time"

const (
	// OrderNotificationsTopic is the channel the kitchen backend announces order writes on.
	OrderNotificationsTopic = "pos_order_created"

	MessageOrderCreated = "order_created"
	ResourceOrder       = "order"
)

// OrderNotification is a hint that kitchen orders changed. It carries no order
// data; listeners are expected to pull a fresh snapshot.
type OrderNotification struct {
	Message    string    `json:"message"`
	Resource   string    `json:"resource"`
	ShopID     int64     `json:"shop_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewOrderNotification builds the notification published after an order write.
func NewOrderNotification(shopID int64) OrderNotification {
	return OrderNotification{
		Message:    MessageOrderCreated,
		Resource:   ResourceOrder,
		ShopID:     shopID,
		OccurredAt: time.Now().UTC(),
	}
}

// IsOrderCreated reports whether the notification should trigger a refresh.
func (n OrderNotification) IsOrderCreated() bool {
	return n.Message == MessageOrderCreated && n.Resource == ResourceOrder
}
