package dashboard

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/appetiteclub/kitchenscreen/pkg/lifecycle"
)

type orderCall struct {
	OrderID int64
	Action  lifecycle.Action
}

// MockGateway is a test mock for gateway.Gateway
type MockGateway struct {
	mu sync.Mutex

	FetchSnapshotFunc   func(ctx context.Context, shopID int64) (*gateway.Snapshot, error)
	TransitionOrderFunc func(ctx context.Context, orderID int64, action lifecycle.Action) error
	TransitionLineFunc  func(ctx context.Context, lineID int64) error

	fetches    int
	orderCalls []orderCall
	lineCalls  []int64
}

func (m *MockGateway) FetchSnapshot(ctx context.Context, shopID int64) (*gateway.Snapshot, error) {
	m.mu.Lock()
	m.fetches++
	m.mu.Unlock()
	if m.FetchSnapshotFunc != nil {
		return m.FetchSnapshotFunc(ctx, shopID)
	}
	return &gateway.Snapshot{}, nil
}

func (m *MockGateway) SubmitOrder(ctx context.Context, order gateway.OrderPayload) (*gateway.Confirmation, error) {
	return &gateway.Confirmation{Reference: order.Reference}, nil
}

func (m *MockGateway) TransitionOrder(ctx context.Context, orderID int64, action lifecycle.Action) error {
	m.mu.Lock()
	m.orderCalls = append(m.orderCalls, orderCall{OrderID: orderID, Action: action})
	m.mu.Unlock()
	if m.TransitionOrderFunc != nil {
		return m.TransitionOrderFunc(ctx, orderID, action)
	}
	return nil
}

func (m *MockGateway) TransitionLine(ctx context.Context, lineID int64) error {
	m.mu.Lock()
	m.lineCalls = append(m.lineCalls, lineID)
	m.mu.Unlock()
	if m.TransitionLineFunc != nil {
		return m.TransitionLineFunc(ctx, lineID)
	}
	return nil
}

func (m *MockGateway) CheckKitchenReadiness(ctx context.Context, reference string) (gateway.Readiness, error) {
	return gateway.Readiness{Kind: gateway.ReadinessClear}, nil
}

func (m *MockGateway) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

// snapshotJSON decodes a snapshot the way it arrives from the kitchen.
func snapshotJSON(t *testing.T, raw string) *gateway.Snapshot {
	t.Helper()
	var s gateway.Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("invalid snapshot fixture: %v", err)
	}
	return &s
}

// scenarioSnapshot has a draft order without status, a ready order and an
// order of another shop.
const scenarioSnapshot = `{
	"orders": [
		{"id": 1, "name": "Order 1", "shop_id": 5, "order_status": null, "lines": [11, 12]},
		{"id": 2, "name": "Order 2", "shop_id": 5, "order_status": "ready", "lines": [21]},
		{"id": 3, "name": "Order 3", "shop_id": 6, "order_status": "waiting", "lines": []}
	],
	"order_lines": [
		{"id": 11, "order_id": 1, "full_product_name": "Soup", "order_status": false},
		{"id": 12, "order_id": 1, "full_product_name": "Bread", "order_status": "waiting"},
		{"id": 21, "order_id": 2, "full_product_name": "Cake", "order_status": "ready"},
		{"id": 99, "order_id": 42, "full_product_name": "Orphan", "order_status": "ready"}
	]
}`

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *recordingNotifier) Notify(ctx context.Context, notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) all() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.notices...)
}
