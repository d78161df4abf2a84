package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/appetiteclub/kitchenscreen/pkg/lifecycle"
	"github.com/shopspring/decimal"
)

// MockGateway is a test mock for gateway.Gateway
type MockGateway struct {
	mu sync.Mutex

	SubmitOrderFunc           func(ctx context.Context, order gateway.OrderPayload) (*gateway.Confirmation, error)
	CheckKitchenReadinessFunc func(ctx context.Context, reference string) (gateway.Readiness, error)

	submitted []gateway.OrderPayload
	checked   []string
}

func (m *MockGateway) FetchSnapshot(ctx context.Context, shopID int64) (*gateway.Snapshot, error) {
	return &gateway.Snapshot{}, nil
}

func (m *MockGateway) SubmitOrder(ctx context.Context, order gateway.OrderPayload) (*gateway.Confirmation, error) {
	m.mu.Lock()
	m.submitted = append(m.submitted, order)
	m.mu.Unlock()
	if m.SubmitOrderFunc != nil {
		return m.SubmitOrderFunc(ctx, order)
	}
	return &gateway.Confirmation{Reference: order.Reference}, nil
}

func (m *MockGateway) TransitionOrder(ctx context.Context, orderID int64, action lifecycle.Action) error {
	return nil
}

func (m *MockGateway) TransitionLine(ctx context.Context, lineID int64) error {
	return nil
}

func (m *MockGateway) CheckKitchenReadiness(ctx context.Context, reference string) (gateway.Readiness, error) {
	m.mu.Lock()
	m.checked = append(m.checked, reference)
	m.mu.Unlock()
	if m.CheckKitchenReadinessFunc != nil {
		return m.CheckKitchenReadinessFunc(ctx, reference)
	}
	return gateway.Readiness{Kind: gateway.ReadinessClear}, nil
}

func (m *MockGateway) submissions() []gateway.OrderPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]gateway.OrderPayload(nil), m.submitted...)
}

// MockShopBinder records terminal bindings.
type MockShopBinder struct {
	SaveShopFunc func(ctx context.Context, terminalID string, shopID int64) error
	saved        map[string]int64
}

func (m *MockShopBinder) SaveShop(ctx context.Context, terminalID string, shopID int64) error {
	if m.SaveShopFunc != nil {
		return m.SaveShopFunc(ctx, terminalID, shopID)
	}
	if m.saved == nil {
		m.saved = make(map[string]int64)
	}
	m.saved[terminalID] = shopID
	return nil
}

func fixedClock() time.Time {
	return time.Date(2025, 1, 10, 13, 45, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func soupLine() CartLine {
	return CartLine{
		Qty:     dec("2"),
		Price:   dec("6.50"),
		Untaxed: dec("13.00"),
		Taxed:   dec("14.30"),
		Product: Product{ID: 10, Name: "Tomato Soup", Categories: []gateway.Category{{ID: 1, Name: "Food"}}},
		Taxes:   []int64{3},
		Comment: "no croutons",
	}
}

func lemonadeLine() CartLine {
	return CartLine{
		Qty:     dec("1"),
		Price:   dec("3.00"),
		Untaxed: dec("3.00"),
		Taxed:   dec("3.30"),
		Product: Product{ID: 20, Name: "Lemonade", Categories: []gateway.Category{{ID: 2, Name: "Drinks"}}},
		Taxes:   []int64{3},
	}
}

func twoLineCart() *Cart {
	return &Cart{
		Name:  "Order 00042-001-0001",
		Items: []CartLine{soupLine(), lemonadeLine()},
		Total: dec("17.60"),
		Tax:   dec("1.60"),
		Table: 4,
	}
}

func restaurantTerminal() Terminal {
	return Terminal{
		ID:           "pos-1",
		CompanyID:    1,
		SessionID:    7,
		ShopID:       5,
		TableService: true,
		Floors: []Floor{
			{ID: 1, Name: "Main Floor", Tables: []Table{{ID: 1, Name: "T1"}, {ID: 2, Name: "T2"}}},
			{ID: 2, Name: "Patio", Tables: []Table{{ID: 4, Name: "P1"}}},
		},
	}
}
