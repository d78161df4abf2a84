package kitchen

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/appetiteclub/kitchenscreen/pkg/event"
	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/appetiteclub/kitchenscreen/pkg/lifecycle"
	"github.com/aquamarinepk/aqm"
	"github.com/shopspring/decimal"
)

var (
	food   = gateway.Category{ID: 1, Name: "Food"}
	drinks = gateway.Category{ID: 2, Name: "Drinks"}
)

type serviceFixture struct {
	svc       *Service
	orders    *MockOrderRepository
	screens   *MockScreenRepository
	publisher *MockPublisher
}

func newServiceFixture(screens ...Screen) serviceFixture {
	f := serviceFixture{
		orders:    NewMockOrderRepository(),
		screens:   NewMockScreenRepository(screens...),
		publisher: NewMockPublisher(),
	}
	f.svc = NewService(f.orders, f.screens, f.publisher, aqm.NewNoopLogger())
	f.svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC) }
	return f
}

func payload(reference string, shopID int64, lines ...gateway.LineCommand) gateway.OrderPayload {
	return gateway.OrderPayload{
		Reference:   reference,
		ShopID:      shopID,
		AmountTotal: decimal.NewFromInt(10),
		Hour:        12,
		Minute:      30,
		Floor:       "Main Floor",
		Lines:       lines,
	}
}

func line(productID int64, name string, categories ...gateway.Category) gateway.LineCommand {
	return gateway.CreateLine(gateway.LineFields{
		ProductID:   productID,
		DisplayName: name,
		Quantity:    decimal.NewFromInt(1),
		Categories:  categories,
	})
}

func TestServiceDetailsCreatesOrder(t *testing.T) {
	f := newServiceFixture(Screen{ShopID: 1})

	snapshot, err := f.svc.Details(context.Background(), 1, []gateway.OrderPayload{
		payload("Order 1", 1, line(10, "Soup", food), line(11, "Pasta", food)),
	})
	if err != nil {
		t.Fatalf("Details() error = %v", err)
	}

	if len(snapshot.Orders) != 1 || len(snapshot.Lines) != 2 {
		t.Fatalf("snapshot = %d orders / %d lines, want 1/2", len(snapshot.Orders), len(snapshot.Lines))
	}
	order := snapshot.Orders[0]
	if order.Reference != "Order 1" || order.Status != "draft" || len(order.LineIDs) != 2 {
		t.Errorf("order record = %+v", order)
	}
	for _, l := range snapshot.Lines {
		if l.Status != "draft" || !l.IsCooking || l.OrderID != order.ID {
			t.Errorf("line record = %+v", l)
		}
	}

	if len(f.publisher.PublishedEvents) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.publisher.PublishedEvents))
	}
	published := f.publisher.PublishedEvents[0]
	if published.Topic != event.OrderNotificationsTopic {
		t.Errorf("topic = %q", published.Topic)
	}
	var n event.OrderNotification
	if err := json.Unmarshal(published.Data, &n); err != nil {
		t.Fatalf("notification payload: %v", err)
	}
	if !n.IsOrderCreated() || n.ShopID != 1 {
		t.Errorf("notification = %+v", n)
	}
}

func TestServiceDetailsDuplicateReferenceAppendsLines(t *testing.T) {
	f := newServiceFixture(Screen{ShopID: 1})
	ctx := context.Background()
	id := f.orders.AddOrder(Order{Reference: "Order 1", ShopID: 1, Status: "ready", IsCooking: true, Hour: 9, Floor: "Old"},
		OrderLine{ProductName: "Soup", Status: "ready", IsCooking: true})

	p := payload("Order 1", 1, line(12, "Cake"))
	p.Hour, p.Minute, p.Floor = 13, 45, "Terrace"
	if _, err := f.svc.Details(ctx, 1, []gateway.OrderPayload{p}); err != nil {
		t.Fatalf("Details() error = %v", err)
	}

	if len(f.orders.orders) != 1 {
		t.Fatalf("expected the order to be reused, got %d orders", len(f.orders.orders))
	}
	order, _ := f.orders.FindOrder(ctx, id)
	if order.Status != "draft" || order.Hour != 13 || order.Minute != 45 || order.Floor != "Terrace" {
		t.Errorf("order = %+v, want refreshed draft", order)
	}

	lines := f.orders.linesOf(id)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0].Status != "ready" || lines[1].Status != "draft" {
		t.Errorf("line statuses = %q, %q", lines[0].Status, lines[1].Status)
	}
}

func TestServiceDetailsDuplicateReferenceKeepsCookingAndCancelled(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		wantStatus string
		wantLines  int
		wantErr    error
	}{
		{name: "draft stays draft", status: "draft", wantStatus: "draft", wantLines: 2},
		{name: "missing status becomes draft", status: "", wantStatus: "draft", wantLines: 2},
		{name: "ready goes back to draft", status: "ready", wantStatus: "draft", wantLines: 2},
		{name: "cooking stays cooking", status: "waiting", wantStatus: "waiting", wantLines: 2},
		{name: "cancelled is rejected", status: "cancel", wantStatus: "cancel", wantLines: 1, wantErr: ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(Screen{ShopID: 5})
			ctx := context.Background()
			id := f.orders.AddOrder(Order{Reference: "R-1", ShopID: 5, Status: tt.status, IsCooking: true, Hour: 9},
				OrderLine{ProductName: "Soup", Status: "waiting", IsCooking: true})

			_, err := f.svc.Details(ctx, 5, []gateway.OrderPayload{payload("R-1", 5, line(12, "Cake"))})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Details() error = %v, want %v", err, tt.wantErr)
			}

			order, _ := f.orders.FindOrder(ctx, id)
			if order.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", order.Status, tt.wantStatus)
			}
			if got := len(f.orders.linesOf(id)); got != tt.wantLines {
				t.Errorf("lines = %d, want %d", got, tt.wantLines)
			}
			if tt.wantErr != nil {
				if order.Hour != 9 {
					t.Errorf("hour = %d, want the rejected order untouched", order.Hour)
				}
				if len(f.publisher.PublishedEvents) != 0 {
					t.Errorf("published %d events for a rejected order", len(f.publisher.PublishedEvents))
				}
			}
		})
	}
}

func TestServiceDetailsMissingReference(t *testing.T) {
	f := newServiceFixture(Screen{ShopID: 1})

	_, err := f.svc.Details(context.Background(), 1, []gateway.OrderPayload{{ShopID: 1}})
	if !errors.Is(err, ErrMissingReference) {
		t.Errorf("error = %v, want ErrMissingReference", err)
	}
}

func TestServiceSnapshot(t *testing.T) {
	tests := []struct {
		name       string
		screens    []Screen
		setup      func(*MockOrderRepository)
		shopID     int64
		wantOrders int
		wantLines  int
	}{
		{
			name:   "noScreen",
			shopID: 1,
			setup: func(m *MockOrderRepository) {
				m.AddOrder(Order{Reference: "A", ShopID: 1, IsCooking: true}, OrderLine{IsCooking: true})
			},
		},
		{
			name:    "otherShopAndNotCookingExcluded",
			screens: []Screen{{ShopID: 1}},
			shopID:  1,
			setup: func(m *MockOrderRepository) {
				m.AddOrder(Order{Reference: "A", ShopID: 1, IsCooking: true}, OrderLine{IsCooking: true}, OrderLine{IsCooking: false})
				m.AddOrder(Order{Reference: "B", ShopID: 2, IsCooking: true}, OrderLine{IsCooking: true})
				m.AddOrder(Order{Reference: "C", ShopID: 1, IsCooking: false}, OrderLine{IsCooking: true})
			},
			wantOrders: 1,
			wantLines:  1,
		},
		{
			name:    "categoryFiltering",
			screens: []Screen{{ShopID: 1, CategoryIDs: []int64{food.ID}}},
			shopID:  1,
			setup: func(m *MockOrderRepository) {
				m.AddOrder(Order{Reference: "A", ShopID: 1, IsCooking: true},
					OrderLine{IsCooking: true, Categories: []gateway.Category{food}},
					OrderLine{IsCooking: true, Categories: []gateway.Category{drinks}},
					OrderLine{IsCooking: true},
				)
			},
			wantOrders: 1,
			wantLines:  2,
		},
		{
			name:    "noCategoriesShowsAll",
			screens: []Screen{{ShopID: 1}},
			shopID:  1,
			setup: func(m *MockOrderRepository) {
				m.AddOrder(Order{Reference: "A", ShopID: 1, IsCooking: true},
					OrderLine{IsCooking: true, Categories: []gateway.Category{food}},
					OrderLine{IsCooking: true, Categories: []gateway.Category{drinks}},
				)
			},
			wantOrders: 1,
			wantLines:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(tt.screens...)
			tt.setup(f.orders)

			snapshot, err := f.svc.Snapshot(context.Background(), tt.shopID)
			if err != nil {
				t.Fatalf("Snapshot() error = %v", err)
			}
			if snapshot.Orders == nil || snapshot.Lines == nil {
				t.Fatalf("snapshot lists must never be nil")
			}
			if len(snapshot.Orders) != tt.wantOrders || len(snapshot.Lines) != tt.wantLines {
				t.Errorf("snapshot = %d orders / %d lines, want %d/%d",
					len(snapshot.Orders), len(snapshot.Lines), tt.wantOrders, tt.wantLines)
			}
		})
	}
}

func TestServiceSnapshotNormalizesMissingStatus(t *testing.T) {
	f := newServiceFixture(Screen{ShopID: 1})
	f.orders.AddOrder(Order{Reference: "A", ShopID: 1, IsCooking: true}, OrderLine{IsCooking: true})

	snapshot, err := f.svc.Snapshot(context.Background(), 1)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snapshot.Orders[0].Status != "draft" || snapshot.Lines[0].Status != "draft" {
		t.Errorf("statuses = %q/%q, want draft/draft", snapshot.Orders[0].Status, snapshot.Lines[0].Status)
	}
}

func TestServiceTransition(t *testing.T) {
	tests := []struct {
		name         string
		orderStatus  string
		lineStatuses []string
		action       lifecycle.Action
		wantErr      error
		wantOrder    string
		wantLines    []string
	}{
		{
			name:         "acceptKeepsReadyLines",
			orderStatus:  "draft",
			lineStatuses: []string{"draft", "ready", ""},
			action:       lifecycle.Actions.Accept,
			wantOrder:    "waiting",
			wantLines:    []string{"waiting", "ready", "waiting"},
		},
		{
			name:         "acceptFromMissingStatus",
			orderStatus:  "",
			lineStatuses: []string{"draft"},
			action:       lifecycle.Actions.Accept,
			wantOrder:    "waiting",
			wantLines:    []string{"waiting"},
		},
		{
			name:         "doneReadiesAllLines",
			orderStatus:  "waiting",
			lineStatuses: []string{"waiting", "ready", "draft"},
			action:       lifecycle.Actions.Done,
			wantOrder:    "ready",
			wantLines:    []string{"ready", "ready", "ready"},
		},
		{
			name:         "cancelLeavesLines",
			orderStatus:  "waiting",
			lineStatuses: []string{"waiting", "ready"},
			action:       lifecycle.Actions.Cancel,
			wantOrder:    "cancel",
			wantLines:    []string{"waiting", "ready"},
		},
		{
			name:         "doneFromDraftRejected",
			orderStatus:  "draft",
			lineStatuses: []string{"draft"},
			action:       lifecycle.Actions.Done,
			wantErr:      ErrInvalidTransition,
			wantOrder:    "draft",
			wantLines:    []string{"draft"},
		},
		{
			name:         "cancelledIsTerminal",
			orderStatus:  "cancel",
			lineStatuses: []string{"waiting"},
			action:       lifecycle.Actions.Accept,
			wantErr:      ErrInvalidTransition,
			wantOrder:    "cancel",
			wantLines:    []string{"waiting"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(Screen{ShopID: 1})
			lines := make([]OrderLine, 0, len(tt.lineStatuses))
			for _, s := range tt.lineStatuses {
				lines = append(lines, OrderLine{Status: s, IsCooking: true})
			}
			id := f.orders.AddOrder(Order{Reference: "A", ShopID: 1, Status: tt.orderStatus, IsCooking: true}, lines...)

			_, err := f.svc.Transition(context.Background(), id, tt.action)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if len(f.publisher.PublishedEvents) != 0 {
					t.Errorf("rejected transition must not notify")
				}
			} else if err != nil {
				t.Fatalf("Transition() error = %v", err)
			}

			order, _ := f.orders.FindOrder(context.Background(), id)
			if order.Status != tt.wantOrder {
				t.Errorf("order status = %q, want %q", order.Status, tt.wantOrder)
			}
			for i, l := range f.orders.linesOf(id) {
				if got := lifecycle.Normalize(l.Status).Code(); got != tt.wantLines[i] {
					t.Errorf("line %d status = %q, want %q", i, got, tt.wantLines[i])
				}
			}
		})
	}
}

func TestServiceCancelDoesNotWriteLines(t *testing.T) {
	f := newServiceFixture(Screen{ShopID: 1})
	id := f.orders.AddOrder(Order{Reference: "A", ShopID: 1, Status: "draft", IsCooking: true},
		OrderLine{Status: "draft"}, OrderLine{Status: "draft"})

	if _, err := f.svc.Transition(context.Background(), id, lifecycle.Actions.Cancel); err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if f.orders.lineUpdate != 0 {
		t.Errorf("cancel updated %d lines, want 0", f.orders.lineUpdate)
	}
}

func TestServiceTransitionUnknownOrder(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.Transition(context.Background(), 99, lifecycle.Actions.Accept)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestServiceToggleLine(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{from: "ready", want: "waiting"},
		{from: "waiting", want: "ready"},
		{from: "draft", want: "ready"},
		{from: "", want: "ready"},
	}

	for _, tt := range tests {
		t.Run("from_"+tt.from, func(t *testing.T) {
			f := newServiceFixture(Screen{ShopID: 4})
			orderID := f.orders.AddOrder(Order{Reference: "A", ShopID: 4, IsCooking: true}, OrderLine{Status: tt.from})
			lineID := f.orders.linesOf(orderID)[0].ID

			line, err := f.svc.ToggleLine(context.Background(), lineID)
			if err != nil {
				t.Fatalf("ToggleLine() error = %v", err)
			}
			if line.Status != tt.want {
				t.Errorf("status = %q, want %q", line.Status, tt.want)
			}

			var n event.OrderNotification
			_ = json.Unmarshal(f.publisher.PublishedEvents[0].Data, &n)
			if n.ShopID != 4 {
				t.Errorf("notification shop = %d, want 4", n.ShopID)
			}
		})
	}
}

func TestServiceCheckReadiness(t *testing.T) {
	tests := []struct {
		name    string
		screens []Screen
		order   *Order
		lines   []OrderLine
		want    gateway.Readiness
	}{
		{
			name: "unknownOrder",
			want: gateway.Readiness{Kind: gateway.ReadinessClear},
		},
		{
			name:  "noScreen",
			order: &Order{Reference: "R", ShopID: 1, Status: "draft"},
			want:  gateway.Readiness{Kind: gateway.ReadinessClear},
		},
		{
			name:    "foreignCategory",
			screens: []Screen{{ShopID: 1, CategoryIDs: []int64{food.ID}}},
			order:   &Order{Reference: "R", ShopID: 1, Status: "ready"},
			lines: []OrderLine{
				{Categories: []gateway.Category{food}},
				{Categories: []gateway.Category{drinks}},
			},
			want: gateway.Readiness{Kind: gateway.ReadinessCategoryBlocked, Category: "Drinks"},
		},
		{
			name:    "notReady",
			screens: []Screen{{ShopID: 1, CategoryIDs: []int64{food.ID}}},
			order:   &Order{Reference: "R", ShopID: 1, Status: "waiting"},
			lines:   []OrderLine{{Categories: []gateway.Category{food}}},
			want:    gateway.Readiness{Kind: gateway.ReadinessNotReady},
		},
		{
			name:    "missingStatusIsNotReady",
			screens: []Screen{{ShopID: 1}},
			order:   &Order{Reference: "R", ShopID: 1},
			want:    gateway.Readiness{Kind: gateway.ReadinessNotReady},
		},
		{
			name:    "ready",
			screens: []Screen{{ShopID: 1, CategoryIDs: []int64{food.ID}}},
			order:   &Order{Reference: "R", ShopID: 1, Status: "ready"},
			lines:   []OrderLine{{Categories: []gateway.Category{food}}, {}},
			want:    gateway.Readiness{Kind: gateway.ReadinessClear},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(tt.screens...)
			if tt.order != nil {
				f.orders.AddOrder(*tt.order, tt.lines...)
			}

			got, err := f.svc.CheckReadiness(context.Background(), "R")
			if err != nil {
				t.Fatalf("CheckReadiness() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("readiness = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestServicePublisherFailureIsNotFatal(t *testing.T) {
	f := newServiceFixture(Screen{ShopID: 1})
	f.publisher.PublishFunc = func(ctx context.Context, topic string, data []byte) error {
		return errors.New("nats down")
	}

	if _, err := f.svc.Details(context.Background(), 1, []gateway.OrderPayload{payload("A", 1)}); err != nil {
		t.Errorf("Details() error = %v, want nil", err)
	}
}

func TestServiceWithoutPublisher(t *testing.T) {
	svc := NewService(NewMockOrderRepository(), NewMockScreenRepository(Screen{ShopID: 1}), nil, nil)

	if _, err := svc.Details(context.Background(), 1, []gateway.OrderPayload{payload("A", 1)}); err != nil {
		t.Errorf("Details() error = %v, want nil", err)
	}
}
