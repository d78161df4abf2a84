package kitchen

import (
	"context"
	"sort"
)

// MockOrderRepository is an in-memory OrderRepository.
type MockOrderRepository struct {
	orders     map[int64]Order
	lines      map[int64]OrderLine
	nextID     int64
	lineUpdate int

	CreateOrderFunc          func(ctx context.Context, o *Order) error
	UpdateOrderFunc          func(ctx context.Context, o *Order) error
	FindOrderByReferenceFunc func(ctx context.Context, reference string) (*Order, error)
	ListCookingOrdersFunc    func(ctx context.Context, shopID int64) ([]Order, error)
	UpdateLineFunc           func(ctx context.Context, l *OrderLine) error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[int64]Order),
		lines:  make(map[int64]OrderLine),
	}
}

func (m *MockOrderRepository) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, o *Order) error {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, o)
	}
	o.ID = m.id()
	m.orders[o.ID] = *o
	return nil
}

func (m *MockOrderRepository) UpdateOrder(ctx context.Context, o *Order) error {
	if m.UpdateOrderFunc != nil {
		return m.UpdateOrderFunc(ctx, o)
	}
	if _, ok := m.orders[o.ID]; !ok {
		return ErrNotFound
	}
	m.orders[o.ID] = *o
	return nil
}

func (m *MockOrderRepository) FindOrder(ctx context.Context, id int64) (*Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (m *MockOrderRepository) FindOrderByReference(ctx context.Context, reference string) (*Order, error) {
	if m.FindOrderByReferenceFunc != nil {
		return m.FindOrderByReferenceFunc(ctx, reference)
	}
	for _, o := range m.orders {
		if o.Reference == reference {
			found := o
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockOrderRepository) ListCookingOrders(ctx context.Context, shopID int64) ([]Order, error) {
	if m.ListCookingOrdersFunc != nil {
		return m.ListCookingOrdersFunc(ctx, shopID)
	}
	result := make([]Order, 0)
	for _, o := range m.orders {
		if o.IsCooking && o.ShopID == shopID {
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (m *MockOrderRepository) ClearOrders(ctx context.Context) error {
	m.orders = make(map[int64]Order)
	m.lines = make(map[int64]OrderLine)
	return nil
}

func (m *MockOrderRepository) CreateLines(ctx context.Context, lines []OrderLine) error {
	for i := range lines {
		lines[i].ID = m.id()
		m.lines[lines[i].ID] = lines[i]
	}
	return nil
}

func (m *MockOrderRepository) UpdateLine(ctx context.Context, l *OrderLine) error {
	if m.UpdateLineFunc != nil {
		return m.UpdateLineFunc(ctx, l)
	}
	if _, ok := m.lines[l.ID]; !ok {
		return ErrNotFound
	}
	m.lineUpdate++
	m.lines[l.ID] = *l
	return nil
}

func (m *MockOrderRepository) FindLine(ctx context.Context, id int64) (*OrderLine, error) {
	l, ok := m.lines[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &l, nil
}

func (m *MockOrderRepository) ListLines(ctx context.Context, orderIDs []int64) ([]OrderLine, error) {
	wanted := make(map[int64]bool, len(orderIDs))
	for _, id := range orderIDs {
		wanted[id] = true
	}
	result := make([]OrderLine, 0)
	for _, l := range m.lines {
		if wanted[l.OrderID] {
			result = append(result, l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// AddOrder seeds an order with its lines and returns the order id.
func (m *MockOrderRepository) AddOrder(o Order, lines ...OrderLine) int64 {
	o.ID = m.id()
	m.orders[o.ID] = o
	for _, l := range lines {
		l.ID = m.id()
		l.OrderID = o.ID
		m.lines[l.ID] = l
	}
	return o.ID
}

func (m *MockOrderRepository) linesOf(orderID int64) []OrderLine {
	lines, _ := m.ListLines(context.Background(), []int64{orderID})
	return lines
}

// MockScreenRepository is an in-memory ScreenRepository.
type MockScreenRepository struct {
	screens        map[int64]Screen
	FindScreenFunc func(ctx context.Context, shopID int64) (*Screen, error)
}

func NewMockScreenRepository(screens ...Screen) *MockScreenRepository {
	m := &MockScreenRepository{screens: make(map[int64]Screen)}
	for _, s := range screens {
		m.screens[s.ShopID] = s
	}
	return m
}

func (m *MockScreenRepository) FindScreen(ctx context.Context, shopID int64) (*Screen, error) {
	if m.FindScreenFunc != nil {
		return m.FindScreenFunc(ctx, shopID)
	}
	s, ok := m.screens[shopID]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MockScreenRepository) SaveScreen(ctx context.Context, s *Screen) error {
	m.screens[s.ShopID] = *s
	return nil
}

func (m *MockScreenRepository) ListScreens(ctx context.Context) ([]Screen, error) {
	result := make([]Screen, 0, len(m.screens))
	for _, s := range m.screens {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ShopID < result[j].ShopID })
	return result, nil
}

// MockPublisher is a test mock for events.Publisher
type MockPublisher struct {
	PublishedEvents []PublishedEvent
	PublishFunc     func(ctx context.Context, topic string, data []byte) error
}

type PublishedEvent struct {
	Topic string
	Data  []byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		PublishedEvents: make([]PublishedEvent, 0),
	}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, data)
	}
	m.PublishedEvents = append(m.PublishedEvents, PublishedEvent{Topic: topic, Data: data})
	return nil
}
