package kitchen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/kitchenscreen/pkg"
	"github.com/appetiteclub/kitchenscreen/pkg/enums/orderstatus"
	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/appetiteclub/kitchenscreen/pkg/lifecycle"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingReference  = errors.New("missing order reference")
)

// Service owns kitchen orders. Every write announces itself on the order
// notifications topic.
type Service struct {
	orders    OrderRepository
	screens   ScreenRepository
	publisher events.Publisher
	logger    aqm.Logger
	now       func() time.Time
}

func NewService(orders OrderRepository, screens ScreenRepository, publisher events.Publisher, logger aqm.Logger) *Service {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Service{
		orders:    orders,
		screens:   screens,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Details stores the incoming orders, if any, and returns the kitchen snapshot
// of the shop.
func (s *Service) Details(ctx context.Context, shopID int64, incoming []gateway.OrderPayload) (*gateway.Snapshot, error) {
	for _, payload := range incoming {
		if err := s.store(ctx, payload); err != nil {
			return nil, err
		}
	}
	return s.Snapshot(ctx, shopID)
}

// store creates the order, or refreshes it when the reference already exists.
// A refreshed order goes back to draft unless it is cooking; a cancelled
// reference is rejected. Lines are appended.
func (s *Service) store(ctx context.Context, p gateway.OrderPayload) error {
	if p.Reference == "" {
		return ErrMissingReference
	}
	now := s.now()

	order, err := s.orders.FindOrderByReference(ctx, p.Reference)
	switch {
	case errors.Is(err, ErrNotFound):
		order = newOrder(p)
		order.CreatedAt = now
		order.UpdatedAt = now
		if err := s.orders.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("cannot create order %s: %w", p.Reference, err)
		}
		s.logger.Info("kitchen order created", "order_id", order.ID, "reference", order.Reference, "shop_id", order.ShopID)
	case err != nil:
		return fmt.Errorf("cannot look up order %s: %w", p.Reference, err)
	default:
		switch order.CurrentStatus() {
		case orderstatus.Statuses.Cancel:
			return fmt.Errorf("%w: order %s is cancelled", ErrInvalidTransition, p.Reference)
		case orderstatus.Statuses.Waiting:
			// a cooking order stays in its lane
		default:
			order.Status = orderstatus.Statuses.Draft.Code()
		}
		order.Floor = p.Floor
		order.Hour = p.Hour
		order.Minute = p.Minute
		order.IsCooking = true
		order.UpdatedAt = now
		if err := s.orders.UpdateOrder(ctx, order); err != nil {
			return fmt.Errorf("cannot update order %s: %w", p.Reference, err)
		}
		s.logger.Info("kitchen order refreshed", "order_id", order.ID, "reference", order.Reference)
	}

	lines := make([]OrderLine, 0, len(p.Lines))
	for _, cmd := range p.Lines {
		if cmd.Operation != gateway.OperationCreate {
			continue
		}
		line := newLine(order.ID, cmd.Fields)
		line.CreatedAt = now
		line.UpdatedAt = now
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		if err := s.orders.CreateLines(ctx, lines); err != nil {
			return fmt.Errorf("cannot create lines of order %s: %w", p.Reference, err)
		}
	}

	s.notify(ctx, order.ShopID)
	return nil
}

// Snapshot lists the cooking orders of a shop with the lines its kitchen
// screen shows. A shop without a screen has an empty snapshot.
func (s *Service) Snapshot(ctx context.Context, shopID int64) (*gateway.Snapshot, error) {
	snapshot := &gateway.Snapshot{Orders: []gateway.OrderRecord{}, Lines: []gateway.LineRecord{}}

	screen, err := s.screens.FindScreen(ctx, shopID)
	if errors.Is(err, ErrNotFound) {
		s.logger.Info("no kitchen screen configured", "shop_id", shopID)
		return snapshot, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot find screen: %w", err)
	}

	orders, err := s.orders.ListCookingOrders(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("cannot list orders: %w", err)
	}
	if len(orders) == 0 {
		return snapshot, nil
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	lines, err := s.orders.ListLines(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("cannot list lines: %w", err)
	}

	lineIDs := make(map[int64][]int64, len(orders))
	for _, l := range lines {
		if !l.IsCooking {
			continue
		}
		lineIDs[l.OrderID] = append(lineIDs[l.OrderID], l.ID)
		if screen.Shows(l) {
			snapshot.Lines = append(snapshot.Lines, l.Record())
		}
	}
	for i := range orders {
		snapshot.Orders = append(snapshot.Orders, orders[i].Record(lineIDs[orders[i].ID]))
	}

	return snapshot, nil
}

// Transition applies an order action. Accept moves lines that are not ready
// to waiting, done moves every line to ready, cancel leaves lines alone.
func (s *Service) Transition(ctx context.Context, orderID int64, action lifecycle.Action) (*Order, error) {
	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.CurrentStatus()
	to := action.Target()
	if !lifecycle.CanTransitionOrder(from, to) {
		return nil, fmt.Errorf("%w: %s order %d from %s", ErrInvalidTransition, action.Code(), orderID, from.Code())
	}

	now := s.now()
	order.Status = to.Code()
	order.UpdatedAt = now
	if err := s.orders.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("cannot update order: %w", err)
	}

	if action != lifecycle.Actions.Cancel {
		if err := s.cascade(ctx, order.ID, action, now); err != nil {
			return nil, err
		}
	}

	s.logger.Info("kitchen order transitioned", "order_id", order.ID, "action", action.Code(), "from", from.Code(), "to", to.Code())
	s.notify(ctx, order.ShopID)
	return order, nil
}

func (s *Service) cascade(ctx context.Context, orderID int64, action lifecycle.Action, now time.Time) error {
	lines, err := s.orders.ListLines(ctx, []int64{orderID})
	if err != nil {
		return fmt.Errorf("cannot list lines: %w", err)
	}

	ready := orderstatus.Statuses.Ready
	for i := range lines {
		line := &lines[i]
		current := line.CurrentStatus()

		var next lifecycle.Status
		switch action {
		case lifecycle.Actions.Accept:
			if current == ready {
				continue
			}
			next = orderstatus.Statuses.Waiting
		case lifecycle.Actions.Done:
			next = ready
		default:
			continue
		}
		if line.Status == next.Code() {
			continue
		}

		line.Status = next.Code()
		line.UpdatedAt = now
		if err := s.orders.UpdateLine(ctx, line); err != nil {
			return fmt.Errorf("cannot update line %d: %w", line.ID, err)
		}
	}
	return nil
}

// ToggleLine flips a line between ready and waiting. Any status other than
// ready becomes ready.
func (s *Service) ToggleLine(ctx context.Context, lineID int64) (*OrderLine, error) {
	line, err := s.orders.FindLine(ctx, lineID)
	if err != nil {
		return nil, err
	}

	from := line.CurrentStatus()
	line.Status = lifecycle.ToggleLine(from).Code()
	line.UpdatedAt = s.now()
	if err := s.orders.UpdateLine(ctx, line); err != nil {
		return nil, fmt.Errorf("cannot update line: %w", err)
	}

	var shopID int64
	if order, err := s.orders.FindOrder(ctx, line.OrderID); err == nil {
		shopID = order.ShopID
	}

	s.logger.Info("kitchen line toggled", "line_id", line.ID, "from", from.Code(), "to", line.Status)
	s.notify(ctx, shopID)
	return line, nil
}

// CheckReadiness tells the counter whether an order can be paid. Unknown
// orders and shops without a screen are never blocked.
func (s *Service) CheckReadiness(ctx context.Context, reference string) (gateway.Readiness, error) {
	unblocked := gateway.Readiness{Kind: gateway.ReadinessClear}

	order, err := s.orders.FindOrderByReference(ctx, reference)
	if errors.Is(err, ErrNotFound) {
		s.logger.Info("readiness asked for unknown order", "reference", reference)
		return unblocked, nil
	}
	if err != nil {
		return gateway.Readiness{}, fmt.Errorf("cannot find order: %w", err)
	}

	screen, err := s.screens.FindScreen(ctx, order.ShopID)
	if errors.Is(err, ErrNotFound) {
		return unblocked, nil
	}
	if err != nil {
		return gateway.Readiness{}, fmt.Errorf("cannot find screen: %w", err)
	}

	lines, err := s.orders.ListLines(ctx, []int64{order.ID})
	if err != nil {
		return gateway.Readiness{}, fmt.Errorf("cannot list lines: %w", err)
	}
	for _, l := range lines {
		if c, ok := screen.ForeignCategory(l); ok {
			return gateway.Readiness{Kind: gateway.ReadinessCategoryBlocked, Category: c.Name}, nil
		}
	}

	if order.CurrentStatus() != orderstatus.Statuses.Ready {
		return gateway.Readiness{Kind: gateway.ReadinessNotReady}, nil
	}
	return unblocked, nil
}

func (s *Service) SaveScreen(ctx context.Context, screen *Screen) error {
	if err := s.screens.SaveScreen(ctx, screen); err != nil {
		return fmt.Errorf("cannot save screen: %w", err)
	}
	s.notify(ctx, screen.ShopID)
	return nil
}

func (s *Service) ListScreens(ctx context.Context) ([]Screen, error) {
	return s.screens.ListScreens(ctx)
}

func (s *Service) notify(ctx context.Context, shopID int64) {
	if err := pkg.PublishOrderNotification(ctx, s.publisher, shopID); err != nil {
		s.logger.Errorf("Failed to publish order notification: %v", err)
	}
}
