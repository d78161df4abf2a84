package dashboard

import (
	"errors"
	"sort"
	"sync"

	"github.com/appetiteclub/kitchenscreen/pkg/enums/orderstatus"
	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/appetiteclub/kitchenscreen/pkg/lifecycle"
	"github.com/shopspring/decimal"
)

var ErrUnknownStage = errors.New("unknown stage")

// Order is the dashboard projection of a kitchen order.
type Order struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Reference   string           `json:"reference"`
	ShopID      int64            `json:"shop_id"`
	Status      lifecycle.Status `json:"-"`
	LineIDs     []int64          `json:"line_ids"`
	Hour        int              `json:"hour"`
	Minute      int              `json:"minute"`
	TableID     *int64           `json:"table_id,omitempty"`
	Floor       string           `json:"floor,omitempty"`
	AmountTotal decimal.Decimal  `json:"amount_total"`
	AmountTax   decimal.Decimal  `json:"amount_tax"`
}

// Line is the dashboard projection of an order line.
type Line struct {
	ID              int64            `json:"id"`
	OrderID         int64            `json:"order_id"`
	ProductID       int64            `json:"product_id"`
	ProductName     string           `json:"product_name"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	SubtotalWithTax decimal.Decimal  `json:"subtotal_with_tax"`
	Discount        decimal.Decimal  `json:"discount"`
	Note            string           `json:"note,omitempty"`
	Status          lifecycle.Status `json:"-"`
	IsCooking       bool             `json:"is_cooking"`
}

// Counts holds the number of shop orders per stage.
type Counts struct {
	Draft   int `json:"draft"`
	Waiting int `json:"waiting"`
	Ready   int `json:"ready"`
}

func (c Counts) Total() int {
	return c.Draft + c.Waiting + c.Ready
}

// State is the shop-scoped projection behind one dashboard. Snapshots replace
// it wholesale; user actions mutate single entries once the kitchen confirmed them.
type State struct {
	mu          sync.RWMutex
	shopID      int64
	orders      map[int64]*Order
	lines       map[int64]*Line
	counts      Counts
	activeStage lifecycle.Status
}

func NewState(shopID int64) *State {
	return &State{
		shopID:      shopID,
		orders:      make(map[int64]*Order),
		lines:       make(map[int64]*Line),
		activeStage: orderstatus.Statuses.Draft,
	}
}

func (s *State) ShopID() int64 {
	return s.shopID
}

// Replace swaps orders and lines for the snapshot content. Missing statuses
// become draft and lines of orders outside the snapshot are dropped.
func (s *State) Replace(snapshot *gateway.Snapshot) {
	orders := make(map[int64]*Order)
	lines := make(map[int64]*Line)

	if snapshot != nil {
		for _, rec := range snapshot.Orders {
			orders[rec.ID] = orderFromRecord(rec)
		}
		for _, rec := range snapshot.Lines {
			if _, ok := orders[rec.OrderID]; !ok {
				continue
			}
			lines[rec.ID] = lineFromRecord(rec)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = orders
	s.lines = lines
	s.recountLocked()
}

// SetOrderStatus reports false when the order is not in the projection.
func (s *State) SetOrderStatus(orderID int64, status lifecycle.Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return false
	}
	o.Status = lifecycle.Normalize(status.Code())
	s.recountLocked()
	return true
}

// ToggleLineStatus flips a line the same way the kitchen does and returns the
// new status.
func (s *State) ToggleLineStatus(lineID int64) (lifecycle.Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lines[lineID]
	if !ok {
		return lifecycle.Status{}, false
	}
	l.Status = lifecycle.ToggleLine(l.Status)
	s.recountLocked()
	return l.Status, true
}

func (s *State) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts
}

func (s *State) Order(orderID int64) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

func (s *State) Line(lineID int64) (Line, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lines[lineID]
	if !ok {
		return Line{}, false
	}
	return *l, true
}

func (s *State) ActiveStage() lifecycle.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeStage
}

// SetActiveStage changes the displayed lane. Only draft, waiting and ready are lanes.
func (s *State) SetActiveStage(stage lifecycle.Status) error {
	if orderstatus.StageByName(stage.Code()) == nil {
		return ErrUnknownStage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeStage = stage
	return nil
}

// Lane returns the shop orders in the stage, newest first, with their lines.
func (s *State) Lane(stage lifecycle.Status) []LaneOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.laneLocked(stage)
}

// Board reads the active stage, the counts and the active lane in one pass,
// so the counts always describe the orders returned with them.
func (s *State) Board() Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Board{
		ShopID:      s.shopID,
		Counts:      s.counts,
		ActiveStage: s.activeStage.Code(),
		Orders:      s.laneLocked(s.activeStage),
	}
}

func (s *State) laneLocked(stage lifecycle.Status) []LaneOrder {
	lane := make([]LaneOrder, 0)
	for _, o := range s.orders {
		if o.ShopID != s.shopID || o.Status != stage {
			continue
		}
		lane = append(lane, LaneOrder{Order: *o, Status: o.Status.Code(), Lines: s.linesOfLocked(o.ID)})
	}
	sort.Slice(lane, func(i, j int) bool { return lane[i].ID > lane[j].ID })
	return lane
}

func (s *State) linesOfLocked(orderID int64) []LaneLine {
	lines := make([]LaneLine, 0)
	for _, l := range s.lines {
		if l.OrderID == orderID {
			lines = append(lines, LaneLine{Line: *l, Status: l.Status.Code()})
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines
}

func (s *State) recountLocked() {
	var c Counts
	for _, o := range s.orders {
		if o.ShopID != s.shopID {
			continue
		}
		switch o.Status {
		case orderstatus.Statuses.Draft:
			c.Draft++
		case orderstatus.Statuses.Waiting:
			c.Waiting++
		case orderstatus.Statuses.Ready:
			c.Ready++
		}
	}
	s.counts = c
}

// LaneOrder is an order as shown in a lane.
type LaneOrder struct {
	Order
	Status string     `json:"status"`
	Lines  []LaneLine `json:"lines"`
}

type LaneLine struct {
	Line
	Status string `json:"status"`
}

func orderFromRecord(rec gateway.OrderRecord) *Order {
	return &Order{
		ID:          rec.ID,
		Name:        rec.Name,
		Reference:   rec.Reference,
		ShopID:      rec.ShopID,
		Status:      rec.Status.Normalized(),
		LineIDs:     append([]int64(nil), rec.LineIDs...),
		Hour:        rec.Hour,
		Minute:      rec.Minute,
		TableID:     rec.TableID,
		Floor:       rec.Floor,
		AmountTotal: rec.AmountTotal,
		AmountTax:   rec.AmountTax,
	}
}

func lineFromRecord(rec gateway.LineRecord) *Line {
	return &Line{
		ID:              rec.ID,
		OrderID:         rec.OrderID,
		ProductID:       rec.ProductID,
		ProductName:     rec.ProductName,
		Quantity:        rec.Quantity,
		UnitPrice:       rec.UnitPrice,
		Subtotal:        rec.Subtotal,
		SubtotalWithTax: rec.SubtotalWithTax,
		Discount:        rec.Discount,
		Note:            rec.Note,
		Status:          rec.Status.Normalized(),
		IsCooking:       rec.IsCooking,
	}
}
