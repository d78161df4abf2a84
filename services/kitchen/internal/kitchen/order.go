package kitchen

import (
	"time"

	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/appetiteclub/kitchenscreen/pkg/lifecycle"
	"github.com/shopspring/decimal"
)

// Order is a kitchen order as stored by the kitchen service. Status may be
// empty for orders written before a status was assigned.
type Order struct {
	ID           int64
	Name         string
	Reference    string
	ShopID       int64
	CompanyID    int64
	SessionID    int64
	Status       string
	IsCooking    bool
	Hour         int
	Minute       int
	TableID      *int64
	Floor        string
	AmountTotal  decimal.Decimal
	AmountTax    decimal.Decimal
	AmountPaid   decimal.Decimal
	AmountReturn decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrderLine is one product line of a kitchen order.
type OrderLine struct {
	ID              int64
	OrderID         int64
	ProductID       int64
	ProductName     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	Subtotal        decimal.Decimal
	SubtotalWithTax decimal.Decimal
	Discount        decimal.Decimal
	PriceExtra      decimal.Decimal
	TaxIDs          []int64
	Categories      []gateway.Category
	Note            string
	Status          string
	IsCooking       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Screen is the kitchen screen configuration of a shop. An empty CategoryIDs
// list shows every line.
type Screen struct {
	ShopID      int64   `json:"shop_id"`
	Name        string  `json:"name"`
	CategoryIDs []int64 `json:"category_ids"`
}

func (s *Screen) Shows(line OrderLine) bool {
	if len(line.Categories) == 0 {
		return true
	}
	for _, c := range line.Categories {
		if s.allows(c.ID) {
			return true
		}
	}
	return false
}

// ForeignCategory returns the first category of the line the screen does not
// cook, if any.
func (s *Screen) ForeignCategory(line OrderLine) (gateway.Category, bool) {
	for _, c := range line.Categories {
		if !s.allows(c.ID) {
			return c, true
		}
	}
	return gateway.Category{}, false
}

func (s *Screen) allows(categoryID int64) bool {
	if len(s.CategoryIDs) == 0 {
		return true
	}
	for _, id := range s.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

func (o *Order) CurrentStatus() lifecycle.Status {
	return lifecycle.Normalize(o.Status)
}

func (l *OrderLine) CurrentStatus() lifecycle.Status {
	return lifecycle.Normalize(l.Status)
}

func (o *Order) Record(lineIDs []int64) gateway.OrderRecord {
	if lineIDs == nil {
		lineIDs = []int64{}
	}
	return gateway.OrderRecord{
		ID:          o.ID,
		Name:        o.Name,
		Reference:   o.Reference,
		ShopID:      o.ShopID,
		Status:      gateway.WireStatus(o.CurrentStatus().Code()),
		LineIDs:     lineIDs,
		Hour:        o.Hour,
		Minute:      o.Minute,
		TableID:     o.TableID,
		Floor:       o.Floor,
		AmountTotal: o.AmountTotal,
		AmountTax:   o.AmountTax,
	}
}

func (l *OrderLine) Record() gateway.LineRecord {
	return gateway.LineRecord{
		ID:              l.ID,
		OrderID:         l.OrderID,
		ProductID:       l.ProductID,
		ProductName:     l.ProductName,
		Quantity:        l.Quantity,
		UnitPrice:       l.UnitPrice,
		Subtotal:        l.Subtotal,
		SubtotalWithTax: l.SubtotalWithTax,
		Discount:        l.Discount,
		Note:            l.Note,
		Status:          gateway.WireStatus(l.CurrentStatus().Code()),
		IsCooking:       l.IsCooking,
	}
}

func newOrder(p gateway.OrderPayload) *Order {
	return &Order{
		Name:         p.Reference,
		Reference:    p.Reference,
		ShopID:       p.ShopID,
		CompanyID:    p.CompanyID,
		SessionID:    p.SessionID,
		Status:       lifecycle.Normalize("").Code(),
		IsCooking:    true,
		Hour:         p.Hour,
		Minute:       p.Minute,
		TableID:      p.TableID,
		Floor:        p.Floor,
		AmountTotal:  p.AmountTotal,
		AmountTax:    p.AmountTax,
		AmountPaid:   p.AmountPaid,
		AmountReturn: p.AmountReturn,
	}
}

func newLine(orderID int64, f gateway.LineFields) OrderLine {
	return OrderLine{
		OrderID:         orderID,
		ProductID:       f.ProductID,
		ProductName:     f.DisplayName,
		Quantity:        f.Quantity,
		UnitPrice:       f.UnitPrice,
		Subtotal:        f.Subtotal,
		SubtotalWithTax: f.SubtotalWithTax,
		Discount:        f.Discount,
		PriceExtra:      f.PriceExtra,
		TaxIDs:          f.TaxIDs,
		Categories:      f.Categories,
		Note:            f.Note,
		Status:          lifecycle.Normalize("").Code(),
		IsCooking:       true,
	}
}
