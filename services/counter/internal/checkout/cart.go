package checkout

import (
	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/shopspring/decimal"
)

// Tracking is the lot/serial tracking mode of a product.
type Tracking string

const (
	TrackingNone   Tracking = "none"
	TrackingLot    Tracking = "lot"
	TrackingSerial Tracking = "serial"
)

// HostLine is a cart line as the point of sale exposes it.
type HostLine interface {
	Quantity() decimal.Decimal
	UnitPrice() decimal.Decimal
	Subtotal() decimal.Decimal
	SubtotalWithTax() decimal.Decimal
	Discount() decimal.Decimal
	PriceExtra() decimal.Decimal
	ProductID() int64
	DisplayName() string
	TaxIDs() []int64
	Categories() []gateway.Category
	Note() string
	Tracking() Tracking
	HasValidLot() bool
}

// HostOrder is the order being rung up at the counter.
type HostOrder interface {
	Reference() string
	Lines() []HostLine
	TotalWithTax() decimal.Decimal
	TotalTax() decimal.Decimal
	TableID() int64
}

type Product struct {
	ID         int64              `json:"id"`
	Name       string             `json:"display_name"`
	Tracking   Tracking           `json:"tracking"`
	Categories []gateway.Category `json:"categories"`
}

// CartLine is the JSON form of a HostLine.
type CartLine struct {
	Qty          decimal.Decimal `json:"qty"`
	Price        decimal.Decimal `json:"price_unit"`
	Untaxed      decimal.Decimal `json:"price_subtotal"`
	Taxed        decimal.Decimal `json:"price_subtotal_incl"`
	DiscountRate decimal.Decimal `json:"discount"`
	Extra        decimal.Decimal `json:"price_extra"`
	Product      Product         `json:"product"`
	Taxes        []int64         `json:"tax_ids"`
	Comment      string          `json:"note"`
	Lot          string          `json:"lot"`
}

func (l CartLine) Quantity() decimal.Decimal        { return l.Qty }
func (l CartLine) UnitPrice() decimal.Decimal       { return l.Price }
func (l CartLine) Subtotal() decimal.Decimal        { return l.Untaxed }
func (l CartLine) SubtotalWithTax() decimal.Decimal { return l.Taxed }
func (l CartLine) Discount() decimal.Decimal        { return l.DiscountRate }
func (l CartLine) PriceExtra() decimal.Decimal      { return l.Extra }
func (l CartLine) ProductID() int64                 { return l.Product.ID }
func (l CartLine) DisplayName() string              { return l.Product.Name }
func (l CartLine) TaxIDs() []int64                  { return l.Taxes }
func (l CartLine) Categories() []gateway.Category   { return l.Product.Categories }
func (l CartLine) Note() string                     { return l.Comment }

func (l CartLine) Tracking() Tracking {
	if l.Product.Tracking == "" {
		return TrackingNone
	}
	return l.Product.Tracking
}

func (l CartLine) HasValidLot() bool {
	return l.Lot != ""
}

// Cart is the JSON form of a HostOrder.
type Cart struct {
	Name  string          `json:"name"`
	Items []CartLine      `json:"lines"`
	Total decimal.Decimal `json:"amount_total"`
	Tax   decimal.Decimal `json:"amount_tax"`
	Table int64           `json:"table_id,omitempty"`
}

func (c *Cart) Reference() string             { return c.Name }
func (c *Cart) TotalWithTax() decimal.Decimal { return c.Total }
func (c *Cart) TotalTax() decimal.Decimal     { return c.Tax }
func (c *Cart) TableID() int64                { return c.Table }

func (c *Cart) Lines() []HostLine {
	lines := make([]HostLine, len(c.Items))
	for i, item := range c.Items {
		lines[i] = item
	}
	return lines
}

type Table struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Floor struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Tables []Table `json:"tables"`
}

// Terminal is the point of sale configuration an order is rung up on.
type Terminal struct {
	ID              string  `json:"id"`
	CompanyID       int64   `json:"company_id"`
	SessionID       int64   `json:"session_id"`
	ShopID          int64   `json:"shop_id"`
	TableService    bool    `json:"table_service"`
	Floors          []Floor `json:"floors"`
	UseExistingLots bool    `json:"use_existing_lots"`
	UseCreateLots   bool    `json:"use_create_lots"`
}

func (t Terminal) AllowsLotEntry() bool {
	return t.UseExistingLots || t.UseCreateLots
}

// FloorOf finds the floor holding a table.
func (t Terminal) FloorOf(tableID int64) (Floor, bool) {
	for _, f := range t.Floors {
		for _, table := range f.Tables {
			if table.ID == tableID {
				return f, true
			}
		}
	}
	return Floor{}, false
}

// KitchenOrder wraps a host order with what the kitchen needs to know about it.
type KitchenOrder struct {
	HostOrder
	kitchenReady bool
}

func NewKitchenOrder(order HostOrder) *KitchenOrder {
	return &KitchenOrder{HostOrder: order, kitchenReady: true}
}

// HasQuantity reports whether the order has anything to cook.
func (o *KitchenOrder) HasQuantity() bool {
	total := decimal.Zero
	for _, line := range o.Lines() {
		total = total.Add(line.Quantity())
	}
	return total.IsPositive()
}

// LinesMissingLots returns tracked lines without a lot or serial number.
func (o *KitchenOrder) LinesMissingLots() []HostLine {
	var missing []HostLine
	for _, line := range o.Lines() {
		if line.Tracking() != TrackingNone && !line.HasValidLot() {
			missing = append(missing, line)
		}
	}
	return missing
}

// KitchenReady is the outcome of the last kitchen check.
func (o *KitchenOrder) KitchenReady() bool {
	return o.kitchenReady
}

func (o *KitchenOrder) setKitchenReady(ready bool) {
	o.kitchenReady = ready
}
