package mongo

import (
	"time"

	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/appetiteclub/kitchenscreen/services/kitchen/internal/kitchen"
	"github.com/shopspring/decimal"
)

// Money is stored as decimal strings.

type orderDoc struct {
	ID           int64     `bson:"_id"`
	Name         string    `bson:"name"`
	Reference    string    `bson:"pos_reference"`
	ShopID       int64     `bson:"shop_id"`
	CompanyID    int64     `bson:"company_id"`
	SessionID    int64     `bson:"session_id"`
	Status       string    `bson:"order_status,omitempty"`
	IsCooking    bool      `bson:"is_cooking"`
	Hour         int       `bson:"hour"`
	Minute       int       `bson:"minutes"`
	TableID      *int64    `bson:"table_id,omitempty"`
	Floor        string    `bson:"floor,omitempty"`
	AmountTotal  string    `bson:"amount_total"`
	AmountTax    string    `bson:"amount_tax"`
	AmountPaid   string    `bson:"amount_paid"`
	AmountReturn string    `bson:"amount_return"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type categoryDoc struct {
	ID   int64  `bson:"id"`
	Name string `bson:"name"`
}

type lineDoc struct {
	ID              int64         `bson:"_id"`
	OrderID         int64         `bson:"order_id"`
	ProductID       int64         `bson:"product_id"`
	ProductName     string        `bson:"full_product_name"`
	Quantity        string        `bson:"qty"`
	UnitPrice       string        `bson:"price_unit"`
	Subtotal        string        `bson:"price_subtotal"`
	SubtotalWithTax string        `bson:"price_subtotal_incl"`
	Discount        string        `bson:"discount"`
	PriceExtra      string        `bson:"price_extra"`
	TaxIDs          []int64       `bson:"tax_ids,omitempty"`
	Categories      []categoryDoc `bson:"categories,omitempty"`
	Note            string        `bson:"note,omitempty"`
	Status          string        `bson:"order_status,omitempty"`
	IsCooking       bool          `bson:"is_cooking"`
	CreatedAt       time.Time     `bson:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at"`
}

type screenDoc struct {
	ShopID      int64   `bson:"_id"`
	Name        string  `bson:"name"`
	CategoryIDs []int64 `bson:"category_ids"`
}

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func fromOrder(o *kitchen.Order) orderDoc {
	return orderDoc{
		ID:           o.ID,
		Name:         o.Name,
		Reference:    o.Reference,
		ShopID:       o.ShopID,
		CompanyID:    o.CompanyID,
		SessionID:    o.SessionID,
		Status:       o.Status,
		IsCooking:    o.IsCooking,
		Hour:         o.Hour,
		Minute:       o.Minute,
		TableID:      o.TableID,
		Floor:        o.Floor,
		AmountTotal:  o.AmountTotal.String(),
		AmountTax:    o.AmountTax.String(),
		AmountPaid:   o.AmountPaid.String(),
		AmountReturn: o.AmountReturn.String(),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func (d *orderDoc) toOrder() *kitchen.Order {
	return &kitchen.Order{
		ID:           d.ID,
		Name:         d.Name,
		Reference:    d.Reference,
		ShopID:       d.ShopID,
		CompanyID:    d.CompanyID,
		SessionID:    d.SessionID,
		Status:       d.Status,
		IsCooking:    d.IsCooking,
		Hour:         d.Hour,
		Minute:       d.Minute,
		TableID:      d.TableID,
		Floor:        d.Floor,
		AmountTotal:  money(d.AmountTotal),
		AmountTax:    money(d.AmountTax),
		AmountPaid:   money(d.AmountPaid),
		AmountReturn: money(d.AmountReturn),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func fromLine(l *kitchen.OrderLine) lineDoc {
	categories := make([]categoryDoc, 0, len(l.Categories))
	for _, c := range l.Categories {
		categories = append(categories, categoryDoc{ID: c.ID, Name: c.Name})
	}
	return lineDoc{
		ID:              l.ID,
		OrderID:         l.OrderID,
		ProductID:       l.ProductID,
		ProductName:     l.ProductName,
		Quantity:        l.Quantity.String(),
		UnitPrice:       l.UnitPrice.String(),
		Subtotal:        l.Subtotal.String(),
		SubtotalWithTax: l.SubtotalWithTax.String(),
		Discount:        l.Discount.String(),
		PriceExtra:      l.PriceExtra.String(),
		TaxIDs:          l.TaxIDs,
		Categories:      categories,
		Note:            l.Note,
		Status:          l.Status,
		IsCooking:       l.IsCooking,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

func (d *lineDoc) toLine() *kitchen.OrderLine {
	var categories []gateway.Category
	for _, c := range d.Categories {
		categories = append(categories, gateway.Category{ID: c.ID, Name: c.Name})
	}
	return &kitchen.OrderLine{
		ID:              d.ID,
		OrderID:         d.OrderID,
		ProductID:       d.ProductID,
		ProductName:     d.ProductName,
		Quantity:        money(d.Quantity),
		UnitPrice:       money(d.UnitPrice),
		Subtotal:        money(d.Subtotal),
		SubtotalWithTax: money(d.SubtotalWithTax),
		Discount:        money(d.Discount),
		PriceExtra:      money(d.PriceExtra),
		TaxIDs:          d.TaxIDs,
		Categories:      categories,
		Note:            d.Note,
		Status:          d.Status,
		IsCooking:       d.IsCooking,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func fromScreen(s *kitchen.Screen) screenDoc {
	return screenDoc{ShopID: s.ShopID, Name: s.Name, CategoryIDs: s.CategoryIDs}
}

func (d *screenDoc) toScreen() *kitchen.Screen {
	return &kitchen.Screen{ShopID: d.ShopID, Name: d.Name, CategoryIDs: d.CategoryIDs}
}
