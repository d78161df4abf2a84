package gateway

import (
	"bytes"
	"encoding/json"

	"github.com/appetiteclub/kitchenscreen/pkg/enums/orderstatus"
	"github.com/appetiteclub/kitchenscreen/pkg/lifecycle"
	"github.com/shopspring/decimal"
)

// WireStatus is a status as the kitchen backend sends it. A JSON false or null
// decodes to the empty status, which Normalized turns into draft.
type WireStatus string

func (s *WireStatus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		*s = ""
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*s = WireStatus(name)
	return nil
}

func (s WireStatus) Normalized() orderstatus.Status {
	return lifecycle.Normalize(string(s))
}

// OrderRecord is an order as listed in a kitchen snapshot.
type OrderRecord struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Reference   string          `json:"pos_reference"`
	ShopID      int64           `json:"shop_id"`
	Status      WireStatus      `json:"order_status"`
	LineIDs     []int64         `json:"lines"`
	Hour        int             `json:"hour"`
	Minute      int             `json:"minutes"`
	TableID     *int64          `json:"table_id,omitempty"`
	Floor       string          `json:"floor,omitempty"`
	AmountTotal decimal.Decimal `json:"amount_total"`
	AmountTax   decimal.Decimal `json:"amount_tax"`
}

// LineRecord is an order line as listed in a kitchen snapshot.
type LineRecord struct {
	ID              int64           `json:"id"`
	OrderID         int64           `json:"order_id"`
	ProductID       int64           `json:"product_id"`
	ProductName     string          `json:"full_product_name"`
	Quantity        decimal.Decimal `json:"qty"`
	UnitPrice       decimal.Decimal `json:"price_unit"`
	Subtotal        decimal.Decimal `json:"price_subtotal"`
	SubtotalWithTax decimal.Decimal `json:"price_subtotal_incl"`
	Discount        decimal.Decimal `json:"discount"`
	Note            string          `json:"note,omitempty"`
	Status          WireStatus      `json:"order_status"`
	IsCooking       bool            `json:"is_cooking"`
}

// Snapshot is the full set of kitchen orders and lines for one shop. Orders and
// lines always travel together.
type Snapshot struct {
	Orders []OrderRecord `json:"orders"`
	Lines  []LineRecord  `json:"order_lines"`
}

func (s *Snapshot) IsEmpty() bool {
	return s == nil || len(s.Orders) == 0
}

type Operation string

const OperationCreate Operation = "create"

// LineCommand is one line operation inside an order payload.
type LineCommand struct {
	Operation Operation  `json:"operation"`
	Fields    LineFields `json:"fields"`
}

func CreateLine(fields LineFields) LineCommand {
	return LineCommand{Operation: OperationCreate, Fields: fields}
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LineFields struct {
	Quantity        decimal.Decimal `json:"qty"`
	UnitPrice       decimal.Decimal `json:"price_unit"`
	Subtotal        decimal.Decimal `json:"price_subtotal"`
	SubtotalWithTax decimal.Decimal `json:"price_subtotal_incl"`
	Discount        decimal.Decimal `json:"discount"`
	PriceExtra      decimal.Decimal `json:"price_extra"`
	ProductID       int64           `json:"product_id"`
	TaxIDs          []int64         `json:"tax_ids"`
	DisplayName     string          `json:"full_product_name"`
	Categories      []Category      `json:"categories,omitempty"`
	Note            string          `json:"note,omitempty"`
	IsCooking       bool            `json:"is_cooking"`
	Status          string          `json:"order_status"`
}

// OrderPayload is a new kitchen order as sent by the counter.
type OrderPayload struct {
	Reference    string          `json:"pos_reference"`
	AmountTotal  decimal.Decimal `json:"amount_total"`
	AmountTax    decimal.Decimal `json:"amount_tax"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	AmountReturn decimal.Decimal `json:"amount_return"`
	Lines        []LineCommand   `json:"lines"`
	IsCooking    bool            `json:"is_cooking"`
	Status       string          `json:"order_status"`
	CompanyID    int64           `json:"company_id"`
	SessionID    int64           `json:"session_id"`
	ShopID       int64           `json:"config_id"`
	Hour         int             `json:"hour"`
	Minute       int             `json:"minutes"`
	TableID      *int64          `json:"table_id,omitempty"`
	Floor        string          `json:"floor"`
}

// ScreenConfig is the kitchen screen of a shop. Lines outside CategoryIDs are
// not cooked there; an empty list takes everything.
type ScreenConfig struct {
	ShopID      int64   `json:"shop_id"`
	Name        string  `json:"name"`
	CategoryIDs []int64 `json:"category_ids"`
}

// DetailsRequest is the body of the details endpoint. An empty Orders list only
// reads; a populated one creates the orders first.
type DetailsRequest struct {
	ShopID int64          `json:"shop_id"`
	Orders []OrderPayload `json:"orders"`
}

// Confirmation is returned once the kitchen accepted a submitted order.
type Confirmation struct {
	Reference string   `json:"reference"`
	Snapshot  Snapshot `json:"snapshot"`
}

type ReadinessKind string

const (
	ReadinessClear           ReadinessKind = "clear"
	ReadinessNotReady        ReadinessKind = "not_ready"
	ReadinessCategoryBlocked ReadinessKind = "category_blocked"
)

// Readiness is the kitchen's answer to "can this order be paid".
type Readiness struct {
	Kind     ReadinessKind `json:"kind"`
	Category string        `json:"category,omitempty"`
}

func (r Readiness) Blocked() bool {
	return r.Kind == ReadinessNotReady || r.Kind == ReadinessCategoryBlocked
}

// Wire returns the shape the readiness endpoint answers with: true when the
// food is not ready, {"category": name} when a product is outside the kitchen
// categories, false otherwise.
func (r Readiness) Wire() interface{} {
	switch r.Kind {
	case ReadinessNotReady:
		return true
	case ReadinessCategoryBlocked:
		return map[string]string{"category": r.Category}
	default:
		return false
	}
}

// DecodeReadiness maps the three answers of the readiness endpoint to a Readiness.
// Any shape other than true or an object with a non-empty category is clear.
func DecodeReadiness(raw json.RawMessage) Readiness {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("true")) {
		return Readiness{Kind: ReadinessNotReady}
	}
	if len(raw) > 0 && raw[0] == '{' {
		var body struct {
			Category string `json:"category"`
		}
		if err := json.Unmarshal(raw, &body); err == nil && body.Category != "" {
			return Readiness{Kind: ReadinessCategoryBlocked, Category: body.Category}
		}
	}
	return Readiness{Kind: ReadinessClear}
}
