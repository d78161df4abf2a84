package checkout

import (
	"errors"
	"time"

	"github.com/appetiteclub/kitchenscreen/pkg/enums/orderstatus"
	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
)

var ErrEmptyOrder = errors.New("order has no lines")

// Assembler turns a counter order into the payload the kitchen stores.
type Assembler struct {
	now func() time.Time
}

func NewAssembler(now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{now: now}
}

// Assemble snapshots the order. Every line and the order itself start as
// draft and cooking, whatever the host says.
func (a *Assembler) Assemble(order HostOrder, terminal Terminal) (gateway.OrderPayload, error) {
	hostLines := order.Lines()
	if len(hostLines) == 0 {
		return gateway.OrderPayload{}, ErrEmptyOrder
	}

	draft := orderstatus.Statuses.Draft.Code()

	lines := make([]gateway.LineCommand, 0, len(hostLines))
	for _, l := range hostLines {
		lines = append(lines, gateway.CreateLine(gateway.LineFields{
			Quantity:        l.Quantity(),
			UnitPrice:       l.UnitPrice(),
			Subtotal:        l.Subtotal(),
			SubtotalWithTax: l.SubtotalWithTax(),
			Discount:        l.Discount(),
			PriceExtra:      l.PriceExtra(),
			ProductID:       l.ProductID(),
			TaxIDs:          append([]int64{}, l.TaxIDs()...),
			DisplayName:     l.DisplayName(),
			Categories:      l.Categories(),
			Note:            l.Note(),
			IsCooking:       true,
			Status:          draft,
		}))
	}

	now := a.now()
	payload := gateway.OrderPayload{
		Reference:   order.Reference(),
		AmountTotal: order.TotalWithTax(),
		AmountTax:   order.TotalTax(),
		Lines:       lines,
		IsCooking:   true,
		Status:      draft,
		CompanyID:   terminal.CompanyID,
		SessionID:   terminal.SessionID,
		ShopID:      terminal.ShopID,
		Hour:        now.Hour(),
		Minute:      now.Minute(),
	}

	if terminal.TableService && order.TableID() != 0 {
		if floor, ok := terminal.FloorOf(order.TableID()); ok {
			tableID := order.TableID()
			payload.TableID = &tableID
			payload.Floor = floor.Name
		}
	}

	return payload, nil
}
