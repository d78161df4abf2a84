package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/aquamarinepk/aqm"
)

var ErrConfirmationRequired = errors.New("missing lot confirmation required")

type Outcome string

const (
	OutcomeAllowed  Outcome = "allowed"
	OutcomeBlocked  Outcome = "blocked"
	OutcomeEmpty    Outcome = "empty"
	OutcomeDeclined Outcome = "declined"
)

const (
	notReadyTitle   = "Food is not ready"
	notReadyMessage = "Please Complete all the food first."
	categoryMessage = "No food items found for the specified category for this kitchen. Kindly remove the selected food and update the order by clicking the 'Order' button. Following that, proceed with the payment."
)

// Decision tells the counter whether it may open the payment screen.
type Decision struct {
	Outcome   Outcome           `json:"outcome"`
	Title     string            `json:"title,omitempty"`
	Message   string            `json:"message,omitempty"`
	Readiness gateway.Readiness `json:"-"`
}

func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllowed
}

// LotConfirmer asks the cashier whether to sell tracked products without lots.
type LotConfirmer interface {
	ConfirmMissingLots(ctx context.Context, lines []HostLine) (bool, error)
}

// ConfirmFunc adapts a function to LotConfirmer.
type ConfirmFunc func(ctx context.Context, lines []HostLine) (bool, error)

func (f ConfirmFunc) ConfirmMissingLots(ctx context.Context, lines []HostLine) (bool, error) {
	return f(ctx, lines)
}

// PaymentGate holds payment back until the kitchen is done with the order.
type PaymentGate struct {
	gateway gateway.Gateway
	logger  aqm.Logger
}

func NewPaymentGate(gw gateway.Gateway, logger aqm.Logger) *PaymentGate {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &PaymentGate{gateway: gw, logger: logger}
}

// Check runs the kitchen check, then the missing lot prompt. A kitchen block
// ends the check before the cashier is asked about lots. With lots missing and
// no confirmer, ErrConfirmationRequired is returned.
func (g *PaymentGate) Check(ctx context.Context, order *KitchenOrder, terminal Terminal, confirmer LotConfirmer) (Decision, error) {
	readiness, err := g.gateway.CheckKitchenReadiness(ctx, order.Reference())
	if err != nil {
		g.logger.Error("kitchen readiness check failed", "reference", order.Reference(), "error", err)
		order.setKitchenReady(false)
		return Decision{
			Outcome: OutcomeBlocked,
			Title:   kitchenErrTitle,
			Message: fmt.Sprintf("Could not verify kitchen order status: %v", err),
		}, nil
	}

	switch readiness.Kind {
	case gateway.ReadinessCategoryBlocked:
		order.setKitchenReady(false)
		return Decision{
			Outcome:   OutcomeBlocked,
			Title:     fmt.Sprintf("No category found for your current order in the kitchen.(%s)", readiness.Category),
			Message:   categoryMessage,
			Readiness: readiness,
		}, nil
	case gateway.ReadinessNotReady:
		order.setKitchenReady(false)
		return Decision{
			Outcome:   OutcomeBlocked,
			Title:     notReadyTitle,
			Message:   notReadyMessage,
			Readiness: readiness,
		}, nil
	}
	order.setKitchenReady(true)

	if len(order.Lines()) == 0 {
		return Decision{Outcome: OutcomeEmpty, Readiness: readiness}, nil
	}

	missing := order.LinesMissingLots()
	if len(missing) > 0 && terminal.AllowsLotEntry() {
		if confirmer == nil {
			return Decision{}, ErrConfirmationRequired
		}
		confirmed, err := confirmer.ConfirmMissingLots(ctx, missing)
		if err != nil {
			return Decision{}, err
		}
		if !confirmed {
			return Decision{Outcome: OutcomeDeclined, Readiness: readiness}, nil
		}
	}

	return Decision{Outcome: OutcomeAllowed, Readiness: readiness}, nil
}
