package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

var ErrSubmitInProgress = errors.New("order submission already in progress")

const (
	submittedTitle   = "Order Sent to Kitchen"
	submittedMessage = "The order has been sent to the kitchen for preparation."
	kitchenErrTitle  = "Kitchen Order Error"
)

// Result is what the counter shows after a submission attempt.
type Result struct {
	Title        string                `json:"title"`
	Message      string                `json:"message"`
	Confirmation *gateway.Confirmation `json:"confirmation,omitempty"`
}

// Submitter sends counter orders to the kitchen, one at a time per order.
type Submitter struct {
	assembler *Assembler
	gateway   gateway.Gateway
	logger    aqm.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewSubmitter(assembler *Assembler, gw gateway.Gateway, logger aqm.Logger) *Submitter {
	if assembler == nil {
		assembler = NewAssembler(nil)
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Submitter{
		assembler: assembler,
		gateway:   gw,
		logger:    logger,
		inflight:  make(map[string]struct{}),
	}
}

// Submit assembles the order and hands it to the kitchen. A second submit for
// the same order while the first is pending fails with ErrSubmitInProgress.
func (s *Submitter) Submit(ctx context.Context, order HostOrder, terminal Terminal) (Result, error) {
	payload, err := s.assembler.Assemble(order, terminal)
	if err != nil {
		return Result{}, err
	}

	if !s.acquire(payload.Reference) {
		return Result{}, ErrSubmitInProgress
	}
	defer s.release(payload.Reference)

	confirmation, err := s.gateway.SubmitOrder(ctx, payload)
	if err != nil {
		s.logger.Error("kitchen submission failed", "reference", payload.Reference, "error", err)
		return Result{
			Title:   kitchenErrTitle,
			Message: fmt.Sprintf("Could not send order to kitchen: %v", err),
		}, err
	}

	s.logger.Info("order sent to kitchen", "reference", payload.Reference, "shop_id", payload.ShopID, "lines", len(payload.Lines))
	return Result{
		Title:        submittedTitle,
		Message:      submittedMessage,
		Confirmation: confirmation,
	}, nil
}

func (s *Submitter) acquire(reference string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[reference]; busy {
		return false
	}
	s.inflight[reference] = struct{}{}
	return true
}

func (s *Submitter) release(reference string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, reference)
}

// NewReference names an order the host left unnamed.
func NewReference() string {
	return "Order " + uuid.NewString()[:8]
}
