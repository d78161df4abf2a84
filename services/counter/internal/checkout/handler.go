package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
)

const MaxBodyBytes = 1 << 20

// ShopBinder remembers which shop a terminal sends its orders to.
type ShopBinder interface {
	SaveShop(ctx context.Context, terminalID string, shopID int64) error
}

type SubmitRequest struct {
	Order    Cart     `json:"order"`
	Terminal Terminal `json:"terminal"`
}

type PayRequest struct {
	Order              Cart     `json:"order"`
	Terminal           Terminal `json:"terminal"`
	ConfirmMissingLots *bool    `json:"confirm_missing_lots,omitempty"`
}

type Handler struct {
	submitter *Submitter
	gate      *PaymentGate
	binder    ShopBinder
	logger    aqm.Logger
	tlm       *telemetry.HTTP
}

func NewHandler(submitter *Submitter, gate *PaymentGate, binder ShopBinder, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		submitter: submitter,
		gate:      gate,
		binder:    binder,
		logger:    logger,
		tlm:       telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/checkout", func(r chi.Router) {
		r.Post("/submit", h.Submit)
		r.Post("/pay", h.Pay)
	})
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Submit")
	defer finish()

	log := h.log(r)

	var req SubmitRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Order.Name == "" {
		req.Order.Name = NewReference()
	}

	h.bindShop(r.Context(), req.Terminal)

	result, err := h.submitter.Submit(r.Context(), &req.Order, req.Terminal)
	switch {
	case err == nil:
		aqm.Respond(w, http.StatusCreated, result, nil)
	case errors.Is(err, ErrEmptyOrder):
		aqm.RespondError(w, http.StatusBadRequest, "Order has no lines")
	case errors.Is(err, ErrSubmitInProgress):
		aqm.RespondError(w, http.StatusConflict, "Order submission already in progress")
	default:
		log.Errorf("cannot submit order %s: %v", req.Order.Name, err)
		aqm.RespondError(w, http.StatusBadGateway, result.Message)
	}
}

func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Pay")
	defer finish()

	log := h.log(r)

	var req PayRequest
	if !decode(w, r, &req) {
		return
	}

	var confirmer LotConfirmer
	if req.ConfirmMissingLots != nil {
		answer := *req.ConfirmMissingLots
		confirmer = ConfirmFunc(func(context.Context, []HostLine) (bool, error) {
			return answer, nil
		})
	}

	order := NewKitchenOrder(&req.Order)
	decision, err := h.gate.Check(r.Context(), order, req.Terminal, confirmer)
	if errors.Is(err, ErrConfirmationRequired) {
		aqm.RespondError(w, http.StatusConflict, "confirmation_required")
		return
	}
	if err != nil {
		log.Errorf("cannot check payment for %s: %v", req.Order.Name, err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not check payment")
		return
	}

	aqm.Respond(w, http.StatusOK, decision, nil)
}

func (h *Handler) bindShop(ctx context.Context, terminal Terminal) {
	if h.binder == nil || terminal.ID == "" || terminal.ShopID == 0 {
		return
	}
	if err := h.binder.SaveShop(ctx, terminal.ID, terminal.ShopID); err != nil {
		h.logger.Error("cannot bind terminal to shop", "terminal_id", terminal.ID, "shop_id", terminal.ShopID, "error", err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return false
	}
	if err := json.Unmarshal(body, dest); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}
	return true
}
