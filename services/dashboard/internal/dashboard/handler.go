package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
)

const MaxBodyBytes = 1 << 20

type refresher interface {
	Refresh(ctx context.Context) error
}

type Handler struct {
	vm        *ViewModel
	refresher refresher
	notices   *NoticeLog
	logger    aqm.Logger
	tlm       *telemetry.HTTP
}

func NewHandler(vm *ViewModel, refresher refresher, notices *NoticeLog, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		vm:        vm,
		refresher: refresher,
		notices:   notices,
		logger:    logger,
		tlm:       telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", h.GetBoard)
		r.Post("/stages/{stage}", h.ShowStage)
		r.Post("/commands", h.Dispatch)
		r.Patch("/orders/{id}/{action}", h.OrderAction)
		r.Patch("/lines/{id}/toggle", h.ToggleLine)
		r.Post("/refresh", h.Refresh)
		r.Get("/notices", h.ListNotices)
	})
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetBoard")
	defer finish()

	aqm.Respond(w, http.StatusOK, h.vm.Board(), nil)
}

func (h *Handler) ShowStage(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ShowStage")
	defer finish()

	if err := h.vm.ShowStage(chi.URLParam(r, "stage")); err != nil {
		aqm.RespondError(w, http.StatusNotFound, "Unknown stage")
		return
	}

	aqm.Respond(w, http.StatusOK, h.vm.Board(), nil)
}

func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Dispatch")
	defer finish()

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	var cmd Command
	if err := json.Unmarshal(body, &cmd); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	h.run(w, r, cmd)
}

func (h *Handler) OrderAction(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.OrderAction")
	defer finish()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	h.run(w, r, Command{EntityKind: EntityOrder, EntityID: id, Action: chi.URLParam(r, "action")})
}

func (h *Handler) ToggleLine(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ToggleLine")
	defer finish()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid line ID")
		return
	}

	h.run(w, r, Command{EntityKind: EntityLine, EntityID: id, Action: ActionToggle})
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request, cmd Command) {
	log := h.log(r)

	err := h.vm.Dispatch(r.Context(), cmd)
	switch {
	case err == nil:
		aqm.Respond(w, http.StatusOK, h.vm.Board(), nil)
	case errors.Is(err, ErrUnknownCommand):
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, gateway.ErrRemoteCall):
		log.Errorf("kitchen rejected %s %d %s: %v", cmd.EntityKind, cmd.EntityID, cmd.Action, err)
		aqm.RespondError(w, http.StatusBadGateway, "Kitchen Order Error")
	default:
		log.Errorf("cannot run command: %v", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not run command")
	}
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Refresh")
	defer finish()

	if h.refresher == nil {
		aqm.RespondError(w, http.StatusServiceUnavailable, "Synchronizer not configured")
		return
	}
	if err := h.refresher.Refresh(r.Context()); err != nil {
		aqm.RespondError(w, http.StatusBadGateway, "Error loading kitchen orders")
		return
	}

	aqm.Respond(w, http.StatusOK, h.vm.Board(), nil)
}

func (h *Handler) ListNotices(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListNotices")
	defer finish()

	notices := []Notice{}
	if h.notices != nil {
		notices = h.notices.Recent()
	}

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"notices": notices,
	}, nil)
}
