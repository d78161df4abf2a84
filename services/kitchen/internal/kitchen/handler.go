package kitchen

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/appetiteclub/kitchenscreen/pkg/gateway"
	"github.com/appetiteclub/kitchenscreen/pkg/lifecycle"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	service *Service
	logger  aqm.Logger
	config  *aqm.Config
	tlm     *telemetry.HTTP
}

func NewHandler(service *Service, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		service: service,
		logger:  logger,
		config:  config,
		tlm:     telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/kitchen", func(r chi.Router) {
		r.Post("/orders/details", h.Details)
		r.Get("/orders/readiness", h.Readiness)
		r.Patch("/orders/{id}/{action}", h.TransitionOrder)
		r.Patch("/order-lines/{id}/toggle", h.ToggleLine)
		r.Get("/screens", h.ListScreens)
		r.Put("/screens/{shop_id}", h.SaveScreen)
	})
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Details")
	defer finish()
	log := h.log(r)

	var req gateway.DetailsRequest
	if !h.decode(w, r, &req) {
		return
	}

	snapshot, err := h.service.Details(r.Context(), req.ShopID, req.Orders)
	if err != nil {
		log.Errorf("cannot build kitchen details: %v", err)
		h.respondServiceError(w, err, "Could not load kitchen orders")
		return
	}

	aqm.Respond(w, http.StatusOK, snapshot, nil)
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Readiness")
	defer finish()
	log := h.log(r)

	reference := r.URL.Query().Get("reference")
	readiness, err := h.service.CheckReadiness(r.Context(), reference)
	if err != nil {
		log.Errorf("cannot check readiness: %v", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not check order readiness")
		return
	}

	aqm.Respond(w, http.StatusOK, readiness.Wire(), nil)
}

func (h *Handler) TransitionOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.TransitionOrder")
	defer finish()
	log := h.log(r)

	id, ok := parseID(w, chi.URLParam(r, "id"), "Invalid order ID")
	if !ok {
		return
	}

	action := lifecycle.ActionByName(chi.URLParam(r, "action"))
	if action == nil {
		aqm.RespondError(w, http.StatusNotFound, "Unknown order action")
		return
	}

	order, err := h.service.Transition(r.Context(), id, *action)
	if err != nil {
		log.Errorf("cannot %s order %d: %v", action.Code(), id, err)
		h.respondServiceError(w, err, "Could not update order")
		return
	}

	aqm.Respond(w, http.StatusOK, order.Record(nil), nil)
}

func (h *Handler) ToggleLine(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ToggleLine")
	defer finish()
	log := h.log(r)

	id, ok := parseID(w, chi.URLParam(r, "id"), "Invalid line ID")
	if !ok {
		return
	}

	line, err := h.service.ToggleLine(r.Context(), id)
	if err != nil {
		log.Errorf("cannot toggle line %d: %v", id, err)
		h.respondServiceError(w, err, "Could not update line")
		return
	}

	aqm.Respond(w, http.StatusOK, line.Record(), nil)
}

func (h *Handler) ListScreens(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListScreens")
	defer finish()
	log := h.log(r)

	screens, err := h.service.ListScreens(r.Context())
	if err != nil {
		log.Errorf("cannot list screens: %v", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list screens")
		return
	}

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"screens": screens,
	}, nil)
}

func (h *Handler) SaveScreen(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SaveScreen")
	defer finish()
	log := h.log(r)

	shopID, ok := parseID(w, chi.URLParam(r, "shop_id"), "Invalid shop ID")
	if !ok {
		return
	}

	var screen Screen
	if !h.decode(w, r, &screen) {
		return
	}
	screen.ShopID = shopID

	if err := h.service.SaveScreen(r.Context(), &screen); err != nil {
		log.Errorf("cannot save screen: %v", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not save screen")
		return
	}

	aqm.Respond(w, http.StatusOK, screen, nil)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, dest); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}
	return true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		aqm.RespondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, ErrInvalidTransition):
		aqm.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrMissingReference):
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		aqm.RespondError(w, http.StatusInternalServerError, fallback)
	}
}

func parseID(w http.ResponseWriter, raw, msg string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		aqm.RespondError(w, http.StatusBadRequest, msg)
		return 0, false
	}
	return id, true
}
