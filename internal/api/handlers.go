package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/shipment-tracking/internal/command"
	"github.com/example/shipment-tracking/internal/domain"
	"github.com/example/shipment-tracking/internal/domain/merchant"
	"github.com/example/shipment-tracking/internal/domain/shipment"
	"github.com/example/shipment-tracking/internal/platform/logger"
	"github.com/example/shipment-tracking/internal/query"
	"github.com/google/uuid"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	log          *logger.Logger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		log:          log,
	}
}

// Merchant Handlers

func (h *Handlers) CreateMerchant(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateMerchant
	if !h.decode(w, r, &cmd) {
		return
	}

	m, err := h.cmdHandler.CreateMerchant(r.Context(), cmd)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

func (h *Handlers) ListMerchants(w http.ResponseWriter, r *http.Request) {
	merchants, err := h.queryHandler.ListMerchants(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, merchants)
}

func (h *Handlers) GetMerchant(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	m, err := h.queryHandler.GetMerchant(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handlers) DeleteMerchant(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.cmdHandler.DeleteMerchant(r.Context(), command.DeleteMerchant{MerchantID: id}); err != nil {
		h.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Shipment Handlers

func (h *Handlers) CreateShipment(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateShipment
	if !h.decode(w, r, &cmd) {
		return
	}

	s, err := h.cmdHandler.CreateShipment(r.Context(), cmd)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, s)
}

func (h *Handlers) ListShipments(w http.ResponseWriter, r *http.Request) {
	shipments, err := h.queryHandler.ListShipments(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, shipments)
}

func (h *Handlers) GetShipment(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s, err := h.queryHandler.GetShipment(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *Handlers) GetShipmentFull(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s, err := h.queryHandler.GetShipmentWithEvents(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *Handlers) ListShipmentEvents(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	events, err := h.queryHandler.ListShipmentEvents(r.Context(), id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

func (h *Handlers) AppendShipmentEvent(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var cmd command.AppendShipmentEvent
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.ShipmentID = id

	ev, err := h.cmdHandler.AppendShipmentEvent(r.Context(), cmd)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, ev)
}

// Health

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.queryHandler.Ready(r.Context()); err != nil {
		h.log.Error("health check failed", "err", err)
		respondError(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helper functions

const maxBodyBytes = 1 << 20

// decode reads a JSON body into dst, answering 422 on failure.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			respondError(w, verr.Error(), http.StatusUnprocessableEntity)
			return false
		}
		respondError(w, "invalid request body", http.StatusUnprocessableEntity)
		return false
	}
	return true
}

// respondErr maps domain errors onto HTTP status codes.
func (h *Handlers) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, merchant.ErrMerchantNotFound):
		respondError(w, "merchant not found", http.StatusNotFound)
	case errors.Is(err, shipment.ErrShipmentNotFound):
		respondError(w, "shipment not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, "not found", http.StatusNotFound)
	case errors.As(err, &verr):
		respondError(w, verr.Error(), http.StatusUnprocessableEntity)
	default:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		respondError(w, "internal server error", http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}
