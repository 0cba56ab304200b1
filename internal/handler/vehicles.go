package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/fleetrent/internal/domain"
	"github.com/yourorg/fleetrent/internal/service"
)

// RegisterVehicleRequest is the payload for vehicle registration
type RegisterVehicleRequest struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

// VehicleHandler handles the vehicle CRUD routes
type VehicleHandler struct {
	ledger *service.LedgerService
	logger *slog.Logger
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(ledger *service.LedgerService, logger *slog.Logger) *VehicleHandler {
	return &VehicleHandler{ledger: ledger, logger: logger}
}

// Register handles POST /api/vehicles
func (h *VehicleHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	vehicle, err := h.ledger.RegisterVehicle(r.Context(), req.Brand, req.Model, req.Year)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, vehicle)
}

// List handles GET /api/vehicles
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.ledger.ListVehicles(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if vehicles == nil {
		vehicles = []*domain.Vehicle{}
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// Delete handles DELETE /api/vehicles/{id}
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid vehicle id"})
		return
	}

	if err := h.ledger.RemoveVehicle(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
