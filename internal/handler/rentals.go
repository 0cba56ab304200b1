package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/yourorg/fleetrent/internal/domain"
	"github.com/yourorg/fleetrent/internal/service"
)

// RentRequest is the payload for opening a rental
type RentRequest struct {
	ClientID  int64 `json:"clientId"`
	VehicleID int64 `json:"vehicleId"`
}

// ReturnRequest is the payload for returning a vehicle
type ReturnRequest struct {
	DailyRate float64 `json:"dailyRate"`
}

// ReturnResponse reports the billing outcome of a return
type ReturnResponse struct {
	RentalID    int64     `json:"rentalId"`
	DaysCharged int       `json:"daysCharged"`
	TotalCharge float64   `json:"totalCharge"`
	EndedAt     time.Time `json:"endedAt"`
}

// RentalHandler handles the rent/return workflow and rental listing
type RentalHandler struct {
	ledger *service.LedgerService
	logger *slog.Logger
}

// NewRentalHandler creates a new rental handler
func NewRentalHandler(ledger *service.LedgerService, logger *slog.Logger) *RentalHandler {
	return &RentalHandler{ledger: ledger, logger: logger}
}

// Rent handles POST /api/rentals
func (h *RentalHandler) Rent(w http.ResponseWriter, r *http.Request) {
	var req RentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	rental, err := h.ledger.Rent(r.Context(), req.ClientID, req.VehicleID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, rental)
}

// Return handles POST /api/vehicles/{id}/return
func (h *RentalHandler) Return(w http.ResponseWriter, r *http.Request) {
	vehicleID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid vehicle id"})
		return
	}

	var req ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	rental, err := h.ledger.Return(r.Context(), vehicleID, req.DailyRate)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ReturnResponse{
		RentalID:    rental.ID,
		DaysCharged: rental.DaysCharged,
		TotalCharge: *rental.TotalCharge,
		EndedAt:     rental.EndedAt.UTC(),
	})
}

// List handles GET /api/rentals
func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.ledger.ListRentals(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if views == nil {
		views = []*domain.RentalView{}
	}
	writeJSON(w, http.StatusOK, views)
}
