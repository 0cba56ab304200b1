package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/fleetrent/internal/domain"
	"github.com/yourorg/fleetrent/internal/service"
)

// RegisterClientRequest is the payload for client registration
type RegisterClientRequest struct {
	Name string `json:"name"`
	CPF  string `json:"cpf"`
}

// ClientHandler handles the client CRUD routes
type ClientHandler struct {
	ledger *service.LedgerService
	logger *slog.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(ledger *service.LedgerService, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{ledger: ledger, logger: logger}
}

// Register handles POST /api/clients
func (h *ClientHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	client, err := h.ledger.RegisterClient(r.Context(), req.Name, req.CPF)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, client)
}

// List handles GET /api/clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.ledger.ListClients(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if clients == nil {
		clients = []*domain.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

// Delete handles DELETE /api/clients/{id}
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid client id"})
		return
	}

	if err := h.ledger.RemoveClient(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
