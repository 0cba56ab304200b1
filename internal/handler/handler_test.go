package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourorg/fleetrent/internal/domain"
	"github.com/yourorg/fleetrent/internal/service"
)

type fakeVehicleRepo struct {
	vehicles map[int64]*domain.Vehicle
	rentals  *fakeRentalRepo
	nextID   int64
}

func (f *fakeVehicleRepo) Create(_ context.Context, v *domain.Vehicle) error {
	f.nextID++
	v.ID = f.nextID
	v.Available = true
	v.CreatedAt = time.Now()
	f.vehicles[v.ID] = v
	return nil
}

func (f *fakeVehicleRepo) GetByID(_ context.Context, id int64) (*domain.Vehicle, error) {
	if v, ok := f.vehicles[id]; ok {
		return v, nil
	}
	return nil, &domain.NotFoundError{Entity: "vehicle", ID: id}
}

func (f *fakeVehicleRepo) List(_ context.Context) ([]*domain.Vehicle, error) {
	out := []*domain.Vehicle{}
	for _, v := range f.vehicles {
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeVehicleRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.vehicles[id]; !ok {
		return &domain.NotFoundError{Entity: "vehicle", ID: id}
	}
	if f.rentals != nil {
		for _, r := range f.rentals.rentals {
			if r.VehicleID == id {
				return &domain.ConflictError{Reason: "vehicle has rental history and cannot be removed"}
			}
		}
	}
	delete(f.vehicles, id)
	return nil
}

func (f *fakeVehicleRepo) CountAvailable(_ context.Context) (int, error) {
	n := 0
	for _, v := range f.vehicles {
		if v.Available {
			n++
		}
	}
	return n, nil
}

type fakeClientRepo struct {
	clients map[int64]*domain.Client
	rentals *fakeRentalRepo
	nextID  int64
}

func (f *fakeClientRepo) Create(_ context.Context, c *domain.Client) error {
	for _, existing := range f.clients {
		if existing.CPF == c.CPF {
			return &domain.DuplicateKeyError{Field: "cpf", Value: c.CPF}
		}
	}
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	f.clients[c.ID] = c
	return nil
}

func (f *fakeClientRepo) List(_ context.Context) ([]*domain.Client, error) {
	out := []*domain.Client{}
	for _, c := range f.clients {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeClientRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.clients[id]; !ok {
		return &domain.NotFoundError{Entity: "client", ID: id}
	}
	if f.rentals != nil {
		for _, r := range f.rentals.rentals {
			if r.ClientID == id {
				return &domain.ConflictError{Reason: "client has rental history and cannot be removed"}
			}
		}
	}
	delete(f.clients, id)
	return nil
}

type fakeRentalRepo struct {
	vehicles *fakeVehicleRepo
	clients  *fakeClientRepo
	rentals  []*domain.Rental
	nextID   int64
}

func (f *fakeRentalRepo) Open(_ context.Context, clientID, vehicleID int64) (*domain.Rental, error) {
	v, ok := f.vehicles.vehicles[vehicleID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "vehicle", ID: vehicleID}
	}
	if !v.Available {
		return nil, &domain.ConflictError{Reason: "vehicle already rented"}
	}
	if _, ok := f.clients.clients[clientID]; !ok {
		return nil, &domain.NotFoundError{Entity: "client", ID: clientID}
	}
	v.Available = false
	f.nextID++
	rental := &domain.Rental{
		ID:        f.nextID,
		ClientID:  clientID,
		VehicleID: vehicleID,
		StartedAt: time.Now().UTC(),
	}
	f.rentals = append(f.rentals, rental)
	return rental, nil
}

func (f *fakeRentalRepo) Close(_ context.Context, vehicleID int64, endedAt time.Time, bill domain.BillFunc) (*domain.Rental, error) {
	var open *domain.Rental
	for _, r := range f.rentals {
		if r.VehicleID == vehicleID && r.EndedAt == nil {
			open = r
		}
	}
	if open == nil {
		return nil, &domain.ConflictError{Reason: "vehicle is not currently rented"}
	}
	days, total := bill(open.StartedAt, endedAt)
	open.EndedAt = &endedAt
	open.DaysCharged = days
	open.TotalCharge = &total
	if v, ok := f.vehicles.vehicles[vehicleID]; ok {
		v.Available = true
	}
	return open, nil
}

func (f *fakeRentalRepo) List(_ context.Context) ([]*domain.RentalView, error) {
	out := []*domain.RentalView{}
	for _, r := range f.rentals {
		out = append(out, &domain.RentalView{
			ID:          r.ID,
			StartedAt:   r.StartedAt,
			EndedAt:     r.EndedAt,
			TotalCharge: r.TotalCharge,
		})
	}
	return out, nil
}

func (f *fakeRentalRepo) CountOpen(_ context.Context) (int, error) {
	n := 0
	for _, r := range f.rentals {
		if r.EndedAt == nil {
			n++
		}
	}
	return n, nil
}

func newTestMux() *http.ServeMux {
	vehicles := &fakeVehicleRepo{vehicles: map[int64]*domain.Vehicle{}}
	clients := &fakeClientRepo{clients: map[int64]*domain.Client{}}
	rentals := &fakeRentalRepo{vehicles: vehicles, clients: clients}
	vehicles.rentals = rentals
	clients.rentals = rentals
	ledger := service.NewLedgerService(vehicles, clients, rentals, nil, nil, nil, 0)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	vehicleHandler := NewVehicleHandler(ledger, logger)
	clientHandler := NewClientHandler(ledger, logger)
	rentalHandler := NewRentalHandler(ledger, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/vehicles", vehicleHandler.Register)
	mux.HandleFunc("GET /api/vehicles", vehicleHandler.List)
	mux.HandleFunc("DELETE /api/vehicles/{id}", vehicleHandler.Delete)
	mux.HandleFunc("POST /api/clients", clientHandler.Register)
	mux.HandleFunc("GET /api/clients", clientHandler.List)
	mux.HandleFunc("DELETE /api/clients/{id}", clientHandler.Delete)
	mux.HandleFunc("POST /api/rentals", rentalHandler.Rent)
	mux.HandleFunc("POST /api/vehicles/{id}/return", rentalHandler.Return)
	mux.HandleFunc("GET /api/rentals", rentalHandler.List)
	return mux
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func seedVehicle(t *testing.T, mux *http.ServeMux) *domain.Vehicle {
	t.Helper()
	rec := doRequest(t, mux, http.MethodPost, "/api/vehicles", RegisterVehicleRequest{Brand: "Fiat", Model: "Uno", Year: 2020})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed vehicle: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var v domain.Vehicle
	decodeBody(t, rec, &v)
	return &v
}

func seedClient(t *testing.T, mux *http.ServeMux) *domain.Client {
	t.Helper()
	rec := doRequest(t, mux, http.MethodPost, "/api/clients", RegisterClientRequest{Name: "Alice", CPF: "123.456.789-00"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed client: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var c domain.Client
	decodeBody(t, rec, &c)
	return &c
}

func TestRegisterVehicleEndpoint(t *testing.T) {
	mux := newTestMux()

	rec := doRequest(t, mux, http.MethodPost, "/api/vehicles", RegisterVehicleRequest{Brand: "Fiat", Model: "Uno", Year: 2020})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var v domain.Vehicle
	decodeBody(t, rec, &v)
	if v.ID == 0 || !v.Available {
		t.Fatalf("expected available vehicle with id, got %+v", v)
	}
}

func TestRegisterVehicleRejectsInvalidPayload(t *testing.T) {
	mux := newTestMux()

	rec := doRequest(t, mux, http.MethodPost, "/api/vehicles", RegisterVehicleRequest{Brand: "", Model: "Uno", Year: 2020})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty brand, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/vehicles", bytes.NewBufferString("{not json"))
	recRaw := httptest.NewRecorder()
	mux.ServeHTTP(recRaw, req)
	if recRaw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", recRaw.Code)
	}
}

func TestListVehiclesEmptyIsArray(t *testing.T) {
	mux := newTestMux()

	rec := doRequest(t, mux, http.MethodGet, "/api/vehicles", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := bytes.TrimSpace(rec.Body.Bytes()); !bytes.Equal(body, []byte("[]")) {
		t.Fatalf("expected empty JSON array, got %s", body)
	}
}

func TestDeleteVehicleEndpoint(t *testing.T) {
	mux := newTestMux()
	v := seedVehicle(t, mux)

	rec := doRequest(t, mux, http.MethodDelete, fmt.Sprintf("/api/vehicles/%d", v.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doRequest(t, mux, http.MethodDelete, fmt.Sprintf("/api/vehicles/%d", v.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted vehicle, got %d", rec.Code)
	}

	rec = doRequest(t, mux, http.MethodDelete, "/api/vehicles/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", rec.Code)
	}
}

func TestDeleteReferencedEntitiesConflict(t *testing.T) {
	mux := newTestMux()
	v := seedVehicle(t, mux)
	c := seedClient(t, mux)

	if rec := doRequest(t, mux, http.MethodPost, "/api/rentals", RentRequest{ClientID: c.ID, VehicleID: v.ID}); rec.Code != http.StatusCreated {
		t.Fatalf("rent failed: %d", rec.Code)
	}

	rec := doRequest(t, mux, http.MethodDelete, fmt.Sprintf("/api/vehicles/%d", v.ID), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 deleting a vehicle with rental history, got %d", rec.Code)
	}
	rec = doRequest(t, mux, http.MethodDelete, fmt.Sprintf("/api/clients/%d", c.ID), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 deleting a client with rental history, got %d", rec.Code)
	}

	// Closing the rental does not unpin either: history is permanent.
	if rec := doRequest(t, mux, http.MethodPost, fmt.Sprintf("/api/vehicles/%d/return", v.ID), ReturnRequest{DailyRate: 80}); rec.Code != http.StatusOK {
		t.Fatalf("return failed: %d", rec.Code)
	}
	rec = doRequest(t, mux, http.MethodDelete, fmt.Sprintf("/api/vehicles/%d", v.ID), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 after return, got %d", rec.Code)
	}
}

func TestRegisterClientDuplicateCPFEndpoint(t *testing.T) {
	mux := newTestMux()
	seedClient(t, mux)

	rec := doRequest(t, mux, http.MethodPost, "/api/clients", RegisterClientRequest{Name: "Bob", CPF: "123.456.789-00"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate cpf, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRentEndpoint(t *testing.T) {
	mux := newTestMux()
	v := seedVehicle(t, mux)
	c := seedClient(t, mux)

	rec := doRequest(t, mux, http.MethodPost, "/api/rentals", RentRequest{ClientID: c.ID, VehicleID: v.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var rental domain.Rental
	decodeBody(t, rec, &rental)
	if rental.VehicleID != v.ID || rental.ClientID != c.ID || rental.EndedAt != nil {
		t.Fatalf("unexpected rental: %+v", rental)
	}

	// The vehicle is taken now.
	rec = doRequest(t, mux, http.MethodPost, "/api/rentals", RentRequest{ClientID: c.ID, VehicleID: v.ID})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for double rent, got %d", rec.Code)
	}

	rec = doRequest(t, mux, http.MethodPost, "/api/rentals", RentRequest{ClientID: c.ID, VehicleID: 999})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown vehicle, got %d", rec.Code)
	}
}

func TestReturnEndpoint(t *testing.T) {
	mux := newTestMux()
	v := seedVehicle(t, mux)
	c := seedClient(t, mux)

	rec := doRequest(t, mux, http.MethodPost, fmt.Sprintf("/api/vehicles/%d/return", v.ID), ReturnRequest{DailyRate: 100})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 returning an idle vehicle, got %d", rec.Code)
	}

	if rec := doRequest(t, mux, http.MethodPost, "/api/rentals", RentRequest{ClientID: c.ID, VehicleID: v.ID}); rec.Code != http.StatusCreated {
		t.Fatalf("rent failed: %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, mux, http.MethodPost, fmt.Sprintf("/api/vehicles/%d/return", v.ID), ReturnRequest{DailyRate: 100})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ReturnResponse
	decodeBody(t, rec, &resp)
	if resp.DaysCharged != 1 || resp.TotalCharge != 100.0 {
		t.Fatalf("expected 1 day at 100.00, got %+v", resp)
	}

	rec = doRequest(t, mux, http.MethodPost, fmt.Sprintf("/api/vehicles/%d/return", v.ID), ReturnRequest{DailyRate: 100})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for second return, got %d", rec.Code)
	}

	rec = doRequest(t, mux, http.MethodPost, fmt.Sprintf("/api/vehicles/%d/return", v.ID), ReturnRequest{DailyRate: 0})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-positive rate, got %d", rec.Code)
	}
}

func TestListRentalsEndpoint(t *testing.T) {
	mux := newTestMux()
	v := seedVehicle(t, mux)
	c := seedClient(t, mux)

	rec := doRequest(t, mux, http.MethodGet, "/api/rentals", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var views []*domain.RentalView
	decodeBody(t, rec, &views)
	if len(views) != 0 {
		t.Fatalf("expected no rentals yet, got %d", len(views))
	}

	if rec := doRequest(t, mux, http.MethodPost, "/api/rentals", RentRequest{ClientID: c.ID, VehicleID: v.ID}); rec.Code != http.StatusCreated {
		t.Fatalf("rent failed: %d", rec.Code)
	}

	rec = doRequest(t, mux, http.MethodGet, "/api/rentals", nil)
	decodeBody(t, rec, &views)
	if len(views) != 1 || views[0].EndedAt != nil {
		t.Fatalf("expected one open rental, got %+v", views)
	}
}
