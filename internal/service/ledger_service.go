package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/fleetrent/internal/domain"
	"github.com/yourorg/fleetrent/internal/events"
	"github.com/yourorg/fleetrent/internal/observability/metrics"
)

// Cache key namespaces, invalidated wholesale on writes to the aggregate.
const (
	vehicleKeyPrefix = "vehicles:"
	clientKeyPrefix  = "clients:"
	rentalKeyPrefix  = "rentals:"

	vehicleListKey = vehicleKeyPrefix + "list"
	clientListKey  = clientKeyPrefix + "list"
	rentalListKey  = rentalKeyPrefix + "list"
)

// LedgerService owns the rental lifecycle: it validates inputs, delegates
// the transactional mutations to the repositories, computes billing, and
// keeps the list cache, metrics and event feed in step with the store.
type LedgerService struct {
	vehicleRepo domain.VehicleRepository
	clientRepo  domain.ClientRepository
	rentalRepo  domain.RentalRepository
	cache       ListCache
	broker      *events.Broker
	logger      *slog.Logger
	cacheTTL    time.Duration
	now         func() time.Time
}

// NewLedgerService creates a new ledger service. cache and broker may be
// nil, disabling list caching and the event feed respectively.
func NewLedgerService(
	vehicleRepo domain.VehicleRepository,
	clientRepo domain.ClientRepository,
	rentalRepo domain.RentalRepository,
	cache ListCache,
	broker *events.Broker,
	logger *slog.Logger,
	cacheTTL time.Duration,
) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &LedgerService{
		vehicleRepo: vehicleRepo,
		clientRepo:  clientRepo,
		rentalRepo:  rentalRepo,
		cache:       cache,
		broker:      broker,
		logger:      logger,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

// RegisterVehicle creates a vehicle, available for rent.
func (s *LedgerService) RegisterVehicle(ctx context.Context, brand, model string, year int) (*domain.Vehicle, error) {
	if strings.TrimSpace(brand) == "" {
		return nil, domain.NewValidationError("brand", "must not be empty")
	}
	if strings.TrimSpace(model) == "" {
		return nil, domain.NewValidationError("model", "must not be empty")
	}
	if year <= 0 {
		return nil, domain.NewValidationError("year", "must be a positive integer")
	}

	vehicle := &domain.Vehicle{Brand: brand, Model: model, Year: year}
	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	s.invalidate(ctx, vehicleKeyPrefix)
	s.logger.Info("vehicle registered",
		slog.Int64("vehicle_id", vehicle.ID),
		slog.String("brand", vehicle.Brand),
		slog.String("model", vehicle.Model),
	)
	return vehicle, nil
}

// ListVehicles returns all vehicles ordered by brand then model.
func (s *LedgerService) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	if payload, ok := cacheGet(ctx, s.cache, vehicleListKey); ok {
		var vehicles []*domain.Vehicle
		if err := json.Unmarshal(payload, &vehicles); err == nil {
			return vehicles, nil
		}
	}

	vehicles, err := s.vehicleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheList(ctx, vehicleListKey, vehicles)
	return vehicles, nil
}

// RemoveVehicle deletes an unreferenced vehicle.
func (s *LedgerService) RemoveVehicle(ctx context.Context, id int64) error {
	if err := s.vehicleRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, vehicleKeyPrefix)
	s.logger.Info("vehicle removed", slog.Int64("vehicle_id", id))
	return nil
}

// RegisterClient creates a client with a unique CPF.
func (s *LedgerService) RegisterClient(ctx context.Context, name, cpf string) (*domain.Client, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}
	if strings.TrimSpace(cpf) == "" {
		return nil, domain.NewValidationError("cpf", "must not be empty")
	}

	client := &domain.Client{Name: name, CPF: cpf}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	s.invalidate(ctx, clientKeyPrefix)
	s.logger.Info("client registered", slog.Int64("client_id", client.ID))
	return client, nil
}

// ListClients returns all clients ordered by name.
func (s *LedgerService) ListClients(ctx context.Context) ([]*domain.Client, error) {
	if payload, ok := cacheGet(ctx, s.cache, clientListKey); ok {
		var clients []*domain.Client
		if err := json.Unmarshal(payload, &clients); err == nil {
			return clients, nil
		}
	}

	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheList(ctx, clientListKey, clients)
	return clients, nil
}

// RemoveClient deletes an unreferenced client.
func (s *LedgerService) RemoveClient(ctx context.Context, id int64) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, clientKeyPrefix)
	s.logger.Info("client removed", slog.Int64("client_id", id))
	return nil
}

// Rent opens a rental for the vehicle, flipping it unavailable. Both
// effects commit atomically in the repository or not at all.
func (s *LedgerService) Rent(ctx context.Context, clientID, vehicleID int64) (*domain.Rental, error) {
	if clientID <= 0 {
		return nil, domain.NewValidationError("clientId", "must be a positive identifier")
	}
	if vehicleID <= 0 {
		return nil, domain.NewValidationError("vehicleId", "must be a positive identifier")
	}

	rental, err := s.rentalRepo.Open(ctx, clientID, vehicleID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, vehicleKeyPrefix)
	s.invalidate(ctx, rentalKeyPrefix)
	metrics.ObserveRentalOpened()
	s.publish(events.Event{
		Type:      events.TypeRentalOpened,
		RentalID:  rental.ID,
		VehicleID: rental.VehicleID,
		ClientID:  rental.ClientID,
		At:        rental.StartedAt,
	})

	s.logger.Info("rental opened",
		slog.Int64("rental_id", rental.ID),
		slog.Int64("vehicle_id", vehicleID),
		slog.Int64("client_id", clientID),
	)
	return rental, nil
}

// Return closes the vehicle's open rental, charging whole elapsed days at
// dailyRate with a one-day minimum, and flips the vehicle available again.
func (s *LedgerService) Return(ctx context.Context, vehicleID int64, dailyRate float64) (*domain.Rental, error) {
	if vehicleID <= 0 {
		return nil, domain.NewValidationError("vehicleId", "must be a positive identifier")
	}
	if dailyRate <= 0 {
		return nil, domain.NewValidationError("dailyRate", "must be a positive amount")
	}

	rental, err := s.rentalRepo.Close(ctx, vehicleID, s.now().UTC(), billAt(dailyRate))
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, vehicleKeyPrefix)
	s.invalidate(ctx, rentalKeyPrefix)
	metrics.ObserveRentalClosed(rental.DaysCharged, *rental.TotalCharge)
	s.publish(events.Event{
		Type:        events.TypeRentalClosed,
		RentalID:    rental.ID,
		VehicleID:   rental.VehicleID,
		ClientID:    rental.ClientID,
		At:          *rental.EndedAt,
		DaysCharged: rental.DaysCharged,
		TotalCharge: *rental.TotalCharge,
	})

	s.logger.Info("rental closed",
		slog.Int64("rental_id", rental.ID),
		slog.Int64("vehicle_id", vehicleID),
		slog.Int("days_charged", rental.DaysCharged),
		slog.Float64("total_charge", *rental.TotalCharge),
	)
	return rental, nil
}

// ListRentals returns the denormalized rental history, most recent first.
func (s *LedgerService) ListRentals(ctx context.Context) ([]*domain.RentalView, error) {
	if payload, ok := cacheGet(ctx, s.cache, rentalListKey); ok {
		var views []*domain.RentalView
		if err := json.Unmarshal(payload, &views); err == nil {
			return views, nil
		}
	}

	views, err := s.rentalRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheList(ctx, rentalListKey, views)
	return views, nil
}

// FleetStats reports the current availability counts for the gauges.
func (s *LedgerService) FleetStats(ctx context.Context) (available, open int, err error) {
	available, err = s.vehicleRepo.CountAvailable(ctx)
	if err != nil {
		return 0, 0, err
	}
	open, err = s.rentalRepo.CountOpen(ctx)
	if err != nil {
		return 0, 0, err
	}
	return available, open, nil
}

func (s *LedgerService) cacheList(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.cache.Set(ctx, key, payload, s.cacheTTL)
}

func (s *LedgerService) invalidate(ctx context.Context, prefix string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, prefix)
	}
}

func (s *LedgerService) publish(e events.Event) {
	if s.broker != nil {
		s.broker.Publish(e)
	}
}
