package domain

import (
	"context"
	"time"
)

// Vehicle is a rentable unit of the fleet. Availability is owned by the
// rental ledger: it flips to false when a rental opens and back to true
// when the rental closes, never independently.
type Vehicle struct {
	ID        int64     `json:"id"`
	Brand     string    `json:"brand"`
	Model     string    `json:"model"`
	Year      int       `json:"year"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"createdAt"`
}

// VehicleRepository defines data access for vehicles
type VehicleRepository interface {
	Create(ctx context.Context, v *Vehicle) error
	GetByID(ctx context.Context, id int64) (*Vehicle, error)
	List(ctx context.Context) ([]*Vehicle, error)
	Delete(ctx context.Context, id int64) error
	CountAvailable(ctx context.Context) (int, error)
}
