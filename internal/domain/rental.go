package domain

import (
	"context"
	"time"
)

// Rental records one lease of a vehicle by a client. A nil EndedAt means
// the rental is open; at most one open rental may exist per vehicle, and
// the referenced vehicle's Available flag must agree with that at every
// quiescent point. A rental is mutated exactly once, when it closes, and
// is never deleted.
type Rental struct {
	ID          int64      `json:"id"`
	ClientID    int64      `json:"clientId"`
	VehicleID   int64      `json:"vehicleId"`
	StartedAt   time.Time  `json:"startedAt"`
	EndedAt     *time.Time `json:"endedAt,omitempty"`
	DaysCharged int        `json:"daysCharged,omitempty"`
	TotalCharge *float64   `json:"totalCharge,omitempty"`
}

// Open reports whether the rental has not been closed yet.
func (r *Rental) Open() bool {
	return r.EndedAt == nil
}

// RentalView is the denormalized listing row: client and vehicle resolved
// to display strings, charge still nil while the rental is open.
type RentalView struct {
	ID          int64      `json:"id"`
	ClientName  string     `json:"client"`
	Vehicle     string     `json:"vehicle"` // "brand model"
	StartedAt   time.Time  `json:"startedAt"`
	EndedAt     *time.Time `json:"endedAt,omitempty"`
	TotalCharge *float64   `json:"totalCharge,omitempty"`
}

// BillFunc computes the billed days and total charge for a rental interval.
// It is supplied by the caller so the repository can evaluate it inside the
// closing transaction, where the start timestamp is read under lock.
type BillFunc func(startedAt, endedAt time.Time) (days int, total float64)

// RentalRepository defines data access for rentals. Open and Close are the
// two transactional mutations of the ledger: each runs its check-and-mutate
// sequence atomically so the availability flag and the rental rows can
// never disagree.
type RentalRepository interface {
	// Open creates an open rental for the vehicle and flips it unavailable.
	// Fails with NotFoundError when the vehicle or client does not exist and
	// with ConflictError when the vehicle is already rented.
	Open(ctx context.Context, clientID, vehicleID int64) (*Rental, error)

	// Close ends the newest open rental for the vehicle at endedAt, storing
	// the charge computed by bill, and flips the vehicle available again.
	// Fails with ConflictError when no open rental exists.
	Close(ctx context.Context, vehicleID int64, endedAt time.Time, bill BillFunc) (*Rental, error)

	List(ctx context.Context) ([]*RentalView, error)
	CountOpen(ctx context.Context) (int, error)
}
