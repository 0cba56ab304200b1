package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/yourorg/fleetrent/internal/domain"
)

// PostgresRentalRepository implements domain.RentalRepository using
// PostgreSQL. Open and Close each run inside a single transaction: the
// availability check is a conditional UPDATE (an atomic compare-and-set on
// the flag) rather than a read followed by a write, so two concurrent
// rents of the same vehicle cannot both succeed.
type PostgresRentalRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRentalRepository creates a new rental repository
func NewPostgresRentalRepository(db *sql.DB, logger *slog.Logger) *PostgresRentalRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRentalRepository{db: db, logger: logger}
}

// Open creates an open rental and flips the vehicle unavailable, atomically.
func (r *PostgresRentalRepository) Open(ctx context.Context, clientID, vehicleID int64) (*domain.Rental, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("begin rent", err)
	}
	defer tx.Rollback()

	// Claim the vehicle. Zero rows means it either does not exist or is
	// already rented; tell those apart before reporting.
	result, err := tx.ExecContext(ctx,
		`UPDATE vehicles SET available = FALSE WHERE id = $1 AND available`,
		vehicleID,
	)
	if err != nil {
		return nil, storeErr("claim vehicle", err)
	}
	claimed, err := result.RowsAffected()
	if err != nil {
		return nil, storeErr("claim vehicle", err)
	}
	if claimed == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM vehicles WHERE id = $1)`, vehicleID,
		).Scan(&exists); err != nil {
			return nil, storeErr("check vehicle", err)
		}
		if !exists {
			return nil, &domain.NotFoundError{Entity: "vehicle", ID: vehicleID}
		}
		return nil, &domain.ConflictError{Reason: "vehicle already rented"}
	}

	rental := &domain.Rental{ClientID: clientID, VehicleID: vehicleID}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO rentals (client_id, vehicle_id) VALUES ($1, $2) RETURNING id, started_at`,
		clientID, vehicleID,
	).Scan(&rental.ID, &rental.StartedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, &domain.NotFoundError{Entity: "client", ID: clientID}
		}
		return nil, storeErr("open rental", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit rent", err)
	}

	r.logger.Debug("rental opened",
		slog.Int64("rental_id", rental.ID),
		slog.Int64("vehicle_id", vehicleID),
		slog.Int64("client_id", clientID),
	)
	return rental, nil
}

// Close ends the newest open rental for the vehicle and releases the
// vehicle, atomically. The open rental row is locked for the duration of
// the transaction so a racing rent cannot interleave.
func (r *PostgresRentalRepository) Close(ctx context.Context, vehicleID int64, endedAt time.Time, bill domain.BillFunc) (*domain.Rental, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("begin return", err)
	}
	defer tx.Rollback()

	rental := &domain.Rental{VehicleID: vehicleID}
	err = tx.QueryRowContext(ctx, `
		SELECT id, client_id, started_at
		FROM rentals
		WHERE vehicle_id = $1 AND ended_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1
		FOR UPDATE`,
		vehicleID,
	).Scan(&rental.ID, &rental.ClientID, &rental.StartedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.ConflictError{Reason: "vehicle is not currently rented"}
		}
		return nil, storeErr("find open rental", err)
	}

	days, total := bill(rental.StartedAt, endedAt)

	if _, err := tx.ExecContext(ctx,
		`UPDATE rentals SET ended_at = $1, total_charge = $2 WHERE id = $3`,
		endedAt, total, rental.ID,
	); err != nil {
		return nil, storeErr("close rental", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE vehicles SET available = TRUE WHERE id = $1`,
		vehicleID,
	); err != nil {
		return nil, storeErr("release vehicle", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit return", err)
	}

	rental.EndedAt = &endedAt
	rental.DaysCharged = days
	rental.TotalCharge = &total

	r.logger.Debug("rental closed",
		slog.Int64("rental_id", rental.ID),
		slog.Int64("vehicle_id", vehicleID),
		slog.Int("days_charged", days),
	)
	return rental, nil
}

// List returns the denormalized rental history, most recent first.
func (r *PostgresRentalRepository) List(ctx context.Context) ([]*domain.RentalView, error) {
	query := `
		SELECT r.id, c.name, v.brand || ' ' || v.model, r.started_at, r.ended_at, r.total_charge
		FROM rentals r
		JOIN clients c ON c.id = r.client_id
		JOIN vehicles v ON v.id = r.vehicle_id
		ORDER BY r.started_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list rentals", slog.String("error", err.Error()))
		return nil, storeErr("list rentals", err)
	}
	defer rows.Close()

	var views []*domain.RentalView
	for rows.Next() {
		view := &domain.RentalView{}
		var endedAt sql.NullTime
		var charge sql.NullFloat64
		if err := rows.Scan(&view.ID, &view.ClientName, &view.Vehicle, &view.StartedAt, &endedAt, &charge); err != nil {
			return nil, storeErr("scan rental", err)
		}
		if endedAt.Valid {
			t := endedAt.Time.UTC()
			view.EndedAt = &t
		}
		if charge.Valid {
			view.TotalCharge = &charge.Float64
		}
		view.StartedAt = view.StartedAt.UTC()
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list rentals", err)
	}

	return views, nil
}

// CountOpen returns the number of open rentals.
func (r *PostgresRentalRepository) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM rentals WHERE ended_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, storeErr("count open rentals", err)
	}
	return n, nil
}
