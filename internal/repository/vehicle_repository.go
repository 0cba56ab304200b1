package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/yourorg/fleetrent/internal/domain"
)

// PostgresVehicleRepository implements domain.VehicleRepository using PostgreSQL
type PostgresVehicleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresVehicleRepository creates a new vehicle repository
func NewPostgresVehicleRepository(db *sql.DB, logger *slog.Logger) *PostgresVehicleRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresVehicleRepository{db: db, logger: logger}
}

// Create inserts a vehicle; new vehicles start available.
func (r *PostgresVehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (brand, model, year)
		VALUES ($1, $2, $3)
		RETURNING id, available, created_at
	`

	err := r.db.QueryRowContext(ctx, query, v.Brand, v.Model, v.Year).Scan(
		&v.ID,
		&v.Available,
		&v.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create vehicle",
			slog.String("brand", v.Brand),
			slog.String("model", v.Model),
			slog.String("error", err.Error()),
		)
		return storeErr("create vehicle", err)
	}

	return nil
}

// GetByID retrieves a vehicle by ID
func (r *PostgresVehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}

	query := `
		SELECT id, brand, model, year, available, created_at
		FROM vehicles
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.Brand, &v.Model, &v.Year, &v.Available, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "vehicle", ID: id}
		}
		return nil, storeErr("get vehicle", err)
	}

	return v, nil
}

// List returns all vehicles ordered by brand then model (the listing
// order contract).
func (r *PostgresVehicleRepository) List(ctx context.Context) ([]*domain.Vehicle, error) {
	query := `
		SELECT id, brand, model, year, available, created_at
		FROM vehicles
		ORDER BY brand, model
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list vehicles", slog.String("error", err.Error()))
		return nil, storeErr("list vehicles", err)
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		v := &domain.Vehicle{}
		if err := rows.Scan(&v.ID, &v.Brand, &v.Model, &v.Year, &v.Available, &v.CreatedAt); err != nil {
			return nil, storeErr("scan vehicle", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list vehicles", err)
	}

	return vehicles, nil
}

// Delete removes a vehicle. A vehicle referenced by any rental (open or
// closed) cannot be removed; the foreign key restricts the delete and we
// surface that as a conflict.
func (r *PostgresVehicleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.ConflictError{Reason: "vehicle has rental history and cannot be removed"}
		}
		return storeErr("delete vehicle", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("delete vehicle", err)
	}
	if rows == 0 {
		return &domain.NotFoundError{Entity: "vehicle", ID: id}
	}

	return nil
}

// CountAvailable returns the number of vehicles currently available.
func (r *PostgresVehicleRepository) CountAvailable(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM vehicles WHERE available`).Scan(&n)
	if err != nil {
		return 0, storeErr("count available vehicles", err)
	}
	return n, nil
}
