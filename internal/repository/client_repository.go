package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/yourorg/fleetrent/internal/domain"
)

// PostgresClientRepository implements domain.ClientRepository using PostgreSQL
type PostgresClientRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresClientRepository creates a new client repository
func NewPostgresClientRepository(db *sql.DB, logger *slog.Logger) *PostgresClientRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresClientRepository{db: db, logger: logger}
}

// Create inserts a client. CPF uniqueness is enforced by the store's
// constraint; a violation is reported as DuplicateKeyError and the failed
// insert leaves no partial state.
func (r *PostgresClientRepository) Create(ctx context.Context, c *domain.Client) error {
	query := `
		INSERT INTO clients (name, cpf)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, c.Name, c.CPF).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateKeyError{Field: "cpf", Value: c.CPF}
		}
		r.logger.Error("failed to create client",
			slog.String("name", c.Name),
			slog.String("error", err.Error()),
		)
		return storeErr("create client", err)
	}

	return nil
}

// List returns all clients ordered by name (the listing order contract).
func (r *PostgresClientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	query := `
		SELECT id, name, cpf, created_at
		FROM clients
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list clients", slog.String("error", err.Error()))
		return nil, storeErr("list clients", err)
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		c := &domain.Client{}
		if err := rows.Scan(&c.ID, &c.Name, &c.CPF, &c.CreatedAt); err != nil {
			return nil, storeErr("scan client", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list clients", err)
	}

	return clients, nil
}

// Delete removes a client. Clients referenced by rentals are protected by
// the foreign key; that restriction surfaces as a conflict.
func (r *PostgresClientRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.ConflictError{Reason: "client has rental history and cannot be removed"}
		}
		return storeErr("delete client", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storeErr("delete client", err)
	}
	if rows == 0 {
		return &domain.NotFoundError{Entity: "client", ID: id}
	}

	return nil
}
