package domain

import (
	"context"
	"time"
)

// Client is a registered renter. CPF is the fiscal identifier and is
// unique across all clients, enforced by the store's constraint.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CPF       string    `json:"cpf"`
	CreatedAt time.Time `json:"createdAt"`
}

// ClientRepository defines data access for clients
type ClientRepository interface {
	Create(ctx context.Context, c *Client) error
	List(ctx context.Context) ([]*Client, error)
	Delete(ctx context.Context, id int64) error
}
