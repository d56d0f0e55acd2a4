package inventory

import (
	"context"

	"github.com/fekuna/omnipos-stall-service/internal/model"
)

// Ledger is the authoritative store of single-product stock.
type Ledger interface {
	// Get returns nil, nil when the product does not exist.
	Get(ctx context.Context, productID string) (*model.Product, error)
	// Decrement locks the product row for the rest of the unit of work bound
	// to ctx, re-reads the stock under that lock and subtracts quantity. It
	// never commits. Fails with apperror InsufficientStock or NotFound.
	Decrement(ctx context.Context, productID string, quantity int64) (*model.Product, error)
}

type Repository interface {
	Ledger

	// ComponentsOf returns the composition of a set in insertion order.
	ComponentsOf(ctx context.Context, setProductID string) ([]model.SetItem, error)
	// FindAll returns every product ordered by creation time.
	FindAll(ctx context.Context) ([]model.Product, error)
}
