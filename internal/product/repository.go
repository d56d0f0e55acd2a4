package product

import (
	"context"

	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/product/dto"
)

type Repository interface {
	// Create inserts the product and, for sets, its composition entries.
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	FindSetItems(ctx context.Context, setProductID string) ([]model.SetItem, error)
	Update(ctx context.Context, product *model.Product) error
	// Delete fails with a constraint violation while sales or sets reference the product.
	Delete(ctx context.Context, id string) error

	IsNameUnique(ctx context.Context, name, excludeID string) (bool, error)
}

// TxManager runs fn as a single unit of work.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Indexer mirrors the catalog into a search backend. Failures never block
// catalog writes.
type Indexer interface {
	IndexProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id string) error
	SearchProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
}
