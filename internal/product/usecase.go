package product

import (
	"context"

	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/product/dto"
	"github.com/shopspring/decimal"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	UpdatePrice(ctx context.Context, id string, price decimal.Decimal) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}
