package sales

import (
	"context"

	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/sales/dto"
)

type UseCase interface {
	Checkout(ctx context.Context, input *dto.CheckoutInput) (*model.Sale, error)
	GetSale(ctx context.Context, id string) (*model.Sale, error)
	ListSales(ctx context.Context, filters *dto.SalesHistoryFilters) ([]model.Sale, error)
	GetRevenue(ctx context.Context) (*model.Revenue, error)
}
