package inventory

import (
	"context"

	"github.com/fekuna/omnipos-stall-service/internal/model"
)

type UseCase interface {
	GetInventoryStatus(ctx context.Context) ([]model.InventoryStatus, error)
	GetProductInventory(ctx context.Context, productID string) (*model.InventoryStatus, error)
	CheckAvailability(ctx context.Context, lines []model.CartLine) (*model.AvailabilityResult, error)
}
