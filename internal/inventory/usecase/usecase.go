package usecase

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/inventory"
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo     inventory.Repository
	resolver *Resolver
	checker  *AvailabilityChecker
	logger   logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, resolver *Resolver, checker *AvailabilityChecker, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:     repo,
		resolver: resolver,
		checker:  checker,
		logger:   log,
	}
}

// GetInventoryStatus derives set stock from the same product snapshot it
// reports singles from.
func (uc *inventoryUseCase) GetInventoryStatus(ctx context.Context) ([]model.InventoryStatus, error) {
	products, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	stock := make(map[string]int64, len(products))
	for _, p := range products {
		if p.Kind == model.KindSingle {
			stock[p.ID] = p.CurrentStock
		}
	}

	statuses := make([]model.InventoryStatus, 0, len(products))
	for i := range products {
		p := &products[i]
		current, err := uc.currentStock(ctx, p, stock)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, model.NewInventoryStatus(p, current))
	}

	uc.logger.Debug("inventory status computed", zap.Int("products", len(statuses)))
	return statuses, nil
}

func (uc *inventoryUseCase) GetProductInventory(ctx context.Context, productID string) (*model.InventoryStatus, error) {
	p, err := uc.repo.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}
	if p == nil {
		return nil, apperror.ProductNotFound(productID)
	}

	var current int64
	switch p.Kind {
	case model.KindSingle:
		current = p.CurrentStock
	case model.KindSet:
		if current, err = uc.resolver.AvailableSets(ctx, p.ID); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("product %s has unknown kind %q", p.ID, p.Kind)
	}

	status := model.NewInventoryStatus(p, current)
	return &status, nil
}

func (uc *inventoryUseCase) CheckAvailability(ctx context.Context, lines []model.CartLine) (*model.AvailabilityResult, error) {
	if len(lines) == 0 {
		return nil, apperror.InvalidInput("cart is empty")
	}
	for _, line := range lines {
		if line.ProductID == "" || line.Quantity <= 0 || line.Quantity > model.MaxLineQuantity {
			return nil, apperror.InvalidInputf("invalid cart line for product %q: quantity %d", line.ProductID, line.Quantity)
		}
	}
	return uc.checker.Check(ctx, lines)
}

func (uc *inventoryUseCase) currentStock(ctx context.Context, p *model.Product, stock map[string]int64) (int64, error) {
	switch p.Kind {
	case model.KindSingle:
		return p.CurrentStock, nil
	case model.KindSet:
		items, err := uc.resolver.ComponentsOf(ctx, p.ID)
		if err != nil {
			return 0, err
		}
		return bottleneck(items, stock), nil
	default:
		return 0, fmt.Errorf("product %s has unknown kind %q", p.ID, p.Kind)
	}
}
