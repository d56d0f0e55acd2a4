package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-stall-service/internal/product"
	"github.com/fekuna/omnipos-stall-service/internal/product/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SetStock derives how many whole sets current component stock can build.
type SetStock interface {
	AvailableSets(ctx context.Context, setProductID string) (int64, error)
}

type productUseCase struct {
	repo    product.Repository
	tx      product.TxManager
	sets    SetStock
	indexer product.Indexer // nil when search is not configured
	logger  logger.ZapLogger
	now     func() time.Time
}

func NewProductUseCase(repo product.Repository, tx product.TxManager, sets SetStock, indexer product.Indexer, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:    repo,
		tx:      tx,
		sets:    sets,
		indexer: indexer,
		logger:  log,
		now:     time.Now,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateCatalogFields(name, input.UnitCost, input.SalePrice); err != nil {
		return nil, err
	}
	if input.InitialStock < 0 {
		return nil, apperror.InvalidInputf("initial stock must not be negative: %d", input.InitialStock)
	}

	unique, err := uc.repo.IsNameUnique(ctx, name, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, apperror.ConstraintViolation("product name already exists: "+name, nil)
	}

	id := uuid.New().String()
	now := uc.now().UTC()
	p := &model.Product{
		BaseModel:    model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		Name:         name,
		UnitCost:     input.UnitCost,
		SalePrice:    input.SalePrice,
		InitialStock: input.InitialStock,
		Kind:         input.Kind,
	}

	switch input.Kind {
	case model.KindSingle:
		if len(input.SetItems) > 0 {
			return nil, apperror.InvalidInput("single products cannot have set items")
		}
		p.CurrentStock = input.InitialStock
	case model.KindSet:
		items, err := uc.buildSetItems(ctx, id, input.SetItems)
		if err != nil {
			return nil, err
		}
		p.SetItems = items
	default:
		return nil, apperror.InvalidInputf("unknown product kind %q", input.Kind)
	}

	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return uc.repo.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("product created",
		zap.String("product_id", p.ID),
		zap.String("kind", p.Kind.String()),
		zap.Int("set_items", len(p.SetItems)),
	)

	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

// buildSetItems enforces one level of nesting: components must be existing
// single products, each listed once.
func (uc *productUseCase) buildSetItems(ctx context.Context, setID string, inputs []dto.SetItemInput) ([]model.SetItem, error) {
	if len(inputs) == 0 {
		return nil, apperror.InvalidInput("set products need at least one set item")
	}

	seen := make(map[string]struct{}, len(inputs))
	items := make([]model.SetItem, 0, len(inputs))
	for _, in := range inputs {
		if in.ProductID == "" {
			return nil, apperror.InvalidInput("set item product id is required")
		}
		if in.Quantity <= 0 {
			return nil, apperror.InvalidInputf("set item quantity must be positive: %s", in.ProductID)
		}
		if in.ProductID == setID {
			return nil, apperror.InvalidInput("a set cannot contain itself")
		}
		if _, dup := seen[in.ProductID]; dup {
			return nil, apperror.InvalidInputf("duplicate set item: %s", in.ProductID)
		}
		seen[in.ProductID] = struct{}{}

		component, err := uc.repo.FindByID(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if component == nil {
			return nil, apperror.ProductNotFound(in.ProductID)
		}
		if component.Kind != model.KindSingle {
			return nil, apperror.InvalidInputf("set item %s must be a single product", in.ProductID)
		}

		items = append(items, model.SetItem{
			ID:                 uuid.New().String(),
			SetProductID:       setID,
			ComponentProductID: in.ProductID,
			Quantity:           in.Quantity,
		})
	}
	return items, nil
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.indexer == nil {
		return
	}
	if err := uc.indexer.IndexProduct(ctx, p); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.ProductNotFound(id)
	}

	if p.IsSet() {
		if p.SetItems, err = uc.repo.FindSetItems(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	if err := uc.deriveStock(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	if filters.Kind != "" && !filters.Kind.Valid() {
		return nil, 0, apperror.InvalidInputf("unknown product kind %q", filters.Kind)
	}

	if filters.SearchQuery != "" && uc.indexer != nil {
		products, count, err := uc.searchProducts(ctx, filters)
		if err == nil {
			return products, count, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	for i := range products {
		if err := uc.deriveStock(ctx, &products[i]); err != nil {
			return nil, 0, err
		}
	}
	return products, count, nil
}

// searchProducts resolves index hits against the catalog so prices and stock
// are never served from the index.
func (uc *productUseCase) searchProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	hits, count, err := uc.indexer.SearchProducts(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	products := make([]model.Product, 0, len(hits))
	for _, hit := range hits {
		p, err := uc.repo.FindByID(ctx, hit.ID)
		if err != nil {
			return nil, 0, err
		}
		if p == nil {
			continue
		}
		if err := uc.deriveStock(ctx, p); err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	return products, count, nil
}

func (uc *productUseCase) deriveStock(ctx context.Context, p *model.Product) error {
	switch p.Kind {
	case model.KindSingle:
		return nil
	case model.KindSet:
		n, err := uc.sets.AvailableSets(ctx, p.ID)
		if err != nil {
			return err
		}
		p.CurrentStock = n
		return nil
	default:
		return fmt.Errorf("product %s has unknown kind %q", p.ID, p.Kind)
	}
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.ProductNotFound(input.ID)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name != p.Name {
			unique, err := uc.repo.IsNameUnique(ctx, name, p.ID)
			if err != nil {
				return nil, err
			}
			if !unique {
				return nil, apperror.ConstraintViolation("product name already exists: "+name, nil)
			}
		}
		p.Name = name
	}
	if input.UnitCost != nil {
		p.UnitCost = *input.UnitCost
	}
	if input.SalePrice != nil {
		p.SalePrice = *input.SalePrice
	}
	if err := validateCatalogFields(p.Name, p.UnitCost, p.SalePrice); err != nil {
		return nil, err
	}

	return uc.save(ctx, p)
}

// UpdatePrice changes the sale price only. Sales already recorded keep the
// price they were sold at.
func (uc *productUseCase) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) (*model.Product, error) {
	if price.IsNegative() {
		return nil, apperror.InvalidInputf("sale price must not be negative: %s", price)
	}

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.ProductNotFound(id)
	}

	p.SalePrice = price
	return uc.save(ctx, p)
}

func (uc *productUseCase) save(ctx context.Context, p *model.Product) (*model.Product, error) {
	p.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	uc.logger.Info("product updated",
		zap.String("product_id", p.ID),
		zap.String("sale_price", p.SalePrice.String()),
	)

	go uc.syncToElastic(context.Background(), p)

	if err := uc.deriveStock(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return apperror.ProductNotFound(id)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	uc.logger.Info("product deleted", zap.String("product_id", id))

	if uc.indexer != nil {
		go func() {
			if err := uc.indexer.DeleteProduct(context.Background(), id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.String("product_id", id), zap.Error(err))
			}
		}()
	}
	return nil
}

func validateCatalogFields(name string, unitCost, salePrice decimal.Decimal) error {
	if name == "" {
		return apperror.InvalidInput("product name is required")
	}
	if unitCost.IsNegative() {
		return apperror.InvalidInputf("unit cost must not be negative: %s", unitCost)
	}
	if salePrice.IsNegative() {
		return apperror.InvalidInputf("sale price must not be negative: %s", salePrice)
	}
	return nil
}
