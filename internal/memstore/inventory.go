package memstore

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/model"
)

type InventoryRepository struct {
	store *Store
}

func NewInventoryRepository(store *Store) *InventoryRepository {
	return &InventoryRepository{store: store}
}

// Get reads the committed row, overlaid with any stock already written by
// the transaction bound to ctx.
func (r *InventoryRepository) Get(ctx context.Context, productID string) (*model.Product, error) {
	r.store.mu.RLock()
	p := r.store.product(productID)
	r.store.mu.RUnlock()

	if p == nil {
		return nil, nil
	}
	if t, ok := txFrom(ctx); ok {
		if stock, ok := t.stock[productID]; ok {
			p.CurrentStock = stock
		}
	}
	return p, nil
}

func (r *InventoryRepository) Decrement(ctx context.Context, productID string, quantity int64) (*model.Product, error) {
	if quantity <= 0 {
		return nil, apperror.InvalidInputf("decrement quantity must be positive: %d", quantity)
	}
	t, ok := txFrom(ctx)
	if !ok {
		return nil, fmt.Errorf("decrement %s: %w", productID, errNoTransaction)
	}
	if err := t.lock(ctx, productID); err != nil {
		return nil, fmt.Errorf("lock product %s: %w", productID, err)
	}

	p, err := r.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.ProductNotFound(productID)
	}
	if p.CurrentStock < quantity {
		return nil, apperror.InsufficientStock(productID, quantity, p.CurrentStock)
	}

	p.CurrentStock -= quantity
	t.stock[productID] = p.CurrentStock
	return p, nil
}

func (r *InventoryRepository) ComponentsOf(ctx context.Context, setProductID string) ([]model.SetItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]model.SetItem(nil), r.store.setItems[setProductID]...), nil
}

func (r *InventoryRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	products := make([]model.Product, 0, len(r.store.productOrder))
	for _, id := range r.store.productOrder {
		products = append(products, *copyProduct(r.store.products[id]))
	}
	return products, nil
}
