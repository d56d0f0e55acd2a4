package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/product/dto"
)

type ProductRepository struct {
	store *Store
}

func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

func (r *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	created := copyProduct(p)
	items := append([]model.SetItem(nil), p.SetItems...)
	created.SetItems = nil

	return r.store.write(ctx, op{
		check: func(s *Store) error {
			if _, ok := s.products[created.ID]; ok {
				return apperror.ConstraintViolation("product already exists: "+created.ID, nil)
			}
			seen := make(map[string]struct{}, len(items))
			for _, item := range items {
				if _, ok := s.products[item.ComponentProductID]; !ok {
					return apperror.ConstraintViolation("set component does not exist: "+item.ComponentProductID, nil)
				}
				if _, dup := seen[item.ComponentProductID]; dup {
					return apperror.ConstraintViolation("duplicate set component: "+item.ComponentProductID, nil)
				}
				seen[item.ComponentProductID] = struct{}{}
			}
			return nil
		},
		apply: func(s *Store) {
			s.products[created.ID] = created
			s.productOrder = append(s.productOrder, created.ID)
			if len(items) > 0 {
				s.setItems[created.ID] = items
			}
		},
	})
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.product(id), nil
}

// FindAll mirrors the SQL listing: newest first, optional kind and
// case-insensitive name filter, LIMIT/OFFSET when PageSize > 0.
func (r *ProductRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query := strings.ToLower(f.SearchQuery)
	var matched []model.Product
	for _, id := range r.store.productOrder {
		p := r.store.products[id]
		if f.Kind != "" && p.Kind != f.Kind {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		matched = append(matched, *copyProduct(p))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	count := len(matched)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.PageSize
		if start > count {
			start = count
		}
		end := start + f.PageSize
		if end > count {
			end = count
		}
		matched = matched[start:end]
	}
	return matched, count, nil
}

func (r *ProductRepository) FindSetItems(ctx context.Context, setProductID string) ([]model.SetItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]model.SetItem(nil), r.store.setItems[setProductID]...), nil
}

// Update writes catalog fields only. Stock and kind are left untouched.
func (r *ProductRepository) Update(ctx context.Context, p *model.Product) error {
	updated := *p
	return r.store.write(ctx, op{
		check: func(s *Store) error {
			if _, ok := s.products[updated.ID]; !ok {
				return apperror.ProductNotFound(updated.ID)
			}
			return nil
		},
		apply: func(s *Store) {
			stored := s.products[updated.ID]
			stored.Name = updated.Name
			stored.UnitCost = updated.UnitCost
			stored.SalePrice = updated.SalePrice
			stored.UpdatedAt = updated.UpdatedAt
		},
	})
}

// Delete waits for the row lock, so it never interleaves with a checkout
// that is decrementing the same product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.store.withRowLock(ctx, id, func() error {
		return r.deleteRow(ctx, id)
	})
}

func (r *ProductRepository) deleteRow(ctx context.Context, id string) error {
	return r.store.write(ctx, op{
		check: func(s *Store) error {
			if _, ok := s.products[id]; !ok {
				return apperror.ProductNotFound(id)
			}
			if s.referenced(id) {
				return apperror.ConstraintViolation("product is referenced by a sale or a set: "+id, nil)
			}
			return nil
		},
		apply: func(s *Store) {
			delete(s.products, id)
			delete(s.setItems, id)
			for i, pid := range s.productOrder {
				if pid == id {
					s.productOrder = append(s.productOrder[:i], s.productOrder[i+1:]...)
					break
				}
			}
		},
	})
}

func (r *ProductRepository) IsNameUnique(ctx context.Context, name, excludeID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for id, p := range r.store.products {
		if id != excludeID && p.Name == name {
			return false, nil
		}
	}
	return true, nil
}
