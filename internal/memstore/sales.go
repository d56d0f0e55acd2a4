package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/shopspring/decimal"
)

type SalesRepository struct {
	store *Store
}

func NewSalesRepository(store *Store) *SalesRepository {
	return &SalesRepository{store: store}
}

func (r *SalesRepository) Create(ctx context.Context, sale *model.Sale) error {
	created := copySale(sale)
	return r.store.write(ctx, op{
		check: func(s *Store) error {
			if _, ok := s.sales[created.ID]; ok {
				return apperror.ConstraintViolation("sale already exists: "+created.ID, nil)
			}
			for _, item := range created.Items {
				if _, ok := s.products[item.ProductID]; !ok {
					return apperror.ConstraintViolation("sale item references a missing product: "+item.ProductID, nil)
				}
			}
			return nil
		},
		apply: func(s *Store) {
			s.sales[created.ID] = created
			s.saleOrder = append(s.saleOrder, created.ID)
		},
	})
}

func (r *SalesRepository) FindByID(ctx context.Context, id string) (*model.Sale, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sale, ok := r.store.sales[id]
	if !ok {
		return nil, nil
	}
	return copySale(sale), nil
}

func (r *SalesRepository) FindByTimeRange(ctx context.Context, from, to *time.Time) ([]model.Sale, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var sales []model.Sale
	for _, id := range r.store.saleOrder {
		sale := r.store.sales[id]
		if from != nil && sale.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && sale.CreatedAt.After(*to) {
			continue
		}
		sales = append(sales, *copySale(sale))
	}

	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].CreatedAt.After(sales[j].CreatedAt)
	})
	return sales, nil
}

func (r *SalesRepository) SumAll(ctx context.Context) (decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	total := decimal.Zero
	for _, sale := range r.store.sales {
		total = total.Add(sale.TotalAmount)
	}
	return total, nil
}

func (r *SalesRepository) DailyTotals(ctx context.Context) ([]model.DailyTotal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byDate := make(map[time.Time]decimal.Decimal)
	for _, sale := range r.store.sales {
		t := sale.CreatedAt.UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		byDate[day] = byDate[day].Add(sale.TotalAmount)
	}

	totals := make([]model.DailyTotal, 0, len(byDate))
	for day, total := range byDate {
		totals = append(totals, model.DailyTotal{Date: day, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Date.After(totals[j].Date)
	})
	return totals, nil
}
