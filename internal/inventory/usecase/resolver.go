package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/inventory"
	"github.com/fekuna/omnipos-stall-service/internal/model"
)

// Resolver turns set products into demand on their single components and
// derives a set's available quantity from component stock.
type Resolver struct {
	repo inventory.Repository
}

func NewResolver(repo inventory.Repository) *Resolver {
	return &Resolver{repo: repo}
}

func (r *Resolver) ComponentsOf(ctx context.Context, setProductID string) ([]model.SetItem, error) {
	items, err := r.repo.ComponentsOf(ctx, setProductID)
	if err != nil {
		return nil, fmt.Errorf("components of %s: %w", setProductID, err)
	}
	return items, nil
}

// Expand returns perSet x quantity for every component of the set.
func (r *Resolver) Expand(ctx context.Context, setProductID string, quantity int64) ([]model.Requirement, error) {
	items, err := r.ComponentsOf(ctx, setProductID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperror.InvalidInputf("set product %s has no components", setProductID)
	}

	reqs := make([]model.Requirement, 0, len(items))
	for _, item := range items {
		total, err := mulQuantity(item.Quantity, quantity)
		if err != nil {
			return nil, apperror.InvalidInputf("set %s: %d x %d of %s is out of range",
				setProductID, quantity, item.Quantity, item.ComponentProductID)
		}
		reqs = append(reqs, model.Requirement{
			ProductID: item.ComponentProductID,
			Quantity:  total,
		})
	}
	return reqs, nil
}

var errQuantityOverflow = errors.New("quantity out of range")

// mulQuantity and addQuantity work on positive quantities only.
func mulQuantity(a, b int64) (int64, error) {
	if a <= 0 || b <= 0 || a > math.MaxInt64/b {
		return 0, errQuantityOverflow
	}
	return a * b, nil
}

func addQuantity(a, b int64) (int64, error) {
	if a < 0 || b <= 0 || a > math.MaxInt64-b {
		return 0, errQuantityOverflow
	}
	return a + b, nil
}

// AvailableSets is the number of whole sets the current component stock can
// build. It is 0 for a set without components or with a missing component.
func (r *Resolver) AvailableSets(ctx context.Context, setProductID string) (int64, error) {
	items, err := r.ComponentsOf(ctx, setProductID)
	if err != nil {
		return 0, err
	}

	stock := make(map[string]int64, len(items))
	for _, item := range items {
		p, err := r.repo.Get(ctx, item.ComponentProductID)
		if err != nil {
			return 0, fmt.Errorf("get component %s: %w", item.ComponentProductID, err)
		}
		if p != nil {
			stock[p.ID] = p.CurrentStock
		}
	}
	return bottleneck(items, stock), nil
}

func bottleneck(items []model.SetItem, stock map[string]int64) int64 {
	if len(items) == 0 {
		return 0
	}

	var sets int64 = -1
	for _, item := range items {
		current, ok := stock[item.ComponentProductID]
		if !ok || item.Quantity <= 0 {
			return 0
		}
		n := current / item.Quantity
		if sets < 0 || n < sets {
			sets = n
		}
	}
	return sets
}
