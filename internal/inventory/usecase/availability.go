package usecase

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/inventory"
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/fekuna/omnipos-stall-service/internal/inventory"

// AvailabilityChecker decides whether a whole cart can be served from current
// stock. It takes no locks and writes nothing; the locked decrement at
// checkout has the final word.
type AvailabilityChecker struct {
	ledger   inventory.Ledger
	resolver *Resolver
	tracer   trace.Tracer
}

func NewAvailabilityChecker(ledger inventory.Ledger, resolver *Resolver) *AvailabilityChecker {
	return &AvailabilityChecker{
		ledger:   ledger,
		resolver: resolver,
		tracer:   otel.Tracer(tracerName),
	}
}

// Check accumulates the cart's demand per single product before comparing it
// with stock, so a product requested directly and through a set is checked
// against the sum.
func (c *AvailabilityChecker) Check(ctx context.Context, lines []model.CartLine) (*model.AvailabilityResult, error) {
	ctx, span := c.tracer.Start(ctx, "inventory.check_availability",
		trace.WithAttributes(attribute.Int("cart.lines", len(lines))),
	)
	defer span.End()

	result, err := c.check(ctx, lines)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Bool("inventory.available", result.Available),
		attribute.Int("inventory.shortages", len(result.Shortages)),
	)
	return result, nil
}

func (c *AvailabilityChecker) check(ctx context.Context, lines []model.CartLine) (*model.AvailabilityResult, error) {
	demand := newDemand()
	known := make(map[string]*model.Product)

	for _, line := range lines {
		p, err := c.ledger.Get(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product %s: %w", line.ProductID, err)
		}
		if p == nil {
			return &model.AvailabilityResult{
				Available:    false,
				Requirements: demand.requirements(),
				Shortages: []model.Shortage{{
					ProductID: line.ProductID,
					Requested: line.Quantity,
					Available: 0,
				}},
			}, nil
		}
		known[p.ID] = p

		switch p.Kind {
		case model.KindSingle:
			if err := demand.add(p.ID, line.Quantity); err != nil {
				return nil, err
			}
		case model.KindSet:
			reqs, err := c.resolver.Expand(ctx, p.ID, line.Quantity)
			if err != nil {
				return nil, err
			}
			for _, req := range reqs {
				if err := demand.add(req.ProductID, req.Quantity); err != nil {
					return nil, err
				}
			}
		default:
			return nil, fmt.Errorf("product %s has unknown kind %q", p.ID, p.Kind)
		}
	}

	result := &model.AvailabilityResult{Requirements: demand.requirements()}
	for _, req := range result.Requirements {
		p, ok := known[req.ProductID]
		if !ok {
			var err error
			if p, err = c.ledger.Get(ctx, req.ProductID); err != nil {
				return nil, fmt.Errorf("get component %s: %w", req.ProductID, err)
			}
		}

		var available int64
		if p != nil {
			available = p.CurrentStock
		}
		if available < req.Quantity {
			result.Shortages = append(result.Shortages, model.Shortage{
				ProductID: req.ProductID,
				Requested: req.Quantity,
				Available: available,
			})
		}
	}
	result.Available = len(result.Shortages) == 0
	return result, nil
}

// demand accumulates quantities per product and remembers first-seen order.
type demand struct {
	order []string
	qty   map[string]int64
}

func newDemand() *demand {
	return &demand{qty: make(map[string]int64)}
}

func (d *demand) add(productID string, quantity int64) error {
	total, err := addQuantity(d.qty[productID], quantity)
	if err != nil {
		return apperror.InvalidInputf("total quantity for product %s is out of range", productID)
	}
	if _, ok := d.qty[productID]; !ok {
		d.order = append(d.order, productID)
	}
	d.qty[productID] = total
	return nil
}

func (d *demand) requirements() []model.Requirement {
	reqs := make([]model.Requirement, 0, len(d.order))
	for _, id := range d.order {
		reqs = append(reqs, model.Requirement{ProductID: id, Quantity: d.qty[id]})
	}
	return reqs
}
