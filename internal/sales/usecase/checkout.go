package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/sales/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Checkout turns a cart into a committed sale. The unlocked availability
// check rejects obvious shortages early; the locked decrements inside the
// unit of work decide races. Either everything commits or nothing does.
func (uc *salesUseCase) Checkout(ctx context.Context, input *dto.CheckoutInput) (*model.Sale, error) {
	ctx, span := uc.tracer.Start(ctx, "sales.checkout",
		trace.WithAttributes(
			attribute.Int("cart.lines", len(input.Lines)),
			attribute.String("terminal.id", input.TerminalID),
		),
	)
	defer span.End()

	log := uc.logger.With(zap.String("terminal_id", input.TerminalID), zap.Int("lines", len(input.Lines)))

	sale, err := uc.checkout(ctx, input.Lines)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if appErr, ok := apperror.As(err); ok {
			span.SetAttributes(attribute.String("checkout.rejected", appErr.Kind.String()))
			log.Info("checkout rejected",
				zap.String("kind", appErr.Kind.String()),
				zap.String("product_id", appErr.ProductID),
				zap.Int64("requested", appErr.Requested),
				zap.Int64("available", appErr.Available),
			)
		} else {
			log.Error("checkout failed", zap.Error(err))
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.String("sale.id", sale.ID),
		attribute.String("sale.total_amount", sale.TotalAmount.String()),
	)
	span.SetStatus(codes.Ok, "sale committed")
	log.Info("checkout completed",
		zap.String("sale_id", sale.ID),
		zap.String("total_amount", sale.TotalAmount.String()),
	)

	uc.publish(ctx, sale)
	return sale, nil
}

func (uc *salesUseCase) checkout(ctx context.Context, lines []model.CartLine) (*model.Sale, error) {
	if err := validateCart(lines); err != nil {
		return nil, err
	}

	for _, line := range lines {
		p, err := uc.ledger.Get(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product %s: %w", line.ProductID, err)
		}
		if p == nil {
			return nil, apperror.ProductNotFound(line.ProductID)
		}
	}

	availability, err := uc.checker.Check(ctx, lines)
	if err != nil {
		return nil, err
	}
	if !availability.Available {
		first := availability.Shortages[0]
		return nil, apperror.InsufficientStock(first.ProductID, first.Requested, first.Available)
	}

	// Fixed lock order: two carts sharing products never wait on each other
	// in opposite directions.
	reqs := append([]model.Requirement(nil), availability.Requirements...)
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ProductID < reqs[j].ProductID })

	var sale *model.Sale
	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		s, err := uc.snapshot(ctx, lines)
		if err != nil {
			return err
		}
		if err := uc.repo.Create(ctx, s); err != nil {
			return err
		}
		for _, req := range reqs {
			if err := uc.decrement(ctx, req); err != nil {
				return err
			}
		}
		sale = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// snapshot copies name, cost and price as stored right now into the sale's
// line items.
func (uc *salesUseCase) snapshot(ctx context.Context, lines []model.CartLine) (*model.Sale, error) {
	sale := &model.Sale{
		ID:        uuid.New().String(),
		CreatedAt: uc.now().UTC(),
		Items:     make([]model.SaleItem, 0, len(lines)),
	}

	total := decimal.Zero
	for i, line := range lines {
		p, err := uc.ledger.Get(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product %s: %w", line.ProductID, err)
		}
		if p == nil {
			return nil, apperror.ProductNotFound(line.ProductID)
		}

		subtotal := p.SalePrice.Mul(decimal.NewFromInt(line.Quantity))
		total = total.Add(subtotal)
		sale.Items = append(sale.Items, model.SaleItem{
			ID:          uuid.New().String(),
			SaleID:      sale.ID,
			LineNo:      i + 1,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			UnitCost:    p.UnitCost,
			SalePrice:   p.SalePrice,
			Subtotal:    subtotal,
		})
	}
	sale.TotalAmount = total
	return sale, nil
}

func (uc *salesUseCase) decrement(ctx context.Context, req model.Requirement) error {
	ctx, span := uc.tracer.Start(ctx, "inventory.decrement",
		trace.WithAttributes(
			attribute.String("product.id", req.ProductID),
			attribute.Int64("quantity", req.Quantity),
		),
	)
	defer span.End()

	p, err := uc.ledger.Decrement(ctx, req.ProductID, req.Quantity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int64("stock.remaining", p.CurrentStock))
	return nil
}

func (uc *salesUseCase) publish(ctx context.Context, sale *model.Sale) {
	if uc.publisher == nil {
		return
	}
	// Detached from the request: the sale is already committed.
	ctx = trace.ContextWithSpanContext(context.Background(), trace.SpanContextFromContext(ctx))
	if err := uc.publisher.PublishSaleCompleted(ctx, sale); err != nil {
		uc.logger.Warn("failed to publish sale event", zap.String("sale_id", sale.ID), zap.Error(err))
	}
}

func validateCart(lines []model.CartLine) error {
	if len(lines) == 0 {
		return apperror.InvalidInput("cart is empty")
	}
	for i, line := range lines {
		if line.ProductID == "" {
			return apperror.InvalidInputf("cart line %d has no product id", i+1)
		}
		if line.Quantity <= 0 {
			return apperror.InvalidInputf("cart line %d for product %s has non-positive quantity %d", i+1, line.ProductID, line.Quantity)
		}
		if line.Quantity > model.MaxLineQuantity {
			return apperror.InvalidInputf("cart line %d for product %s exceeds %d units", i+1, line.ProductID, model.MaxLineQuantity)
		}
	}
	return nil
}
