package sales

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/shopspring/decimal"
)

// Repository is the append-only store of completed sales.
type Repository interface {
	// Create writes the sale and all of its items in one call.
	Create(ctx context.Context, sale *model.Sale) error
	FindByID(ctx context.Context, id string) (*model.Sale, error)
	// FindByTimeRange returns sales with from <= created_at <= to, newest
	// first. A nil bound is open.
	FindByTimeRange(ctx context.Context, from, to *time.Time) ([]model.Sale, error)
	SumAll(ctx context.Context) (decimal.Decimal, error)
	// DailyTotals groups by UTC calendar date, newest first.
	DailyTotals(ctx context.Context) ([]model.DailyTotal, error)
}

type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AvailabilityChecker is the advisory, lock-free stock check run before a
// checkout opens its unit of work.
type AvailabilityChecker interface {
	Check(ctx context.Context, lines []model.CartLine) (*model.AvailabilityResult, error)
}

// EventPublisher announces committed sales to downstream consumers such as
// the kitchen display.
type EventPublisher interface {
	PublishSaleCompleted(ctx context.Context, sale *model.Sale) error
}
