package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/inventory"
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-stall-service/internal/sales"
	"github.com/fekuna/omnipos-stall-service/internal/sales/dto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/fekuna/omnipos-stall-service/internal/sales"

type salesUseCase struct {
	repo      sales.Repository
	ledger    inventory.Ledger
	checker   sales.AvailabilityChecker
	tx        sales.TxManager
	publisher sales.EventPublisher // nil disables sale events
	logger    logger.ZapLogger
	tracer    trace.Tracer
	now       func() time.Time
}

func NewSalesUseCase(
	repo sales.Repository,
	ledger inventory.Ledger,
	checker sales.AvailabilityChecker,
	tx sales.TxManager,
	publisher sales.EventPublisher,
	log logger.ZapLogger,
) sales.UseCase {
	return &salesUseCase{
		repo:      repo,
		ledger:    ledger,
		checker:   checker,
		tx:        tx,
		publisher: publisher,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
}

func (uc *salesUseCase) GetSale(ctx context.Context, id string) (*model.Sale, error) {
	sale, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get sale %s: %w", id, err)
	}
	if sale == nil {
		return nil, apperror.NotFound("sale", id)
	}
	return sale, nil
}

func (uc *salesUseCase) ListSales(ctx context.Context, filters *dto.SalesHistoryFilters) ([]model.Sale, error) {
	if filters.From != nil && filters.To != nil && filters.From.After(*filters.To) {
		return nil, apperror.InvalidInputf("from %s is after to %s",
			filters.From.Format(time.RFC3339), filters.To.Format(time.RFC3339))
	}

	list, err := uc.repo.FindByTimeRange(ctx, filters.From, filters.To)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return list, nil
}

func (uc *salesUseCase) GetRevenue(ctx context.Context) (*model.Revenue, error) {
	total, err := uc.repo.SumAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum sales: %w", err)
	}
	daily, err := uc.repo.DailyTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	return &model.Revenue{Total: total, Daily: daily}, nil
}
