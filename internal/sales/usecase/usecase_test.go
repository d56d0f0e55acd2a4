package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	invusecase "github.com/fekuna/omnipos-stall-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-stall-service/internal/memstore"
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-stall-service/internal/sales"
	"github.com/fekuna/omnipos-stall-service/internal/sales/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

type recordingPublisher struct {
	mu    sync.Mutex
	sales []string
	err   error
}

func (p *recordingPublisher) PublishSaleCompleted(ctx context.Context, sale *model.Sale) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sales = append(p.sales, sale.ID)
	return p.err
}

// optimisticChecker waves every cart through, standing in for an advisory
// check that raced with another terminal.
type optimisticChecker struct {
	reqs []model.Requirement
}

func (c optimisticChecker) Check(ctx context.Context, lines []model.CartLine) (*model.AvailabilityResult, error) {
	return &model.AvailabilityResult{Available: true, Requirements: c.reqs}, nil
}

type stall struct {
	store     *memstore.Store
	products  *memstore.ProductRepository
	inventory *memstore.InventoryRepository
	sales     *memstore.SalesRepository
	checker   *invusecase.AvailabilityChecker
	status    func() []model.InventoryStatus
	publisher *recordingPublisher
	uc        sales.UseCase
	clock     time.Time
}

func newStall(t *testing.T) *stall {
	t.Helper()
	store := memstore.NewStore()
	inv := memstore.NewInventoryRepository(store)
	resolver := invusecase.NewResolver(inv)
	checker := invusecase.NewAvailabilityChecker(inv, resolver)
	invUC := invusecase.NewInventoryUseCase(inv, resolver, checker, logger.NewNop())
	pub := &recordingPublisher{}

	s := &stall{
		store:     store,
		products:  memstore.NewProductRepository(store),
		inventory: inv,
		sales:     memstore.NewSalesRepository(store),
		checker:   checker,
		publisher: pub,
		clock:     time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC),
	}
	s.uc = NewSalesUseCase(s.sales, inv, checker, memstore.NewTxManager(store), pub, logger.NewNop())
	s.status = func() []model.InventoryStatus {
		statuses, err := invUC.GetInventoryStatus(context.Background())
		require.NoError(t, err)
		return statuses
	}
	return s
}

func (s *stall) single(t *testing.T, id string, price int64, stock int64) {
	t.Helper()
	s.clock = s.clock.Add(time.Second)
	require.NoError(t, s.products.Create(context.Background(), &model.Product{
		BaseModel:    model.BaseModel{ID: id, CreatedAt: s.clock, UpdatedAt: s.clock},
		Name:         "product " + id,
		UnitCost:     decimal.NewFromInt(price / 2),
		SalePrice:    decimal.NewFromInt(price),
		InitialStock: stock,
		CurrentStock: stock,
		Kind:         model.KindSingle,
	}))
}

func (s *stall) set(t *testing.T, id string, price int64, items map[string]int64) {
	t.Helper()
	s.clock = s.clock.Add(time.Second)
	p := &model.Product{
		BaseModel: model.BaseModel{ID: id, CreatedAt: s.clock, UpdatedAt: s.clock},
		Name:      "set " + id,
		SalePrice: decimal.NewFromInt(price),
		Kind:      model.KindSet,
	}
	for component, qty := range items {
		p.SetItems = append(p.SetItems, model.SetItem{
			ID: id + "-" + component, SetProductID: id, ComponentProductID: component, Quantity: qty,
		})
	}
	require.NoError(t, s.products.Create(context.Background(), p))
}

func (s *stall) stock(t *testing.T, id string) int64 {
	t.Helper()
	p, err := s.inventory.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

func (s *stall) checkout(lines ...model.CartLine) (*model.Sale, error) {
	return s.uc.Checkout(context.Background(), &dto.CheckoutInput{Lines: lines, TerminalID: "t-1"})
}

func line(id string, qty int64) model.CartLine {
	return model.CartLine{ProductID: id, Quantity: qty}
}

func (s *stall) saleCount(t *testing.T) int {
	t.Helper()
	list, err := s.sales.FindByTimeRange(context.Background(), nil, nil)
	require.NoError(t, err)
	return len(list)
}

func TestCheckout_conservesStockAcrossSinglesAndSets(t *testing.T) {
	s := newStall(t)
	s.single(t, "burger", 500, 20)
	s.single(t, "fries", 300, 20)
	s.set(t, "combo", 700, map[string]int64{"burger": 1, "fries": 2})

	sale, err := s.checkout(line("combo", 3), line("fries", 1))
	require.NoError(t, err)

	assert.Equal(t, int64(17), s.stock(t, "burger"))
	assert.Equal(t, int64(13), s.stock(t, "fries"))
	assert.True(t, decimal.NewFromInt(2400).Equal(sale.TotalAmount))
	require.Len(t, sale.Items, 2)
	assert.Equal(t, 1, sale.Items[0].LineNo)
	assert.Equal(t, "combo", sale.Items[0].ProductID)
	assert.True(t, decimal.NewFromInt(2100).Equal(sale.Items[0].Subtotal))

	stored, err := s.uc.GetSale(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.Items, stored.Items)
	assert.Equal(t, []string{sale.ID}, s.publisher.sales)
}

func TestCheckout_priceSnapshotSurvivesPriceChange(t *testing.T) {
	s := newStall(t)
	s.single(t, "ramune", 200, 10)

	first, err := s.checkout(line("ramune", 2))
	require.NoError(t, err)

	p, err := s.products.FindByID(context.Background(), "ramune")
	require.NoError(t, err)
	p.SalePrice = decimal.NewFromInt(300)
	require.NoError(t, s.products.Update(context.Background(), p))

	second, err := s.checkout(line("ramune", 1))
	require.NoError(t, err)

	stored, err := s.uc.GetSale(context.Background(), first.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(stored.Items[0].SalePrice))
	assert.True(t, decimal.NewFromInt(400).Equal(stored.TotalAmount))
	assert.True(t, decimal.NewFromInt(300).Equal(second.Items[0].SalePrice))
}

func TestCheckout_overlappingDemand(t *testing.T) {
	tests := []struct {
		name    string
		sets    int64
		wantErr bool
	}{
		{name: "49 sets and 4 singles exceed 100", sets: 49, wantErr: true},
		{name: "48 sets and 4 singles use all 100", sets: 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStall(t)
			s.single(t, "a", 100, 100)
			s.set(t, "double-a", 150, map[string]int64{"a": 2})

			_, err := s.checkout(line("double-a", tt.sets), line("a", 4))
			if tt.wantErr {
				appErr, ok := apperror.As(err)
				require.True(t, ok)
				assert.Equal(t, apperror.KindInsufficientStock, appErr.Kind)
				assert.Equal(t, "a", appErr.ProductID)
				assert.Equal(t, int64(102), appErr.Requested)
				assert.Equal(t, int64(100), appErr.Available)
				assert.Equal(t, int64(100), s.stock(t, "a"))
				assert.Zero(t, s.saleCount(t))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(0), s.stock(t, "a"))
		})
	}
}

func TestCheckout_boundary(t *testing.T) {
	s := newStall(t)
	s.single(t, "dango", 120, 5)

	_, err := s.checkout(line("dango", 5))
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.stock(t, "dango"))

	_, err = s.checkout(line("dango", 1))
	assert.True(t, apperror.Is(err, apperror.KindInsufficientStock))
	assert.Equal(t, int64(0), s.stock(t, "dango"))
	assert.Equal(t, 1, s.saleCount(t))
}

func TestCheckout_failedDecrementLeavesNoTrace(t *testing.T) {
	s := newStall(t)
	s.single(t, "a", 100, 10)
	s.single(t, "b", 100, 1)
	before := s.status()

	// The advisory check is bypassed so the locked decrement has to catch
	// the shortage after the sale row was already written.
	s.uc = NewSalesUseCase(s.sales, s.inventory,
		optimisticChecker{reqs: []model.Requirement{{ProductID: "a", Quantity: 3}, {ProductID: "b", Quantity: 2}}},
		memstore.NewTxManager(s.store), s.publisher, logger.NewNop())

	_, err := s.checkout(line("a", 3), line("b", 2))
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindInsufficientStock, appErr.Kind)
	assert.Equal(t, "b", appErr.ProductID)

	assert.Equal(t, before, s.status())
	assert.Zero(t, s.saleCount(t))
	assert.Empty(t, s.publisher.sales)
}

func TestCheckout_validation(t *testing.T) {
	s := newStall(t)
	s.single(t, "a", 100, 10)

	tests := []struct {
		name  string
		lines []model.CartLine
		kind  apperror.Kind
	}{
		{name: "empty cart", lines: nil, kind: apperror.KindInvalidInput},
		{name: "zero quantity", lines: []model.CartLine{line("a", 0)}, kind: apperror.KindInvalidInput},
		{name: "negative quantity", lines: []model.CartLine{line("a", -2)}, kind: apperror.KindInvalidInput},
		{name: "blank product", lines: []model.CartLine{line("", 1)}, kind: apperror.KindInvalidInput},
		{name: "unknown product", lines: []model.CartLine{line("a", 1), line("ghost", 1)}, kind: apperror.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.checkout(tt.lines...)
			assert.True(t, apperror.Is(err, tt.kind), "got %v", err)
		})
	}
	assert.Equal(t, int64(10), s.stock(t, "a"))
}

func TestCheckout_rejectsQuantitiesOutOfRange(t *testing.T) {
	s := newStall(t)
	s.single(t, "p", 100, 10)
	s.single(t, "a", 100, 10)
	s.set(t, "pair", 150, map[string]int64{"a": 2})
	s.set(t, "huge", 150, map[string]int64{"a": math.MaxInt64 / 2})
	s.set(t, "half", 150, map[string]int64{"a": math.MaxInt64/2 + 1})

	tests := []struct {
		name  string
		lines []model.CartLine
	}{
		{name: "lines summing past int64", lines: []model.CartLine{line("p", math.MaxInt64), line("p", math.MaxInt64)}},
		{name: "set line above the line cap", lines: []model.CartLine{line("pair", math.MaxInt64/2+2)}},
		{name: "line one past the cap", lines: []model.CartLine{line("p", model.MaxLineQuantity+1)}},
		{name: "set expansion past int64", lines: []model.CartLine{line("huge", 3)}},
		{name: "set demand summing past int64", lines: []model.CartLine{line("half", 1), line("half", 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.checkout(tt.lines...)
			assert.True(t, apperror.Is(err, apperror.KindInvalidInput), "got %v", err)
		})
	}

	assert.Equal(t, int64(10), s.stock(t, "p"))
	assert.Equal(t, int64(10), s.stock(t, "a"))
	assert.Zero(t, s.saleCount(t))
}

func TestCheckout_exactlyOneWinnerForLastUnits(t *testing.T) {
	s := newStall(t)
	s.single(t, "kakigori", 400, 2)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	start := make(chan struct{})
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = s.checkout(line("kakigori", 2))
		}(i)
	}
	close(start)
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case apperror.Is(err, apperror.KindInsufficientStock):
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
	assert.Equal(t, int64(0), s.stock(t, "kakigori"))
	assert.Equal(t, 1, s.saleCount(t))
}

func TestCheckout_concurrentTerminalsNeverOversell(t *testing.T) {
	const stock = 30
	const attempts = 45

	s := newStall(t)
	s.single(t, "a", 100, stock)
	s.single(t, "b", 100, 1000)
	s.set(t, "ab", 180, map[string]int64{"a": 1, "b": 1})

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Alternate direct and set demand on the shared product.
			l := line("a", 1)
			if i%2 == 1 {
				l = line("ab", 1)
			}
			_, err := s.checkout(l)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.True(t, apperror.Is(err, apperror.KindInsufficientStock), "unexpected error %v", err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, stock, wins)
	assert.Equal(t, int64(0), s.stock(t, "a"))
	assert.Equal(t, stock, s.saleCount(t))
}

func TestCheckout_publishFailureDoesNotFailSale(t *testing.T) {
	s := newStall(t)
	s.single(t, "a", 100, 3)
	s.publisher.err = errors.New("broker down")

	sale, err := s.checkout(line("a", 1))
	require.NoError(t, err)
	assert.NotEmpty(t, sale.ID)
	assert.Equal(t, int64(2), s.stock(t, "a"))
}

func TestCheckout_recordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	s := newStall(t)
	s.single(t, "a", 100, 3)
	s.single(t, "b", 100, 3)

	_, err := s.checkout(line("b", 1), line("a", 1))
	require.NoError(t, err)

	var names []string
	var decremented []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
		if span.Name() == "inventory.decrement" {
			for _, kv := range span.Attributes() {
				if kv.Key == "product.id" {
					decremented = append(decremented, kv.Value.AsString())
				}
			}
		}
	}
	assert.Contains(t, names, "sales.checkout")
	assert.Contains(t, names, "inventory.check_availability")
	assert.Equal(t, []string{"a", "b"}, decremented)
}

func TestListSales(t *testing.T) {
	s := newStall(t)
	s.single(t, "a", 100, 10)

	clock := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	s.uc.(*salesUseCase).now = func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}
	for i := 0; i < 3; i++ {
		_, err := s.checkout(line("a", 1))
		require.NoError(t, err)
	}

	all, err := s.uc.ListSales(context.Background(), &dto.SalesHistoryFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))

	from := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 15, 13, 0, 0, 0, time.UTC)
	window, err := s.uc.ListSales(context.Background(), &dto.SalesHistoryFilters{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, window, 2)

	_, err = s.uc.ListSales(context.Background(), &dto.SalesHistoryFilters{From: &to, To: &from})
	assert.True(t, apperror.Is(err, apperror.KindInvalidInput))
}

func TestGetRevenue(t *testing.T) {
	s := newStall(t)
	s.single(t, "a", 250, 10)
	s.uc.(*salesUseCase).now = func() time.Time { return time.Date(2026, 8, 15, 18, 30, 0, 0, time.UTC) }

	_, err := s.checkout(line("a", 2))
	require.NoError(t, err)
	_, err = s.checkout(line("a", 1))
	require.NoError(t, err)

	rev, err := s.uc.GetRevenue(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(750).Equal(rev.Total))
	require.Len(t, rev.Daily, 1)
	assert.True(t, rev.Total.Equal(rev.Daily[0].Total))
}

func TestGetSale_notFound(t *testing.T) {
	s := newStall(t)
	_, err := s.uc.GetSale(context.Background(), "nope")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
