package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/product/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSingle(t *testing.T, s *Store, id string, stock int64) {
	t.Helper()
	now := time.Now()
	err := NewProductRepository(s).Create(context.Background(), &model.Product{
		BaseModel:    model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		Name:         id,
		UnitCost:     decimal.NewFromInt(50),
		SalePrice:    decimal.NewFromInt(100),
		InitialStock: stock,
		CurrentStock: stock,
		Kind:         model.KindSingle,
	})
	require.NoError(t, err)
}

func stockOf(t *testing.T, s *Store, id string) int64 {
	t.Helper()
	p, err := NewInventoryRepository(s).Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

func TestDecrement_RequiresTransaction(t *testing.T) {
	s := NewStore()
	seedSingle(t, s, "p1", 5)

	_, err := NewInventoryRepository(s).Decrement(context.Background(), "p1", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errNoTransaction))
	assert.False(t, apperror.IsDomain(err))
}

func TestDecrement_Boundary(t *testing.T) {
	s := NewStore()
	seedSingle(t, s, "p1", 3)
	inv := NewInventoryRepository(s)
	txm := NewTxManager(s)

	err := txm.WithinTransaction(context.Background(), func(ctx context.Context) error {
		_, err := inv.Decrement(ctx, "p1", 3)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), stockOf(t, s, "p1"))

	err = txm.WithinTransaction(context.Background(), func(ctx context.Context) error {
		_, err := inv.Decrement(ctx, "p1", 1)
		return err
	})
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindInsufficientStock, appErr.Kind)
	assert.Equal(t, int64(1), appErr.Requested)
	assert.Equal(t, int64(0), appErr.Available)
	assert.Equal(t, int64(0), stockOf(t, s, "p1"))
}

func TestDecrement_NotFound(t *testing.T) {
	s := NewStore()
	err := NewTxManager(s).WithinTransaction(context.Background(), func(ctx context.Context) error {
		_, err := NewInventoryRepository(s).Decrement(ctx, "missing", 1)
		return err
	})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestWithinTransaction_RollbackDropsEveryWrite(t *testing.T) {
	s := NewStore()
	seedSingle(t, s, "p1", 10)
	seedSingle(t, s, "p2", 1)
	inv := NewInventoryRepository(s)
	sales := NewSalesRepository(s)

	err := NewTxManager(s).WithinTransaction(context.Background(), func(ctx context.Context) error {
		require.NoError(t, sales.Create(ctx, &model.Sale{
			ID:          "s1",
			TotalAmount: decimal.NewFromInt(300),
			CreatedAt:   time.Now(),
			Items:       []model.SaleItem{{ID: "i1", SaleID: "s1", ProductID: "p1", Quantity: 3}},
		}))
		p, err := inv.Decrement(ctx, "p1", 3)
		require.NoError(t, err)
		assert.Equal(t, int64(7), p.CurrentStock)

		// visible inside the transaction only
		inside, err := inv.Get(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, int64(7), inside.CurrentStock)
		assert.Equal(t, int64(10), stockOf(t, s, "p1"))

		_, err = inv.Decrement(ctx, "p2", 2)
		return err
	})
	require.True(t, apperror.Is(err, apperror.KindInsufficientStock))

	assert.Equal(t, int64(10), stockOf(t, s, "p1"))
	assert.Equal(t, int64(1), stockOf(t, s, "p2"))
	sale, err := sales.FindByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, sale)
}

func TestWithinTransaction_PanicReleasesLocks(t *testing.T) {
	s := NewStore()
	seedSingle(t, s, "p1", 2)
	inv := NewInventoryRepository(s)
	txm := NewTxManager(s)

	assert.Panics(t, func() {
		_ = txm.WithinTransaction(context.Background(), func(ctx context.Context) error {
			_, _ = inv.Decrement(ctx, "p1", 1)
			panic("boom")
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := txm.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := inv.Decrement(ctx, "p1", 2)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), stockOf(t, s, "p1"))
}

func TestDecrement_ReentrantWithinTransaction(t *testing.T) {
	s := NewStore()
	seedSingle(t, s, "p1", 5)
	inv := NewInventoryRepository(s)

	err := NewTxManager(s).WithinTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := inv.Decrement(ctx, "p1", 2); err != nil {
			return err
		}
		p, err := inv.Decrement(ctx, "p1", 3)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(0), p.CurrentStock)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), stockOf(t, s, "p1"))
}

func TestDecrement_WaitingLockHonoursContext(t *testing.T) {
	s := NewStore()
	seedSingle(t, s, "p1", 5)
	inv := NewInventoryRepository(s)
	txm := NewTxManager(s)

	locked := make(chan struct{})
	finish := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- txm.WithinTransaction(context.Background(), func(ctx context.Context) error {
			if _, err := inv.Decrement(ctx, "p1", 1); err != nil {
				return err
			}
			close(locked)
			<-finish
			return nil
		})
	}()
	<-locked

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := txm.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := inv.Decrement(ctx, "p1", 1)
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(finish)
	require.NoError(t, <-done)
	assert.Equal(t, int64(4), stockOf(t, s, "p1"))
}

func TestDecrement_RejectsNonPositiveQuantity(t *testing.T) {
	s := NewStore()
	seedSingle(t, s, "p1", 5)
	inv := NewInventoryRepository(s)

	for _, qty := range []int64{0, -7} {
		err := NewTxManager(s).WithinTransaction(context.Background(), func(ctx context.Context) error {
			_, err := inv.Decrement(ctx, "p1", qty)
			return err
		})
		assert.True(t, apperror.Is(err, apperror.KindInvalidInput), "quantity %d", qty)
	}
	assert.Equal(t, int64(5), stockOf(t, s, "p1"))
}

func TestDecrement_ConcurrentUnitsNeverOversell(t *testing.T) {
	const stock = 20
	const attempts = 50

	s := NewStore()
	seedSingle(t, s, "p1", stock)
	inv := NewInventoryRepository(s)
	txm := NewTxManager(s)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := txm.WithinTransaction(context.Background(), func(ctx context.Context) error {
				_, err := inv.Decrement(ctx, "p1", 1)
				return err
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			if apperror.Is(err, apperror.KindInsufficientStock) {
				failures++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, stock, successes)
	assert.Equal(t, attempts-stock, failures)
	assert.Equal(t, int64(0), stockOf(t, s, "p1"))
}

func TestProductRepository_DeleteBlockedWhileReferenced(t *testing.T) {
	s := NewStore()
	seedSingle(t, s, "burger", 10)
	seedSingle(t, s, "fries", 10)
	repo := NewProductRepository(s)

	now := time.Now()
	require.NoError(t, repo.Create(context.Background(), &model.Product{
		BaseModel: model.BaseModel{ID: "combo", CreatedAt: now, UpdatedAt: now},
		Name:      "combo",
		Kind:      model.KindSet,
		SetItems: []model.SetItem{
			{ID: "si1", SetProductID: "combo", ComponentProductID: "burger", Quantity: 1},
			{ID: "si2", SetProductID: "combo", ComponentProductID: "fries", Quantity: 2},
		},
	}))

	err := repo.Delete(context.Background(), "burger")
	assert.True(t, apperror.Is(err, apperror.KindConstraintViolation))

	require.NoError(t, repo.Delete(context.Background(), "combo"))
	items, err := repo.FindSetItems(context.Background(), "combo")
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, repo.Delete(context.Background(), "burger"))
	assert.True(t, apperror.Is(repo.Delete(context.Background(), "burger"), apperror.KindNotFound))
}

func TestProductRepository_DeleteWaitsForRowLock(t *testing.T) {
	s := NewStore()
	seedSingle(t, s, "p1", 5)
	inv := NewInventoryRepository(s)
	repo := NewProductRepository(s)

	locked := make(chan struct{})
	finish := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- NewTxManager(s).WithinTransaction(context.Background(), func(ctx context.Context) error {
			if _, err := inv.Decrement(ctx, "p1", 1); err != nil {
				return err
			}
			close(locked)
			<-finish
			return nil
		})
	}()
	<-locked

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, repo.Delete(ctx, "p1"), context.DeadlineExceeded)
	assert.Equal(t, int64(5), stockOf(t, s, "p1"))

	close(finish)
	require.NoError(t, <-done)
	assert.Equal(t, int64(4), stockOf(t, s, "p1"))

	require.NoError(t, repo.Delete(context.Background(), "p1"))
	p, err := inv.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProductRepository_FindAllFilters(t *testing.T) {
	s := NewStore()
	repo := NewProductRepository(s)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i, name := range []string{"Yakisoba", "Takoyaki", "Ramune"} {
		require.NoError(t, repo.Create(context.Background(), &model.Product{
			BaseModel: model.BaseModel{ID: name, CreatedAt: base.Add(time.Duration(i) * time.Minute)},
			Name:      name,
			Kind:      model.KindSingle,
		}))
	}

	all, count, err := repo.FindAll(context.Background(), &dto.ProductFilters{})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, "Ramune", all[0].Name)

	hits, count, err := repo.FindAll(context.Background(), &dto.ProductFilters{SearchQuery: "YAKI"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, hits, 2)

	page, count, err := repo.FindAll(context.Background(), &dto.ProductFilters{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, page, 1)
	assert.Equal(t, "Yakisoba", page[0].Name)

	sets, _, err := repo.FindAll(context.Background(), &dto.ProductFilters{Kind: model.KindSet})
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestSalesRepository_Queries(t *testing.T) {
	s := NewStore()
	seedSingle(t, s, "p1", 10)
	repo := NewSalesRepository(s)

	day1 := time.Date(2026, 8, 1, 23, 30, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 2, 0, 15, 0, 0, time.UTC)
	for i, at := range []time.Time{day1, day1.Add(10 * time.Minute), day2} {
		id := []string{"s1", "s2", "s3"}[i]
		require.NoError(t, repo.Create(context.Background(), &model.Sale{
			ID:          id,
			TotalAmount: decimal.NewFromInt(int64(100 * (i + 1))),
			CreatedAt:   at,
			Items:       []model.SaleItem{{ID: id + "-1", SaleID: id, ProductID: "p1", Quantity: 1}},
		}))
	}

	all, err := repo.FindByTimeRange(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "s3", all[0].ID)
	assert.Equal(t, "s1", all[2].ID)

	to := day1
	upTo, err := repo.FindByTimeRange(context.Background(), nil, &to)
	require.NoError(t, err)
	require.Len(t, upTo, 1)
	assert.Equal(t, "s1", upTo[0].ID)

	total, err := repo.SumAll(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(600).Equal(total))

	daily, err := repo.DailyTotals(context.Background())
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.True(t, decimal.NewFromInt(300).Equal(daily[0].Total))
	assert.True(t, decimal.NewFromInt(300).Equal(daily[1].Total))
	assert.Equal(t, 2, daily[0].Date.Day())
}
