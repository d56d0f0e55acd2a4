package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-stall-service/internal/product/dto"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "pgx"), mock
}

func TestCreate_setWritesItemsInSameTransaction(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)
	p := &model.Product{
		BaseModel: model.BaseModel{ID: "combo", CreatedAt: now, UpdatedAt: now},
		Name:      "Festival combo",
		SalePrice: decimal.NewFromInt(700),
		Kind:      model.KindSet,
		SetItems: []model.SetItem{
			{ID: "si1", SetProductID: "combo", ComponentProductID: "yakisoba", Quantity: 1},
			{ID: "si2", SetProductID: "combo", ComponentProductID: "ramune", Quantity: 2},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO products`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO set_items`).
		WithArgs("si1", "combo", "yakisoba", int64(1), now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO set_items`).
		WithArgs("si2", "combo", "ramune", int64(2), now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewPGRepository(db)
	err := postgres.NewTxManager(db).WithinTransaction(context.Background(), func(ctx context.Context) error {
		return repo.Create(ctx, p)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_failedItemRollsBack(t *testing.T) {
	db, mock := newMock(t)
	p := &model.Product{
		BaseModel: model.BaseModel{ID: "combo"},
		Kind:      model.KindSet,
		SetItems:  []model.SetItem{{ID: "si1", SetProductID: "combo", ComponentProductID: "ghost", Quantity: 1}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO products`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO set_items`).WillReturnError(&pgconn.PgError{Code: postgres.CodeForeignKeyViolation})
	mock.ExpectRollback()

	repo := NewPGRepository(db)
	err := postgres.NewTxManager(db).WithinTransaction(context.Background(), func(ctx context.Context) error {
		return repo.Create(ctx, p)
	})
	assert.True(t, apperror.Is(err, apperror.KindConstraintViolation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock)
		kind  apperror.Kind
		ok    bool
	}{
		{
			name: "deleted",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).
					WithArgs("p1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			ok: true,
		},
		{
			name: "missing",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM products`).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			kind: apperror.KindNotFound,
		},
		{
			name: "referenced by a sale",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM products`).
					WillReturnError(&pgconn.PgError{Code: postgres.CodeForeignKeyViolation})
			},
			kind: apperror.KindConstraintViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			tt.setup(mock)

			err := NewPGRepository(db).Delete(context.Background(), "p1")
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperror.Is(err, tt.kind), "got %v", err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFindAll_filtersAndPaginates(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM products WHERE kind = $1 AND name ILIKE $2`)).
		WithArgs("single", "%yaki%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM products WHERE kind = $1 AND name ILIKE $2 ORDER BY created_at DESC LIMIT 2 OFFSET 2`)).
		WithArgs("single", "%yaki%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "unit_cost", "sale_price", "initial_stock", "current_stock", "kind", "created_at", "updated_at"}).
			AddRow("p3", "Yakitori", "80", "200", int64(50), int64(12), "single", now, now))

	products, count, err := NewPGRepository(db).FindAll(context.Background(), &dto.ProductFilters{
		Kind:        model.KindSingle,
		SearchQuery: "yaki",
		Page:        2,
		PageSize:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, products, 1)
	assert.Equal(t, int64(12), products[0].CurrentStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_onlyCatalogFields(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`UPDATE products\s+SET name = \$1,\s+unit_cost = \$2,\s+sale_price = \$3,\s+updated_at = \$4\s+WHERE id = \$5`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewPGRepository(db).Update(context.Background(), &model.Product{
		BaseModel: model.BaseModel{ID: "p1", UpdatedAt: time.Now()},
		Name:      "Yakisoba",
		SalePrice: decimal.NewFromInt(300),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
