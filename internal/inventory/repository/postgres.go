package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/postgres"
	"github.com/jmoiron/sqlx"
)

var errNoTransaction = errors.New("decrement requires a transaction")

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Get(ctx context.Context, productID string) (*model.Product, error) {
	var p model.Product
	query := `SELECT * FROM products WHERE id = $1 LIMIT 1`
	err := postgres.ExecutorFrom(ctx, r.DB).GetContext(ctx, &p, query, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Decrement holds the row lock from the first read to the write. The lock is
// released when the caller's transaction commits or rolls back. NO KEY UPDATE
// still serializes decrements but does not conflict with the KEY SHARE locks
// taken by sale_items foreign keys earlier in the same checkout.
func (r *PGRepository) Decrement(ctx context.Context, productID string, quantity int64) (*model.Product, error) {
	if quantity <= 0 {
		return nil, apperror.InvalidInputf("decrement quantity must be positive: %d", quantity)
	}
	tx, ok := postgres.TxFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("decrement %s: %w", productID, errNoTransaction)
	}

	var p model.Product
	err := tx.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1 FOR NO KEY UPDATE`, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ProductNotFound(productID)
		}
		return nil, fmt.Errorf("lock product %s: %w", productID, err)
	}

	if p.CurrentStock < quantity {
		return nil, apperror.InsufficientStock(productID, quantity, p.CurrentStock)
	}

	p.CurrentStock -= quantity
	query := `UPDATE products SET current_stock = $1, updated_at = NOW() WHERE id = $2`
	if _, err := tx.ExecContext(ctx, query, p.CurrentStock, productID); err != nil {
		if _, ok := postgres.ConstraintCode(err); ok {
			return nil, apperror.ConstraintViolation("stock update rejected for product "+productID, err)
		}
		return nil, fmt.Errorf("update stock %s: %w", productID, err)
	}
	return &p, nil
}

func (r *PGRepository) ComponentsOf(ctx context.Context, setProductID string) ([]model.SetItem, error) {
	var items []model.SetItem
	query := `
        SELECT id, set_product_id, component_product_id, quantity
        FROM set_items
        WHERE set_product_id = $1
        ORDER BY created_at, id
    `
	err := postgres.ExecutorFrom(ctx, r.DB).SelectContext(ctx, &items, query, setProductID)
	return items, err
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := postgres.ExecutorFrom(ctx, r.DB).SelectContext(ctx, &products, `SELECT * FROM products ORDER BY created_at, id`)
	return products, err
}
