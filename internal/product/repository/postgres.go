package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-stall-service/internal/product/dto"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// Create inserts the product row and its composition through the executor
// bound to ctx. Callers wrap it in a transaction so a set never exists
// without its entries.
func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	exec := postgres.ExecutorFrom(ctx, r.DB)

	query := `
        INSERT INTO products (
            id, name, unit_cost, sale_price, initial_stock, current_stock,
            kind, created_at, updated_at
        )
        VALUES (
            :id, :name, :unit_cost, :sale_price, :initial_stock, :current_stock,
            :kind, :created_at, :updated_at
        )
    `
	if _, err := exec.NamedExecContext(ctx, query, p); err != nil {
		return translate("create product "+p.ID, err)
	}

	itemQuery := `
        INSERT INTO set_items (id, set_product_id, component_product_id, quantity, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	for _, item := range p.SetItems {
		_, err := exec.ExecContext(ctx, itemQuery, item.ID, item.SetProductID, item.ComponentProductID, item.Quantity, p.CreatedAt)
		if err != nil {
			return translate("create set item "+item.ID, err)
		}
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	query := `SELECT * FROM products WHERE id = $1 LIMIT 1`
	err := postgres.ExecutorFrom(ctx, r.DB).GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	var products []model.Product
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.Kind != "" {
		conditions = append(conditions, "kind = :kind")
		args["kind"] = string(f.Kind)
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "name ILIKE :search")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM products"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM products" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	listQuery, listArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.SelectContext(ctx, &products, r.DB.Rebind(listQuery), listArgs...); err != nil {
		return nil, 0, err
	}
	return products, count, nil
}

func (r *PGRepository) FindSetItems(ctx context.Context, setProductID string) ([]model.SetItem, error) {
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

// Update writes catalog fields only. Stock is owned by the ledger.
func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET name = :name,
            unit_cost = :unit_cost,
            sale_price = :sale_price,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := postgres.ExecutorFrom(ctx, r.DB).NamedExecContext(ctx, query, p)
	if err != nil {
		return translate("update product "+p.ID, err)
	}
	return requireRow(res, p.ID)
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	res, err := postgres.ExecutorFrom(ctx, r.DB).ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return translate("delete product "+id, err)
	}
	return requireRow(res, id)
}

func (r *PGRepository) IsNameUnique(ctx context.Context, name, excludeID string) (bool, error) {
	var count int
	query := `SELECT count(*) FROM products WHERE name = $1`
	args := []interface{}{name}
	if excludeID != "" {
		query += ` AND id != $2`
		args = append(args, excludeID)
	}

	err := r.DB.GetContext(ctx, &count, query, args...)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func requireRow(res sql.Result, id string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperror.ProductNotFound(id)
	}
	return nil
}

func translate(op string, err error) error {
	code, ok := postgres.ConstraintCode(err)
	if !ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch code {
	case postgres.CodeForeignKeyViolation:
		return apperror.ConstraintViolation(op+": product is referenced by a sale or a set", err)
	case postgres.CodeUniqueViolation:
		return apperror.ConstraintViolation(op+": duplicate entry", err)
	default:
		return apperror.ConstraintViolation(op+": value out of range", err)
	}
}
