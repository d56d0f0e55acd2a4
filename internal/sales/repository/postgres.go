package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// Create writes the sale row and all item rows through the transaction in
// ctx. Items go in as one multi-row insert.
func (r *PGRepository) Create(ctx context.Context, sale *model.Sale) error {
	exec := postgres.ExecutorFrom(ctx, r.DB)

	query := `
        INSERT INTO sales (id, total_amount, created_at)
        VALUES (:id, :total_amount, :created_at)
    `
	if _, err := exec.NamedExecContext(ctx, query, sale); err != nil {
		return translate("create sale "+sale.ID, err)
	}
	if len(sale.Items) == 0 {
		return nil
	}

	itemQuery := `
        INSERT INTO sale_items (
            id, sale_id, line_no, product_id, product_name, quantity,
            unit_cost, sale_price, subtotal
        )
        VALUES (
            :id, :sale_id, :line_no, :product_id, :product_name, :quantity,
            :unit_cost, :sale_price, :subtotal
        )
    `
	if _, err := exec.NamedExecContext(ctx, itemQuery, sale.Items); err != nil {
		return translate("create sale items "+sale.ID, err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Sale, error) {
	db := postgres.ExecutorFrom(ctx, r.DB)

	var sale model.Sale
	err := db.GetContext(ctx, &sale, `SELECT id, total_amount, created_at FROM sales WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	query := `SELECT * FROM sale_items WHERE sale_id = $1 ORDER BY line_no`
	if err := db.SelectContext(ctx, &sale.Items, query, id); err != nil {
		return nil, fmt.Errorf("load items of sale %s: %w", id, err)
	}
	return &sale, nil
}

func (r *PGRepository) FindByTimeRange(ctx context.Context, from, to *time.Time) ([]model.Sale, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if from != nil {
		conditions = append(conditions, "created_at >= :from")
		args["from"] = *from
	}
	if to != nil {
		conditions = append(conditions, "created_at <= :to")
		args["to"] = *to
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query, queryArgs, err := sqlx.Named("SELECT id, total_amount, created_at FROM sales"+whereClause+" ORDER BY created_at DESC, id", args)
	if err != nil {
		return nil, err
	}

	var sales []model.Sale
	if err := r.DB.SelectContext(ctx, &sales, r.DB.Rebind(query), queryArgs...); err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return sales, nil
	}

	ids := make([]string, 0, len(sales))
	for _, s := range sales {
		ids = append(ids, s.ID)
	}
	itemQuery, itemArgs, err := sqlx.In(`SELECT * FROM sale_items WHERE sale_id IN (?) ORDER BY sale_id, line_no`, ids)
	if err != nil {
		return nil, err
	}

	var items []model.SaleItem
	if err := r.DB.SelectContext(ctx, &items, r.DB.Rebind(itemQuery), itemArgs...); err != nil {
		return nil, fmt.Errorf("load sale items: %w", err)
	}

	bySale := make(map[string][]model.SaleItem, len(sales))
	for _, item := range items {
		bySale[item.SaleID] = append(bySale[item.SaleID], item)
	}
	for i := range sales {
		sales[i].Items = bySale[sales[i].ID]
	}
	return sales, nil
}

func (r *PGRepository) SumAll(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.DB.GetContext(ctx, &total, `SELECT COALESCE(SUM(total_amount), 0) FROM sales`)
	return total, err
}

func (r *PGRepository) DailyTotals(ctx context.Context) ([]model.DailyTotal, error) {
	var totals []model.DailyTotal
	query := `
        SELECT (created_at AT TIME ZONE 'UTC')::date AS sale_date,
               SUM(total_amount) AS total
        FROM sales
        GROUP BY sale_date
        ORDER BY sale_date DESC
    `
	err := r.DB.SelectContext(ctx, &totals, query)
	return totals, err
}

func translate(op string, err error) error {
	if _, ok := postgres.ConstraintCode(err); ok {
		return apperror.ConstraintViolation(op+": integrity check failed", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
