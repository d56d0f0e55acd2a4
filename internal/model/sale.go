package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is one completed checkout. It is written once and never updated.
type Sale struct {
	ID          string          `db:"id" json:"id"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	Items       []SaleItem      `db:"-" json:"items"`
}

// SaleItem is the price snapshot of one cart line taken at the moment of sale.
type SaleItem struct {
	ID          string          `db:"id" json:"id"`
	SaleID      string          `db:"sale_id" json:"sale_id"`
	LineNo      int             `db:"line_no" json:"line_no"`
	ProductID   string          `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    int64           `db:"quantity" json:"quantity"`
	UnitCost    decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	SalePrice   decimal.Decimal `db:"sale_price" json:"sale_price"`
	Subtotal    decimal.Decimal `db:"subtotal" json:"subtotal"`
}

type DailyTotal struct {
	Date  time.Time       `db:"sale_date" json:"date"`
	Total decimal.Decimal `db:"total" json:"total"`
}

type Revenue struct {
	Total decimal.Decimal `json:"total"`
	Daily []DailyTotal    `json:"daily"`
}
