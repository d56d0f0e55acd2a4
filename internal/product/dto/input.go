package dto

import (
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/shopspring/decimal"
)

type SetItemInput struct {
	ProductID string
	Quantity  int64
}

type CreateProductInput struct {
	Name         string
	UnitCost     decimal.Decimal
	SalePrice    decimal.Decimal
	InitialStock int64
	Kind         model.ProductKind
	SetItems     []SetItemInput // Required for sets, rejected for singles
}

// UpdateProductInput changes catalog fields only; nil fields are left as is.
// Stock is never updated through the catalog.
type UpdateProductInput struct {
	ID        string
	Name      *string
	UnitCost  *decimal.Decimal
	SalePrice *decimal.Decimal
}
