package model

import "github.com/shopspring/decimal"

// ProductKind tags a product as a directly stocked item or a composite set.
type ProductKind string

const (
	KindSingle ProductKind = "single"
	KindSet    ProductKind = "set"
)

func (k ProductKind) Valid() bool {
	switch k {
	case KindSingle, KindSet:
		return true
	default:
		return false
	}
}

func (k ProductKind) String() string {
	return string(k)
}

type Product struct {
	BaseModel
	Name         string          `db:"name" json:"name"`
	UnitCost     decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	SalePrice    decimal.Decimal `db:"sale_price" json:"sale_price"`
	InitialStock int64           `db:"initial_stock" json:"initial_stock"`
	CurrentStock int64           `db:"current_stock" json:"current_stock"` // Always 0 for sets, see inventory resolver
	Kind         ProductKind     `db:"kind" json:"kind"`
	SetItems     []SetItem       `db:"-" json:"set_items,omitempty"` // Loaded for sets only
}

func (p *Product) IsSet() bool {
	return p.Kind == KindSet
}

// SetItem is one component line of a set product's composition.
type SetItem struct {
	ID                 string `db:"id" json:"id"`
	SetProductID       string `db:"set_product_id" json:"set_product_id"`
	ComponentProductID string `db:"component_product_id" json:"component_product_id"`
	Quantity           int64  `db:"quantity" json:"quantity"`
}
