package model

// InventoryStatus is the per-product row of the inventory status query.
// CurrentStock for sets is derived from component stock at query time.
type InventoryStatus struct {
	ProductID    string      `json:"product_id"`
	Name         string      `json:"name"`
	Kind         ProductKind `json:"kind"`
	CurrentStock int64       `json:"current_stock"`
	InitialStock int64       `json:"initial_stock"`
	StockRate    float64     `json:"stock_rate"`
	IsOutOfStock bool        `json:"is_out_of_stock"`
}

func NewInventoryStatus(p *Product, currentStock int64) InventoryStatus {
	rate := 0.0
	if p.InitialStock > 0 {
		rate = float64(currentStock) / float64(p.InitialStock)
	}
	return InventoryStatus{
		ProductID:    p.ID,
		Name:         p.Name,
		Kind:         p.Kind,
		CurrentStock: currentStock,
		InitialStock: p.InitialStock,
		StockRate:    rate,
		IsOutOfStock: currentStock == 0,
	}
}

// MaxLineQuantity bounds a single cart line. Anything larger is a typo at
// the till, not a sale.
const MaxLineQuantity int64 = 1_000_000

// CartLine is one requested (product, quantity) pair of a checkout.
type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// Requirement is an aggregated demand on a single product's stock.
type Requirement struct {
	ProductID string
	Quantity  int64
}

type Shortage struct {
	ProductID string
	Requested int64
	Available int64
}

type AvailabilityResult struct {
	Available bool
	// Requirements holds the aggregated demand per base product in first-seen order.
	Requirements []Requirement
	Shortages    []Shortage
}
