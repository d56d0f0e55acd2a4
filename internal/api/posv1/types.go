package posv1

import "time"

// Money travels as a decimal string, e.g. "1200.50".

type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type CheckoutRequest struct {
	Lines []CartLine `json:"lines"`
}

type CheckoutResponse struct {
	SaleID      string     `json:"sale_id"`
	TotalAmount string     `json:"total_amount"`
	Timestamp   time.Time  `json:"timestamp"`
	Items       []SaleItem `json:"items"`
}

type InventoryItem struct {
	ProductID    string  `json:"product_id"`
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	CurrentStock int64   `json:"current_stock"`
	InitialStock int64   `json:"initial_stock"`
	StockRate    float64 `json:"stock_rate"`
	IsOutOfStock bool    `json:"is_out_of_stock"`
}

type InventoryStatusResponse struct {
	Items []InventoryItem `json:"items"`
}

type GetProductInventoryRequest struct {
	ProductID string `json:"product_id"`
}

type CheckAvailabilityRequest struct {
	Lines []CartLine `json:"lines"`
}

type Shortage struct {
	ProductID string `json:"product_id"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

type CheckAvailabilityResponse struct {
	Available bool       `json:"available"`
	Shortages []Shortage `json:"shortages,omitempty"`
}

type SaleItem struct {
	LineNo      int    `json:"line_no"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
	UnitCost    string `json:"unit_cost"`
	SalePrice   string `json:"sale_price"`
	Subtotal    string `json:"subtotal"`
}

type Sale struct {
	ID          string     `json:"id"`
	TotalAmount string     `json:"total_amount"`
	CreatedAt   time.Time  `json:"created_at"`
	Items       []SaleItem `json:"items"`
}

// ListSalesRequest bounds are inclusive; a missing bound is open.
type ListSalesRequest struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

type ListSalesResponse struct {
	Sales []Sale `json:"sales"`
}

type GetSaleRequest struct {
	SaleID string `json:"sale_id"`
}

type DailyTotal struct {
	Date  string `json:"date"` // YYYY-MM-DD, UTC
	Total string `json:"total"`
}

type RevenueResponse struct {
	Total string       `json:"total"`
	Daily []DailyTotal `json:"daily"`
}

type SetItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	UnitCost     string    `json:"unit_cost"`
	SalePrice    string    `json:"sale_price"`
	InitialStock int64     `json:"initial_stock"`
	CurrentStock int64     `json:"current_stock"`
	Kind         string    `json:"kind"`
	SetItems     []SetItem `json:"set_items,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ProductResponse struct {
	Product *Product `json:"product"`
}

type CreateProductRequest struct {
	Name         string    `json:"name"`
	UnitCost     string    `json:"unit_cost"`
	SalePrice    string    `json:"sale_price"`
	InitialStock int64     `json:"initial_stock"`
	Kind         string    `json:"kind"`
	SetItems     []SetItem `json:"set_items,omitempty"`
}

type GetProductRequest struct {
	ID string `json:"id"`
}

type ListProductsRequest struct {
	Kind        string `json:"kind,omitempty"`
	SearchQuery string `json:"search_query,omitempty"`
	Page        int32  `json:"page,omitempty"`
	PageSize    int32  `json:"page_size,omitempty"`
}

type ListProductsResponse struct {
	Products []*Product `json:"products"`
	Total    int32      `json:"total"`
	Page     int32      `json:"page"`
	PageSize int32      `json:"page_size"`
}

// UpdateProductRequest leaves nil fields unchanged.
type UpdateProductRequest struct {
	ID        string  `json:"id"`
	Name      *string `json:"name,omitempty"`
	UnitCost  *string `json:"unit_cost,omitempty"`
	SalePrice *string `json:"sale_price,omitempty"`
}

type UpdatePriceRequest struct {
	ID        string `json:"id"`
	SalePrice string `json:"sale_price"`
}

type DeleteProductRequest struct {
	ID string `json:"id"`
}
