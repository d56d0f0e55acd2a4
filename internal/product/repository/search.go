package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/search"
	"github.com/fekuna/omnipos-stall-service/internal/product/dto"
	"github.com/shopspring/decimal"
)

const indexName = "products"

const indexMapping = `{
	"mappings": {
		"properties": {
			"name": { "type": "text" },
			"kind": { "type": "keyword" },
			"sale_price": { "type": "double" },
			"created_at": { "type": "date" }
		}
	}
}`

// productDocument is the searchable projection of a product. Stock is left
// out on purpose; it changes on every sale.
type productDocument struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	SalePrice decimal.Decimal `json:"sale_price"`
	CreatedAt time.Time       `json:"created_at"`
}

// ESRepository keeps the products index in step with the catalog.
type ESRepository struct {
	es        *search.Client
	indexOnce sync.Once
}

func NewESRepository(es *search.Client) *ESRepository {
	return &ESRepository{es: es}
}

func (r *ESRepository) IndexProduct(ctx context.Context, p *model.Product) error {
	r.indexOnce.Do(func() {
		_ = r.es.CreateIndex(ctx, indexName, indexMapping)
	})

	doc := productDocument{
		ID:        p.ID,
		Name:      p.Name,
		Kind:      string(p.Kind),
		SalePrice: p.SalePrice,
		CreatedAt: p.CreatedAt,
	}
	return r.es.Index(ctx, indexName, p.ID, doc)
}

func (r *ESRepository) DeleteProduct(ctx context.Context, id string) error {
	return r.es.Delete(ctx, indexName, id)
}

// SearchProducts returns id-only products in relevance order; callers load
// the rows from the catalog.
func (r *ESRepository) SearchProducts(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	must := []map[string]interface{}{
		{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", f.SearchQuery),
				"fields": []string{"name"},
			},
		},
	}
	if f.Kind != "" {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"kind": string(f.Kind)},
		})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
	}
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		q["from"] = (page - 1) * f.PageSize
		q["size"] = f.PageSize
	}

	res, err := r.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, 0, err
	}

	products := make([]model.Product, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		products = append(products, model.Product{BaseModel: model.BaseModel{ID: hit.ID}})
	}
	return products, res.Hits.Total.Value, nil
}
