package dto

import "github.com/fekuna/omnipos-stall-service/internal/model"

type ProductFilters struct {
	Kind        model.ProductKind // Empty means every kind
	SearchQuery string            // Name search
	Page        int
	PageSize    int
}
