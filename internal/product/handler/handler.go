package handler

import (
	"context"

	posv1 "github.com/fekuna/omnipos-stall-service/internal/api/posv1"
	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-stall-service/internal/product"
	"github.com/fekuna/omnipos-stall-service/internal/product/dto"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/emptypb"
)

type ProductHandler struct {
	posv1.UnimplementedProductServiceServer
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProductHandler) CreateProduct(ctx context.Context, req *posv1.CreateProductRequest) (*posv1.ProductResponse, error) {
	unitCost, err := parseMoney("unit_cost", req.UnitCost)
	if err != nil {
		return nil, posv1.Error(ctx, err, h.logger)
	}
	salePrice, err := parseMoney("sale_price", req.SalePrice)
	if err != nil {
		return nil, posv1.Error(ctx, err, h.logger)
	}

	input := &dto.CreateProductInput{
		Name:         req.Name,
		UnitCost:     unitCost,
		SalePrice:    salePrice,
		InitialStock: req.InitialStock,
		Kind:         model.ProductKind(req.Kind),
	}
	for _, item := range req.SetItems {
		input.SetItems = append(input.SetItems, dto.SetItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	p, err := h.uc.CreateProduct(ctx, input)
	if err != nil {
		return nil, posv1.Error(ctx, err, h.logger)
	}

	return &posv1.ProductResponse{Product: mapProductToWire(p)}, nil
}

func (h *ProductHandler) GetProduct(ctx context.Context, req *posv1.GetProductRequest) (*posv1.ProductResponse, error) {
	p, err := h.uc.GetProduct(ctx, req.ID)
	if err != nil {
		return nil, posv1.Error(ctx, err, h.logger)
	}

	return &posv1.ProductResponse{Product: mapProductToWire(p)}, nil
}

func (h *ProductHandler) ListProducts(ctx context.Context, req *posv1.ListProductsRequest) (*posv1.ListProductsResponse, error) {
	filters := &dto.ProductFilters{
		Kind:        model.ProductKind(req.Kind),
		SearchQuery: req.SearchQuery,
		Page:        int(req.Page),
		PageSize:    int(req.PageSize),
	}

	products, count, err := h.uc.ListProducts(ctx, filters)
	if err != nil {
		return nil, posv1.Error(ctx, err, h.logger)
	}

	out := make([]*posv1.Product, len(products))
	for i := range products {
		out[i] = mapProductToWire(&products[i])
	}

	return &posv1.ListProductsResponse{
		Products: out,
		Total:    int32(count),
		Page:     int32(filters.Page),
		PageSize: int32(filters.PageSize),
	}, nil
}

func (h *ProductHandler) UpdateProduct(ctx context.Context, req *posv1.UpdateProductRequest) (*posv1.ProductResponse, error) {
	input := &dto.UpdateProductInput{
		ID:   req.ID,
		Name: req.Name,
	}
	if req.UnitCost != nil {
		v, err := parseMoney("unit_cost", *req.UnitCost)
		if err != nil {
			return nil, posv1.Error(ctx, err, h.logger)
		}
		input.UnitCost = &v
	}
	if req.SalePrice != nil {
		v, err := parseMoney("sale_price", *req.SalePrice)
		if err != nil {
			return nil, posv1.Error(ctx, err, h.logger)
		}
		input.SalePrice = &v
	}

	p, err := h.uc.UpdateProduct(ctx, input)
	if err != nil {
		return nil, posv1.Error(ctx, err, h.logger)
	}

	return &posv1.ProductResponse{Product: mapProductToWire(p)}, nil
}

func (h *ProductHandler) UpdatePrice(ctx context.Context, req *posv1.UpdatePriceRequest) (*posv1.ProductResponse, error) {
	price, err := parseMoney("sale_price", req.SalePrice)
	if err != nil {
		return nil, posv1.Error(ctx, err, h.logger)
	}

	p, err := h.uc.UpdatePrice(ctx, req.ID, price)
	if err != nil {
		return nil, posv1.Error(ctx, err, h.logger)
	}

	return &posv1.ProductResponse{Product: mapProductToWire(p)}, nil
}

func (h *ProductHandler) DeleteProduct(ctx context.Context, req *posv1.DeleteProductRequest) (*emptypb.Empty, error) {
	if err := h.uc.DeleteProduct(ctx, req.ID); err != nil {
		return nil, posv1.Error(ctx, err, h.logger)
	}
	return &emptypb.Empty{}, nil
}

func parseMoney(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperror.InvalidInputf("%s must be a decimal amount, got %q", field, s)
	}
	return d, nil
}

func mapProductToWire(m *model.Product) *posv1.Product {
	if m == nil {
		return nil
	}

	p := &posv1.Product{
		ID:           m.ID,
		Name:         m.Name,
		UnitCost:     m.UnitCost.String(),
		SalePrice:    m.SalePrice.String(),
		InitialStock: m.InitialStock,
		CurrentStock: m.CurrentStock,
		Kind:         m.Kind.String(),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	for _, item := range m.SetItems {
		p.SetItems = append(p.SetItems, posv1.SetItem{
			ProductID: item.ComponentProductID,
			Quantity:  item.Quantity,
		})
	}
	return p
}
