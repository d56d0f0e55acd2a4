package handler

import (
	"context"

	posv1 "github.com/fekuna/omnipos-stall-service/internal/api/posv1"
	"github.com/fekuna/omnipos-stall-service/internal/auth"
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-stall-service/internal/sales"
	"github.com/fekuna/omnipos-stall-service/internal/sales/dto"
	"google.golang.org/protobuf/types/known/emptypb"
)

const dateLayout = "2006-01-02"

// SalesHandler serves both the checkout and the sales history services.
type SalesHandler struct {
	posv1.UnimplementedCheckoutServiceServer
	posv1.UnimplementedSalesServiceServer
	uc     sales.UseCase
	logger logger.ZapLogger
}

func NewSalesHandler(uc sales.UseCase, log logger.ZapLogger) *SalesHandler {
	return &SalesHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *SalesHandler) Checkout(ctx context.Context, req *posv1.CheckoutRequest) (*posv1.CheckoutResponse, error) {
	input := &dto.CheckoutInput{
		Lines:      make([]model.CartLine, len(req.Lines)),
		TerminalID: auth.GetTerminalID(ctx),
	}
	for i, l := range req.Lines {
		input.Lines[i] = model.CartLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	sale, err := h.uc.Checkout(ctx, input)
	if err != nil {
		return nil, posv1.Error(ctx, err, h.logger)
	}

	return &posv1.CheckoutResponse{
		SaleID:      sale.ID,
		TotalAmount: sale.TotalAmount.String(),
		Timestamp:   sale.CreatedAt,
		Items:       mapItemsToWire(sale.Items),
	}, nil
}

func (h *SalesHandler) ListSales(ctx context.Context, req *posv1.ListSalesRequest) (*posv1.ListSalesResponse, error) {
	list, err := h.uc.ListSales(ctx, &dto.SalesHistoryFilters{From: req.From, To: req.To})
	if err != nil {
		return nil, posv1.Error(ctx, err, h.logger)
	}

	out := make([]posv1.Sale, len(list))
	for i := range list {
		out[i] = *mapSaleToWire(&list[i])
	}
	return &posv1.ListSalesResponse{Sales: out}, nil
}

func (h *SalesHandler) GetSale(ctx context.Context, req *posv1.GetSaleRequest) (*posv1.Sale, error) {
	sale, err := h.uc.GetSale(ctx, req.SaleID)
	if err != nil {
		return nil, posv1.Error(ctx, err, h.logger)
	}
	return mapSaleToWire(sale), nil
}

func (h *SalesHandler) GetRevenue(ctx context.Context, _ *emptypb.Empty) (*posv1.RevenueResponse, error) {
	rev, err := h.uc.GetRevenue(ctx)
	if err != nil {
		return nil, posv1.Error(ctx, err, h.logger)
	}

	resp := &posv1.RevenueResponse{
		Total: rev.Total.String(),
		Daily: make([]posv1.DailyTotal, len(rev.Daily)),
	}
	for i, d := range rev.Daily {
		resp.Daily[i] = posv1.DailyTotal{
			Date:  d.Date.UTC().Format(dateLayout),
			Total: d.Total.String(),
		}
	}
	return resp, nil
}

func mapSaleToWire(m *model.Sale) *posv1.Sale {
	return &posv1.Sale{
		ID:          m.ID,
		TotalAmount: m.TotalAmount.String(),
		CreatedAt:   m.CreatedAt,
		Items:       mapItemsToWire(m.Items),
	}
}

func mapItemsToWire(items []model.SaleItem) []posv1.SaleItem {
	out := make([]posv1.SaleItem, len(items))
	for i, it := range items {
		out[i] = posv1.SaleItem{
			LineNo:      it.LineNo,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost.String(),
			SalePrice:   it.SalePrice.String(),
			Subtotal:    it.Subtotal.String(),
		}
	}
	return out
}
