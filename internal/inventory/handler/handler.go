package handler

import (
	"context"

	posv1 "github.com/fekuna/omnipos-stall-service/internal/api/posv1"
	"github.com/fekuna/omnipos-stall-service/internal/inventory"
	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/logger"
	"google.golang.org/protobuf/types/known/emptypb"
)

type InventoryHandler struct {
	posv1.UnimplementedInventoryServiceServer
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) GetInventoryStatus(ctx context.Context, _ *emptypb.Empty) (*posv1.InventoryStatusResponse, error) {
	items, err := h.uc.GetInventoryStatus(ctx)
	if err != nil {
		return nil, posv1.Error(ctx, err, h.logger)
	}

	out := make([]posv1.InventoryItem, len(items))
	for i := range items {
		out[i] = mapStatusToWire(&items[i])
	}
	return &posv1.InventoryStatusResponse{Items: out}, nil
}

func (h *InventoryHandler) GetProductInventory(ctx context.Context, req *posv1.GetProductInventoryRequest) (*posv1.InventoryItem, error) {
	item, err := h.uc.GetProductInventory(ctx, req.ProductID)
	if err != nil {
		return nil, posv1.Error(ctx, err, h.logger)
	}

	out := mapStatusToWire(item)
	return &out, nil
}

func (h *InventoryHandler) CheckAvailability(ctx context.Context, req *posv1.CheckAvailabilityRequest) (*posv1.CheckAvailabilityResponse, error) {
	lines := make([]model.CartLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = model.CartLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	res, err := h.uc.CheckAvailability(ctx, lines)
	if err != nil {
		return nil, posv1.Error(ctx, err, h.logger)
	}

	resp := &posv1.CheckAvailabilityResponse{Available: res.Available}
	for _, s := range res.Shortages {
		resp.Shortages = append(resp.Shortages, posv1.Shortage{
			ProductID: s.ProductID,
			Requested: s.Requested,
			Available: s.Available,
		})
	}
	return resp, nil
}

func mapStatusToWire(m *model.InventoryStatus) posv1.InventoryItem {
	return posv1.InventoryItem{
		ProductID:    m.ProductID,
		Name:         m.Name,
		Kind:         m.Kind.String(),
		CurrentStock: m.CurrentStock,
		InitialStock: m.InitialStock,
		StockRate:    m.StockRate,
		IsOutOfStock: m.IsOutOfStock,
	}
}
