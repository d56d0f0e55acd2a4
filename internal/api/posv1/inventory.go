package posv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	InventoryService_GetInventoryStatus_FullMethodName  = "/pos.v1.InventoryService/GetInventoryStatus"
	InventoryService_GetProductInventory_FullMethodName = "/pos.v1.InventoryService/GetProductInventory"
	InventoryService_CheckAvailability_FullMethodName   = "/pos.v1.InventoryService/CheckAvailability"
)

type InventoryServiceServer interface {
	GetInventoryStatus(context.Context, *emptypb.Empty) (*InventoryStatusResponse, error)
	GetProductInventory(context.Context, *GetProductInventoryRequest) (*InventoryItem, error)
	// CheckAvailability is advisory; checkout re-validates under lock.
	CheckAvailability(context.Context, *CheckAvailabilityRequest) (*CheckAvailabilityResponse, error)
}

type UnimplementedInventoryServiceServer struct{}

func (UnimplementedInventoryServiceServer) GetInventoryStatus(context.Context, *emptypb.Empty) (*InventoryStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetInventoryStatus not implemented")
}

func (UnimplementedInventoryServiceServer) GetProductInventory(context.Context, *GetProductInventoryRequest) (*InventoryItem, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProductInventory not implemented")
}

func (UnimplementedInventoryServiceServer) CheckAvailability(context.Context, *CheckAvailabilityRequest) (*CheckAvailabilityResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CheckAvailability not implemented")
}

var InventoryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "pos.v1.InventoryService",
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetInventoryStatus",
			Handler:    unary(InventoryService_GetInventoryStatus_FullMethodName, InventoryServiceServer.GetInventoryStatus),
		},
		{
			MethodName: "GetProductInventory",
			Handler:    unary(InventoryService_GetProductInventory_FullMethodName, InventoryServiceServer.GetProductInventory),
		},
		{
			MethodName: "CheckAvailability",
			Handler:    unary(InventoryService_CheckAvailability_FullMethodName, InventoryServiceServer.CheckAvailability),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: protoFile,
}

func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&InventoryService_ServiceDesc, srv)
}

type InventoryServiceClient interface {
	GetInventoryStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*InventoryStatusResponse, error)
	GetProductInventory(ctx context.Context, in *GetProductInventoryRequest, opts ...grpc.CallOption) (*InventoryItem, error)
	CheckAvailability(ctx context.Context, in *CheckAvailabilityRequest, opts ...grpc.CallOption) (*CheckAvailabilityResponse, error)
}

type inventoryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryServiceClient(cc grpc.ClientConnInterface) InventoryServiceClient {
	return &inventoryServiceClient{cc: cc}
}

func (c *inventoryServiceClient) GetInventoryStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*InventoryStatusResponse, error) {
	return invoke[InventoryStatusResponse](ctx, c.cc, InventoryService_GetInventoryStatus_FullMethodName, in, opts)
}

func (c *inventoryServiceClient) GetProductInventory(ctx context.Context, in *GetProductInventoryRequest, opts ...grpc.CallOption) (*InventoryItem, error) {
	return invoke[InventoryItem](ctx, c.cc, InventoryService_GetProductInventory_FullMethodName, in, opts)
}

func (c *inventoryServiceClient) CheckAvailability(ctx context.Context, in *CheckAvailabilityRequest, opts ...grpc.CallOption) (*CheckAvailabilityResponse, error) {
	return invoke[CheckAvailabilityResponse](ctx, c.cc, InventoryService_CheckAvailability_FullMethodName, in, opts)
}
