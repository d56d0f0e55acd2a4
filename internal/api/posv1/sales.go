package posv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	SalesService_ListSales_FullMethodName  = "/pos.v1.SalesService/ListSales"
	SalesService_GetSale_FullMethodName    = "/pos.v1.SalesService/GetSale"
	SalesService_GetRevenue_FullMethodName = "/pos.v1.SalesService/GetRevenue"
)

type SalesServiceServer interface {
	ListSales(context.Context, *ListSalesRequest) (*ListSalesResponse, error)
	GetSale(context.Context, *GetSaleRequest) (*Sale, error)
	GetRevenue(context.Context, *emptypb.Empty) (*RevenueResponse, error)
}

type UnimplementedSalesServiceServer struct{}

func (UnimplementedSalesServiceServer) ListSales(context.Context, *ListSalesRequest) (*ListSalesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListSales not implemented")
}

func (UnimplementedSalesServiceServer) GetSale(context.Context, *GetSaleRequest) (*Sale, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSale not implemented")
}

func (UnimplementedSalesServiceServer) GetRevenue(context.Context, *emptypb.Empty) (*RevenueResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRevenue not implemented")
}

var SalesService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "pos.v1.SalesService",
	HandlerType: (*SalesServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListSales",
			Handler:    unary(SalesService_ListSales_FullMethodName, SalesServiceServer.ListSales),
		},
		{
			MethodName: "GetSale",
			Handler:    unary(SalesService_GetSale_FullMethodName, SalesServiceServer.GetSale),
		},
		{
			MethodName: "GetRevenue",
			Handler:    unary(SalesService_GetRevenue_FullMethodName, SalesServiceServer.GetRevenue),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: protoFile,
}

func RegisterSalesServiceServer(s grpc.ServiceRegistrar, srv SalesServiceServer) {
	s.RegisterService(&SalesService_ServiceDesc, srv)
}

type SalesServiceClient interface {
	ListSales(ctx context.Context, in *ListSalesRequest, opts ...grpc.CallOption) (*ListSalesResponse, error)
	GetSale(ctx context.Context, in *GetSaleRequest, opts ...grpc.CallOption) (*Sale, error)
	GetRevenue(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*RevenueResponse, error)
}

type salesServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSalesServiceClient(cc grpc.ClientConnInterface) SalesServiceClient {
	return &salesServiceClient{cc: cc}
}

func (c *salesServiceClient) ListSales(ctx context.Context, in *ListSalesRequest, opts ...grpc.CallOption) (*ListSalesResponse, error) {
	return invoke[ListSalesResponse](ctx, c.cc, SalesService_ListSales_FullMethodName, in, opts)
}

func (c *salesServiceClient) GetSale(ctx context.Context, in *GetSaleRequest, opts ...grpc.CallOption) (*Sale, error) {
	return invoke[Sale](ctx, c.cc, SalesService_GetSale_FullMethodName, in, opts)
}

func (c *salesServiceClient) GetRevenue(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*RevenueResponse, error) {
	return invoke[RevenueResponse](ctx, c.cc, SalesService_GetRevenue_FullMethodName, in, opts)
}
