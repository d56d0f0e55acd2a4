package posv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	ProductService_CreateProduct_FullMethodName = "/pos.v1.ProductService/CreateProduct"
	ProductService_GetProduct_FullMethodName    = "/pos.v1.ProductService/GetProduct"
	ProductService_ListProducts_FullMethodName  = "/pos.v1.ProductService/ListProducts"
	ProductService_UpdateProduct_FullMethodName = "/pos.v1.ProductService/UpdateProduct"
	ProductService_UpdatePrice_FullMethodName   = "/pos.v1.ProductService/UpdatePrice"
	ProductService_DeleteProduct_FullMethodName = "/pos.v1.ProductService/DeleteProduct"
)

type ProductServiceServer interface {
	CreateProduct(context.Context, *CreateProductRequest) (*ProductResponse, error)
	GetProduct(context.Context, *GetProductRequest) (*ProductResponse, error)
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	UpdateProduct(context.Context, *UpdateProductRequest) (*ProductResponse, error)
	UpdatePrice(context.Context, *UpdatePriceRequest) (*ProductResponse, error)
	DeleteProduct(context.Context, *DeleteProductRequest) (*emptypb.Empty, error)
}

type UnimplementedProductServiceServer struct{}

func (UnimplementedProductServiceServer) CreateProduct(context.Context, *CreateProductRequest) (*ProductResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateProduct not implemented")
}

func (UnimplementedProductServiceServer) GetProduct(context.Context, *GetProductRequest) (*ProductResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProduct not implemented")
}

func (UnimplementedProductServiceServer) ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListProducts not implemented")
}

func (UnimplementedProductServiceServer) UpdateProduct(context.Context, *UpdateProductRequest) (*ProductResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateProduct not implemented")
}

func (UnimplementedProductServiceServer) UpdatePrice(context.Context, *UpdatePriceRequest) (*ProductResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdatePrice not implemented")
}

func (UnimplementedProductServiceServer) DeleteProduct(context.Context, *DeleteProductRequest) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteProduct not implemented")
}

var ProductService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "pos.v1.ProductService",
	HandlerType: (*ProductServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateProduct",
			Handler:    unary(ProductService_CreateProduct_FullMethodName, ProductServiceServer.CreateProduct),
		},
		{
			MethodName: "GetProduct",
			Handler:    unary(ProductService_GetProduct_FullMethodName, ProductServiceServer.GetProduct),
		},
		{
			MethodName: "ListProducts",
			Handler:    unary(ProductService_ListProducts_FullMethodName, ProductServiceServer.ListProducts),
		},
		{
			MethodName: "UpdateProduct",
			Handler:    unary(ProductService_UpdateProduct_FullMethodName, ProductServiceServer.UpdateProduct),
		},
		{
			MethodName: "UpdatePrice",
			Handler:    unary(ProductService_UpdatePrice_FullMethodName, ProductServiceServer.UpdatePrice),
		},
		{
			MethodName: "DeleteProduct",
			Handler:    unary(ProductService_DeleteProduct_FullMethodName, ProductServiceServer.DeleteProduct),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: protoFile,
}

func RegisterProductServiceServer(s grpc.ServiceRegistrar, srv ProductServiceServer) {
	s.RegisterService(&ProductService_ServiceDesc, srv)
}

type ProductServiceClient interface {
	CreateProduct(ctx context.Context, in *CreateProductRequest, opts ...grpc.CallOption) (*ProductResponse, error)
	GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*ProductResponse, error)
	ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error)
	UpdateProduct(ctx context.Context, in *UpdateProductRequest, opts ...grpc.CallOption) (*ProductResponse, error)
	UpdatePrice(ctx context.Context, in *UpdatePriceRequest, opts ...grpc.CallOption) (*ProductResponse, error)
	DeleteProduct(ctx context.Context, in *DeleteProductRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type productServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewProductServiceClient(cc grpc.ClientConnInterface) ProductServiceClient {
	return &productServiceClient{cc: cc}
}

func (c *productServiceClient) CreateProduct(ctx context.Context, in *CreateProductRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	return invoke[ProductResponse](ctx, c.cc, ProductService_CreateProduct_FullMethodName, in, opts)
}

func (c *productServiceClient) GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	return invoke[ProductResponse](ctx, c.cc, ProductService_GetProduct_FullMethodName, in, opts)
}

func (c *productServiceClient) ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	return invoke[ListProductsResponse](ctx, c.cc, ProductService_ListProducts_FullMethodName, in, opts)
}

func (c *productServiceClient) UpdateProduct(ctx context.Context, in *UpdateProductRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	return invoke[ProductResponse](ctx, c.cc, ProductService_UpdateProduct_FullMethodName, in, opts)
}

func (c *productServiceClient) UpdatePrice(ctx context.Context, in *UpdatePriceRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	return invoke[ProductResponse](ctx, c.cc, ProductService_UpdatePrice_FullMethodName, in, opts)
}

func (c *productServiceClient) DeleteProduct(ctx context.Context, in *DeleteProductRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, ProductService_DeleteProduct_FullMethodName, in, opts)
}
