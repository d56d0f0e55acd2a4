package posv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const CheckoutService_Checkout_FullMethodName = "/pos.v1.CheckoutService/Checkout"

type CheckoutServiceServer interface {
	Checkout(context.Context, *CheckoutRequest) (*CheckoutResponse, error)
}

type UnimplementedCheckoutServiceServer struct{}

func (UnimplementedCheckoutServiceServer) Checkout(context.Context, *CheckoutRequest) (*CheckoutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Checkout not implemented")
}

var CheckoutService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "pos.v1.CheckoutService",
	HandlerType: (*CheckoutServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Checkout",
			Handler:    unary(CheckoutService_Checkout_FullMethodName, CheckoutServiceServer.Checkout),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: protoFile,
}

func RegisterCheckoutServiceServer(s grpc.ServiceRegistrar, srv CheckoutServiceServer) {
	s.RegisterService(&CheckoutService_ServiceDesc, srv)
}

type CheckoutServiceClient interface {
	Checkout(ctx context.Context, in *CheckoutRequest, opts ...grpc.CallOption) (*CheckoutResponse, error)
}

type checkoutServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCheckoutServiceClient(cc grpc.ClientConnInterface) CheckoutServiceClient {
	return &checkoutServiceClient{cc: cc}
}

func (c *checkoutServiceClient) Checkout(ctx context.Context, in *CheckoutRequest, opts ...grpc.CallOption) (*CheckoutResponse, error) {
	return invoke[CheckoutResponse](ctx, c.cc, CheckoutService_Checkout_FullMethodName, in, opts)
}
