package posv1

import (
	"context"
	"errors"
	"testing"

	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/auth"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestError_mapping(t *testing.T) {
	i18n.Init()
	ctx := context.Background()
	log := logger.NewNop()

	tests := []struct {
		name    string
		err     error
		code    codes.Code
		message string
	}{
		{"product not found", apperror.ProductNotFound("p-1"), codes.NotFound, "Product not found: p-1"},
		{"sale not found", apperror.NotFound("sale", "s-1"), codes.NotFound, "Sale not found: s-1"},
		{"insufficient stock", apperror.InsufficientStock("p-1", 5, 2), codes.FailedPrecondition, "Insufficient stock for p-1: requested 5, available 2"},
		{"invalid input", apperror.InvalidInput("cart is empty"), codes.InvalidArgument, "Invalid request: cart is empty"},
		{"constraint", apperror.ConstraintViolation("product is referenced", nil), codes.FailedPrecondition, "The operation conflicts with existing records: product is referenced"},
		{"internal", errors.New("pq: connection refused"), codes.Internal, "Internal error, please try again"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, _ := status.FromError(Error(ctx, tt.err, log))
			assert.Equal(t, tt.code, st.Code())
			assert.Equal(t, tt.message, st.Message())
		})
	}
}

func TestError_localized(t *testing.T) {
	i18n.Init()
	ctx := auth.WithAcceptLanguage(context.Background(), "ja")

	st, _ := status.FromError(Error(ctx, apperror.InsufficientStock("p-1", 5, 2), logger.NewNop()))
	assert.Equal(t, "在庫が不足しています (p-1): 要求 5、在庫 2", st.Message())
}
