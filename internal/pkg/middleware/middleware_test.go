package middleware

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-stall-service/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var info = &grpc.UnaryServerInfo{FullMethod: "/pos.v1.CheckoutService/Checkout"}

func TestRecoveryInterceptor(t *testing.T) {
	panicky := func(ctx context.Context, req any) (any, error) {
		panic("boom")
	}

	resp, err := RecoveryInterceptor(logger.NewNop())(context.Background(), nil, info, panicky)
	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestLoggingInterceptor_levels(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := logger.FromZap(zap.New(core))
	interceptor := LoggingInterceptor(log)

	ok := func(ctx context.Context, req any) (any, error) { return "done", nil }
	rejected := func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.FailedPrecondition, "insufficient stock")
	}
	broken := func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.Internal, "db down")
	}

	resp, err := interceptor(context.Background(), nil, info, ok)
	require.NoError(t, err)
	assert.Equal(t, "done", resp)
	_, _ = interceptor(context.Background(), nil, info, rejected)
	_, _ = interceptor(context.Background(), nil, info, broken)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "OK", entries[0].ContextMap()["code"])
	assert.Equal(t, zap.InfoLevel, entries[1].Level)
	assert.Equal(t, "FailedPrecondition", entries[1].ContextMap()["code"])
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
}
