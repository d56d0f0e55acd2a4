package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/fekuna/omnipos-stall-service/internal/pkg/i18n"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const healthServicePrefix = "/grpc.health.v1.Health/"

// UnaryServerInterceptor copies terminal metadata into the context and,
// when apiKey is non-empty, rejects calls that do not present it in
// x-api-key. Health checks are always let through.
func UnaryServerInterceptor(apiKey string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if strings.HasPrefix(info.FullMethod, healthServicePrefix) {
			return handler(ctx, req)
		}

		lang := fromMetadata(ctx, HeaderAcceptLanguage)
		ctx = WithAcceptLanguage(ctx, lang)
		ctx = WithTerminalID(ctx, fromMetadata(ctx, HeaderTerminalID))

		if apiKey != "" {
			got := fromMetadata(ctx, HeaderAPIKey)
			if subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
				return nil, status.Error(codes.Unauthenticated, i18n.T(lang, "ErrUnauthenticated", nil))
			}
		}
		return handler(ctx, req)
	}
}
