package auth

import (
	"context"

	"google.golang.org/grpc/metadata"
)

const (
	HeaderAPIKey         = "x-api-key"
	HeaderTerminalID     = "x-terminal-id"
	HeaderAcceptLanguage = "accept-language"
)

type ctxKey int

const (
	terminalIDKey ctxKey = iota
	acceptLanguageKey
)

func WithTerminalID(ctx context.Context, terminalID string) context.Context {
	return context.WithValue(ctx, terminalIDKey, terminalID)
}

func WithAcceptLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, acceptLanguageKey, lang)
}

// GetTerminalID returns the calling terminal. The interceptor populates the
// context; incoming metadata is the fallback.
func GetTerminalID(ctx context.Context) string {
	if val, ok := ctx.Value(terminalIDKey).(string); ok {
		return val
	}
	return fromMetadata(ctx, HeaderTerminalID)
}

func GetAcceptLanguage(ctx context.Context) string {
	if val, ok := ctx.Value(acceptLanguageKey).(string); ok {
		return val
	}
	return fromMetadata(ctx, HeaderAcceptLanguage)
}

func fromMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if val := md.Get(key); len(val) > 0 {
		return val[0]
	}
	return ""
}
