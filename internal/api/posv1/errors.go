package posv1

import (
	"context"
	"strconv"

	"github.com/fekuna/omnipos-stall-service/internal/apperror"
	"github.com/fekuna/omnipos-stall-service/internal/auth"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Trailer keys carrying structured detail of a rejected call.
const (
	TrailerErrorKind = "x-error-kind"
	TrailerProductID = "x-product-id"
	TrailerRequested = "x-requested"
	TrailerAvailable = "x-available"
)

var notFoundMessages = map[string]string{
	"product": "ErrNotFound",
	"sale":    "ErrSaleNotFound",
}

// Error converts a usecase error into a gRPC status localized for the
// caller's accept-language. Non-domain errors are logged and hidden behind
// a generic Internal status.
func Error(ctx context.Context, err error, log logger.ZapLogger) error {
	lang := auth.GetAcceptLanguage(ctx)

	e, ok := apperror.As(err)
	if !ok {
		log.Error("request failed", zap.Error(err), zap.String("terminal_id", auth.GetTerminalID(ctx)))
		return status.Error(codes.Internal, i18n.T(lang, "ErrInternal", nil))
	}

	trailer := metadata.Pairs(TrailerErrorKind, e.Kind.String())
	var st *status.Status
	switch e.Kind {
	case apperror.KindNotFound:
		id, known := notFoundMessages[e.Entity]
		if !known {
			id = "ErrNotFound"
		}
		st = status.New(codes.NotFound, i18n.T(lang, id, map[string]interface{}{
			"ProductID": e.ProductID,
			"ID":        e.ProductID,
		}))
	case apperror.KindInsufficientStock:
		trailer.Append(TrailerProductID, e.ProductID)
		trailer.Append(TrailerRequested, strconv.FormatInt(e.Requested, 10))
		trailer.Append(TrailerAvailable, strconv.FormatInt(e.Available, 10))
		st = status.New(codes.FailedPrecondition, i18n.T(lang, "ErrInsufficientStock", map[string]interface{}{
			"ProductID": e.ProductID,
			"Requested": e.Requested,
			"Available": e.Available,
		}))
	case apperror.KindInvalidInput:
		st = status.New(codes.InvalidArgument, i18n.T(lang, "ErrInvalidInput", map[string]interface{}{
			"Reason": e.Message,
		}))
	case apperror.KindConstraintViolation:
		st = status.New(codes.FailedPrecondition, i18n.T(lang, "ErrConstraintViolation", map[string]interface{}{
			"Reason": e.Message,
		}))
	default:
		log.Error("unmapped domain error", zap.Error(err))
		return status.Error(codes.Internal, i18n.T(lang, "ErrInternal", nil))
	}

	// Outside a server stream (unit tests) there is nowhere to put trailers.
	_ = grpc.SetTrailer(ctx, trailer)
	return st.Err()
}
