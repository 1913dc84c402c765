package httpkit

import (
	"context"

	"provision_chat_backend/platform/logger"
)

func contextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, logger.RequestIDKey, requestID)
}
