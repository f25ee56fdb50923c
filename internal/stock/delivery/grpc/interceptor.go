package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tair/stock-ledger/pkg/logger"
)

// LoggingInterceptor logs gRPC requests
func LoggingInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	duration := time.Since(start)
	if err != nil {
		logger.Warn(ctx).
			Str("method", info.FullMethod).
			Dur("duration", duration).
			Str("code", status.Code(err).String()).
			Err(err).
			Msg("gRPC request failed")
	} else {
		logger.Debug(ctx).
			Str("method", info.FullMethod).
			Dur("duration", duration).
			Msg("gRPC request completed")
	}

	return resp, err
}

// RecoveryInterceptor turns a handler panic into codes.Internal
func RecoveryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx).
				Interface("panic", r).
				Str("method", info.FullMethod).
				Msg("Panic recovered")
			err = status.Error(codes.Internal, "internal error")
		}
	}()

	return handler(ctx, req)
}
