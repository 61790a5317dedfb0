package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"

	"github.com/joseph-ayodele/invoice-tracker/internal/app"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
)

// NewGRPCServer registers InvoiceService and the standard health service.
// The health status is SERVING once returned.
func NewGRPCServer(a *app.App, logger *slog.Logger, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(UnaryInterceptor(logger))}, opts...)
	srv := grpc.NewServer(opts...)

	RegisterInvoiceServiceServer(srv, NewInvoiceService(a, logger))

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return srv, hs
}

// UnaryInterceptor attaches a request id and request-scoped logger, logs each
// call and maps AppErrors onto gRPC statuses.
func UnaryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get("x-request-id"); len(ids) > 0 && ids[0] != "" {
				ctx = common.WithRequestID(ctx, ids[0])
			}
		}
		ctx, requestID := common.EnsureRequestID(ctx)
		log := logger.With("request_id", requestID, "method", info.FullMethod)
		ctx = common.WithLogger(ctx, log)

		resp, err := handler(ctx, req)
		if err != nil {
			log.Warn("grpc.request.failed", "code", common.CodeOf(err), "error", err, "elapsed_ms", time.Since(start).Milliseconds())
			return nil, common.ToGRPCStatus(err)
		}
		log.Info("grpc.request", "elapsed_ms", time.Since(start).Milliseconds())
		return resp, nil
	}
}
