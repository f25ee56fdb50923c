// Package grpc serves the stock service's gRPC health endpoint with
// reflection for grpcurl and load balancer health checks.
package grpc

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/tair/stock-ledger/pkg/logger"
)

// ServiceName is the health service name reported for the stock service
const ServiceName = "stock.v1.StockService"

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

var _ Pinger = (*sql.DB)(nil)

// HealthChecker mirrors database reachability into the gRPC health service
type HealthChecker struct {
	server   *health.Server
	db       Pinger
	interval time.Duration
}

// NewHealthChecker creates a checker probing db every interval
func NewHealthChecker(db Pinger, interval time.Duration) *HealthChecker {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &HealthChecker{
		server:   health.NewServer(),
		db:       db,
		interval: interval,
	}
}

// Check pings the database once and updates the serving status
func (h *HealthChecker) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, h.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.db.PingContext(ctx); err != nil {
		logger.Warn(ctx).Err(err).Msg("Database unavailable")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return status
}

// Run checks until ctx is done, then marks the service as shutting down
func (h *HealthChecker) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

// NewServer creates a gRPC server with tracing, logging and recovery, and
// registers the health and reflection services
func NewServer(checker *HealthChecker) *grpc.Server {
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor,
		),
	)

	healthpb.RegisterHealthServer(server, checker.server)

	// Register reflection service (for grpcurl and grpc tools)
	reflection.Register(server)

	return server
}
