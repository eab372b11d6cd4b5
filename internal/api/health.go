package api

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/banshee-data/trajectory.report/internal/monitoring"
)

// HealthServiceName is the grpc.health.v1 service name reported alongside
// the overall ("") status.
const HealthServiceName = "trajectory.report.Store"

// DefaultHealthInterval is how often the store is pinged while serving.
const DefaultHealthInterval = 10 * time.Second

// HealthService publishes store reachability over the standard gRPC health
// protocol, the same signal /healthz reports over HTTP.
type HealthService struct {
	store    FlightStore
	health   *health.Server
	interval time.Duration
}

// NewHealthService returns a health service pinging st every interval.
func NewHealthService(st FlightStore, interval time.Duration) *HealthService {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	return &HealthService{store: st, health: health.NewServer(), interval: interval}
}

// Refresh pings the store once and publishes the result.
func (h *HealthService) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := h.store.Ping(ctx); err != nil {
		monitoring.Logf("health: store ping failed: %v", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(HealthServiceName, status)
	return status
}

// Serve answers health checks on lis until ctx is cancelled.
func (h *HealthService) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, h.health)
	h.Refresh(ctx)

	errCh := make(chan error, 1)
	go func() {
		monitoring.Logf("gRPC health listening on %s", lis.Addr())
		errCh <- srv.Serve(lis)
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("gRPC health server failed: %w", err)
			}
			return nil
		case <-ticker.C:
			h.Refresh(ctx)
		case <-ctx.Done():
			monitoring.Logf("shutting down gRPC health server")
			// Watch streams stay open until clients leave; Shutdown tells them
			// NOT_SERVING and Stop cuts them off after the grace period.
			h.health.Shutdown()
			stopped := make(chan struct{})
			go func() {
				srv.GracefulStop()
				close(stopped)
			}()
			select {
			case <-stopped:
			case <-time.After(shutdownTimeout):
				srv.Stop()
			}
			return nil
		}
	}
}
