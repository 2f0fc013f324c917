package server

import (
	"chat-room/domain"
	"log/slog"

	sdkgrpc "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// PresenceServiceName is the service reported by the health endpoint for the presence tracker.
const PresenceServiceName = "chat.Presence"

// HealthReporter exposes the standard gRPC health service.
// The presence service goes NOT_SERVING when a sweep cannot list participants
// and back to SERVING on the next sweep that can.
type HealthReporter struct {
	log    *slog.Logger
	health *health.Server
}

func NewHealthReporter(log *slog.Logger) *HealthReporter {
	h := health.NewServer()
	h.SetServingStatus(PresenceServiceName, healthpb.HealthCheckResponse_SERVING)
	return &HealthReporter{log: log, health: h}
}

func (r *HealthReporter) ObserveSweep(_ domain.SweepReport, err error) {
	if err != nil {
		r.log.Warn("Presence tracker unhealthy", "err", err)
		r.health.SetServingStatus(PresenceServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	r.health.SetServingStatus(PresenceServiceName, healthpb.HealthCheckResponse_SERVING)
}

// Shutdown marks every service NOT_SERVING so watchers see the process leaving.
func (r *HealthReporter) Shutdown() {
	r.health.Shutdown()
}

// NewGRPCServer builds a gRPC server carrying the health service.
func NewGRPCServer(log *slog.Logger, reporter *HealthReporter) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(sdkgrpc.UnaryLoggingInterceptor(log)))
	healthpb.RegisterHealthServer(s, reporter.health)
	return s
}
