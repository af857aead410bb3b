package server

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService is the name reported by the gRPC health service.
const HealthService = "coinched"

// HealthReporter publishes the server status through the standard gRPC
// health checking protocol.
type HealthReporter struct {
	srv *health.Server
}

// NewHealthReporter returns a reporter that starts out not serving.
func NewHealthReporter() *HealthReporter {
	srv := health.NewServer()
	srv.SetServingStatus(HealthService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthReporter{srv: srv}
}

// Register adds the health service to a gRPC server.
func (h *HealthReporter) Register(gs *grpc.Server) {
	healthpb.RegisterHealthServer(gs, h.srv)
}

// SetServing flips the reported status.
func (h *HealthReporter) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.srv.SetServingStatus(HealthService, status)
}

// Shutdown reports every service as not serving and ignores later updates.
func (h *HealthReporter) Shutdown() {
	h.srv.Shutdown()
}
