package grpcserver

import (
	"context"
	"net"

	"cafeStorefront/internal/config"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported for the storefront.
const ServiceName = "cafe.storefront.web"

// Register attaches a health service to srv and marks the storefront as serving.
func Register(srv *grpc.Server) *health.Server {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return hs
}

// StartGRPC starts the gRPC health server on the configured address and returns
// a shutdown function that flips every service to NOT_SERVING before stopping.
func StartGRPC(cfg *config.Config) (func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}

	addr := cfg.GRPC.Address
	if addr == "" {
		addr = ":50051"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return Serve(lis), nil
}

// Serve runs a health-only gRPC server on lis.
func Serve(lis net.Listener) func(context.Context) error {
	srv := grpc.NewServer()
	hs := Register(srv)

	go func() { _ = srv.Serve(lis) }()

	return func(ctx context.Context) error {
		hs.Shutdown()
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}
}
