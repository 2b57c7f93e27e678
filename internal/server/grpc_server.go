package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/oggyb/muzz-matching/internal/auth"
	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/oggyb/muzz-matching/internal/logger"
	"github.com/oggyb/muzz-matching/internal/metrics"
)

// Registrar is a common interface for all gRPC service registrars
type Registrar interface {
	Register(s *grpc.Server)
}

// NewGRPCServer builds a gRPC server with the logging and metrics
// interceptors, plus bearer-token auth when verifier is non-nil, and
// registers all provided services.
func NewGRPCServer(log *slog.Logger, verifier *auth.Verifier, registrars ...Registrar) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{
		LoggingInterceptor(log),
		MetricsInterceptor(),
	}
	if verifier != nil {
		interceptors = append(interceptors, verifier.UnaryServerInterceptor())
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}
	return grpcServer
}

// ServeGRPC listens on the configured address and serves until the server is
// stopped.
func ServeGRPC(cfg *config.Config, grpcServer *grpc.Server) error {
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return grpcServer.Serve(lis)
}

// LoggingInterceptor tags each call with a request_id, makes the tagged
// logger available to handlers and logs the outcome.
func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		reqLog := log.With("request_id", uuid.NewString(), "method", info.FullMethod)
		ctx = logger.IntoContext(ctx, reqLog)

		resp, err := handler(ctx, req)

		code := status.Code(err)
		attrs := []any{"code", code.String(), "duration", time.Since(start)}
		if err != nil {
			reqLog.Warn("rpc failed", append(attrs, "err", err)...)
		} else {
			reqLog.Debug("rpc done", attrs...)
		}
		return resp, err
	}
}

// MetricsInterceptor records RPC latency by method and status code.
func MetricsInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		metrics.RPCDuration.
			WithLabelValues(info.FullMethod, status.Code(err).String()).
			Observe(time.Since(start).Seconds())
		return resp, err
	}
}
