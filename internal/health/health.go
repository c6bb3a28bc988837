package health

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/system"
)

// Check probes one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

type namedCheck struct {
	name  string
	check Check
}

type Response struct {
	Status        string            `json:"status"`
	Service       string            `json:"service"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Timestamp     int64             `json:"timestamp"`
	Dependencies  map[string]string `json:"dependencies,omitempty"`
	System        *system.Metrics   `json:"system,omitempty"`
}

// Server reports liveness over HTTP and the standard gRPC health protocol.
type Server struct {
	service   string
	startTime time.Time
	logger    *zap.Logger

	mu         sync.RWMutex
	checks     []namedCheck
	httpServer *http.Server
	closed     bool

	grpcServer *grpc.Server
	grpcHealth *grpchealth.Server
}

func NewServer(service string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	grpcServer := grpc.NewServer()
	grpcHealth := grpchealth.NewServer()
	healthpb.RegisterHealthServer(grpcServer, grpcHealth)
	reflection.Register(grpcServer)

	grpcHealth.SetServingStatus(service, healthpb.HealthCheckResponse_SERVING)

	return &Server{
		service:    service,
		startTime:  time.Now(),
		logger:     logger.Named("health"),
		grpcServer: grpcServer,
		grpcHealth: grpcHealth,
	}
}

// AddCheck registers a dependency probe reported by name.
func (s *Server) AddCheck(name string, check Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, namedCheck{name: name, check: check})
}

// Evaluate runs every check and mirrors the result into the gRPC health
// status.
func (s *Server) Evaluate(ctx context.Context) Response {
	s.mu.RLock()
	checks := append([]namedCheck(nil), s.checks...)
	s.mu.RUnlock()

	resp := Response{
		Status:        "healthy",
		Service:       s.service,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Timestamp:     time.Now().Unix(),
		Dependencies:  make(map[string]string, len(checks)),
		System:        system.Collect(),
	}

	for _, c := range checks {
		if err := c.check(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Dependencies[c.name] = "disconnected: " + err.Error()
			continue
		}
		resp.Dependencies[c.name] = "connected"
	}

	status := healthpb.HealthCheckResponse_SERVING
	if resp.Status != "healthy" {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.grpcHealth.SetServingStatus(s.service, status)

	return resp
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthCheckHandler)
	return mux
}

func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := s.Evaluate(ctx)

	w.Header().Set("Content-Type", "application/json")
	if resp.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("Failed to write health response", zap.Error(err))
	}
}

// StartHTTP blocks serving /health on addr until Shutdown.
func (s *Server) StartHTTP(addr string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.httpServer = server
	s.mu.Unlock()

	s.logger.Info("Health check listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ServeGRPC blocks serving the gRPC health service on lis.
func (s *Server) ServeGRPC(lis net.Listener) error {
	s.logger.Info("gRPC health listening", zap.String("addr", lis.Addr().String()))
	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.grpcHealth.Shutdown()
	s.grpcServer.GracefulStop()

	s.mu.Lock()
	s.closed = true
	server := s.httpServer
	s.mu.Unlock()

	if server != nil {
		return server.Shutdown(ctx)
	}
	return nil
}
