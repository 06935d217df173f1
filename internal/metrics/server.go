package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anstrom/portsweep/internal/logging"
)

const (
	serverShutdownTimeout = 5 * time.Second
	readHeaderTimeout     = 5 * time.Second
)

// Server exposes a PrometheusMetrics registry on /metrics.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	listener   net.Listener
	metrics    *PrometheusMetrics
	logger     *logging.Logger
	errChan    chan error
}

// NewServer creates a metrics server bound to addr once started.
func NewServer(addr string, pm *PrometheusMetrics, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Server{
		router:  mux.NewRouter(),
		metrics: pm,
		logger:  logger.WithComponent("metrics"),
		errChan: make(chan error, 1),
	}
	s.setupRoutes(pm)

	s.httpServer = &http.Server{
		Addr: addr,
		Handler: handlers.RecoveryHandler(
			handlers.PrintRecoveryStack(false),
		)(handlers.CompressHandler(s.router)),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

func (s *Server) setupRoutes(pm *PrometheusMetrics) {
	s.router.Handle("/metrics", promhttp.HandlerFor(pm.GetRegistry(), promhttp.HandlerOpts{})).
		Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
}

// Handler returns the HTTP handler served by the metrics server.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start binds the listen address and serves in the background. Bind errors
// are returned synchronously.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("metrics listener failed: %w", err)
	}
	s.listener = ln

	s.logger.Info("Serving metrics", "address", ln.Addr().String())
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errChan <- fmt.Errorf("metrics server failed: %w", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Stop gracefully stops the metrics server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.WithError(err).Error("Metrics server shutdown error")
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("Metrics server stopped", "uptime", s.metrics.GetUptime())

	select {
	case err := <-s.errChan:
		return err
	default:
		return nil
	}
}
