package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
)

// Server exposes a registry on /metrics.
type Server struct {
	addr   string
	reg    *prom.Registry
	srv    *http.Server
	ln     net.Listener
	logger *slog.Logger
}

// NewServer creates a metrics server for reg on addr. Go and process
// collectors are added to reg.
func NewServer(addr string, reg *prom.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	return &Server{addr: addr, reg: reg, logger: logger}
}

// HTTPHandler serves reg in the OpenMetrics exposition format.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true, Registry: reg})
}

// Addr returns the bound address once started, otherwise the configured one.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Start binds the listener and serves in the background.
func (s *Server) Start(context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return ferrors.NetworkError("failed to bind metrics listener").
			WithCause(err).
			WithContext("address", s.addr).
			Build()
	}
	s.ln = ln

	mux := http.NewServeMux()
	mux.Handle("/metrics", HTTPHandler(s.reg))
	s.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server stopped", "error", err)
		}
	}()
	s.logger.Info("Metrics server listening", "address", ln.Addr().String())
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
