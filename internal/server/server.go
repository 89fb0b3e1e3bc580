package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/quic-go/quic-go/http3"
	"golang.org/x/crypto/acme"
	"golang.org/x/net/netutil"

	"github.com/resdevops/maintenance-proxy/internal/metrics"
)

const (
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	config  *Config
	handler *MaintenanceHandler
	origin  *Origin

	certManager     CertManager
	httpListener    net.Listener
	httpsListener   net.Listener
	metricsListener net.Listener
	httpServer      *http.Server
	httpsServer     *http.Server
	http3Server     *http3.Server
	metricsServer   *http.Server
}

// NewServer builds everything that stays fixed for the life of the process:
// the trust policy, the maintenance page and the origin.
func NewServer(config *Config) (*Server, error) {
	err := config.Validate()
	if err != nil {
		return nil, err
	}

	handler, origin, err := NewMaintenanceHandlerFromConfig(config)
	if err != nil {
		return nil, err
	}

	return &Server{
		config:  config,
		handler: handler,
		origin:  origin,
	}, nil
}

// NewMaintenanceHandlerFromConfig assembles the request classifier described
// by config, without starting any listeners.
func NewMaintenanceHandlerFromConfig(config *Config) (*MaintenanceHandler, *Origin, error) {
	allowlist, err := NewAllowlist(config.TrustedEntries)
	if err != nil {
		return nil, nil, err
	}

	page, err := NewMaintenancePage(config.PageOptions)
	if err != nil {
		return nil, nil, err
	}

	origin, err := NewOrigin(config.OriginURL, config.OriginOptions)
	if err != nil {
		return nil, nil, err
	}

	extractor := NewClientAddressExtractor(config.ClientAddressHeader)
	return NewMaintenanceHandler(allowlist, extractor, page, origin), origin, nil
}

// Start opens every configured listener. If any of them fails, the ones
// already started are closed before the error is returned.
func (s *Server) Start() error {
	err := s.startMetricsServer()
	if err != nil {
		return err
	}

	err = s.startHTTPServers()
	if err != nil {
		s.shutdown()
		return err
	}

	s.origin.BeginHealthChecks()

	slog.Info("Server started",
		"http", s.HttpPort(),
		"https", s.HttpsPort(),
		"origin", s.origin.Host(),
		"trusted", s.config.TrustedEntries,
	)
	return nil
}

func (s *Server) Stop() {
	s.shutdown()

	slog.Info("Server stopped")
}

func (s *Server) Handler() *MaintenanceHandler {
	return s.handler
}

func (s *Server) HttpPort() int {
	return listenerPort(s.httpListener)
}

func (s *Server) HttpsPort() int {
	return listenerPort(s.httpsListener)
}

func (s *Server) MetricsPort() int {
	return listenerPort(s.metricsListener)
}

// Private

func (s *Server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.origin.StopHealthChecks()

	if s.http3Server != nil {
		s.http3Server.Close()
	}
	if s.httpsServer != nil {
		s.httpsServer.Shutdown(ctx)
	}
	if s.httpServer != nil {
		s.httpServer.Shutdown(ctx)
	}
	if s.metricsServer != nil {
		s.metricsServer.Shutdown(ctx)
	}

	for _, l := range []net.Listener{s.httpListener, s.httpsListener, s.metricsListener} {
		if l != nil {
			l.Close()
		}
	}
}

func (s *Server) startHTTPServers() error {
	handler := s.buildHandler(slog.Default())

	if s.config.TLSEnabled() {
		s.certManager = newCertManager(s.config)
	}

	httpAddr := fmt.Sprintf("%s:%d", s.config.Bind, s.config.HttpPort)
	l, err := s.listen(httpAddr)
	if err != nil {
		return err
	}
	s.httpListener = l
	s.httpServer = &http.Server{
		Addr:    httpAddr,
		Handler: s.httpHandler(handler),
	}
	go s.httpServer.Serve(s.httpListener)

	if s.certManager == nil {
		return nil
	}

	httpsAddr := fmt.Sprintf("%s:%d", s.config.Bind, s.config.HttpsPort)
	l, err = s.listen(httpsAddr)
	if err != nil {
		return err
	}
	s.httpsListener = l
	s.httpsServer = &http.Server{
		Addr:    httpsAddr,
		Handler: handler,
		TLSConfig: &tls.Config{
			NextProtos:     []string{"h2", "http/1.1", acme.ALPNProto},
			GetCertificate: s.certManager.GetCertificate,
		},
	}
	go s.httpsServer.ServeTLS(s.httpsListener, "", "")

	if s.config.HTTP3Enabled {
		s.startHTTP3Server(handler)
	}

	return nil
}

func (s *Server) startHTTP3Server(handler http.Handler) {
	addr := fmt.Sprintf("%s:%d", s.config.Bind, s.HttpsPort())

	s.http3Server = &http3.Server{
		Addr:    addr,
		Handler: handler,
		TLSConfig: http3.ConfigureTLSConfig(&tls.Config{
			GetCertificate: s.certManager.GetCertificate,
		}),
	}

	go func() {
		err := s.http3Server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP/3 server failed", "addr", addr, "error", err)
		}
	}()
}

func (s *Server) startMetricsServer() error {
	if s.config.MetricsPort == 0 {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.config.Bind, s.config.MetricsPort)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Enable())

	s.metricsListener = l
	s.metricsServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go s.metricsServer.Serve(s.metricsListener)

	slog.Info("Metrics enabled", "port", s.MetricsPort())
	return nil
}

func (s *Server) listen(addr string) (net.Listener, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	if s.config.MaxConnections > 0 {
		l = netutil.LimitListener(l, s.config.MaxConnections)
	}
	return l, nil
}

// httpHandler answers ACME HTTP-01 challenges ahead of the maintenance
// handler when certificates are issued automatically.
func (s *Server) httpHandler(handler http.Handler) http.Handler {
	if s.certManager == nil {
		return handler
	}
	return s.certManager.HTTPHandler(handler)
}

func (s *Server) buildHandler(logger *slog.Logger) http.Handler {
	var handler http.Handler

	handler = s.handler
	handler = WithErrorPageMiddleware(handler)
	handler = WithLoggingMiddleware(logger, s.handler.ClientAddress, handler)
	handler = WithRequestIDMiddleware(handler)

	return handler
}

func listenerPort(l net.Listener) int {
	if l == nil {
		return 0
	}
	return l.Addr().(*net.TCPAddr).Port
}
