// Package gateway exposes the two HTTP services: the agent gateway that
// fronts the hosted conversational agent, and the processor that turns agent
// replies into formatted, illustrated results.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/codebyNJ/Justifyai/internal/config"
	"github.com/codebyNJ/Justifyai/internal/logging"
)

// Server wraps an http.Server with lifecycle management shared by both
// services.
type Server struct {
	name       string
	cfg        config.ServerConfig
	port       int
	log        *logging.Logger
	httpServer *http.Server
	listenAddr string
}

func newServer(name string, cfg config.ServerConfig, port int, handler http.Handler, log *logging.Logger) *Server {
	return &Server{
		name: name,
		cfg:  cfg,
		port: port,
		log:  log,
		httpServer: &http.Server{
			Handler:     withMiddleware(handler, log, cfg.AllowedOrigins),
			ReadTimeout: 30 * time.Second,
			IdleTimeout: 120 * time.Second,
		},
	}
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.ServerConfig, port int) string {
	switch cfg.Bind {
	case "loopback":
		return fmt.Sprintf("127.0.0.1:%d", port)
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", host, port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", port)
	}
}

// Start begins serving. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg, s.port)
	s.httpServer.BaseContext = func(net.Listener) context.Context { return ctx }

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listenAddr = ln.Addr().String()

	s.log.Info().
		Str("addr", s.listenAddr).
		Str("bind", s.cfg.Bind).
		Msg(s.name + " server starting")

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down " + s.name + " server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the resolved listen address, or empty string if not started.
func (s *Server) Addr() string {
	return s.listenAddr
}

// Handler returns the full handler chain, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
