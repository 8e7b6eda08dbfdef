package api

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rgehrsitz/finrechner/internal/calculation"
	"github.com/rgehrsitz/finrechner/internal/config"
	"github.com/rgehrsitz/finrechner/internal/marketdata"
	"github.com/valyala/fasthttp"
)

// Server exposes every calculator as a JSON endpoint
type Server struct {
	Settings  *config.Settings
	Engine    *calculation.MonteCarloEngine
	Estimator *marketdata.Estimator // optional, used by Monte Carlo requests with estimate set
	Logger    calculation.Logger

	parser *config.InputParser
}

// NewServer creates a server for the given settings and Monte Carlo engine
func NewServer(settings *config.Settings, engine *calculation.MonteCarloEngine) *Server {
	return &Server{
		Settings: settings,
		Engine:   engine,
		Logger:   calculation.NopLogger{},
		parser:   config.NewInputParser(),
	}
}

// SetLogger sets the logger; nil restores the no-op logger
func (s *Server) SetLogger(logger calculation.Logger) {
	if logger == nil {
		logger = calculation.NopLogger{}
	}
	s.Logger = logger
}

// Handler returns the routed, logging request handler
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.logRequests(s.route)
}

// ListenAndServe serves on Settings.Server.Addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp4", s.Settings.Server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "finrechner",
		ReadTimeout:        s.Settings.Server.ReadTimeout,
		WriteTimeout:       s.Settings.Server.WriteTimeout,
		MaxRequestBodySize: s.Settings.Server.MaxBodyBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()
	s.logger().Infof("finrechner API listening on %s", ln.Addr())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger().Infof("shutting down API server")
		if err := server.Shutdown(); err != nil && !errors.Is(err, net.ErrClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		s.logger().Infof("%s %s -> %d (%s)", ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start).Round(time.Microsecond))
	}
}

func (s *Server) logger() calculation.Logger {
	if s.Logger == nil {
		return calculation.NopLogger{}
	}
	return s.Logger
}

// calculationTimeout bounds a single calculation. It follows the write
// timeout so a client never waits on a result the server cannot send.
func (s *Server) calculationTimeout() time.Duration {
	if s.Settings != nil && s.Settings.Server.WriteTimeout > 0 {
		return s.Settings.Server.WriteTimeout
	}
	return time.Minute
}
