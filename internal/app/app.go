// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/JakeFAU/qrz-gateway/internal/api"
	"github.com/JakeFAU/qrz-gateway/internal/config"
	"github.com/JakeFAU/qrz-gateway/internal/logging"
	"github.com/JakeFAU/qrz-gateway/internal/metrics"
	"github.com/JakeFAU/qrz-gateway/internal/qrz"
)

const (
	shutdownTimeout = 10 * time.Second
	sentryFlush     = 2 * time.Second
)

// App holds the shared, long-lived services of the gateway. It is built once
// at startup from an immutable Config.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	service   *qrz.Service
	apiServer *api.Server
}

// New wires logger, registry client, lookup service and HTTP server.
func New(cfg config.Config, version string) (*App, error) {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if err := initSentry(cfg.Sentry, version); err != nil {
		return nil, err
	}
	return NewWithLogger(cfg, version, logger), nil
}

// initSentry binds a Sentry client to the global hub when a DSN is set.
func initSentry(cfg config.SentryConfig, version string) error {
	if cfg.DSN.Reveal() == "" {
		return nil
	}
	dsn := cfg.DSN.Reveal()
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: cfg.Environment,
		Release:     "qrz-gateway@" + version,
	}); err != nil {
		// The DSN embeds the project key.
		return fmt.Errorf("init sentry: %s", strings.ReplaceAll(err.Error(), dsn, cfg.DSN.String()))
	}
	return nil
}

// NewWithLogger is New with a caller-supplied logger.
func NewWithLogger(cfg config.Config, version string, logger *zap.Logger) *App {
	metrics.Init()

	client := qrz.NewClient(cfg.QRZ, logger.Named("qrz"))
	service := qrz.NewService(client, logger.Named("lookup"))
	apiServer := api.NewServer(service, api.UUIDv7{}, Info(version), logger.Named("api"))

	logger.Info("application services initialized",
		zap.String("upstream", client.Endpoint()),
	)

	return &App{
		cfg:       cfg,
		logger:    logger,
		service:   service,
		apiServer: apiServer,
	}
}

// Info describes the gateway for the OpenAPI document.
func Info(version string) api.Info {
	return api.Info{
		Title:       "QRZ Lookup Gateway",
		Description: "HTTP gateway that exposes QRZ.com XML callsign lookup as JSON.",
		Version:     version,
	}
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Service returns the callsign lookup service.
func (a *App) Service() *qrz.Service {
	return a.service
}

// Handler returns the HTTP handler of the API.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// Run listens on the configured address and serves until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.Address())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.Server.Address(), err)
	}
	return a.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is canceled, then drains in-flight
// requests before returning.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.logger.Info("shutdown complete")
	return nil
}

// Close flushes pending Sentry events and buffered log entries.
func (a *App) Close() {
	sentry.Flush(sentryFlush)
	// Sync on stderr-backed loggers fails on some platforms; nothing to do about it.
	_ = a.logger.Sync()
}
