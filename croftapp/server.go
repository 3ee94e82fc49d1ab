package croftapp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/crofthq/croft"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// ServerConfig holds optional configuration for the HTTP server.
type ServerConfig struct {
	// HealthPath registers a liveness endpoint when non-empty.
	HealthPath string
	// HealthHandler overrides the default 200 OK health response.
	HealthHandler croft.HandlerFunc
}

// ServerParams holds the dependencies for creating an HTTP server.
type ServerParams struct {
	fx.In

	Env        Environment
	Router     *croft.Router
	Logger     *zap.Logger
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
}

// NewServer creates an HTTP server with tracing and routing configured. With
// CROFT_H2C enabled, it serves cleartext HTTP/2 next to HTTP/1.1.
func NewServer(params ServerParams, cfg ServerConfig) *http.Server {
	if cfg.HealthPath != "" {
		healthHandler := cfg.HealthHandler
		if healthHandler == nil {
			healthHandler = defaultHealthHandler
		}

		params.Router.HandleFunc("GET "+cfg.HealthPath, healthHandler)
	}

	var handler http.Handler = params.Router
	handler = otelhttp.NewHandler(handler, params.Env.serviceName(),
		otelhttp.WithTracerProvider(params.TracerProv),
		otelhttp.WithPropagators(params.Propagator),
	)

	if params.Env.h2cEnabled() {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", params.Env.port()),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func defaultHealthHandler(context.Context, *croft.Request, *croft.Args) (croft.Response, error) {
	return croft.Status(http.StatusOK).IntoResponse(), nil
}

// startServerHook registers lifecycle hooks for the HTTP server.
func startServerHook(lc fx.Lifecycle, server *http.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("starting server", zap.String("addr", server.Addr))

			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("server stopped", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")

			ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			return server.Shutdown(ctx)
		},
	})
}
