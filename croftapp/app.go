// Package croftapp wires a croft router into a runnable service: environment
// configuration, zap logging, OpenTelemetry tracing and an HTTP server with
// lifecycle management, all composed through fx.
package croftapp

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/crofthq/croft"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// AppConfig holds configuration for the app.
type AppConfig struct {
	ServerConfig
	FxOptions []fx.Option
}

// Option configures the App.
type Option func(*AppConfig)

// WithFx adds fx options for dependency injection.
func WithFx(fxOpts ...fx.Option) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fxOpts...)
	}
}

// WithHealth registers a liveness endpoint at the given path. The handler can
// be nil for a default 200 OK.
func WithHealth(path string, handler croft.HandlerFunc) Option {
	return func(c *AppConfig) {
		c.HealthPath = path
		c.HealthHandler = handler
	}
}

// NewRouter provides the croft router with zap-backed logging.
func NewRouter(logger *zap.Logger) *croft.Router {
	return croft.NewRouterWith(croft.NewZapLogger(logger), croft.NewReverser())
}

// NewApp creates a batteries-included app with dependency injection.
//
// The routing function can request any types that are provided via fx
// options. At minimum, it should accept *croft.Router for registration.
//
// Example:
//
//	croftapp.NewApp[Env](func(ro *croft.Router, h *Handlers) {
//	    ro.HandleFunc("GET /items/{id}", h.GetItem, "get-item")
//	},
//	    croftapp.WithFx(fx.Provide(NewHandlers)),
//	).Run()
func NewApp[E Environment](routing any, opts ...Option) *App {
	var cfg AppConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	baseOpts := make([]fx.Option, 0, 10+len(cfg.FxOptions))
	baseOpts = append(baseOpts, []fx.Option{
		fx.NopLogger,
		fx.Provide(ParseEnv[E]()),
		fx.Provide(func(e E) Environment { return e }),
		fx.Provide(func(e E) (*zap.Logger, error) { return NewLogger(e) }),
		fx.Provide(NewRouter),
		fx.Provide(NewTracerProvider),
		fx.Provide(NewPropagator),
		fx.Supply(cfg.ServerConfig),
		fx.Provide(NewServer),
		fx.Invoke(routing),
		fx.Invoke(startServerHook),
	}...)

	baseOpts = append(baseOpts, cfg.FxOptions...)

	return &App{
		app: fx.New(baseOpts...),
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() {
	a.app.Run()
}

// Start starts the application with the given context and blocks until the
// context is done, then stops it.
func (a *App) Start(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), a.app.StopTimeout())
	defer cancel()

	return a.app.Stop(stopCtx)
}
