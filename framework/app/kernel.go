// Package app boots the framework: configuration, logging, metrics, the
// type registry and the resolver are wired together here so main.go stays
// a handful of lines.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/km-arc/go-autowire/framework/config"
	"github.com/km-arc/go-autowire/framework/container"
	"github.com/km-arc/go-autowire/framework/logging"
	"github.com/km-arc/go-autowire/framework/metrics"
	"github.com/km-arc/go-autowire/framework/types"
	gohttp "github.com/km-arc/go-autowire/http"
	"github.com/km-arc/go-autowire/routing"
)

// Application is the top-level application kernel. It embeds the resolver
// Container so user code can call app.Resolve(), app.Flush() directly,
// and exposes the bootstrapped config and logger as fields.
//
// The kernel declares a "framework" module in the registry holding the
// config, logger, metrics collector and router as instances, so any
// constructor in the application can take them as parameters.
type Application struct {
	*container.Container

	Config  *config.Config
	Log     *logging.Logger
	Metrics *metrics.Collector

	registry *types.Registry
	router   *routing.Router
	prom     *prometheus.Registry
}

// New creates and bootstraps the application from environment variables
// (plus optional .env files). It panics when the resulting configuration
// fails validation: a kernel with a bad config must not come up half-wired.
func New(envFiles ...string) *Application {
	return bootstrap(config.Load(envFiles...))
}

// NewFromFile bootstraps from a YAML config file layered with environment
// variables. The error covers reading and parsing the file; validation
// failures panic as in New.
func NewFromFile(path string, envFiles ...string) (*Application, error) {
	cfg, err := config.LoadFile(path, envFiles...)
	if err != nil {
		return nil, err
	}
	return bootstrap(cfg), nil
}

func bootstrap(cfg *config.Config) *Application {
	if errs := cfg.Validate(); errs.Has() {
		panic(fmt.Sprintf("app: invalid configuration: %v", errs.Bag))
	}

	logger, err := logging.NewLogger(&logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		panic(fmt.Sprintf("app: building logger: %v", err))
	}

	collector := metrics.NewCollector()
	prom := prometheus.NewRegistry()
	collector.Register(prom)
	prom.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Middleware must land before the first route; the metrics mount below
	// already counts as one.
	router := routing.New()
	router.Middleware(RequestLogger(logger))
	if cfg.Metrics.Enabled {
		router.Mount(cfg.Metrics.Path, promhttp.HandlerFor(prom, promhttp.HandlerOpts{}))
	}

	var opts []container.Option
	if cfg.Resolver.TraceResolutions {
		opts = append(opts, container.WithObserver(logging.NewResolutionObserver(logger)))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, container.WithObserver(collector))
	}

	reg := types.NewRegistry()
	fw := reg.Module("framework")
	fw.Instance(cfg)
	fw.Instance(logger)
	fw.Instance(collector)
	fw.Instance(router)

	return &Application{
		Container: container.New(reg, opts...),
		Config:    cfg,
		Log:       logger,
		Metrics:   collector,
		registry:  reg,
		router:    router,
		prom:      prom,
	}
}

// Module declares a module in the application's registry. Modules group
// related types and decide whose implementations win during discovery:
//
//	core := app.Module("core")
//	web := app.Module("web", "core")
func (a *Application) Module(name string, uses ...string) *types.Module {
	return a.registry.Module(name, uses...)
}

// Registry returns the application's type registry.
func (a *Application) Registry() *types.Registry { return a.registry }

// Router returns the HTTP router.
func (a *Application) Router() *routing.Router { return a.router }

// Prometheus returns the metrics registry, for mounting extra collectors.
func (a *Application) Prometheus() *prometheus.Registry { return a.prom }

// Run starts the HTTP server and blocks until SIGINT or SIGTERM, then
// drains in-flight requests and flushes the container so owned singletons
// get their Close calls.
func (a *Application) Run() {
	addr := ":" + a.Config.App.Port
	srv := &http.Server{Addr: addr, Handler: a.router}

	go func() {
		fmt.Printf("🚀  %s running on http://localhost%s  [%s]\n",
			a.Config.App.Name, addr, a.Config.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatal("server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	a.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Log.Warn("forced shutdown", zap.Error(err))
	}
	a.Flush()
	_ = a.Log.Sync()
}

// Environment returns the APP_ENV value.
func (a *Application) Environment() string { return a.Config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config.App.Debug }
func (a *Application) Version() string     { return "0.1.0" }

// RequestLogger returns middleware that writes one structured log line per
// request. The kernel installs it on the application router at bootstrap;
// standalone routers can attach it themselves before registering routes:
//
//	r := routing.New()
//	r.Middleware(app.RequestLogger(log))
func RequestLogger(log *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}

// Controller is an embeddable base for HTTP controllers.
type Controller struct{}

func (c *Controller) Request(r *http.Request) *gohttp.Request {
	return gohttp.NewRequest(r)
}
func (c *Controller) Response(w http.ResponseWriter) *gohttp.Response {
	return gohttp.NewResponse(w)
}
