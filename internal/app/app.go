// Package app provides application-level wiring and dependency injection
// for the SS12000 mock server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"ss12000-mock/internal/api"
	"ss12000-mock/internal/config"
	"ss12000-mock/internal/db"
	"ss12000-mock/internal/db/memory"
	"ss12000-mock/internal/middleware"
	"ss12000-mock/internal/resource"
	"ss12000-mock/internal/service/endpoint"
	"ss12000-mock/internal/service/expand"
	"ss12000-mock/internal/service/provision"
	"ss12000-mock/internal/service/subscription"
	"ss12000-mock/internal/validator"
)

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg    *config.Config
	Logger *slog.Logger
	// Now overrides the record clock. Nil means time.Now.
	Now func() time.Time
}

// Services groups the services the API handler and the CLI need.
type Services struct {
	Endpoints     *endpoint.Service
	Subscriptions *subscription.Service
	Loader        *provision.Loader
}

// App holds the fully-wired application.
type App struct {
	Services Services
	Registry *resource.Registry
	Metrics  *prometheus.Registry
	Sweeper  *subscription.Sweeper

	cfg    *config.Config
	conn   *db.Conn // nil for the memory backend
	logger *slog.Logger
}

// OpenBackend opens the record store selected by cfg and migrates SQL
// databases. The returned Conn is nil for the memory backend.
func OpenBackend(ctx context.Context, cfg *config.Config, now func() time.Time) (resource.Backend, *db.Conn, error) {
	var (
		conn *db.Conn
		err  error
	)
	switch cfg.StoreBackend {
	case config.BackendMemory:
		var opts []memory.Option
		if now != nil {
			opts = append(opts, memory.WithClock(now))
		}
		return resource.MemoryBackend(memory.NewDB(opts...)), nil, nil
	case config.BackendSQLite:
		conn, err = db.OpenSQLiteConn(cfg.MetaDBPath, 4)
	case config.BackendPostgres:
		conn, err = db.OpenPostgres(ctx, cfg.DatabaseURL, 0)
	default:
		return resource.Backend{}, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return resource.Backend{}, nil, err
	}
	if err := db.RunMigrations(conn); err != nil {
		_ = conn.Close()
		return resource.Backend{}, nil, fmt.Errorf("migrate: %w", err)
	}
	return resource.SQLBackend(conn, now), conn, nil
}

// New wires stores, services and the sweeper from the provided deps and
// provisions FIXTURE_PATH when it is set.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg

	backend, conn, err := OpenBackend(ctx, cfg, deps.Now)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.StoreBackend, err)
	}
	reg := resource.NewRegistry(resource.OpenStores(backend))

	// === Services ===
	validate := validator.New(reg.Has)
	engine := expand.NewEngine(reg, deps.Logger)
	a := &App{
		Services: Services{
			Endpoints:     endpoint.NewService(reg, engine, deps.Logger),
			Subscriptions: subscription.NewService(reg.Stores.Subscriptions, validate, deps.Logger),
			Loader:        provision.NewLoader(reg, validate, deps.Logger),
		},
		Registry: reg,
		Metrics:  prometheus.NewRegistry(),
		Sweeper:  subscription.NewSweeper(reg.Stores.Subscriptions, cfg.SweepSchedule, deps.Logger),
		cfg:      cfg,
		conn:     conn,
		logger:   deps.Logger,
	}
	a.Metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// === Fixture provisioning ===
	if cfg.FixturePath != "" {
		if err := provisionFixture(ctx, a.Services.Loader, cfg.FixturePath, deps.Logger); err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	return a, nil
}

// Handler builds the HTTP handler. ctx bounds the middleware's background
// work.
func (a *App) Handler(ctx context.Context) http.Handler {
	var auth middleware.JWTValidator
	if a.cfg.JWTSecret != "" {
		if v, err := middleware.NewHS256Validator(a.cfg.JWTSecret); err == nil {
			auth = v
		}
	}
	h := api.NewHandler(a.Services.Endpoints, a.Services.Subscriptions, a.logger)
	return api.NewRouter(ctx, h, api.RouterConfig{
		Logger:   a.logger,
		Registry: a.Metrics,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: a.cfg.RateLimitRPS,
			Burst:             a.cfg.RateLimitBurst,
		},
		CORSOrigins: a.cfg.CORSAllowedOrigins,
		Auth:        auth,
		Timeout:     a.cfg.RequestTimeout,
	})
}

// Close releases the database pools.
func (a *App) Close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}
