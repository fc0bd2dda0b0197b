// Package app wires the CoreCMS server runtime: config, logging, storage,
// the session engine and HTTP routes.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"corecms/cmd/identity"
	authapi "corecms/cmd/internal/auth/api"
	"corecms/cmd/internal/auth/session"
	"corecms/cmd/internal/clientip"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Store is a small app-level lifecycle abstraction.
// It exists to allow DB-backed resources to be closed gracefully.
type Store interface {
	Close(ctx context.Context) error
}

// App is the CoreCMS server runtime.
type App struct {
	cfg Config
	log Logger

	store Store

	dbPool    *pgxpool.Pool
	dbEnabled bool
	redis     *redis.Client

	registry *prometheus.Registry

	engine *session.Engine
	reaper *session.Reaper
	auth   *authapi.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	authCfg := authapi.LoadConfigFromEnv()

	ctx := context.Background()

	stores, err := newStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	var metrics *session.Metrics
	if cfg.MetricsEnabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = session.NewMetrics(registry)
	}

	ips := clientip.Resolver{TrustProxy: cfg.TrustProxy, TrustedHops: cfg.TrustedProxyHops}
	reaper := session.NewReaper(stores.tokens, sessCfg.Reap, log, metrics)
	engine := session.NewEngine(sessCfg, stores.users, stores.tokens, ips, nil,
		session.WithLogger(log),
		session.WithReaper(reaper),
		session.WithMetrics(metrics),
	)

	authHandler, err := authapi.NewHandler(log, engine, ips, authCfg)
	if err != nil {
		_ = stores.Close(ctx)
		return nil, err
	}

	if err := bootstrapUser(ctx, engine, cfg, log); err != nil {
		_ = stores.Close(ctx)
		return nil, err
	}

	return &App{
		cfg:       cfg,
		log:       log,
		store:     stores,
		dbPool:    stores.pool,
		dbEnabled: stores.pool != nil,
		redis:     stores.redis,
		registry:  registry,
		engine:    engine,
		reaper:    reaper,
		auth:      authHandler,
	}, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.redis, a.registry, a.auth)
	return WithRequestLogging(WithSecurityHeaders(mux), a.log)
}

// Run starts the HTTP server and the token reaper and blocks until context
// cancellation or a fatal server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled, "redis_enabled", a.redis != nil)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.reaper.Run(gctx)
	})

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("server.fail", "err", err)
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("server.stop", "reason", "context_done")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Error("server.shutdown.fail", "err", err)
			return err
		}
		return nil
	})

	err := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Close store resources (pool, redis client).
	if cerr := a.store.Close(closeCtx); cerr != nil {
		a.log.Error("store.close.fail", "err", cerr)
	}

	if err != nil {
		return err
	}
	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// appStores holds the selected user and token stores and owns the
// connections behind them.
type appStores struct {
	users  identity.Store
	tokens session.Store

	pool  *pgxpool.Pool
	redis *redis.Client
}

func (s appStores) Close(_ context.Context) error {
	var err error
	if s.redis != nil {
		err = s.redis.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// newStores decides between Postgres-backed persistence and the in-memory dev
// stores, and optionally moves login tokens to Redis.
func newStores(ctx context.Context, cfg Config, log Logger) (appStores, error) {
	var st appStores

	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		st.users = identity.NewMemoryStore()
		st.tokens = session.NewMemoryStore()
	} else {
		pool, err := NewDBPool(ctx, cfg)
		if err != nil {
			return appStores{}, err
		}
		st.pool = pool

		if cfg.DBMigrate {
			if err := Migrate(ctx, pool); err != nil {
				pool.Close()
				return appStores{}, err
			}
			log.Info("db.migrate.ok")
		}

		// Ownership model: app owns the pool; stores never close it.
		users, err := identity.NewPostgresStore(pool)
		if err != nil {
			pool.Close()
			return appStores{}, err
		}
		tokens, err := session.NewPostgresStore(pool)
		if err != nil {
			pool.Close()
			return appStores{}, err
		}
		st.users, st.tokens = users, tokens
		log.Info("db.enabled.postgres_store")
	}

	if cfg.RedisAddr != "" {
		rdb, err := NewRedisClient(ctx, cfg)
		if err != nil {
			_ = st.Close(ctx)
			return appStores{}, err
		}
		st.redis = rdb
		st.tokens = session.NewRedisStore(rdb)
		log.Info("redis.enabled.token_store", "addr", cfg.RedisAddr)
	}

	return st, nil
}

// bootstrapUser creates the configured initial user unless it already exists.
func bootstrapUser(ctx context.Context, engine *session.Engine, cfg Config, log Logger) error {
	if cfg.BootstrapUsername == "" || cfg.BootstrapPassword == "" {
		return nil
	}

	u := identity.User{Username: cfg.BootstrapUsername, AccessLevel: cfg.BootstrapAccessLevel}
	if err := u.SetPassword(cfg.BootstrapPassword); err != nil {
		return err
	}

	if err := engine.CreateUser(ctx, &u); err != nil {
		if identity.IsConflict(err) {
			log.Info("bootstrap.user.exists", "username", cfg.BootstrapUsername)
			return nil
		}
		return err
	}

	log.Info("bootstrap.user.created", "user_id", u.ID, "username", u.Username)
	return nil
}
