package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/janisto/profile-directory/internal/config"
	"github.com/janisto/profile-directory/internal/http/v1/routes"
	"github.com/janisto/profile-directory/internal/platform/firebase"
	"github.com/janisto/profile-directory/internal/platform/kafka"
	applog "github.com/janisto/profile-directory/internal/platform/logging"
	"github.com/janisto/profile-directory/internal/platform/metrics"
	appmiddleware "github.com/janisto/profile-directory/internal/platform/middleware"
	"github.com/janisto/profile-directory/internal/platform/postgres"
	"github.com/janisto/profile-directory/internal/platform/redisx"
	"github.com/janisto/profile-directory/internal/platform/respond"
	"github.com/janisto/profile-directory/internal/platform/tracing"
	profilesvc "github.com/janisto/profile-directory/internal/service/profile"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const docsPath = "/api-docs"

func main() {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	if err := run(); err != nil {
		applog.LogError(context.Background(), "server failed", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !applog.SetLevel(cfg.LogLevel) {
		applog.LogWarn(context.Background(), "unknown log level, keeping default", zap.String("level", cfg.LogLevel))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     Version,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	svc, closers, err := buildService(ctx, cfg)
	defer closeAll(closers)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           otelhttp.NewHandler(newRouter(svc, cfg.AllowedOrigins), "http.server"),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(ctx, "server listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-ctx.Done():
		applog.LogInfo(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "tracing shutdown error", err)
	}
	applog.LogInfo(context.Background(), "server exited")
	return nil
}

// closer releases a backing client on shutdown.
type closer struct {
	name  string
	close func() error
}

func closeAll(closers []closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].close(); err != nil {
			applog.LogError(context.Background(), "close failed", err, zap.String("resource", closers[i].name))
		}
	}
}

// buildService opens the configured store and layers the optional cache and
// event publisher on top. Returned closers must run even when err is non-nil.
func buildService(ctx context.Context, cfg *config.Config) (profilesvc.Service, []closer, error) {
	var (
		svc     profilesvc.Service
		closers []closer
	)

	switch cfg.Store.Backend {
	case config.BackendFirestore:
		client, err := firebase.NewFirestore(ctx, firebase.Config{
			ProjectID:                    cfg.Firebase.ProjectID,
			GoogleApplicationCredentials: cfg.Firebase.GoogleApplicationCredentials,
		})
		if err != nil {
			return nil, closers, fmt.Errorf("firestore: %w", err)
		}
		closers = append(closers, closer{"firestore", client.Close})
		svc = profilesvc.NewFirestoreStore(client)
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.DSN, postgres.Options{})
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, closer{"postgres", func() error { return postgres.Close(db) }})
		store := profilesvc.NewPostgresStore(db)
		if cfg.Postgres.AutoMigrate {
			if err := store.AutoMigrate(ctx); err != nil {
				return nil, closers, fmt.Errorf("migrate profiles: %w", err)
			}
		}
		svc = store
	default:
		applog.LogWarn(ctx, "using in-memory profile store; data is lost on restart")
		svc = profilesvc.NewMemoryStore()
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redisx.New(ctx, redisx.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, closer{"redis", rdb.Close})
		svc = profilesvc.NewCachedService(svc, rdb, cfg.Redis.TTL)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		w, err := kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, closer{"kafka", w.Close})
		applog.Logger().Info("publishing profile events",
			zap.String("topic", w.Topic()),
			zap.Duration("publishTimeout", cfg.Kafka.PublishTimeout),
		)
		svc = profilesvc.NewPublishingService(svc, w, profilesvc.WithPublishTimeout(cfg.Kafka.PublishTimeout))
	}

	return svc, closers, nil
}

func newRouter(svc profilesvc.Service, allowedOrigins []string) chi.Router {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	// Base middleware stack
	router.Use(
		appmiddleware.Security(docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(allowedOrigins...),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP and X-Forwarded-For. Only deploy behind a
		// proxy that overwrites them (Cloud Run, nginx).
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		applog.RequestLogger(),
		applog.AccessLogger(),
		metrics.Middleware(),
		respond.Recoverer(),
	)

	router.Handle("/metrics", metrics.Handler())

	humaCfg := huma.DefaultConfig("Profile Directory API", Version)
	humaCfg.DocsPath = docsPath
	api := humachi.New(router, humaCfg)

	// Advertise CBOR next to JSON for every body.
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation,
		func(_ *huma.OpenAPI, op *huma.Operation) {
			if op.RequestBody != nil && op.RequestBody.Content != nil {
				if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
					op.RequestBody.Content["application/cbor"] = jsonContent
				}
			}
			for _, resp := range op.Responses {
				if resp.Content == nil {
					continue
				}
				if jsonContent, ok := resp.Content["application/json"]; ok {
					resp.Content["application/cbor"] = jsonContent
				}
			}
		},
	)

	routes.Register(api, svc)
	return router
}
