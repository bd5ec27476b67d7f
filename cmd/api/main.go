package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"propdocs/docs"
	"propdocs/internal/cache"
	"propdocs/internal/config"
	"propdocs/internal/database"
	"propdocs/internal/database/migration"
	handlers "propdocs/internal/http/handler"
	"propdocs/internal/http/middleware"
	"propdocs/internal/logger"
	"propdocs/internal/otel"
	"propdocs/internal/repository/postgres"
	"propdocs/internal/service"
	"propdocs/internal/storage"
)

// @title Property Documents API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()
	log := logger.Init(cfg.IsDev(), cfg.SentryDSN, loc)
	defer logger.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		fatal(log, "failed to initialize tracing", err)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		fatal(log, "failed to connect to database", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		fatal(log, "failed to migrate database", err)
	}

	// Reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		fatal(log, "failed to initialize object storage", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	views, closeViews := newViewRegistry(ctx, cfg.Redis, log)
	defer closeViews()
	instrumented, err := cache.NewInstrumented(views, reg)
	if err != nil {
		fatal(log, "failed to register cache metrics", err)
	}

	opts := service.Options{
		Log:                 log,
		PresignExpiry:       time.Duration(cfg.Documents.PresignExpirySec) * time.Second,
		RecentLimit:         cfg.Documents.RecentLimit,
		AccessRecordTimeout: time.Duration(cfg.Documents.AccessRecordTimeoutSec) * time.Second,
	}
	docRepo := postgres.NewDocumentPostgres(db)
	docSvc := service.NewDocumentService(objStore, docRepo, instrumented, opts)
	access := service.NewAccessRecorder(objStore, docRepo, opts)
	catalog := service.NewCatalogService(postgres.NewPropertyPostgres(db), postgres.NewTagPostgres(db))

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.Documents.MaxUploadMB * 1024 * 1024,
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		fatal(log, "failed to register http metrics", err)
	}

	app.Use(middleware.Recover(log))
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, handlers.Services{
		Documents: docSvc,
		Access:    access,
		Catalog:   catalog,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", slog.String("addr", addr), slog.String("env", cfg.Env))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped", slog.String("error", err.Error()))
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("http shutdown", slog.String("error", err.Error()))
	}
	access.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown", slog.String("error", err.Error()))
	}
}

// newViewRegistry uses Redis when configured so every instance shares views and
// invalidations, and an in-process registry otherwise. With Redis each instance keeps a
// local copy of the views that is evicted by invalidations published from any instance.
func newViewRegistry(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (cache.Registry, func()) {
	if cfg.Addr == "" {
		log.Info("view cache configured", slog.String("component", "cache"), slog.String("backend", "memory"))
		return cache.NewMemory(), func() {}
	}

	r, err := cache.NewRedis(ctx, cfg)
	if err != nil {
		fatal(log, "failed to connect to redis", err)
	}
	layered := cache.NewLayered(cache.NewMemory(), r)
	err = r.Subscribe(ctx, func(key string) {
		layered.Evict(key)
		log.Debug("view evicted", slog.String("component", "cache"), slog.String("key", key))
	})
	if err != nil {
		fatal(log, "failed to subscribe to view invalidations", err)
	}
	log.Info("view cache configured", slog.String("component", "cache"), slog.String("backend", "redis"), slog.String("addr", cfg.Addr))
	return layered, func() { _ = r.Close() }
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, slog.String("error", err.Error()))
	logger.Flush(2 * time.Second)
	os.Exit(1)
}
