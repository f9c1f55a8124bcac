package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/apm-demo-service/internal/config"
	httpAPI "github.com/iyhunko/apm-demo-service/internal/http"
	"github.com/iyhunko/apm-demo-service/internal/http/controller"
	"github.com/iyhunko/apm-demo-service/internal/logger"
	"github.com/iyhunko/apm-demo-service/internal/metrics"
	"github.com/iyhunko/apm-demo-service/internal/repository/sql"
	"github.com/iyhunko/apm-demo-service/internal/service"
	sqspkg "github.com/iyhunko/apm-demo-service/internal/sqs"
	"github.com/iyhunko/apm-demo-service/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)

	logger.InitJSONLogger(conf.DebugMode)
	metrics.SetAppInfo(conf.App.Version)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.InitTracing(ctx, conf.Tracing, conf.App.Version)
	handleErr("initializing tracing", err)

	db, err := sql.StartDB(ctx, conf.Database)
	handleErr("starting database", err)
	defer db.Close()

	// Create repositories
	productRepository := sql.NewProductRepository(db, conf.Database.AcquireTimeout)
	healthRepository := sql.NewHealthRepository(db, conf.Database.AcquireTimeout)

	if conf.Database.InitOnStart {
		_, err := service.InitDatabase(ctx, func() error { return sql.RunMigrations(ctx, db, conf.Database.AcquireTimeout) }, service.NewSeeder(productRepository))
		if err != nil {
			// the service still starts; /db-health and /products report the failure
			slog.Error("database initialization failed", slog.Any("err", err))
		}
	}

	// Health events go to SQS only when a queue is configured
	publisher, err := sqspkg.NewHealthPublisher(ctx, conf.AWS)
	handleErr("creating SQS publisher", err)
	var eventPublisher service.HealthEventPublisher
	if publisher != nil {
		eventPublisher = publisher
	}

	productService := service.NewProductService(productRepository, conf.Database.SlowQueryDelay)
	healthService := service.NewHealthService(healthRepository, eventPublisher)

	if conf.Database.HealthInterval > 0 {
		prober := service.NewHealthProber(healthService, conf.Database.HealthInterval)
		go prober.Start(ctx)
	}

	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine = httpAPI.InitRouter(conf, engine, httpAPI.Controllers{
		General: controller.New(conf, engine),
		Product: controller.NewProductController(productService),
		Load:    controller.NewLoadController(),
		Health:  controller.NewHealthController(healthService),
	})

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("HTTP server starting", slog.String("addr", httpServer.Addr), slog.String("app", conf.App.Name))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr("listening to HTTP requests", err)
		}
	}()

	metricsServer := metrics.NewServer(conf)
	if metricsServer != nil {
		metrics.StartMetricsServer(metricsServer)
	}

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", slog.Any("err", err))
	}
	if err := metrics.Shutdown(shutdownCtx, metricsServer); err != nil {
		slog.Error("metrics server shutdown failed", slog.Any("err", err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("tracer shutdown failed", slog.Any("err", err))
	}
}

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("error while "+msg, slog.Any("err", err))
		os.Exit(1)
	}
}
