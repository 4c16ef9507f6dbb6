package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gardenstate-security/website-api/cmd/mainconfig"
	"github.com/gardenstate-security/website-api/internal/api/router"
	"github.com/gardenstate-security/website-api/internal/archive"
	"github.com/gardenstate-security/website-api/internal/app/bootstrap"
	appconfig "github.com/gardenstate-security/website-api/internal/config"
	httpmiddleware "github.com/gardenstate-security/website-api/internal/http/middleware"
	"github.com/gardenstate-security/website-api/internal/notify"
	"github.com/gardenstate-security/website-api/internal/observability/metrics"
	"github.com/gardenstate-security/website-api/pkg/logging"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if envErr != nil {
		logger.Debug("no .env file found, using environment variables")
	}
	logger.Info("starting website forms API",
		"env", cfg.Env,
		"port", cfg.Port,
		"email_provider", cfg.EmailProvider,
	)

	ctx := context.Background()
	handler, cleanup, err := setupApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return
	}

	logger.Info("server stopped")
}

// setupApp builds the HTTP handler and everything behind it. The returned
// cleanup releases pools and background goroutines.
func setupApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var sesClient notify.SESAPI
	var s3Client archive.S3API
	var sqsClient *sqs.Client
	if mainconfig.NeedsAWS(cfg) {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, cleanup, err
		}
		if cfg.EmailProvider == bootstrap.ProviderSES {
			sesClient = sesv2.NewFromConfig(awsCfg)
		}
		if strings.TrimSpace(cfg.ArchiveBucket) != "" {
			s3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
				// LocalStack serves buckets by path
				o.UsePathStyle = cfg.AWSEndpointOverride != ""
			})
		}
		sqsClient = sqs.NewFromConfig(awsCfg)
	}

	sender, err := bootstrap.BuildEmailSender(cfg, sesClient, logger)
	if err != nil {
		return nil, cleanup, err
	}

	pool := bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		closers = append(closers, pool.Close)
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		closers = append(closers, func() { _ = redisClient.Close() })
	}
	limiter := bootstrap.BuildRateLimiter(cfg, redisClient, logger)
	if mem, ok := limiter.(*httpmiddleware.MemoryLimiter); ok {
		closers = append(closers, mem.Stop)
	}

	metricsHandler, formMetrics := setupMetrics()
	intake := bootstrap.BuildIntake(cfg, bootstrap.IntakeDeps{
		Sender:    sender,
		Archive:   bootstrap.BuildArchive(cfg, pool, s3Client, logger),
		Publisher: bootstrap.BuildPublisher(cfg, sqsClient),
		Metrics:   formMetrics,
	}, logger)

	handler := router.New(&router.Config{
		Logger:             logger,
		Intake:             intake,
		RateLimiter:        limiter,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	return handler, cleanup, nil
}

// setupMetrics registers form metrics on a dedicated registry.
func setupMetrics() (http.Handler, *metrics.FormMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewFormMetrics(reg)
}
