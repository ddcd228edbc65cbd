// API server entry point for ChemRxn-Core.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/ChemRxn-Core/internal/config"
	"github.com/turtacn/ChemRxn-Core/internal/domain/reaction"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/alignment"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/database/postgres"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/storage/minio"
	httpserver "github.com/turtacn/ChemRxn-Core/internal/interfaces/http"
	"github.com/turtacn/ChemRxn-Core/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemRxn-Core/internal/interfaces/http/middleware"
)

const (
	defaultConfigPath = "configs/config.yaml"
	metricsNamespace  = "chemrxn"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	skipMigrations := flag.Bool("skip-migrations", false, "do not run database migrations on startup")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}
	if *skipMigrations {
		cfg.Database.MigrationPath = ""
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("starting chemrxn-core api server",
		logging.String("version", version),
		logging.Int("http_port", cfg.Server.Port))

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- PostgreSQL ---
	conn, err := postgres.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}
	defer conn.Close()

	if cfg.Database.MigrationPath != "" {
		if err := postgres.RunMigrations(postgres.DSN(cfg.Database), cfg.Database.MigrationPath); err != nil {
			return fmt.Errorf("database migration failed: %w", err)
		}
		logger.Info("database migrations applied",
			logging.String("path", cfg.Database.MigrationPath))
	}

	repo := repositories.NewReactionRepository(conn.Pool(), logger)

	svcOpts := []reaction.ServiceOption{}
	checkers := []handlers.HealthChecker{&postgresHealthAdapter{conn: conn}}

	// --- Redis atom-map cache ---
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.NewClient(cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer func() { _ = redisClient.Close() }()

		svcOpts = append(svcOpts,
			reaction.WithAtomMapCache(redis.NewAtomMapCache(redisClient, cfg.Redis.KeyPrefix, logger)))
		checkers = append(checkers, &redisHealthAdapter{client: redisClient})
	}

	// --- Kafka event publishing ---
	producer, err := kafka.NewProducer(cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("kafka producer setup failed: %w", err)
	}
	defer func() { _ = producer.Close() }()
	svcOpts = append(svcOpts,
		reaction.WithPublisher(kafka.NewEventPublisher(producer, cfg.Kafka.TopicPrefix)))

	// --- MinIO geometry archive ---
	minioClient, err := minio.NewClient(cfg.MinIO, logger)
	if err != nil {
		return fmt.Errorf("minio setup failed: %w", err)
	}
	svcOpts = append(svcOpts,
		reaction.WithGeometryStore(minio.NewGeometryStore(minioClient, logger)))
	checkers = append(checkers, &minioHealthAdapter{client: minioClient})

	// --- External alignment and classification services ---
	if cfg.Alignment.BaseURL != "" {
		aligner, err := alignment.NewClient(cfg.Alignment, logger)
		if err != nil {
			return fmt.Errorf("alignment client setup failed: %w", err)
		}
		svcOpts = append(svcOpts, reaction.WithAligner(aligner))
	}
	if cfg.Classifier.BaseURL != "" {
		classifier, err := alignment.NewClassifierClient(cfg.Classifier, logger)
		if err != nil {
			return fmt.Errorf("classifier client setup failed: %w", err)
		}
		svcOpts = append(svcOpts, reaction.WithClassifier(classifier))
	}

	// --- Metrics ---
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            metricsNamespace,
		EnableProcessMetrics: true,
	}, logger)
	if err != nil {
		return fmt.Errorf("metrics setup failed: %w", err)
	}
	appMetrics := prometheus.NewAppMetrics(collector)
	svcOpts = append(svcOpts, reaction.WithMetrics(prometheus.NewReactionMetrics(appMetrics)))

	// --- Domain service and HTTP interface ---
	svc := reaction.NewService(repo, logger, svcOpts...)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = []string{"*"}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		ReactionHandler:  handlers.NewReactionHandler(svc, logger),
		HealthHandler:    handlers.NewHealthHandler(version, checkers...),
		CORS:             &cors,
		Logger:           logger,
		MetricsCollector: collector,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	if err := srv.Stop(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

// loadConfig reads the config file when present, falling back to CHEMRXN_*
// environment variables for containerised deployments.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	fmt.Fprintf(os.Stderr, "warning: config file %s not found, using environment\n", path)
	return config.LoadFromEnv()
}

func newLogger(cfg config.LogConfig) (logging.Logger, error) {
	outputs := []string{"stdout"}
	if cfg.Output != "" {
		outputs = []string{cfg.Output}
	}
	format := cfg.Format
	if format == "text" {
		format = "console"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:       cfg.Level,
		Format:      format,
		OutputPaths: outputs,
	})
}
