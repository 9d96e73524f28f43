// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"trendcloud/internal/adapter/cache"
	"trendcloud/internal/adapter/objectstore"
	"trendcloud/internal/adapter/storage"
	"trendcloud/internal/config"
	"trendcloud/internal/domain/hashtag"
	"trendcloud/internal/logger"
	"trendcloud/internal/metrics"
	"trendcloud/internal/server"
	"trendcloud/internal/service/source"
	"trendcloud/internal/service/wordcloud"
)

func main() {
	// A missing .env is fine; the environment may already be populated
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.File)
	defer log.Sync()

	log.Info("Starting trendcloud API", zap.String("environment", cfg.Environment))

	m := metrics.Initialize()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Source loaders, in merge order
	loaders := []hashtag.SourceLoader{
		source.NewFileSource(cfg.Sources.Files, log.Named("source.file")),
	}

	var documentStore *storage.SourceStore
	if cfg.Database.Enabled {
		db, err := initDatabase(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to initialize database", zap.Error(err))
		}
		defer db.Close()

		documentStore = storage.NewSourceStore(db)
		if err := documentStore.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to prepare database schema", zap.Error(err))
		}
		loaders = append(loaders, source.NewStoreSource(documentStore, log.Named("source.postgres")))
	}

	if cfg.S3.Enabled {
		client, err := objectstore.NewS3Client(ctx, cfg.S3.Region)
		if err != nil {
			log.Fatal("Failed to initialize S3 client", zap.Error(err))
		}
		loaders = append(loaders, objectstore.NewS3Source(client, cfg.S3.Bucket, cfg.S3.Prefix, log.Named("source.s3")))
	}

	var natsConn *nats.Conn
	if cfg.NATS.Enabled {
		natsConn, err = initNATS(cfg.NATS, log.Named("nats"))
		if err != nil {
			log.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsConn.Close()
	}

	var snapshotCache *cache.SnapshotCache
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer client.Close()
		snapshotCache = cache.NewSnapshotCache(client, cfg.Redis.SnapshotKey, cfg.Redis.SnapshotTTL)
	}

	// Initialize word cloud service. Typed nils must not reach the interfaces.
	var cacheDep wordcloud.SnapshotCache
	if snapshotCache != nil {
		cacheDep = snapshotCache
	}
	var publisher wordcloud.EventPublisher
	if natsConn != nil {
		publisher = natsConn
	}

	cloudService := wordcloud.NewService(
		loaders,
		cacheDep,
		publisher,
		m,
		serviceConfig(cfg),
		log.Named("wordcloud"),
	)

	if err := cloudService.Start(ctx); err != nil {
		log.Fatal("Failed to start word cloud service", zap.Error(err))
	}

	deps := server.Dependencies{
		Service:       cloudService,
		EventsSubject: wordcloud.AggregatedSubject(cfg.Cloud.EventsTopic),
		Metrics:       m,
		Log:           log,
	}
	if documentStore != nil {
		deps.DocumentStore = documentStore
	}
	if natsConn != nil {
		deps.EventBus = natsConn
	}

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, deps)

	// Start HTTP server
	go func() {
		log.Info("Starting HTTP server", zap.String("host", cfg.Server.Host), zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Info("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Stop word cloud service
	if err := cloudService.Stop(shutdownCtx); err != nil {
		log.Error("Word cloud service shutdown error", zap.Error(err))
	}

	log.Info("Shutdown complete")
}

// serviceConfig maps the environment configuration onto the service
func serviceConfig(cfg config.Config) wordcloud.ServiceConfig {
	return wordcloud.ServiceConfig{
		RefreshInterval: cfg.Cloud.RefreshInterval,
		EventsTopic:     cfg.Cloud.EventsTopic,
		DefaultCanvas: hashtag.Canvas{
			Width:  cfg.Layout.CanvasWidth,
			Height: cfg.Layout.CanvasHeight,
		},
		Aggregator: wordcloud.AggregatorConfig{
			Score: wordcloud.ScoreConfig{
				RankCeiling: cfg.Aggregation.RankCeiling,
				RankFloor:   cfg.Aggregation.RankFloor,
				ViewsWeight: cfg.Aggregation.ViewsWeight,
			},
			TrendPolicy: wordcloud.ParseTrendPolicy(cfg.Aggregation.TrendPolicy),
			MaxCreators: cfg.Aggregation.MaxCreators,
		},
		Layout: wordcloud.LayoutConfig{
			PageSize:         cfg.Layout.PageSize,
			MaxAttempts:      cfg.Layout.MaxAttempts,
			MinFont:          cfg.Layout.MinFont,
			MaxFont:          cfg.Layout.MaxFont,
			CharWidthFactor:  cfg.Layout.CharWidthFactor,
			LineHeightFactor: cfg.Layout.LineHeightFactor,
			Padding:          cfg.Layout.Padding,
			Margin:           cfg.Layout.Margin,
		},
	}
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, log *zap.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("trendcloud"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
