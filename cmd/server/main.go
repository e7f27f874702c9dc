package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gatewaymon/api/server"
	"gatewaymon/internal/alert"
	"gatewaymon/internal/cache"
	"gatewaymon/internal/config"
	"gatewaymon/internal/database"
	"gatewaymon/internal/elasticsearch"
	"gatewaymon/internal/health"
	"gatewaymon/internal/logger"
	"gatewaymon/internal/perf"
	"gatewaymon/internal/scaling"
	"gatewaymon/internal/sla"
	"gatewaymon/internal/store"
	"gatewaymon/internal/threshold"

	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "etc/config.yaml", "Path to configuration file")
	version    = "1.0.0"
)

func main() {
	flag.Parse()

	var cfg *config.Config

	// Prefer the config file, fall back to environment variables.
	if _, err := os.Stat(*configFile); err == nil {
		cfg, err = config.LoadFromFile(*configFile)
		if err != nil {
			fmt.Printf("Failed to load config from file: %v\n", err)
			fmt.Println("Falling back to environment variables...")
			cfg = config.Load()
		}
	} else {
		fmt.Println("Config file not found, loading from environment variables...")
		cfg = config.Load()
	}

	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Output); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Gateway Monitoring Service",
		zap.String("version", version),
		zap.String("config_file", *configFile),
	)

	db, err := database.Open(database.Config{
		Driver:   cfg.Database.Driver,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	logger.Info("Database initialized",
		zap.String("driver", cfg.Database.Driver),
		zap.String("database", cfg.Database.DBName),
	)

	metricStore := store.New(db)

	cacheLayer, err := buildCache(cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to initialize cache", zap.Error(err))
	}
	logger.Info("Cache initialized", zap.String("backend", cfg.Cache.Backend))

	var esClient *elasticsearch.Client
	if cfg.Elasticsearch.Enabled {
		esClient, err = elasticsearch.NewClient(cfg.Elasticsearch)
		if err != nil {
			logger.Fatal("Failed to initialize Elasticsearch", zap.Error(err))
		}
		if err := esClient.CreateIndexTemplate(); err != nil {
			logger.Warn("Failed to create index template", zap.Error(err))
		}
	} else {
		logger.Info("Elasticsearch is disabled")
	}

	thresholds := threshold.NewManager(metricStore)
	engine := alert.NewEngine(metricStore, buildNotifiers(cfg, thresholds))

	sampler := health.NewSampler(
		health.NewGopsutilReader(),
		metricStore,
		engine,
		thresholds,
		cfg.Sampling.LogDir,
	)
	if esClient != nil {
		sampler.StartIndexing(esClient)
		engine.StartIndexing(esClient)
	}

	advisor := scaling.NewAdvisor(
		cfg.Scaling.InitialInstances,
		cfg.Scaling.MaxInstances,
		cfg.Scaling.AutoScaling,
	)

	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	aggregator := perf.NewAggregator(metricStore, cacheLayer, cacheTTL)

	slaTracker := sla.NewTracker(metricStore, thresholds)
	incidents := sla.NewIncidentManager(metricStore)

	scheduler := health.NewScheduler(sampler, cfg.Sampling.Organizations)
	if err := scheduler.Start(cfg.Sampling.IntervalSeconds); err != nil {
		logger.Fatal("Failed to start sampling scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	// Hourly SLA evaluation over the trailing hour for every sampled org.
	if err := scheduler.AddJob("0 0 * * * *", func() {
		end := time.Now()
		start := end.Add(-time.Hour)
		for _, org := range cfg.Sampling.Organizations {
			if _, err := slaTracker.EvaluatePeriod(org, start, end, "hourly"); err != nil {
				logger.Warn("SLA evaluation failed",
					zap.String("organization_id", org),
					zap.Error(err),
				)
			}
		}
	}); err != nil {
		logger.Warn("Failed to register SLA evaluation job", zap.Error(err))
	}

	logger.Info("Sampling scheduler started",
		zap.Int("interval_seconds", cfg.Sampling.IntervalSeconds),
		zap.Int("organizations", len(cfg.Sampling.Organizations)),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort)
	go func() {
		httpServer := server.NewServer(server.Deps{
			Store:      metricStore,
			Sampler:    sampler,
			Engine:     engine,
			Thresholds: thresholds,
			Aggregator: aggregator,
			Advisor:    advisor,
			SLA:        slaTracker,
			Incidents:  incidents,
			Cache:      cacheLayer,
		}, *configFile, cfg)
		logger.Info("Starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.Run(httpAddr); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sig := <-sigChan
	logger.Info("Received signal, shutting down...", zap.String("signal", sig.String()))

	logger.Info("Gateway monitoring service stopped")
}

func buildCache(cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "redis":
		return cache.NewRedisCache(context.Background(), cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return cache.NewMemoryCache(time.Minute), nil
	}
}

// buildNotifiers resolves notification channels from the alert config plus
// the shared org's configured recipients.
func buildNotifiers(cfg *config.Config, thresholds *threshold.Manager) []alert.Notifier {
	if !cfg.Alert.Enabled {
		return nil
	}

	var recipients []string
	if tc, err := thresholds.Get(""); err == nil && tc.NotificationRecipients != "" {
		for _, r := range strings.Split(tc.NotificationRecipients, ",") {
			if r = strings.TrimSpace(r); r != "" {
				recipients = append(recipients, r)
			}
		}
	}

	return alert.NotifiersFromConfig(cfg.Alert, recipients)
}
