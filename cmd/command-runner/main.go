// cmd/command-runner/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"cmdkit/command"
	"cmdkit/internal/audit"
	"cmdkit/internal/commands/cachesession"
	"cmdkit/internal/commands/notifyuser"
	"cmdkit/internal/commands/registeruser"
	"cmdkit/internal/common/aws"
	"cmdkit/internal/common/camunda"
	"cmdkit/internal/common/config"
	"cmdkit/internal/common/database"
	"cmdkit/internal/common/logger"
	"cmdkit/internal/common/metrics"
	"cmdkit/internal/common/observability"
	"cmdkit/pkg/registry"
	"cmdkit/txn"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func commandTimeout(cfg *config.Config, name string) time.Duration {
	return time.Duration(cfg.Commands[name].TimeoutMS) * time.Millisecond
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting command runner...", zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Assemble the runner ---
	opts := []command.Option{
		command.WithLogger(log),
		command.WithTransactionProvider(txn.NewSQLProvider(pg.DB)),
		command.WithObserver(metrics.NewObserver()),
		command.WithObserver(obs),
	}

	if cfg.Audit.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		opts = append(opts, command.WithObserver(audit.NewSink(esClient.Client, cfg.Audit.Index, log)))
		zapLog.Info("Elasticsearch audit sink enabled", zap.String("index", cfg.Audit.Index))
	}

	runner := command.NewRunner(opts...)

	// --- Build the command set ---
	sesClient, err := aws.NewSESClient(ctx, cfg.AWS.Region)
	if err != nil {
		zapLog.Fatal("ses client failed", zap.Error(err))
	}
	snsClient, err := aws.NewSNSClient(ctx, cfg.AWS.Region)
	if err != nil {
		zapLog.Fatal("sns client failed", zap.Error(err))
	}
	notifier := notifyuser.NewAWSNotifier(
		sesClient, snsClient,
		cfg.Notifications.FromEmail, cfg.Notifications.TopicARN,
	)

	sessionCmd := cachesession.New(redis.Client)
	registerCmd := registeruser.New(sessionCmd)
	notifyCmd := notifyuser.New(notifier)

	taskTypes := map[string]command.Command{
		"register-user": registerCmd,
		"cache-session": sessionCmd,
		"notify-user":   notifyCmd,
	}

	catalog := registry.CommandRegistry{
		Version:     cfg.App.Version,
		LastUpdated: time.Now().UTC().Format("2006-01-02"),
	}
	for taskType, cmd := range taskTypes {
		catalog.Commands = append(catalog.Commands, registry.Describe(cmd, taskType))
	}

	// --- Optional Zeebe bridge ---
	if cfg.Camunda.BrokerAddress != "" {
		var zeebe *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		zapLog.Info("Zeebe client connected successfully")

		bridge := camunda.NewBridge(runner, log)
		for taskType, cmd := range taskTypes {
			w := camunda.NewWorker(
				zeebe.GetClient(),
				taskType,
				cfg.Camunda.MaxJobsActive,
				bridge.Handler(cmd, commandTimeout(cfg, cmd.Name())),
				log,
			)
			defer w.Stop()
		}
		zapLog.Info("All workers registered successfully", zap.Int("count", len(taskTypes)))
	}

	// --- Health, Registry & Metrics Server ---
	if cfg.Metrics.Enabled {
		go func() {
			http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "healthy",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			http.HandleFunc("/registry", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(catalog)
			})
			http.Handle("/metrics", promhttp.Handler())
			zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
				zapLog.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	zapLog.Info("Command runner stopped gracefully")
}
