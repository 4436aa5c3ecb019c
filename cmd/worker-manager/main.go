// cmd/worker-manager/main.go
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

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ipo-readiness/internal/api"
	awsclient "ipo-readiness/internal/common/aws"
	"ipo-readiness/internal/common/camunda"
	"ipo-readiness/internal/common/config"
	"ipo-readiness/internal/common/database"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/common/mail"
	"ipo-readiness/internal/common/observability"
	"ipo-readiness/internal/flow"
	"ipo-readiness/internal/models"
	"ipo-readiness/internal/notify"
	"ipo-readiness/internal/store"
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOptions(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("metrics exporter unavailable, continuing without otel metrics", zap.Error(err))
		obs = observability.NewNoop()
	}
	if cfg.Tracing.Enabled {
		if err := obs.EnableTracing(cfg.App.Name, cfg.Tracing.JaegerEndpoint); err != nil {
			zapLog.Warn("tracing disabled", zap.Error(err))
		}
	}
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

	if cfg.Database.Postgres.AutoMigrate {
		migrations, err := store.Migrations()
		if err != nil {
			zapLog.Fatal("load migrations failed", zap.Error(err))
		}
		if err := pg.Migrate(ctx, migrations); err != nil {
			zapLog.Fatal("postgres migration failed", zap.Error(err))
		}
		zapLog.Info("PostgreSQL schema up to date", zap.Int("scripts", len(migrations)))
	}

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		if err := esClient.Ping(ctx); err != nil {
			return err
		}
		return esClient.EnsureIndex(ctx, cfg.Database.Elasticsearch.EventIndex, store.EventIndexMapping)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Delivery: mail transport and advisor alerts ---
	var awsCfg aws.Config
	if cfg.Mail.Transport == "ses" || cfg.Integrations.AWS.SNS.Enabled {
		awsCfg, err = awsclient.LoadConfig(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}
	}

	mailer, err := newMailer(cfg, awsCfg, log)
	if err != nil {
		zapLog.Fatal("mailer init failed", zap.Error(err))
	}

	var notifier notify.Notifier
	if cfg.Integrations.AWS.SNS.Enabled {
		sns, err := notify.NewSNSNotifier(awsclient.NewSNSClient(awsCfg), cfg.Integrations.AWS.SNS.TopicARN, log)
		if err != nil {
			zapLog.Fatal("advisor notifier init failed", zap.Error(err))
		}
		notifier = sns
	}

	svc := &services{
		responses: store.NewResponseRepository(pg.DB, log),
		sessions:  store.NewSessionStore(rdb.Client, time.Duration(cfg.Session.TTL)*time.Second, log),
		events:    store.NewEventLog(esClient.Client, cfg.Database.Elasticsearch.EventIndex, log),
		mailer:    mailer,
		notifier:  notifier,
	}
	svc.submitter, err = flow.NewSubmitter(flow.Options{
		Responses:  svc.responses,
		Mailer:     mailer,
		Notifier:   notifier,
		Contact:    contactFrom(cfg.Report),
		AdvisoryCC: cfg.Mail.AdvisoryCC,
		Logger:     log,
		Obs:        obs,
	})
	if err != nil {
		zapLog.Fatal("submitter init failed", zap.Error(err))
	}

	// --- Zeebe workers ---
	var (
		zeebe      *camunda.Client
		jobWorkers []worker.JobWorker
	)
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
			RetryConfig: &camunda.RetryConfig{
				MaxRetries: 10,
				BaseDelay:  2 * time.Second,
				MaxDelay:   30 * time.Second,
			},
		})
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		regs, err := registrations(cfg, svc, obs, log)
		if err != nil {
			zapLog.Fatal("worker setup failed", zap.Error(err))
		}
		for _, reg := range regs {
			if !config.IsWorkerEnabled(cfg, reg.TaskType) {
				zapLog.Info("worker disabled", zap.String("taskType", reg.TaskType))
				continue
			}
			jobWorkers = append(jobWorkers, camunda.StartWorker(zeebe.GetClient(), reg, config.GetWorkerConfig(cfg, reg.TaskType), log))
		}
		zapLog.Info("workers registered", zap.Int("count", len(jobWorkers)))
	}

	// --- HTTP: questionnaire API, health, readiness and metrics ---
	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	var limiter *api.RateLimiter
	if cfg.API.Enabled {
		limiter = api.NewRateLimiter(cfg.API.RateLimit, time.Duration(cfg.API.RateWindow)*time.Second)
		go limiter.Cleanup(bgCtx)
	}
	router := newRouter(cfg, svc, limiter, obs, log, readinessProbe(pg, rdb, esClient))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr), zap.Bool("api", cfg.API.Enabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	for _, jw := range jobWorkers {
		jw.Close()
		jw.AwaitClose()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func newMailer(cfg *config.Config, awsCfg aws.Config, log logger.Logger) (mail.Mailer, error) {
	if cfg.Mail.Transport == "smtp" {
		smtp := cfg.Integrations.SMTP
		return mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     smtp.Host,
			Port:     smtp.Port,
			Username: smtp.Username,
			Password: smtp.Password,
			UseTLS:   smtp.UseTLS,
		}, cfg.Mail.From, log)
	}
	return mail.NewSESMailer(awsclient.NewSESClient(awsCfg), cfg.Mail.From, log), nil
}

func contactFrom(rc config.ReportConfig) models.Contact {
	return models.Contact{
		Firm:       rc.Firm,
		BookingURL: rc.BookingURL,
		Email:      rc.ContactEmail,
		Phone:      rc.ContactPhone,
		Website:    rc.Website,
	}
}
