package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ipo-readiness/internal/api"
	"ipo-readiness/internal/common/camunda"
	"ipo-readiness/internal/common/config"
	"ipo-readiness/internal/common/database"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/common/mail"
	"ipo-readiness/internal/common/observability"
	"ipo-readiness/internal/flow"
	"ipo-readiness/internal/notify"
	"ipo-readiness/internal/store"

	// Assessment Workers (5)
	ras "ipo-readiness/internal/workers/assessment/record-assessment-answer"
	rar "ipo-readiness/internal/workers/assessment/render-assessment-report"
	sca "ipo-readiness/internal/workers/assessment/score-assessment"
	sas "ipo-readiness/internal/workers/assessment/start-assessment-session"
	sub "ipo-readiness/internal/workers/assessment/submit-assessment"

	// Data Access Workers (3)
	lar "ipo-readiness/internal/workers/data-access/list-assessment-responses"
	lue "ipo-readiness/internal/workers/data-access/log-user-event"
	sar "ipo-readiness/internal/workers/data-access/save-assessment-response"

	// Communication Workers (2)
	es "ipo-readiness/internal/workers/communication/email-send"
	na "ipo-readiness/internal/workers/communication/notify-advisor"
)

type services struct {
	responses *store.ResponseRepository
	sessions  *store.SessionStore
	events    *store.EventLog
	mailer    mail.Mailer
	notifier  notify.Notifier
	submitter *flow.Submitter
}

// registrations builds every worker the process can run. notify-advisor is
// left out when no notifier is configured.
func registrations(cfg *config.Config, svc *services, obs *observability.Observability, log logger.Logger) ([]camunda.Registration, error) {
	wc := func(taskType string) config.WorkerConfig { return config.GetWorkerConfig(cfg, taskType) }
	reg := func(taskType string, handle func(worker.JobClient, entities.Job) camunda.JobOutcome) camunda.Registration {
		return camunda.Registration{TaskType: taskType, Handle: camunda.Instrument(taskType, obs, handle)}
	}

	emailCfg := es.NewConfig(wc(es.TaskType), cfg.Mail)
	if err := emailCfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s config: %w", es.TaskType, err)
	}

	regs := []camunda.Registration{
		reg(sas.TaskType, sas.NewHandler(sas.NewConfig(wc(sas.TaskType)), svc.sessions, log).Handle),
		reg(ras.TaskType, ras.NewHandler(ras.NewConfig(wc(ras.TaskType)), svc.sessions, log).Handle),
		reg(sca.TaskType, sca.NewHandler(sca.NewConfig(wc(sca.TaskType)), log).Handle),
		reg(rar.TaskType, rar.NewHandler(rar.NewConfig(wc(rar.TaskType), cfg.Report), log).Handle),
		reg(sub.TaskType, sub.NewHandler(sub.NewConfig(wc(sub.TaskType)), svc.submitter, svc.sessions, log).Handle),

		reg(sar.TaskType, sar.NewHandler(sar.NewConfig(wc(sar.TaskType)), svc.responses, log).Handle),
		reg(lar.TaskType, lar.NewHandler(lar.NewConfig(wc(lar.TaskType)), svc.responses, log).Handle),
		reg(lue.TaskType, lue.NewHandler(lue.NewConfig(wc(lue.TaskType)), svc.events, log).Handle),

		reg(es.TaskType, es.NewHandler(emailCfg, svc.mailer, log).Handle),
	}
	if svc.notifier != nil {
		regs = append(regs, reg(na.TaskType, na.NewHandler(na.NewConfig(wc(na.TaskType)), svc.notifier, log).Handle))
	}
	return regs, nil
}

func newRouter(cfg *config.Config, svc *services, limiter *api.RateLimiter, obs *observability.Observability, log logger.Logger, ready func(context.Context) map[string]string) *gin.Engine {
	var r *gin.Engine
	if cfg.API.Enabled {
		r = api.NewRouter(api.Deps{
			Sessions:       svc.sessions,
			Submitter:      svc.submitter,
			Events:         svc.events,
			Limiter:        limiter,
			AllowedOrigins: cfg.API.AllowedOrigins,
			ServiceName:    cfg.App.Name,
			Logger:         log,
			Obs:            obs,
		})
	} else {
		r = gin.New()
		r.Use(gin.Recovery())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().Format(time.RFC3339)})
	})
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		failures := ready(ctx)
		if len(failures) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": failures})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "time": time.Now().Format(time.RFC3339)})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// readinessProbe pings every backing store and returns the failing ones.
func readinessProbe(pg *database.PostgresClient, rdb *database.RedisClient, esClient *database.ElasticsearchClient) func(context.Context) map[string]string {
	return func(ctx context.Context) map[string]string {
		failures := map[string]string{}
		if err := pg.Ping(ctx); err != nil {
			failures["postgres"] = err.Error()
		}
		if err := rdb.Ping(ctx); err != nil {
			failures["redis"] = err.Error()
		}
		if err := esClient.Ping(ctx); err != nil {
			failures["elasticsearch"] = err.Error()
		}
		return failures
	}
}
