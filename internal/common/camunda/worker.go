// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"ipo-readiness/internal/common/config"
	apperrors "ipo-readiness/internal/common/errors"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/common/metrics"
	"ipo-readiness/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"
)

// Registration binds a task type to its handler function.
type Registration struct {
	TaskType string
	Handle   worker.JobHandler
}

// Instrument wraps a handler with the job gauges, counters and a span per job.
// A job counts as failed when the handler sent a fail or throw command, which
// the handler reports through JobOutcome.
func Instrument(taskType string, obs *observability.Observability, handle func(worker.JobClient, entities.Job) JobOutcome) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		ctx, span := obs.StartSpan(context.Background(), "job "+taskType,
			attribute.Int64("job.key", job.Key),
			attribute.Int64("process.instance.key", job.ProcessInstanceKey),
		)
		defer span.End()

		outcome := handle(client, job)

		status := "completed"
		if outcome.Failed() {
			status = "failed"
			metrics.WorkerJobsFailed.WithLabelValues(taskType, outcome.ErrorCode).Inc()
			span.SetAttributes(attribute.String("error.code", outcome.ErrorCode))
		} else {
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}

		elapsed := time.Since(start)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		obs.RecordJobProcessed(ctx, taskType, status)
		obs.RecordJobDuration(ctx, taskType, elapsed, status)
	}
}

// JobOutcome is what a handler did with its job.
type JobOutcome struct {
	ErrorCode string
}

func (o JobOutcome) Failed() bool { return o.ErrorCode != "" }

// Completed is the outcome of a job that was completed.
var Completed = JobOutcome{}

// FailedWith is the outcome of a job that was failed or had a BPMN error thrown.
func FailedWith(code string) JobOutcome { return JobOutcome{ErrorCode: code} }

// Complete sends the complete command with output as the job variables.
func Complete(client worker.JobClient, job entities.Job, output interface{}, log logger.Logger) JobOutcome {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		log.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return FailedWith("COMPLETE_COMMAND_FAILED")
	}

	ctx, cancel := apperrors.CommandContext(context.Background())
	defer cancel()

	if _, err := cmd.Send(ctx); err != nil {
		log.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return FailedWith("COMPLETE_COMMAND_FAILED")
	}

	log.Info("job completed", map[string]interface{}{"jobKey": job.Key})
	return Completed
}

// StartWorker opens a job worker for reg using the per-task settings.
func StartWorker(client zbc.Client, reg Registration, wcfg config.WorkerConfig, log logger.Logger) worker.JobWorker {
	jw := client.NewJobWorker().
		JobType(reg.TaskType).
		Handler(reg.Handle).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Name(reg.TaskType).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      reg.TaskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout":       wcfg.Timeout,
	})
	return jw
}
