// internal/workers/communication/notify-advisor/handler.go
package notifyadvisor

import (
	"context"
	"encoding/json"
	"time"

	"ipo-readiness/internal/common/camunda"
	"ipo-readiness/internal/common/errors"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/flow"
	"ipo-readiness/internal/common/validation"
	"ipo-readiness/internal/models"
	"ipo-readiness/internal/notify"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "notify-advisor"
)

var inputSchema = validation.MustCompile("notify-advisor", `{
  "type": "object",
  "required": ["track", "userName", "userEmail", "readinessScore", "readinessLabel"],
  "properties": {
    "track": {"type": "string", "enum": ["mainboard", "sme", "MAINBOARD", "SME"]},
    "userName": {"type": "string", "minLength": 1},
    "userEmail": {"type": "string", "format": "email"},
    "readinessScore": {"type": "number", "minimum": 0, "maximum": 5},
    "readinessLabel": {"type": "string", "minLength": 1}
  }
}`)

type Handler struct {
	config       *Config
	notifier     notify.Notifier
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, notifier notify.Notifier, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		notifier:     notifier,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) camunda.JobOutcome {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		return camunda.FailedWith(h.errorHandler.HandleJobError(ctx, client, job, err))
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		return camunda.FailedWith(h.errorHandler.HandleJobError(ctx, client, job, flow.ClassifyJob(ctx, err)))
	}

	return camunda.Complete(client, job, output, h.logger)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	result, err := inputSchema.ValidateJSON([]byte(job.Variables))
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewInvalidInputError(result.Error().Error())
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	track, err := models.ParseTrack(input.Track)
	if err != nil {
		return nil, errors.NewUnknownTrackError(input.Track)
	}

	messageID, err := h.notifier.NotifyAdvisor(ctx, notify.Alert{
		ResponseID:     input.ResponseID,
		Track:          track,
		UserName:       input.UserName,
		UserEmail:      input.UserEmail,
		UserPhone:      input.UserPhone,
		TotalScore:     input.TotalScore,
		ReadinessScore: input.ReadinessScore,
		ReadinessLabel: input.ReadinessLabel,
		ReportSent:     input.ReportSent,
		CompletedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, errors.NewNotificationSendFailedError("sns", err)
	}

	h.logger.Info("advisor notified", map[string]interface{}{
		"messageId":  messageID,
		"responseId": input.ResponseID,
	})
	return &Output{Notified: true, MessageID: messageID}, nil
}
