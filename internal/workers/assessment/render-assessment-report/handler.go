// internal/workers/assessment/render-assessment-report/handler.go
package renderassessmentreport

import (
	"context"
	"encoding/json"
	"time"

	"ipo-readiness/internal/common/camunda"
	"ipo-readiness/internal/common/errors"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/common/validation"
	"ipo-readiness/internal/flow"
	"ipo-readiness/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "render-assessment-report"

type Handler struct {
	config       *Config
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	now          func() time.Time
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
		now:          time.Now,
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
	result, err := validation.ScoreSchema.ValidateJSON([]byte(job.Variables))
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

// Execute renders both report formats. The user name may be empty; the
// report then falls back to a generic salutation.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	track, err := models.ParseTrack(input.Track)
	if err != nil {
		return nil, errors.NewUnknownTrackError(input.Track)
	}

	built, err := flow.Build(track, input.UserName, input.Answers, h.config.Contact, h.now())
	if err != nil {
		return nil, err
	}

	h.logger.Info("report rendered", map[string]interface{}{
		"track":     track,
		"subject":   built.Document.Subject,
		"htmlBytes": len(built.Document.HTML),
		"textBytes": len(built.Document.Text),
	})

	score := built.Content.Score
	return &Output{
		Subject:         built.Document.Subject,
		HTML:            built.Document.HTML,
		Text:            built.Document.Text,
		TotalScore:      score.TotalWeight,
		ReadinessScore:  score.ReadinessScore,
		ReadinessLabel:  score.ReadinessLabel,
		NarrativePoints: built.Content.Points,
		ClosingMessage:  built.Content.Closing,
	}, nil
}
