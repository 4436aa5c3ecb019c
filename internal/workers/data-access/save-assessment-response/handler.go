// internal/workers/data-access/save-assessment-response/handler.go
package saveassessmentresponse

import (
	"context"
	"encoding/json"

	"ipo-readiness/internal/assessment"
	"ipo-readiness/internal/common/camunda"
	"ipo-readiness/internal/common/errors"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/common/metrics"
	"ipo-readiness/internal/common/validation"
	"ipo-readiness/internal/flow"
	"ipo-readiness/internal/models"
	"ipo-readiness/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "save-assessment-response"
)

type Handler struct {
	config       *Config
	responses    ResponseSaver
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, responses ResponseSaver, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		responses:    responses,
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
	result, err := validation.SubmissionSchema.ValidateJSON([]byte(job.Variables))
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

// Execute rescores the answers and stores the flat record. Score variables
// coming from earlier tasks are ignored so the stored score always matches
// the stored answers.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	track, err := models.ParseTrack(input.Track)
	if err != nil {
		return nil, errors.NewUnknownTrackError(input.Track)
	}

	score, err := assessment.Score(track, input.Answers)
	if err != nil {
		return nil, err
	}

	rec, err := store.NewRecord(track, models.Identity{
		UserName:  input.UserName,
		UserEmail: input.UserEmail,
		UserPhone: input.UserPhone,
	}, score, input.Answers)
	if err != nil {
		return nil, err
	}

	id, err := h.responses.Save(ctx, &rec)
	if err != nil {
		metrics.ResponsesPersisted.WithLabelValues("failed").Inc()
		return nil, errors.NewPersistenceFailedError(err)
	}
	metrics.ResponsesPersisted.WithLabelValues("saved").Inc()

	h.logger.Info("assessment response saved", map[string]interface{}{
		"responseId":     id,
		"track":          track,
		"readinessScore": score.ReadinessScore,
	})

	return &Output{
		ResponseID:     id,
		TotalScore:     score.TotalWeight,
		ReadinessScore: score.ReadinessScore,
		ReadinessLabel: score.ReadinessLabel,
	}, nil
}
