// internal/workers/data-access/list-assessment-responses/handler.go
package listassessmentresponses

import (
	"context"
	"encoding/json"
	"fmt"

	"ipo-readiness/internal/common/camunda"
	"ipo-readiness/internal/common/errors"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/flow"
	"ipo-readiness/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "list-assessment-responses"
)

type Handler struct {
	config       *Config
	responses    ResponseLister
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, responses ResponseLister, log logger.Logger) *Handler {
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
	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	if input.Limit < 0 {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("limit must not be negative, got %d", input.Limit))
	}
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	var track models.Track
	if input.Track != "" {
		parsed, err := models.ParseTrack(input.Track)
		if err != nil {
			return nil, errors.NewUnknownTrackError(input.Track)
		}
		track = parsed
	}

	limit := input.Limit
	if limit == 0 {
		limit = h.config.DefaultLimit
	}

	responses, err := h.responses.List(ctx, track, limit)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list-assessment-responses", err)
	}
	if responses == nil {
		responses = []models.AssessmentResponse{}
	}

	byLabel := make(map[string]int)
	for _, r := range responses {
		byLabel[r.ReadinessLabel]++
	}

	h.logger.Info("assessment responses listed", map[string]interface{}{
		"track": track,
		"count": len(responses),
	})

	return &Output{
		Responses: responses,
		Count:     len(responses),
		ByLabel:   byLabel,
	}, nil
}
