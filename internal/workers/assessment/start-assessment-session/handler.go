// internal/workers/assessment/start-assessment-session/handler.go
package startassessmentsession

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"ipo-readiness/internal/assessment"
	"ipo-readiness/internal/common/camunda"
	"ipo-readiness/internal/common/errors"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/flow"
	"ipo-readiness/internal/models"
	"ipo-readiness/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "start-assessment-session"
)

type Handler struct {
	config       *Config
	sessions     SessionStarter
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, sessions SessionStarter, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		sessions:     sessions,
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
	if input.Track == "" {
		return nil, errors.NewInvalidInputError("track is required")
	}
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	track, err := models.ParseTrack(input.Track)
	if err != nil {
		return nil, errors.NewUnknownTrackError(input.Track)
	}
	catalog, err := assessment.CatalogFor(track)
	if err != nil {
		return nil, err
	}

	session, err := h.sessions.Start(ctx, track)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errors.NewSessionStoreFailedError(err)
	}

	h.logger.Info("assessment session started", map[string]interface{}{
		"sessionId": session.ID,
		"track":     track,
	})

	return &Output{
		SessionID:     session.ID,
		Track:         track,
		QuestionCount: catalog.Len(),
		Questions:     catalog.Questions(),
		StartedAt:     session.StartedAt,
	}, nil
}

var _ SessionStarter = (*store.SessionStore)(nil)
