// internal/workers/assessment/record-assessment-answer/handler.go
package recordassessmentanswer

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"ipo-readiness/internal/assessment"
	"ipo-readiness/internal/common/camunda"
	"ipo-readiness/internal/common/errors"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/common/validation"
	"ipo-readiness/internal/flow"
	"ipo-readiness/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "record-assessment-answer"
)

type Handler struct {
	config       *Config
	sessions     AnswerRecorder
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, sessions AnswerRecorder, log logger.Logger) *Handler {
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
	result, err := validation.AnswerSchema.ValidateJSON([]byte(job.Variables))
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

// Execute records the answer and reports progress. Recording the same
// question again replaces the earlier answer.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	session, err := h.sessions.RecordAnswer(ctx, input.SessionID, input.QuestionID, input.SelectedLabel)
	if err != nil {
		if stderrors.Is(err, store.ErrStoreFailed) {
			return nil, errors.NewSessionStoreFailedError(err)
		}
		return nil, err
	}

	catalog, err := assessment.CatalogFor(session.Track)
	if err != nil {
		return nil, err
	}

	output := &Output{
		SessionID:     session.ID,
		Track:         session.Track,
		Answers:       session.Answers,
		AnsweredCount: len(session.Answers),
		QuestionCount: catalog.Len(),
	}
	output.Complete = catalog.Validate(session.Answers, true) == nil

	h.logger.Info("answer recorded", map[string]interface{}{
		"sessionId":  session.ID,
		"questionId": input.QuestionID,
		"answered":   output.AnsweredCount,
		"complete":   output.Complete,
	})
	return output, nil
}
