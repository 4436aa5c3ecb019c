// internal/workers/assessment/submit-assessment/handler.go
package submitassessment

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"ipo-readiness/internal/common/camunda"
	"ipo-readiness/internal/common/errors"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/common/validation"
	"ipo-readiness/internal/flow"
	"ipo-readiness/internal/models"
	"ipo-readiness/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "submit-assessment"

type Handler struct {
	config       *Config
	submitter    Submitter
	sessions     SessionSource
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

// NewHandler wires the submit worker. sessions may be nil when every
// submission carries its answers inline.
func NewHandler(config *Config, submitter Submitter, sessions SessionSource, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		submitter:    submitter,
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

	input, err := h.parseInput(ctx, job)
	if err != nil {
		return camunda.FailedWith(h.errorHandler.HandleJobError(ctx, client, job, flow.ClassifyJob(ctx, err)))
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		return camunda.FailedWith(h.errorHandler.HandleJobError(ctx, client, job, flow.ClassifyJob(ctx, err)))
	}

	return camunda.Complete(client, job, output, h.logger)
}

// parseInput decodes the variables, pulls track and answers from the session
// when one is named, and validates the result against the submission schema.
func (h *Handler) parseInput(ctx context.Context, job entities.Job) (*Input, error) {
	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}

	if input.SessionID != "" {
		if h.sessions == nil {
			return nil, errors.NewInvalidInputError("session submissions are not enabled")
		}
		session, err := h.sessions.Load(ctx, input.SessionID)
		if err != nil {
			if stderrors.Is(err, store.ErrStoreFailed) {
				return nil, errors.NewSessionStoreFailedError(err)
			}
			return nil, err
		}
		input.Track = string(session.Track)
		input.Answers = session.Answers
	}

	doc, err := json.Marshal(input)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	result, err := validation.SubmissionSchema.ValidateJSON(doc)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewInvalidInputError(result.Error().Error())
	}
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	track, err := models.ParseTrack(input.Track)
	if err != nil {
		return nil, errors.NewUnknownTrackError(input.Track)
	}

	outcome, err := h.submitter.Submit(ctx, flow.Submission{
		Track: track,
		Identity: models.Identity{
			UserName:  input.UserName,
			UserEmail: input.UserEmail,
			UserPhone: input.UserPhone,
		},
		Answers: input.Answers,
	})
	if err != nil {
		return nil, err
	}

	if input.SessionID != "" && h.sessions != nil {
		if err := h.sessions.Discard(ctx, input.SessionID); err != nil {
			h.logger.Warn("session not discarded", map[string]interface{}{
				"sessionId": input.SessionID,
				"error":     err.Error(),
			})
		}
	}

	return &Output{
		ResponseID:      outcome.ResponseID,
		TotalScore:      outcome.Score.TotalWeight,
		ReadinessScore:  outcome.Score.ReadinessScore,
		ReadinessLabel:  outcome.Score.ReadinessLabel,
		NarrativePoints: outcome.Points,
		ClosingMessage:  outcome.Closing,
		ReportSubject:   outcome.Subject,
		ReportSent:      outcome.ReportSent,
		Persisted:       outcome.Persisted,
		MailError:       outcome.MailError,
	}, nil
}
