package emailsend

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ipo-readiness/internal/common/camunda"
	"ipo-readiness/internal/common/errors"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/flow"
	"ipo-readiness/internal/common/mail"
	"ipo-readiness/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "email-send"

type Handler struct {
	config       *Config
	mailer       mail.Mailer
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, mailer mail.Mailer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		mailer:       mailer,
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
	if input.HTML == "" && input.Text == "" && input.Body == "" {
		return nil, errors.NewInvalidInputError("one of html, text or body is required")
	}
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	email := toEmail(input)

	if err := h.mailer.Send(ctx, email); err != nil {
		return nil, errors.NewMailSendFailedError(err)
	}

	h.logger.Info("email sent", map[string]interface{}{
		"to":       email.To,
		"cc":       len(email.CC),
		"provider": h.config.Provider,
	})

	return &Output{
		Success:  true,
		Message:  "Email sent successfully",
		Provider: h.config.Provider,
		SentAt:   time.Now().UTC(),
	}, nil
}

func toEmail(input *Input) models.Email {
	email := models.Email{
		To:      strings.TrimSpace(input.To),
		Subject: input.Subject,
		HTML:    input.HTML,
		Text:    input.Text,
	}
	if input.Body != "" {
		if input.IsHTML && email.HTML == "" {
			email.HTML = input.Body
		} else if !input.IsHTML && email.Text == "" {
			email.Text = input.Body
		}
	}
	for _, cc := range strings.Split(input.CC, ",") {
		if cc = strings.TrimSpace(cc); cc != "" {
			email.CC = append(email.CC, cc)
		}
	}
	return email
}
