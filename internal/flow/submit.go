// Package flow runs a completed questionnaire end to end: score, narrative,
// report, persistence, delivery and the advisor alert.
package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ipo-readiness/internal/assessment"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/common/mail"
	"ipo-readiness/internal/common/metrics"
	"ipo-readiness/internal/common/observability"
	"ipo-readiness/internal/common/validation"
	"ipo-readiness/internal/models"
	"ipo-readiness/internal/notify"
	"ipo-readiness/internal/report"
	"ipo-readiness/internal/store"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrInvalidSubmission = errors.New("INVALID_SUBMISSION")
	ErrReportGeneration  = errors.New("REPORT_GENERATION_FAILED")
)

// Submission is a finished questionnaire.
type Submission struct {
	Track    models.Track    `json:"track"`
	Identity models.Identity `json:"identity"`
	Answers  []models.Answer `json:"answers"`
}

// Outcome is what the user sees after submitting. Score is always present
// when Submit returns without error, even if the report could not be mailed.
type Outcome struct {
	ResponseID string                  `json:"responseId,omitempty"`
	Score      models.ScoreResult      `json:"score"`
	Points     []models.NarrativePoint `json:"narrativePoints"`
	Closing    string                  `json:"closingMessage"`
	Subject    string                  `json:"subject"`
	ReportSent bool                    `json:"reportSent"`
	Persisted  bool                    `json:"persisted"`
	MailError  string                  `json:"mailError,omitempty"`
}

// ResponseSaver persists the flat record.
type ResponseSaver interface {
	Save(ctx context.Context, rec *models.AssessmentResponse) (string, error)
}

type Options struct {
	Responses  ResponseSaver
	Mailer     mail.Mailer
	Notifier   notify.Notifier
	Contact    models.Contact
	AdvisoryCC string
	Logger     logger.Logger
	Obs        *observability.Observability
	Now        func() time.Time
}

type Submitter struct {
	responses  ResponseSaver
	mailer     mail.Mailer
	notifier   notify.Notifier
	contact    models.Contact
	advisoryCC string
	logger     logger.Logger
	obs        *observability.Observability
	now        func() time.Time
}

func NewSubmitter(opts Options) (*Submitter, error) {
	if opts.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Obs == nil {
		opts.Obs = observability.NewNoop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Submitter{
		responses:  opts.Responses,
		mailer:     opts.Mailer,
		notifier:   opts.Notifier,
		contact:    opts.Contact,
		advisoryCC: opts.AdvisoryCC,
		logger:     opts.Logger.WithFields(map[string]interface{}{"component": "submitter"}),
		obs:        opts.Obs,
		now:        opts.Now,
	}, nil
}

// Submit scores and renders the report, then persists and mails it. Persistence
// and the advisor alert are best effort. A mail failure is reported through
// Outcome.ReportSent; only failures of the scoring core return an error.
func (s *Submitter) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	ctx, span := s.obs.StartSpan(ctx, "assessment.submit", attribute.String("track", string(sub.Track)))
	defer span.End()

	if err := checkSubmission(sub); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	built, err := Build(sub.Track, sub.Identity.UserName, sub.Answers, s.contact, s.now())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("report generation failed", map[string]interface{}{
			"track": sub.Track,
			"error": err.Error(),
		})
		return nil, err
	}

	outcome := &Outcome{
		Score:   built.Content.Score,
		Points:  built.Content.Points,
		Closing: built.Content.Closing,
		Subject: built.Document.Subject,
	}
	metrics.AssessmentsScored.WithLabelValues(string(sub.Track), built.Content.Score.ReadinessLabel).Inc()
	s.obs.RecordReadinessScore(ctx, string(sub.Track), built.Content.Score.ReadinessScore)

	outcome.ResponseID, outcome.Persisted = s.persist(ctx, sub, built.Content.Score)

	if err := s.mailer.Send(ctx, s.email(sub.Identity.UserEmail, built.Document)); err != nil {
		outcome.MailError = err.Error()
		metrics.ReportsDelivered.WithLabelValues(string(sub.Track), "failed").Inc()
		s.logger.Error("report email failed", map[string]interface{}{
			"track": sub.Track,
			"error": err.Error(),
		})
	} else {
		outcome.ReportSent = true
		metrics.ReportsDelivered.WithLabelValues(string(sub.Track), "sent").Inc()
	}

	s.alert(ctx, sub, outcome)

	span.SetAttributes(
		attribute.String("readiness.label", outcome.Score.ReadinessLabel),
		attribute.Bool("report.sent", outcome.ReportSent),
	)
	s.logger.Info("assessment submitted", map[string]interface{}{
		"track":          sub.Track,
		"responseId":     outcome.ResponseID,
		"readinessScore": outcome.Score.ReadinessScore,
		"reportSent":     outcome.ReportSent,
		"persisted":      outcome.Persisted,
	})
	return outcome, nil
}

func (s *Submitter) persist(ctx context.Context, sub Submission, score models.ScoreResult) (string, bool) {
	if s.responses == nil {
		return "", false
	}
	rec, err := store.NewRecord(sub.Track, sub.Identity, score, sub.Answers)
	if err == nil {
		var id string
		if id, err = s.responses.Save(ctx, &rec); err == nil {
			metrics.ResponsesPersisted.WithLabelValues("saved").Inc()
			return id, true
		}
	}
	metrics.ResponsesPersisted.WithLabelValues("failed").Inc()
	s.logger.Warn("assessment response not persisted", map[string]interface{}{
		"track": sub.Track,
		"error": err.Error(),
	})
	return "", false
}

func (s *Submitter) email(to string, doc report.Document) models.Email {
	email := models.Email{
		To:      to,
		Subject: doc.Subject,
		HTML:    doc.HTML,
		Text:    doc.Text,
	}
	if s.advisoryCC != "" && !strings.EqualFold(s.advisoryCC, to) {
		email.CC = []string{s.advisoryCC}
	}
	return email
}

func (s *Submitter) alert(ctx context.Context, sub Submission, outcome *Outcome) {
	if s.notifier == nil {
		return
	}
	_, err := s.notifier.NotifyAdvisor(ctx, notify.Alert{
		ResponseID:     outcome.ResponseID,
		Track:          sub.Track,
		UserName:       sub.Identity.UserName,
		UserEmail:      sub.Identity.UserEmail,
		UserPhone:      sub.Identity.UserPhone,
		TotalScore:     outcome.Score.TotalWeight,
		ReadinessScore: outcome.Score.ReadinessScore,
		ReadinessLabel: outcome.Score.ReadinessLabel,
		ReportSent:     outcome.ReportSent,
		CompletedAt:    s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn("advisor alert failed", map[string]interface{}{"error": err.Error()})
	}
}

func checkSubmission(sub Submission) error {
	if !sub.Track.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidSubmission, assessment.ErrUnknownTrack, sub.Track)
	}
	if !validation.ValidateEmail(sub.Identity.UserEmail) {
		return fmt.Errorf("%w: invalid email %q", ErrInvalidSubmission, sub.Identity.UserEmail)
	}
	if sub.Identity.UserPhone != "" && !validation.ValidatePhone(sub.Identity.UserPhone) {
		return fmt.Errorf("%w: invalid phone %q", ErrInvalidSubmission, sub.Identity.UserPhone)
	}
	return nil
}
