package submitassessment

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"ipo-readiness/internal/common/errors"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/flow"
	"ipo-readiness/internal/models"
	"ipo-readiness/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks and Helpers
// ==========================

type MockSubmitter struct{ mock.Mock }

func (m *MockSubmitter) Submit(ctx context.Context, sub flow.Submission) (*flow.Outcome, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flow.Outcome), args.Error(1)
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "ipo-readiness-assessment",
		ElementId:          "Activity_SubmitAssessment",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

type fixture struct {
	handler   *Handler
	submitter *MockSubmitter
	sessions  *store.SessionStore
	mr        *miniredis.Miniredis
}

func setup(t *testing.T) *fixture {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	f := &fixture{
		submitter: &MockSubmitter{},
		sessions:  store.NewSessionStore(client, time.Hour, logger.NewTestLogger(t)),
		mr:        mr,
	}
	f.handler = NewHandler(&Config{Timeout: 5 * time.Second}, f.submitter, f.sessions, logger.NewTestLogger(t))
	return f
}

func smeAnswers() []models.Answer {
	return []models.Answer{
		{QuestionID: 1, SelectedLabel: "Private Limited", Weight: 4},
		{QuestionID: 2, SelectedLabel: "3 to 10 years", Weight: 4},
		{QuestionID: 3, SelectedLabel: "Less than or equal to 3:1", Weight: 4},
		{QuestionID: 4, SelectedLabel: "1 to 5 Crore", Weight: 3},
		{QuestionID: 5, SelectedLabel: "Yes", Weight: 4},
		{QuestionID: 6, SelectedLabel: "More than 3 Crore", Weight: 4},
		{QuestionID: 7, SelectedLabel: "In two years", Weight: 2},
	}
}

func identityVars() map[string]interface{} {
	return map[string]interface{}{
		"userName":  "Asha Rao",
		"userEmail": "asha@example.com",
		"userPhone": "+919876543210",
	}
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput_Inline(t *testing.T) {
	f := setup(t)

	vars := identityVars()
	vars["track"] = "SME"
	vars["answers"] = smeAnswers()

	input, err := f.handler.parseInput(context.Background(), createMockJob(1, vars))
	require.NoError(t, err)
	assert.Equal(t, "SME", input.Track)
	assert.Len(t, input.Answers, 7)
}

func TestHandler_ParseInput_FromSession(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	session, err := f.sessions.Start(ctx, models.TrackMainboard)
	require.NoError(t, err)
	_, err = f.sessions.RecordAnswer(ctx, session.ID, 2, "3 to 10 Years")
	require.NoError(t, err)
	_, err = f.sessions.RecordAnswer(ctx, session.ID, 1, "Private Limited")
	require.NoError(t, err)

	vars := identityVars()
	vars["sessionId"] = session.ID
	vars["track"] = "sme"

	input, err := f.handler.parseInput(ctx, createMockJob(1, vars))
	require.NoError(t, err)
	assert.Equal(t, "mainboard", input.Track)
	require.Len(t, input.Answers, 2)
	assert.Equal(t, 1, input.Answers[0].QuestionID)
}

func TestHandler_ParseInput_Errors(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name     string
		vars     map[string]interface{}
		wantCode errors.ErrorCode
	}{
		{
			name:     "missing email",
			vars:     map[string]interface{}{"track": "sme", "userName": "Asha", "answers": smeAnswers()},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "bad email",
			vars:     map[string]interface{}{"track": "sme", "userName": "Asha", "userEmail": "not-an-email", "answers": smeAnswers()},
			wantCode: errors.ErrCodeInvalidInput,
		},
		{
			name:     "unknown session",
			vars:     map[string]interface{}{"sessionId": "gone", "userName": "Asha", "userEmail": "asha@example.com"},
			wantCode: errors.ErrCodeSessionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.handler.parseInput(context.Background(), createMockJob(1, tt.vars))
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.Normalize(flow.Classify(err)).Code)
		})
	}
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	session, err := f.sessions.Start(ctx, models.TrackSME)
	require.NoError(t, err)

	outcome := &flow.Outcome{
		ResponseID: "resp-1",
		Score:      models.ScoreResult{TotalWeight: 25, ReadinessScore: 4.5, ReadinessLabel: "High IPO Readiness"},
		Closing:    "closing",
		Subject:    "SME IPO Readiness Assessment Report - High IPO Readiness",
		ReportSent: true,
		Persisted:  true,
	}
	f.submitter.On("Submit", mock.Anything, mock.MatchedBy(func(sub flow.Submission) bool {
		return sub.Track == models.TrackSME &&
			sub.Identity.UserEmail == "asha@example.com" &&
			len(sub.Answers) == 7
	})).Return(outcome, nil)

	output, err := f.handler.Execute(ctx, &Input{
		SessionID: session.ID,
		Track:     "SME",
		UserName:  "Asha Rao",
		UserEmail: "asha@example.com",
		Answers:   smeAnswers(),
	})
	require.NoError(t, err)

	assert.Equal(t, "resp-1", output.ResponseID)
	assert.Equal(t, 4.5, output.ReadinessScore)
	assert.True(t, output.ReportSent)
	assert.True(t, output.Persisted)
	assert.False(t, f.mr.Exists("assessment:session:"+session.ID), "session discarded after submit")
	f.submitter.AssertExpectations(t)
}

func TestHandler_Execute_MailFailureStillCompletes(t *testing.T) {
	f := setup(t)

	f.submitter.On("Submit", mock.Anything, mock.Anything).Return(&flow.Outcome{
		Score:     models.ScoreResult{TotalWeight: 25, ReadinessScore: 4.5, ReadinessLabel: "High IPO Readiness"},
		MailError: "ses send email: throttled",
	}, nil)

	output, err := f.handler.Execute(context.Background(), &Input{
		Track: "sme", UserName: "Asha Rao", UserEmail: "asha@example.com", Answers: smeAnswers(),
	})
	require.NoError(t, err)
	assert.False(t, output.ReportSent)
	assert.Equal(t, "ses send email: throttled", output.MailError)
}

func TestHandler_Execute_SubmitError(t *testing.T) {
	f := setup(t)

	f.submitter.On("Submit", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: template exploded", flow.ErrReportGeneration))
	_, err := f.handler.Execute(context.Background(), &Input{
		Track: "sme", UserName: "Asha Rao", UserEmail: "asha@example.com", Answers: smeAnswers(),
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeReportRenderFailed, errors.Normalize(flow.Classify(err)).Code)

	_, err = f.handler.Execute(context.Background(), &Input{Track: "bse"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnknownTrack, err.(*errors.StandardError).Code)
}
