package renderassessmentreport

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ipo-readiness/internal/assessment"
	"ipo-readiness/internal/common/config"
	"ipo-readiness/internal/common/errors"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/flow"
	"ipo-readiness/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "ipo-readiness-assessment",
		ElementId:          "Activity_RenderReport",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func createTestHandler(t *testing.T) *Handler {
	cfg := NewConfig(config.WorkerConfig{Timeout: 5000}, config.ReportConfig{
		Firm:       "Evernile Capital",
		BookingURL: "https://booking.example.com/ipo-expert",
	})
	h := NewHandler(cfg, logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return h
}

func mainboardAnswers() []models.Answer {
	return []models.Answer{
		{QuestionID: 1, SelectedLabel: "Public Limited", Weight: 4},
		{QuestionID: 2, SelectedLabel: "More than 10 Years", Weight: 4},
		{QuestionID: 3, SelectedLabel: "In one year", Weight: 3},
		{QuestionID: 4, SelectedLabel: "More than 10 Crore", Weight: 4},
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig(config.WorkerConfig{}, config.ReportConfig{ContactEmail: "ipo@example.com"})
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "ipo@example.com", cfg.Contact.Email)
}

func TestHandler_ParseInput(t *testing.T) {
	handler := createTestHandler(t)

	input, err := handler.parseInput(createMockJob(1, map[string]interface{}{
		"track": "mainboard", "userName": "Asha Rao", "answers": mainboardAnswers(),
	}))
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", input.UserName)

	_, err = handler.parseInput(createMockJob(2, map[string]interface{}{"userName": "Asha Rao"}))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, err.(*errors.StandardError).Code)
}

func TestHandler_Execute_RendersBothFormats(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Track: "mainboard", UserName: "Asha Rao", Answers: mainboardAnswers(),
	})
	require.NoError(t, err)

	assert.Equal(t, 15, output.TotalScore)
	assert.Equal(t, 4.0, output.ReadinessScore)
	assert.Equal(t, assessment.LabelGood, output.ReadinessLabel)
	assert.Equal(t, "MAINBOARD IPO Readiness Assessment Report - "+assessment.LabelGood, output.Subject)

	assert.Contains(t, output.HTML, "4.0/5")
	assert.Contains(t, output.HTML, "Dear Asha Rao")
	assert.Contains(t, output.Text, "Readiness Score: 4.0 out of 5")
	assert.Contains(t, output.Text, "Book IPO Expert: https://booking.example.com/ipo-expert")
	assert.Contains(t, output.Text, "Assessment Date: 14 March 2026")
	assert.Len(t, output.NarrativePoints, 4)
	assert.Equal(t, assessment.GenerateClosing(4.0), output.ClosingMessage)
}

func TestHandler_Execute_Errors(t *testing.T) {
	handler := createTestHandler(t)

	answers := mainboardAnswers()
	answers[3].Weight = 1

	tests := []struct {
		name     string
		input    *Input
		wantCode errors.ErrorCode
	}{
		{"unknown track", &Input{Track: "nyse", Answers: mainboardAnswers()}, errors.ErrCodeUnknownTrack},
		{"weight mismatch", &Input{Track: "mainboard", Answers: answers}, errors.ErrCodeInvalidInput},
		{"incomplete", &Input{Track: "mainboard", Answers: mainboardAnswers()[:2]}, errors.ErrCodeIncompleteAnswerSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.Normalize(flow.Classify(err)).Code)
		})
	}
}
