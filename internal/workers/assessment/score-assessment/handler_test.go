package scoreassessment

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ipo-readiness/internal/assessment"
	"ipo-readiness/internal/common/errors"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/flow"
	"ipo-readiness/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	activatedJob := &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "ipo-readiness-assessment",
		ElementId:          "Activity_ScoreAssessment",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}
	return entities.Job{ActivatedJob: activatedJob}
}

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(&Config{Timeout: 5 * time.Second}, logger.NewTestLogger(t))
}

func smeAnswers() []models.Answer {
	return []models.Answer{
		{QuestionID: 1, SelectedLabel: "Partnership Firm", Weight: 2},
		{QuestionID: 2, SelectedLabel: "Under 2 years", Weight: 2},
		{QuestionID: 3, SelectedLabel: "More than 3:1", Weight: 2},
		{QuestionID: 4, SelectedLabel: "Not Yet Positive", Weight: 1},
		{QuestionID: 5, SelectedLabel: "No", Weight: 2},
		{QuestionID: 6, SelectedLabel: "Don't know", Weight: 1},
		{QuestionID: 7, SelectedLabel: "Not Sure", Weight: 1},
	}
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	handler := createTestHandler(t)

	tests := []struct {
		name      string
		variables map[string]interface{}
		wantErr   bool
	}{
		{
			name:      "valid input with extra process variables",
			variables: map[string]interface{}{"track": "SME", "answers": smeAnswers(), "userEmail": "a@example.com"},
		},
		{
			name:      "missing answers",
			variables: map[string]interface{}{"track": "sme"},
			wantErr:   true,
		},
		{
			name: "weight out of range",
			variables: map[string]interface{}{"track": "sme", "answers": []map[string]interface{}{
				{"questionId": 1, "selectedLabel": "Public Limited", "weight": 9},
			}},
			wantErr: true,
		},
		{
			name:      "unknown track",
			variables: map[string]interface{}{"track": "nse-emerge", "answers": smeAnswers()},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := handler.parseInput(createMockJob(1, tt.variables))
			if tt.wantErr {
				require.Error(t, err)
				stdErr, ok := err.(*errors.StandardError)
				require.True(t, ok, "error should be StandardError")
				assert.Equal(t, errors.ErrCodeInvalidInput, stdErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Len(t, input.Answers, 7)
		})
	}
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{Track: "sme", Answers: smeAnswers()})
	require.NoError(t, err)

	assert.Equal(t, 11, output.TotalScore)
	assert.Equal(t, 2.5, output.ReadinessScore)
	assert.Equal(t, assessment.LabelNeedsWork, output.ReadinessLabel)
	assert.Len(t, output.NarrativePoints, 5)
	assert.Equal(t, assessment.GenerateClosing(2.5), output.ClosingMessage)
}

func TestHandler_Execute_Errors(t *testing.T) {
	handler := createTestHandler(t)

	tests := []struct {
		name     string
		input    *Input
		wantCode errors.ErrorCode
	}{
		{"unknown track", &Input{Track: "bse", Answers: smeAnswers()}, errors.ErrCodeUnknownTrack},
		{"incomplete", &Input{Track: "sme", Answers: smeAnswers()[:6]}, errors.ErrCodeIncompleteAnswerSet},
		{"mainboard label on sme", &Input{Track: "sme", Answers: append(smeAnswers()[1:], models.Answer{QuestionID: 1, SelectedLabel: "Proprietorship", Weight: 2})}, errors.ErrCodeUnknownOptionLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Execute(context.Background(), tt.input)
			require.Error(t, err)
			stdErr := errors.Normalize(flow.Classify(err))
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}
