package recordassessmentanswer

import (
	"context"
	"encoding/json"
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
	"github.com/stretchr/testify/require"
)

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "ipo-readiness-assessment",
		ElementId:          "Activity_RecordAnswer",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

type fixture struct {
	handler  *Handler
	sessions *store.SessionStore
	mr       *miniredis.Miniredis
}

func setup(t *testing.T) *fixture {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	sessions := store.NewSessionStore(client, time.Hour, logger.NewTestLogger(t))
	return &fixture{
		handler:  NewHandler(&Config{Timeout: 5 * time.Second}, sessions, logger.NewTestLogger(t)),
		sessions: sessions,
		mr:       mr,
	}
}

func TestHandler_ParseInput(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name      string
		variables map[string]interface{}
		wantErr   bool
	}{
		{"valid", map[string]interface{}{"sessionId": "abc", "questionId": 2, "selectedLabel": "3 to 10 Years"}, false},
		{"missing session", map[string]interface{}{"questionId": 2, "selectedLabel": "3 to 10 Years"}, true},
		{"empty label", map[string]interface{}{"sessionId": "abc", "questionId": 2, "selectedLabel": ""}, true},
		{"question zero", map[string]interface{}{"sessionId": "abc", "questionId": 0, "selectedLabel": "Yes"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := f.handler.parseInput(createMockJob(1, tt.variables))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeInvalidInput, err.(*errors.StandardError).Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2, input.QuestionID)
		})
	}
}

func TestHandler_Execute_TracksProgress(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	session, err := f.sessions.Start(ctx, models.TrackMainboard)
	require.NoError(t, err)

	labels := []string{"Public Limited", "More than 10 Years", "In one year", "More than 10 Crore"}
	var output *Output
	for i, label := range labels {
		output, err = f.handler.Execute(ctx, &Input{SessionID: session.ID, QuestionID: i + 1, SelectedLabel: label})
		require.NoError(t, err)
		assert.Equal(t, i+1, output.AnsweredCount)
		assert.Equal(t, i == len(labels)-1, output.Complete)
	}

	assert.Equal(t, 4, output.QuestionCount)
	assert.Equal(t, 4, output.Answers[0].Weight)
	assert.Equal(t, 3, output.Answers[2].Weight)
}

func TestHandler_Execute_ReplacesAnswer(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	session, err := f.sessions.Start(ctx, models.TrackSME)
	require.NoError(t, err)

	_, err = f.handler.Execute(ctx, &Input{SessionID: session.ID, QuestionID: 3, SelectedLabel: "Don't know"})
	require.NoError(t, err)
	output, err := f.handler.Execute(ctx, &Input{SessionID: session.ID, QuestionID: 3, SelectedLabel: "Less than or equal to 3:1"})
	require.NoError(t, err)

	require.Len(t, output.Answers, 1)
	assert.Equal(t, "Less than or equal to 3:1", output.Answers[0].SelectedLabel)
	assert.Equal(t, 4, output.Answers[0].Weight)
}

func TestHandler_Execute_Errors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	session, err := f.sessions.Start(ctx, models.TrackSME)
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    *Input
		wantCode errors.ErrorCode
	}{
		{"unknown session", &Input{SessionID: "missing", QuestionID: 1, SelectedLabel: "Public Limited"}, errors.ErrCodeSessionNotFound},
		{"unknown label", &Input{SessionID: session.ID, QuestionID: 1, SelectedLabel: "Proprietorship"}, errors.ErrCodeUnknownOptionLabel},
		{"unknown question", &Input{SessionID: session.ID, QuestionID: 9, SelectedLabel: "Yes"}, errors.ErrCodeUnknownOptionLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.handler.Execute(ctx, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.Normalize(flow.Classify(err)).Code)
		})
	}
}

func TestHandler_Execute_StoreDown(t *testing.T) {
	f := setup(t)
	f.mr.Close()

	_, err := f.handler.Execute(context.Background(), &Input{SessionID: "abc", QuestionID: 1, SelectedLabel: "Public Limited"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSessionStoreFailed, errors.Normalize(flow.Classify(err)).Code)
}
