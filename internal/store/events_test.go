package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method string
	path   string
	body   string
}

func setupElasticsearch(t *testing.T, status int, response string) (*elasticsearch.Client, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = append(captured, capturedRequest{method: r.Method, path: r.URL.Path, body: string(body)})

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client, &captured
}

func TestEventLog_Record(t *testing.T) {
	client, captured := setupElasticsearch(t, http.StatusCreated, `{"result":"created"}`)
	log := NewEventLog(client, "assessment-user-events", logger.NewTestLogger(t))

	id, err := log.Record(context.Background(), models.UserEvent{
		Type:      "question_answered",
		SessionID: "s-1",
		Track:     models.TrackSME,
		Details:   map[string]interface{}{"questionId": 3},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/assessment-user-events/_doc/"+id, req.path)

	var doc models.UserEvent
	require.NoError(t, json.Unmarshal([]byte(req.body), &doc))
	assert.Equal(t, "question_answered", doc.Type)
	assert.Equal(t, "s-1", doc.SessionID)
	assert.False(t, doc.Timestamp.IsZero())
}

func TestEventLog_Record_Errors(t *testing.T) {
	client, captured := setupElasticsearch(t, http.StatusInternalServerError, `{"error":"boom"}`)
	log := NewEventLog(client, "assessment-user-events", logger.NewTestLogger(t))

	_, err := log.Record(context.Background(), models.UserEvent{Type: " "})
	assert.ErrorIs(t, err, ErrStoreFailed)
	assert.Empty(t, *captured)

	_, err = log.Record(context.Background(), models.UserEvent{Type: "report_requested"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreFailed)
}

func TestEventLog_Recent(t *testing.T) {
	ts := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	response := `{"hits":{"hits":[
		{"_source":{"id":"e2","eventType":"report_requested","sessionId":"s-1","timestamp":"2026-03-14T10:00:00Z"}},
		{"_source":{"id":"e1","eventType":"session_started","sessionId":"s-1","timestamp":"2026-03-14T09:58:00Z"}}
	]}}`
	client, captured := setupElasticsearch(t, http.StatusOK, response)
	log := NewEventLog(client, "assessment-user-events", logger.NewTestLogger(t))

	events, err := log.Recent(context.Background(), "s-1", 500)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e2", events[0].ID)
	assert.Equal(t, ts, events[0].Timestamp)

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, "/assessment-user-events/_search", req.path)
	assert.True(t, strings.Contains(req.body, `"sessionId":"s-1"`))
	assert.True(t, strings.Contains(req.body, `"order":"desc"`))
}
