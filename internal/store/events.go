package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

// EventIndexMapping is the mapping of the user event index.
const EventIndexMapping = `{
	"mappings": {
		"properties": {
			"id":        {"type": "keyword"},
			"eventType": {"type": "keyword"},
			"sessionId": {"type": "keyword"},
			"track":     {"type": "keyword"},
			"details":   {"type": "object", "enabled": false},
			"timestamp": {"type": "date"}
		}
	}
}`

const maxRecentEvents = 100

// EventLog indexes questionnaire interactions.
type EventLog struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewEventLog(client *elasticsearch.Client, index string, log logger.Logger) *EventLog {
	return &EventLog{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"index": index}),
	}
}

// Record indexes event and returns its id. ID and Timestamp are filled in when empty.
func (l *EventLog) Record(ctx context.Context, event models.UserEvent) (string, error) {
	if strings.TrimSpace(event.Type) == "" {
		return "", fmt.Errorf("%w: event type is required", ErrStoreFailed)
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("%w: marshal event: %w", ErrStoreFailed, err)
	}

	req := esapi.IndexRequest{
		Index:      l.index,
		DocumentID: event.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, l.client)
	if err != nil {
		return "", fmt.Errorf("%w: index event: %w", ErrStoreFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", fmt.Errorf("%w: index event: %s", ErrStoreFailed, res.Status())
	}

	l.logger.Debug("user event recorded", map[string]interface{}{
		"eventId":   event.ID,
		"eventType": event.Type,
		"sessionId": event.SessionID,
	})
	return event.ID, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.UserEvent `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Recent returns up to n events of a session, newest first.
func (l *EventLog) Recent(ctx context.Context, sessionID string, n int) ([]models.UserEvent, error) {
	if n <= 0 || n > maxRecentEvents {
		n = maxRecentEvents
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"sessionId": sessionID},
		},
		"sort": []interface{}{
			map[string]interface{}{"timestamp": map[string]interface{}{"order": "desc"}},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("%w: encode query: %w", ErrStoreFailed, err)
	}

	size := n
	req := esapi.SearchRequest{
		Index: []string{l.index},
		Body:  &buf,
		Size:  &size,
	}
	res, err := req.Do(ctx, l.client)
	if err != nil {
		return nil, fmt.Errorf("%w: search events: %w", ErrStoreFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: search events: %s", ErrStoreFailed, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %w", ErrStoreFailed, err)
	}

	events := make([]models.UserEvent, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		events = append(events, h.Source)
	}
	return events, nil
}
