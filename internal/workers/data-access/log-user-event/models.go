// internal/workers/data-access/log-user-event/models.go
package loguserevent

import (
	"context"
	"time"

	"ipo-readiness/internal/models"
)

type EventRecorder interface {
	Record(ctx context.Context, event models.UserEvent) (string, error)
}

type Input struct {
	EventType string                 `json:"eventType"`
	SessionID string                 `json:"sessionId,omitempty"`
	Track     string                 `json:"track,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp *time.Time             `json:"timestamp,omitempty"`
}

type Output struct {
	EventID  string `json:"eventId"`
	Recorded bool   `json:"recorded"`
}
