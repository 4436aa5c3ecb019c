// internal/models/event.go
package models

import "time"

// UserEvent is a questionnaire interaction recorded for funnel analysis.
type UserEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"eventType"`
	SessionID string                 `json:"sessionId,omitempty"`
	Track     Track                  `json:"track,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Email is what the mail transport delivers.
type Email struct {
	To      string   `json:"to"`
	CC      []string `json:"cc,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}
