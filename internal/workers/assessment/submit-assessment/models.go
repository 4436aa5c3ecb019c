// internal/workers/assessment/submit-assessment/models.go
package submitassessment

import (
	"context"

	"ipo-readiness/internal/flow"
	"ipo-readiness/internal/models"
)

type Submitter interface {
	Submit(ctx context.Context, sub flow.Submission) (*flow.Outcome, error)
}

// SessionSource supplies the answers of a session-backed submission.
type SessionSource interface {
	Load(ctx context.Context, sessionID string) (*models.AssessmentSession, error)
	Discard(ctx context.Context, sessionID string) error
}

// Input carries either the answers themselves or the id of the session
// holding them. Session answers win over any answers in the variables.
type Input struct {
	SessionID string          `json:"sessionId,omitempty"`
	Track     string          `json:"track"`
	UserName  string          `json:"userName"`
	UserEmail string          `json:"userEmail"`
	UserPhone string          `json:"userPhone,omitempty"`
	Answers   []models.Answer `json:"answers"`
}

type Output struct {
	ResponseID      string                  `json:"responseId,omitempty"`
	TotalScore      int                     `json:"totalScore"`
	ReadinessScore  float64                 `json:"readinessScore"`
	ReadinessLabel  string                  `json:"readinessLabel"`
	NarrativePoints []models.NarrativePoint `json:"narrativePoints"`
	ClosingMessage  string                  `json:"closingMessage"`
	ReportSubject   string                  `json:"reportSubject"`
	ReportSent      bool                    `json:"reportSent"`
	Persisted       bool                    `json:"persisted"`
	MailError       string                  `json:"mailError,omitempty"`
}
