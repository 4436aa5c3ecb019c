// internal/workers/assessment/start-assessment-session/models.go
package startassessmentsession

import (
	"context"
	"time"

	"ipo-readiness/internal/models"
)

// SessionStarter opens a new questionnaire session.
type SessionStarter interface {
	Start(ctx context.Context, track models.Track) (*models.AssessmentSession, error)
}

type Input struct {
	Track string `json:"track"`
}

type Output struct {
	SessionID     string            `json:"sessionId"`
	Track         models.Track      `json:"track"`
	QuestionCount int               `json:"questionCount"`
	Questions     []models.Question `json:"questions"`
	StartedAt     time.Time         `json:"startedAt"`
}
