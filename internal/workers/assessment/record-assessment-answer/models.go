// internal/workers/assessment/record-assessment-answer/models.go
package recordassessmentanswer

import (
	"context"

	"ipo-readiness/internal/models"
)

// AnswerRecorder stores one answer against an open session.
type AnswerRecorder interface {
	RecordAnswer(ctx context.Context, sessionID string, questionID int, label string) (*models.AssessmentSession, error)
}

type Input struct {
	SessionID     string `json:"sessionId"`
	QuestionID    int    `json:"questionId"`
	SelectedLabel string `json:"selectedLabel"`
}

type Output struct {
	SessionID     string          `json:"sessionId"`
	Track         models.Track    `json:"track"`
	Answers       []models.Answer `json:"answers"`
	AnsweredCount int             `json:"answeredCount"`
	QuestionCount int             `json:"questionCount"`
	Complete      bool            `json:"complete"`
}
