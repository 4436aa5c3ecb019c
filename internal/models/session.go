// internal/models/session.go
package models

import "time"

// AssessmentSession holds the answers of a questionnaire still in progress.
type AssessmentSession struct {
	ID        string    `json:"id"`
	Track     Track     `json:"track"`
	Answers   []Answer  `json:"answers"`
	StartedAt time.Time `json:"startedAt"`
}

// Answered reports whether the session already holds an answer for questionID.
func (s *AssessmentSession) Answered(questionID int) bool {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return true
		}
	}
	return false
}
