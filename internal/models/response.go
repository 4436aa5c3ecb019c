// internal/models/response.go
package models

import "time"

// AssessmentResponse is the flat record kept for every submitted assessment.
type AssessmentResponse struct {
	ID             string           `json:"id" db:"id"`
	Track          Track            `json:"assessmentType" db:"assessment_type"`
	UserName       string           `json:"userName" db:"user_name"`
	UserEmail      string           `json:"userEmail" db:"user_email"`
	UserPhone      string           `json:"userPhone,omitempty" db:"user_phone"`
	TotalScore     int              `json:"totalScore" db:"total_score"`
	ReadinessScore float64          `json:"readinessScore" db:"readiness_score"`
	ReadinessLabel string           `json:"readinessLabel" db:"readiness_label"`
	Answers        []ResponseAnswer `json:"answers"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
}

// ResponseAnswer is one question's slot in the flat record.
type ResponseAnswer struct {
	QuestionID    int    `json:"questionId"`
	Column        string `json:"column"`
	SelectedLabel string `json:"selectedLabel"`
	Weight        int    `json:"weight"`
}
