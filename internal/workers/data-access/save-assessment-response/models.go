// internal/workers/data-access/save-assessment-response/models.go
package saveassessmentresponse

import (
	"context"

	"ipo-readiness/internal/models"
)

type ResponseSaver interface {
	Save(ctx context.Context, rec *models.AssessmentResponse) (string, error)
}

type Input struct {
	Track     string          `json:"track"`
	UserName  string          `json:"userName"`
	UserEmail string          `json:"userEmail"`
	UserPhone string          `json:"userPhone,omitempty"`
	Answers   []models.Answer `json:"answers"`
}

type Output struct {
	ResponseID     string  `json:"responseId"`
	TotalScore     int     `json:"totalScore"`
	ReadinessScore float64 `json:"readinessScore"`
	ReadinessLabel string  `json:"readinessLabel"`
}
