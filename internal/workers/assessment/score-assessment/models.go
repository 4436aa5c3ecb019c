// internal/workers/assessment/score-assessment/models.go
package scoreassessment

import "ipo-readiness/internal/models"

type Input struct {
	Track   string          `json:"track"`
	Answers []models.Answer `json:"answers"`
}

type Output struct {
	TotalScore      int                     `json:"totalScore"`
	ReadinessScore  float64                 `json:"readinessScore"`
	ReadinessLabel  string                  `json:"readinessLabel"`
	NarrativePoints []models.NarrativePoint `json:"narrativePoints"`
	ClosingMessage  string                  `json:"closingMessage"`
}
