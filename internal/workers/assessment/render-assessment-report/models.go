// internal/workers/assessment/render-assessment-report/models.go
package renderassessmentreport

import "ipo-readiness/internal/models"

type Input struct {
	Track    string          `json:"track"`
	UserName string          `json:"userName"`
	Answers  []models.Answer `json:"answers"`
}

type Output struct {
	Subject         string                  `json:"reportSubject"`
	HTML            string                  `json:"reportHtml"`
	Text            string                  `json:"reportText"`
	TotalScore      int                     `json:"totalScore"`
	ReadinessScore  float64                 `json:"readinessScore"`
	ReadinessLabel  string                  `json:"readinessLabel"`
	NarrativePoints []models.NarrativePoint `json:"narrativePoints"`
	ClosingMessage  string                  `json:"closingMessage"`
}
