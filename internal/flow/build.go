package flow

import (
	"fmt"
	"time"

	"ipo-readiness/internal/assessment"
	"ipo-readiness/internal/models"
	"ipo-readiness/internal/report"
)

// Built is a scored and rendered assessment.
type Built struct {
	Content  models.ReportContent
	Document report.Document
}

// Build runs the pure core: score, narrative, closing and both renderings.
// Scoring errors are returned unchanged; render errors wrap ErrReportGeneration.
func Build(track models.Track, userName string, answers []models.Answer, contact models.Contact, at time.Time) (*Built, error) {
	score, err := assessment.Score(track, answers)
	if err != nil {
		return nil, err
	}
	points, err := assessment.GeneratePoints(track, answers)
	if err != nil {
		return nil, err
	}

	content := models.ReportContent{
		UserName:   userName,
		Track:      track,
		Score:      score,
		Points:     points,
		Closing:    assessment.GenerateClosing(score.ReadinessScore),
		Contact:    contact,
		AssessedAt: at,
	}

	doc, err := report.Render(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReportGeneration, err)
	}
	return &Built{Content: content, Document: doc}, nil
}
