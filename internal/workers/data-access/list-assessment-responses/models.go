// internal/workers/data-access/list-assessment-responses/models.go
package listassessmentresponses

import (
	"context"

	"ipo-readiness/internal/models"
)

type ResponseLister interface {
	List(ctx context.Context, track models.Track, limit int) ([]models.AssessmentResponse, error)
}

// Input filters the listing. An empty track lists both tracks.
type Input struct {
	Track string `json:"track,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type Output struct {
	Responses []models.AssessmentResponse `json:"responses"`
	Count     int                         `json:"count"`
	ByLabel   map[string]int              `json:"byLabel"`
}
