package report

import "ipo-readiness/internal/models"

// allowedTags is the per-track allowlist applied before rendering. It is the
// authoritative gate on what reaches a report; narrative rules decide what is
// said, this decides what is shown.
var allowedTags = map[models.Track]map[models.CriterionTag]bool{
	models.TrackMainboard: {
		models.CriterionExistence: true,
		models.CriterionCapital:   true,
	},
	models.TrackSME: {
		models.CriterionOperatingHistory: true,
		models.CriterionLeverage:         true,
		models.CriterionNetWorth:         true,
		models.CriterionProfitability:    true,
		models.CriterionTangibleAssets:   true,
	},
}

// Filter keeps the points whose tag belongs to track, preserving order. The
// input slice is left untouched. Unknown tracks keep nothing.
func Filter(track models.Track, points []models.NarrativePoint) []models.NarrativePoint {
	allowed := allowedTags[track]
	out := make([]models.NarrativePoint, 0, len(points))
	for _, p := range points {
		if allowed[p.Tag] {
			out = append(out, p)
		}
	}
	return out
}
