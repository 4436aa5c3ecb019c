package assessment

import "ipo-readiness/internal/models"

const (
	LabelHigh      = "High IPO Readiness"
	LabelGood      = "Good IPO Readiness"
	LabelModerate  = "Moderate IPO Readiness"
	LabelBasic     = "Basic IPO Readiness"
	LabelNeedsWork = "IPO Readiness Needs Improvement"
)

// Threshold is one band of a track's ladder: totals at or above Min get Score.
type Threshold struct {
	Min   int
	Score float64
	Label string
}

// ladder is evaluated top down; floor catches everything below the last threshold.
type ladder struct {
	thresholds []Threshold
	floor      Threshold
}

// Mainboard totals range 6..15. The 4.5 band is reachable only once a
// paid-up capital question is added back (five questions, max 19).
var mainboardLadder = ladder{
	thresholds: []Threshold{
		{Min: 17, Score: 4.5, Label: LabelHigh},
		{Min: 14, Score: 4.0, Label: LabelGood},
		{Min: 11, Score: 3.5, Label: LabelModerate},
		{Min: 8, Score: 3.0, Label: LabelBasic},
	},
	floor: Threshold{Min: 0, Score: 2.5, Label: LabelNeedsWork},
}

// SME totals range 10..27.
var smeLadder = ladder{
	thresholds: []Threshold{
		{Min: 23, Score: 4.5, Label: LabelHigh},
		{Min: 20, Score: 4.0, Label: LabelGood},
		{Min: 17, Score: 3.5, Label: LabelModerate},
		{Min: 14, Score: 3.0, Label: LabelBasic},
	},
	floor: Threshold{Min: 0, Score: 2.5, Label: LabelNeedsWork},
}

func ladderFor(track models.Track) (ladder, error) {
	switch track {
	case models.TrackMainboard:
		return mainboardLadder, nil
	case models.TrackSME:
		return smeLadder, nil
	}
	return ladder{}, ErrUnknownTrack
}

func (l ladder) band(total int) Threshold {
	for _, t := range l.thresholds {
		if total >= t.Min {
			return t
		}
	}
	return l.floor
}

// Thresholds returns the explicit bands of a track, highest first. The floor band is not included.
func Thresholds(track models.Track) ([]Threshold, error) {
	l, err := ladderFor(track)
	if err != nil {
		return nil, err
	}
	out := make([]Threshold, len(l.thresholds))
	copy(out, l.thresholds)
	return out, nil
}

// Band maps a total weight to its readiness score and label.
func Band(track models.Track, total int) (float64, string, error) {
	l, err := ladderFor(track)
	if err != nil {
		return 0, "", err
	}
	b := l.band(total)
	return b.Score, b.Label, nil
}

// Score reduces a complete answer set to a ScoreResult. Incomplete sets,
// unknown labels and weights that disagree with the catalog are rejected.
func Score(track models.Track, answers []models.Answer) (models.ScoreResult, error) {
	catalog, err := CatalogFor(track)
	if err != nil {
		return models.ScoreResult{}, err
	}
	if err := catalog.Validate(answers, true); err != nil {
		return models.ScoreResult{}, err
	}

	total := 0
	for _, a := range answers {
		total += a.Weight
	}

	score, label, err := Band(track, total)
	if err != nil {
		return models.ScoreResult{}, err
	}

	return models.ScoreResult{
		TotalWeight:    total,
		ReadinessScore: score,
		ReadinessLabel: label,
	}, nil
}
