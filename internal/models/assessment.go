// internal/models/assessment.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// Track is the listing venue an assessment is taken for.
type Track string

const (
	TrackMainboard Track = "mainboard"
	TrackSME       Track = "sme"
)

// Tracks lists every supported track in display order.
var Tracks = []Track{TrackMainboard, TrackSME}

// ParseTrack accepts any casing of a track name.
func ParseTrack(s string) (Track, error) {
	t := Track(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown assessment track %q", s)
	}
	return t, nil
}

func (t Track) Valid() bool {
	return t == TrackMainboard || t == TrackSME
}

// DisplayName is the upper-case form used in subjects and report headings.
func (t Track) DisplayName() string {
	return strings.ToUpper(string(t))
}

type Option struct {
	Label  string `json:"label"`
	Weight int    `json:"weight"`
}

// Question is one multiple-choice item of a catalog. Key names the
// persistence columns (q<ID>_<Key>, q<ID>_<Key>_weight).
type Question struct {
	ID      int      `json:"id"`
	Key     string   `json:"key"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
}

// Option looks up an option by its exact label.
func (q Question) Option(label string) (Option, bool) {
	for _, o := range q.Options {
		if o.Label == label {
			return o, true
		}
	}
	return Option{}, false
}

type Answer struct {
	QuestionID    int    `json:"questionId"`
	SelectedLabel string `json:"selectedLabel"`
	Weight        int    `json:"weight"`
}

type ScoreResult struct {
	TotalWeight    int     `json:"totalWeight"`
	ReadinessScore float64 `json:"readinessScore"`
	ReadinessLabel string  `json:"readinessLabel"`
}

// FormattedScore renders the readiness score with exactly one decimal place.
func (s ScoreResult) FormattedScore() string {
	return fmt.Sprintf("%.1f", s.ReadinessScore)
}

// CriterionTag names the regulatory or financial criterion a narrative point speaks to.
type CriterionTag string

const (
	CriterionExistence        CriterionTag = "existence"
	CriterionCapital          CriterionTag = "capital"
	CriterionOperatingHistory CriterionTag = "operating_history"
	CriterionLeverage         CriterionTag = "leverage"
	CriterionNetWorth         CriterionTag = "net_worth"
	CriterionProfitability    CriterionTag = "profitability"
	CriterionTangibleAssets   CriterionTag = "tangible_assets"
	CriterionFilingTimeline   CriterionTag = "filing_timeline"
)

// Verdict is how an answer stands against its criterion.
type Verdict string

const (
	VerdictSatisfied Verdict = "satisfied"
	VerdictPartial   Verdict = "partial"
	VerdictUnmet     Verdict = "unmet"
	VerdictUncertain Verdict = "uncertain"
)

type NarrativePoint struct {
	QuestionID int          `json:"questionId"`
	Tag        CriterionTag `json:"tag"`
	Verdict    Verdict      `json:"verdict"`
	Text       string       `json:"text"`
}

// Identity is who the report is addressed to.
type Identity struct {
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	UserPhone string `json:"userPhone,omitempty"`
}

// Contact is the next-steps block printed at the end of a report.
type Contact struct {
	Firm       string `json:"firm,omitempty"`
	BookingURL string `json:"bookingUrl,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Website    string `json:"website,omitempty"`
}

// ReportContent is everything the renderer needs. It is never mutated by rendering.
type ReportContent struct {
	UserName   string           `json:"userName"`
	Track      Track            `json:"track"`
	Score      ScoreResult      `json:"score"`
	Points     []NarrativePoint `json:"narrativePoints"`
	Closing    string           `json:"closingMessage"`
	Contact    Contact          `json:"contact"`
	AssessedAt time.Time        `json:"assessedAt"`
}
