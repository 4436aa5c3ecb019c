package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipo-readiness/internal/models"
)

func TestGeneratePoints_MainboardScenario(t *testing.T) {
	answers := answersFor(t, models.TrackMainboard, map[int]string{
		1: "Public Limited",
		2: "More than 10 Years",
		3: "In one year",
		4: "More than 10 Crore",
	})

	points, err := GeneratePoints(models.TrackMainboard, answers)
	require.NoError(t, err)
	require.Len(t, points, 4)

	byTag := map[models.CriterionTag]models.NarrativePoint{}
	for _, p := range points {
		byTag[p.Tag] = p
	}
	assert.Equal(t, "Your company fulfills the regulatory criteria of existence for more than 3 years.", byTag[models.CriterionExistence].Text)
	assert.Equal(t, models.VerdictSatisfied, byTag[models.CriterionExistence].Verdict)
	assert.Contains(t, byTag[models.CriterionProfitability].Text, "profitability meets the high standards")
}

func TestGeneratePoints_SMEDontKnowInvitesConsultation(t *testing.T) {
	answers := answersFor(t, models.TrackSME, map[int]string{
		1: "Private Limited",
		2: "3 to 10 years",
		3: "Don't know",
		4: "1 to 5 Crore",
		5: "Yes",
		6: "More than 3 Crore",
		7: "In one year",
	})

	points, err := GeneratePoints(models.TrackSME, answers)
	require.NoError(t, err)

	var leverage []models.NarrativePoint
	for _, p := range points {
		if p.Tag == models.CriterionLeverage {
			leverage = append(leverage, p)
		}
	}
	require.Len(t, leverage, 1)
	assert.Equal(t, models.VerdictUncertain, leverage[0].Verdict)
	assert.Contains(t, leverage[0].Text, "Debt to Equity Ratio")
	assert.Contains(t, leverage[0].Text, "Book a call")
	assert.NotContains(t, leverage[0].Text, "within the optimal range")
	assert.NotContains(t, leverage[0].Text, "Optimizing")
}

func TestGeneratePoints_QuestionOrder(t *testing.T) {
	answers := answersFor(t, models.TrackSME, map[int]string{
		6: "Less than 3 Crore",
		2: "Under 2 years",
		4: "Not Yet Positive",
		3: "More than 3:1",
		5: "No",
	})
	// shuffle the input order
	answers[0], answers[4] = answers[4], answers[0]
	answers[1], answers[3] = answers[3], answers[1]

	points, err := GeneratePoints(models.TrackSME, answers)
	require.NoError(t, err)

	ids := make([]int, 0, len(points))
	for _, p := range points {
		ids = append(ids, p.QuestionID)
		assert.Equal(t, models.VerdictUnmet, p.Verdict)
	}
	assert.Equal(t, []int{2, 3, 4, 5, 6}, ids)
}

func TestGeneratePoints_SkipsMissingAnswers(t *testing.T) {
	answers := answersFor(t, models.TrackMainboard, map[int]string{2: "2 to 3 Years"})

	points, err := GeneratePoints(models.TrackMainboard, answers)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, models.CriterionExistence, points[0].Tag)
	assert.Equal(t, models.VerdictPartial, points[0].Verdict)

	empty, err := GeneratePoints(models.TrackSME, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGeneratePoints_QuestionsWithoutRules(t *testing.T) {
	answers := answersFor(t, models.TrackSME, map[int]string{1: "Public Limited", 7: "Not Sure"})

	points, err := GeneratePoints(models.TrackSME, answers)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestGeneratePoints_UnknownLabelFails(t *testing.T) {
	_, err := GeneratePoints(models.TrackSME, []models.Answer{{QuestionID: 3, SelectedLabel: "Zero", Weight: 4}})
	assert.ErrorIs(t, err, ErrUnknownOption)

	_, err = GeneratePoints("bse", nil)
	assert.ErrorIs(t, err, ErrUnknownTrack)
}

func TestGeneratePoints_Deterministic(t *testing.T) {
	for _, track := range models.Tracks {
		catalog, err := CatalogFor(track)
		require.NoError(t, err)

		for _, set := range allCombinations(catalog) {
			first, err := GeneratePoints(track, set)
			require.NoError(t, err)
			second, err := GeneratePoints(track, set)
			require.NoError(t, err)
			require.Equal(t, first, second)
		}
	}
}

func TestRules_CoverEveryOption(t *testing.T) {
	for _, track := range models.Tracks {
		catalog, err := CatalogFor(track)
		require.NoError(t, err)
		rules, err := rulesFor(track)
		require.NoError(t, err)

		prev := 0
		for _, rule := range rules {
			assert.Greater(t, rule.questionID, prev, "%s rules out of order", track)
			prev = rule.questionID

			q, ok := catalog.Question(rule.questionID)
			require.True(t, ok, "%s rule for missing question %d", track, rule.questionID)
			assert.Len(t, rule.byLabel, len(q.Options))
			for _, o := range q.Options {
				s, ok := rule.byLabel[o.Label]
				assert.True(t, ok, "%s question %d option %q has no sentence", track, q.ID, o.Label)
				if o.Label == labelDontKnow {
					assert.Equal(t, models.VerdictUncertain, s.verdict)
					assert.Contains(t, s.text, "IPO expert team")
				}
			}
		}
	}
}

func TestGenerateClosing(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{5.0, "high IPO readiness"},
		{4.5, "high IPO readiness"},
		{4.0, "good IPO readiness"},
		{3.5, "moderate IPO readiness"},
		{3.0, "basic IPO readiness"},
		{2.5, "needs to improve"},
		{0, "needs to improve"},
	}

	seen := map[string]bool{}
	for _, tt := range tests {
		got := GenerateClosing(tt.score)
		assert.Contains(t, got, tt.want, "score %.1f", tt.score)
		seen[got] = true
	}
	assert.Len(t, seen, 5)
}
