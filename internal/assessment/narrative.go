package assessment

import (
	"fmt"

	"ipo-readiness/internal/models"
)

type sentence struct {
	verdict models.Verdict
	text    string
}

// narrativeRule explains one question against one criterion. Every option of
// the question has exactly one sentence.
type narrativeRule struct {
	questionID int
	tag        models.CriterionTag
	byLabel    map[string]sentence
}

func satisfied(text string) sentence { return sentence{verdict: models.VerdictSatisfied, text: text} }
func partial(text string) sentence   { return sentence{verdict: models.VerdictPartial, text: text} }
func unmet(text string) sentence     { return sentence{verdict: models.VerdictUnmet, text: text} }
func uncertain(text string) sentence { return sentence{verdict: models.VerdictUncertain, text: text} }

const (
	mainboardExistenceMet = "Your company fulfills the regulatory criteria of existence for more than 3 years."
	smeHistoryMet         = "Your company meets the SME IPO minimum operational history requirement of 3 years."
	smeNetWorthMet        = "Your net worth satisfies the minimum requirement for SME IPO listing eligibility."
)

// Rules are kept in question id order.
var mainboardRules = []narrativeRule{
	{
		questionID: 1, tag: models.CriterionCapital,
		byLabel: map[string]sentence{
			labelPublicLimited:  satisfied("Your company's structure as a Public Limited company meets the capital structure requirement for mainboard IPO listing."),
			labelPrivateLimited: partial("As a Private Limited company, your capital structure can qualify for mainboard IPO listing once converted to a Public Limited company."),
			labelPartnership:    unmet("A Partnership Firm must be converted into a limited company to build the capital structure required for mainboard IPO listing."),
			labelProprietorship: unmet("A Proprietorship must be incorporated as a limited company to build the capital structure required for mainboard IPO listing."),
		},
	},
	{
		questionID: 2, tag: models.CriterionExistence,
		byLabel: map[string]sentence{
			"0 to 2 Years":       unmet("As per regulatory guidelines a company should be in existence for 3 or more years to list on the mainboard."),
			"2 to 3 Years":       partial("Your company is close to the 3-year existence requirement for mainboard IPO listing. Plan your filing once the track record is complete."),
			"3 to 10 Years":      satisfied(mainboardExistenceMet),
			"More than 10 Years": satisfied(mainboardExistenceMet),
		},
	},
	{
		questionID: 3, tag: models.CriterionFilingTimeline,
		byLabel: map[string]sentence{
			"In one year":  satisfied("Your target of filing within one year calls for immediate preparation of audited financials, governance and documentation."),
			"In two years": satisfied("A two-year filing horizon gives adequate time to strengthen financials and governance ahead of the IPO."),
			"Not sure":     uncertain("Your IPO filing timeline is not yet fixed. Book a session with our IPO expert team to plan a realistic timeline."),
		},
	},
	{
		questionID: 4, tag: models.CriterionProfitability,
		byLabel: map[string]sentence{
			"More than 10 Crore": satisfied("Your company's profitability meets the high standards required for mainboard IPO listing."),
			"5 to 10 Crore":      partial("Your company's profitability is healthy. Growing profit after tax further will strengthen your mainboard IPO positioning."),
			"0 to 5 Crore":       unmet("Improving profit after tax will help meet the profitability expectations for mainboard IPO listing."),
			labelDontKnow:        uncertain("Profit after tax is an important metric for mainboard IPO eligibility. Book a call with our IPO expert team to assess your profitability."),
		},
	},
}

var smeRules = []narrativeRule{
	{
		questionID: 2, tag: models.CriterionOperatingHistory,
		byLabel: map[string]sentence{
			"Under 2 years":      unmet("Building a consistent operational history of at least 3 years is essential to qualify for SME IPO listing."),
			"2 to 3 years":       partial("Your company is close to the 3-year operational history required for SME IPO listing."),
			"3 to 10 years":      satisfied(smeHistoryMet),
			"More than 10 years": satisfied(smeHistoryMet),
		},
	},
	{
		questionID: 3, tag: models.CriterionLeverage,
		byLabel: map[string]sentence{
			"Less than or equal to 3:1": satisfied("Your company's leverage is within the optimal range, meeting regulatory financial strength standards."),
			"More than 3:1":             unmet("Optimizing your debt-to-equity ratio will enhance financial stability and improve SME IPO eligibility."),
			labelDontKnow:               uncertain("Debt to Equity Ratio is an important metric for SME IPO eligibility. Book a call with our IPO expert team to find your Debt to Equity Ratio."),
		},
	},
	{
		questionID: 4, tag: models.CriterionNetWorth,
		byLabel: map[string]sentence{
			"Not Yet Positive":  unmet("A positive net worth is required for SME IPO listing. Focus on building reserves before filing."),
			"Less than 1 Crore": unmet("Enhancing your net worth to meet or exceed ₹1 Crore will improve your SME IPO readiness."),
			"1 to 5 Crore":      satisfied(smeNetWorthMet),
			"More than 5 Crore": satisfied(smeNetWorthMet),
			labelDontKnow:       uncertain("Net worth is an important metric for SME IPO eligibility. Book a call with our IPO expert team to find your company's net worth."),
		},
	},
	{
		questionID: 5, tag: models.CriterionProfitability,
		byLabel: map[string]sentence{
			"Yes":         satisfied("Your profitability track record supports the operational viability required for SME IPO."),
			"No":          unmet("Strengthening profitability for consecutive years is important to align with SME IPO standards."),
			labelDontKnow: uncertain("Operating profit is an important metric for SME IPO eligibility. Book a call with our IPO expert team to review your operating profit track record."),
		},
	},
	{
		questionID: 6, tag: models.CriterionTangibleAssets,
		byLabel: map[string]sentence{
			"More than 3 Crore": satisfied("Your net tangible assets meet SME IPO listing requirements."),
			"Less than 3 Crore": unmet("Increasing net tangible assets will help meet the SME IPO eligibility threshold."),
			labelDontKnow:       uncertain("Net tangible assets is an important metric for SME IPO eligibility. Book a call with our IPO expert team to find your company's net tangible assets."),
		},
	},
}

func rulesFor(track models.Track) ([]narrativeRule, error) {
	switch track {
	case models.TrackMainboard:
		return mainboardRules, nil
	case models.TrackSME:
		return smeRules, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTrack, track)
}

// GeneratePoints derives the narrative for an answer set, one point per ruled
// question, in question id order. Questions without an answer are skipped so
// in-progress sessions can be previewed. Answers that do not match the catalog fail.
func GeneratePoints(track models.Track, answers []models.Answer) ([]models.NarrativePoint, error) {
	catalog, err := CatalogFor(track)
	if err != nil {
		return nil, err
	}
	if err := catalog.Validate(answers, false); err != nil {
		return nil, err
	}
	rules, err := rulesFor(track)
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[int]models.Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	points := make([]models.NarrativePoint, 0, len(rules))
	for _, rule := range rules {
		answer, ok := byQuestion[rule.questionID]
		if !ok {
			continue
		}
		s, ok := rule.byLabel[answer.SelectedLabel]
		if !ok {
			return nil, fmt.Errorf("%w: no narrative for %s question %d %q",
				ErrUnknownOption, track, rule.questionID, answer.SelectedLabel)
		}
		points = append(points, models.NarrativePoint{
			QuestionID: rule.questionID,
			Tag:        rule.tag,
			Verdict:    s.verdict,
			Text:       s.text,
		})
	}
	return points, nil
}

var closings = []struct {
	min  float64
	text string
}{
	{4.5, "Based on the data provided in the assessment, your company shows high IPO readiness. Book a consultation with our IPO expert team to discuss next steps and a detailed evaluation."},
	{4.0, "Based on the data provided in the assessment, your company has good IPO readiness. To understand how to proceed with your IPO, please book a readiness call with our IPO expert team."},
	{3.5, "Based on the data provided in the assessment, your company shows moderate IPO readiness. A few areas need strengthening before listing, and our IPO expert team can help you prioritise them."},
	{3.0, "Based on the data provided in the assessment, your company has basic IPO readiness. Significant preparation is still required before filing. A readiness call with our IPO expert team can help you build a roadmap."},
}

const closingNeedsWork = "Based on the data provided in the assessment, your company needs to improve several areas before pursuing an IPO. Book a consultation with our IPO expert team to create a preparation plan."

// GenerateClosing picks the closing paragraph for a readiness score band.
func GenerateClosing(readinessScore float64) string {
	for _, c := range closings {
		if readinessScore >= c.min {
			return c.text
		}
	}
	return closingNeedsWork
}
