// Package assessment holds the question catalogs, the scoring engine and the
// narrative generator for both listing tracks. Everything here is pure: no I/O,
// no configuration, no shared mutable state.
package assessment

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"ipo-readiness/internal/models"
)

var (
	ErrUnknownTrack      = errors.New("unknown assessment track")
	ErrIncompleteAnswers = errors.New("incomplete answer set")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrUnknownOption     = errors.New("unknown option label")
	ErrDuplicateAnswer   = errors.New("duplicate answer")
	ErrWeightMismatch    = errors.New("answer weight does not match catalog")
)

// Shared option labels. Rules and catalogs must agree on them byte for byte.
const (
	labelPublicLimited  = "Public Limited"
	labelPrivateLimited = "Private Limited"
	labelPartnership    = "Partnership Firm"
	labelProprietorship = "Proprietorship"
	labelDontKnow       = "Don't know"
)

var mainboardQuestions = []models.Question{
	{
		ID: 1, Key: "company_type", Prompt: "Type of Company",
		Options: []models.Option{
			{Label: labelPublicLimited, Weight: 4},
			{Label: labelPrivateLimited, Weight: 4},
			{Label: labelPartnership, Weight: 2},
			{Label: labelProprietorship, Weight: 2},
		},
	},
	{
		ID: 2, Key: "business_existence", Prompt: "Business existence period",
		Options: []models.Option{
			{Label: "0 to 2 Years", Weight: 2},
			{Label: "2 to 3 Years", Weight: 3},
			{Label: "3 to 10 Years", Weight: 4},
			{Label: "More than 10 Years", Weight: 4},
		},
	},
	{
		ID: 3, Key: "ipo_timeline", Prompt: "Estimated time to file the IPO",
		Options: []models.Option{
			{Label: "In one year", Weight: 3},
			{Label: "In two years", Weight: 2},
			{Label: "Not sure", Weight: 1},
		},
	},
	{
		ID: 4, Key: "profit_after_tax", Prompt: "Profit After Tax (PAT) in the last financial year",
		Options: []models.Option{
			{Label: "More than 10 Crore", Weight: 4},
			{Label: "5 to 10 Crore", Weight: 3},
			{Label: "0 to 5 Crore", Weight: 2},
			{Label: labelDontKnow, Weight: 1},
		},
	},
}

var smeQuestions = []models.Question{
	{
		ID: 1, Key: "company_type", Prompt: "Type of Company",
		Options: []models.Option{
			{Label: labelPublicLimited, Weight: 4},
			{Label: labelPrivateLimited, Weight: 4},
			{Label: labelPartnership, Weight: 2},
		},
	},
	{
		ID: 2, Key: "business_existence", Prompt: "Business existence period",
		Options: []models.Option{
			{Label: "Under 2 years", Weight: 2},
			{Label: "2 to 3 years", Weight: 3},
			{Label: "3 to 10 years", Weight: 4},
			{Label: "More than 10 years", Weight: 4},
		},
	},
	{
		ID: 3, Key: "debt_equity_ratio", Prompt: "Debt-to-Equity (D/E) Ratio",
		Options: []models.Option{
			{Label: "Less than or equal to 3:1", Weight: 4},
			{Label: "More than 3:1", Weight: 2},
			{Label: labelDontKnow, Weight: 2},
		},
	},
	{
		ID: 4, Key: "net_worth", Prompt: "Net Worth in preceding financial year",
		Options: []models.Option{
			{Label: "Not Yet Positive", Weight: 1},
			{Label: "Less than 1 Crore", Weight: 2},
			{Label: "1 to 5 Crore", Weight: 3},
			{Label: "More than 5 Crore", Weight: 4},
			{Label: labelDontKnow, Weight: 1},
		},
	},
	{
		ID: 5, Key: "operating_profit", Prompt: "Operating profit positive for 2 out of last 3 financial years",
		Options: []models.Option{
			{Label: "Yes", Weight: 4},
			{Label: "No", Weight: 2},
			{Label: labelDontKnow, Weight: 2},
		},
	},
	{
		ID: 6, Key: "net_tangible_assets", Prompt: "Net Tangible Assets",
		Options: []models.Option{
			{Label: "More than 3 Crore", Weight: 4},
			{Label: "Less than 3 Crore", Weight: 2},
			{Label: labelDontKnow, Weight: 1},
		},
	},
	{
		ID: 7, Key: "ipo_timeline", Prompt: "Estimated time to file the IPO",
		Options: []models.Option{
			{Label: "In one year", Weight: 3},
			{Label: "In two years", Weight: 2},
			{Label: "Not Sure", Weight: 1},
		},
	},
}

// Catalog is the read-only, ordered question set of one track.
type Catalog struct {
	track     models.Track
	questions []models.Question
}

// CatalogFor returns the catalog of track.
func CatalogFor(track models.Track) (Catalog, error) {
	switch track {
	case models.TrackMainboard:
		return Catalog{track: track, questions: mainboardQuestions}, nil
	case models.TrackSME:
		return Catalog{track: track, questions: smeQuestions}, nil
	}
	return Catalog{}, fmt.Errorf("%w: %q", ErrUnknownTrack, track)
}

func (c Catalog) Track() models.Track { return c.track }

func (c Catalog) Len() int { return len(c.questions) }

// Questions returns the questions in id order. The slice is a copy.
func (c Catalog) Questions() []models.Question {
	out := make([]models.Question, len(c.questions))
	copy(out, c.questions)
	return out
}

func (c Catalog) Question(id int) (models.Question, bool) {
	for _, q := range c.questions {
		if q.ID == id {
			return q, true
		}
	}
	return models.Question{}, false
}

// Lookup resolves the option a user picked for a question.
func (c Catalog) Lookup(questionID int, label string) (models.Option, error) {
	q, ok := c.Question(questionID)
	if !ok {
		return models.Option{}, fmt.Errorf("%w: %s question %d", ErrUnknownQuestion, c.track, questionID)
	}
	opt, ok := q.Option(label)
	if !ok {
		return models.Option{}, fmt.Errorf("%w: %s question %d %q", ErrUnknownOption, c.track, questionID, label)
	}
	return opt, nil
}

// Answer builds an Answer carrying the catalog weight for label.
func (c Catalog) Answer(questionID int, label string) (models.Answer, error) {
	opt, err := c.Lookup(questionID, label)
	if err != nil {
		return models.Answer{}, err
	}
	return models.Answer{QuestionID: questionID, SelectedLabel: opt.Label, Weight: opt.Weight}, nil
}

// MinTotal and MaxTotal bound the attainable total weight.
func (c Catalog) MinTotal() int {
	total := 0
	for _, q := range c.questions {
		lowest := q.Options[0].Weight
		for _, o := range q.Options[1:] {
			if o.Weight < lowest {
				lowest = o.Weight
			}
		}
		total += lowest
	}
	return total
}

func (c Catalog) MaxTotal() int {
	total := 0
	for _, q := range c.questions {
		highest := 0
		for _, o := range q.Options {
			if o.Weight > highest {
				highest = o.Weight
			}
		}
		total += highest
	}
	return total
}

// Validate checks every answer against the catalog. With requireComplete
// every question must be answered exactly once.
func (c Catalog) Validate(answers []models.Answer, requireComplete bool) error {
	seen := make(map[int]bool, len(answers))
	for _, a := range answers {
		if seen[a.QuestionID] {
			return fmt.Errorf("%w: %s question %d", ErrDuplicateAnswer, c.track, a.QuestionID)
		}
		seen[a.QuestionID] = true

		opt, err := c.Lookup(a.QuestionID, a.SelectedLabel)
		if err != nil {
			return err
		}
		if opt.Weight != a.Weight {
			return fmt.Errorf("%w: %s question %d %q carries %d, catalog says %d",
				ErrWeightMismatch, c.track, a.QuestionID, a.SelectedLabel, a.Weight, opt.Weight)
		}
	}

	if !requireComplete {
		return nil
	}

	var missing []string
	for _, q := range c.questions {
		if !seen[q.ID] {
			missing = append(missing, fmt.Sprintf("%d", q.ID))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s missing questions %s", ErrIncompleteAnswers, c.track, strings.Join(missing, ", "))
	}
	return nil
}

// Ordered returns answers sorted by question id without touching the input.
func Ordered(answers []models.Answer) []models.Answer {
	out := make([]models.Answer, len(answers))
	copy(out, answers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}
