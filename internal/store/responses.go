package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ipo-readiness/internal/assessment"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	responsesTable   = "assessment_responses"
	defaultListLimit = 100
	maxListLimit     = 1000
)

var baseColumns = []string{
	"id", "assessment_type", "user_name", "user_email", "user_phone",
	"total_score", "readiness_score", "readiness_label", "answers", "created_at",
}

// ResponseRepository writes and reads the flat assessment records.
type ResponseRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewResponseRepository(db *sql.DB, log logger.Logger) *ResponseRepository {
	return &ResponseRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"table": responsesTable}),
	}
}

// NewRecord flattens a scored assessment. Every catalog question gets its
// q<id>_<key> slot; answers must already be complete.
func NewRecord(track models.Track, identity models.Identity, score models.ScoreResult, answers []models.Answer) (models.AssessmentResponse, error) {
	catalog, err := assessment.CatalogFor(track)
	if err != nil {
		return models.AssessmentResponse{}, err
	}
	if err := catalog.Validate(answers, true); err != nil {
		return models.AssessmentResponse{}, err
	}

	byQuestion := make(map[int]models.Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	slots := make([]models.ResponseAnswer, 0, catalog.Len())
	for _, q := range catalog.Questions() {
		a := byQuestion[q.ID]
		slots = append(slots, models.ResponseAnswer{
			QuestionID:    q.ID,
			Column:        fmt.Sprintf("q%d_%s", q.ID, q.Key),
			SelectedLabel: a.SelectedLabel,
			Weight:        a.Weight,
		})
	}

	return models.AssessmentResponse{
		Track:          track,
		UserName:       identity.UserName,
		UserEmail:      identity.UserEmail,
		UserPhone:      identity.UserPhone,
		TotalScore:     score.TotalWeight,
		ReadinessScore: score.ReadinessScore,
		ReadinessLabel: score.ReadinessLabel,
		Answers:        slots,
	}, nil
}

// Save inserts rec and returns its id. ID and CreatedAt are filled in when empty.
func (r *ResponseRepository) Save(ctx context.Context, rec *models.AssessmentResponse) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	answersJSON, err := json.Marshal(rec.Answers)
	if err != nil {
		return "", fmt.Errorf("%w: marshal answers: %w", ErrStoreFailed, err)
	}

	columns := append([]string{}, baseColumns...)
	args := []interface{}{
		rec.ID,
		string(rec.Track),
		rec.UserName,
		rec.UserEmail,
		sql.NullString{String: rec.UserPhone, Valid: rec.UserPhone != ""},
		rec.TotalScore,
		rec.ReadinessScore,
		rec.ReadinessLabel,
		answersJSON,
		rec.CreatedAt,
	}
	for _, a := range rec.Answers {
		columns = append(columns, a.Column, a.Column+"_weight")
		args = append(args, a.SelectedLabel, a.Weight)
	}

	if _, err := r.db.ExecContext(ctx, insertStatement(columns), args...); err != nil {
		return "", fmt.Errorf("%w: insert response: %w", ErrStoreFailed, err)
	}

	r.logger.Info("assessment response saved", map[string]interface{}{
		"responseId":     rec.ID,
		"track":          rec.Track,
		"readinessScore": rec.ReadinessScore,
	})
	return rec.ID, nil
}

func insertStatement(columns []string) string {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		responsesTable, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
}

// List returns the newest responses first. An empty track lists both tracks.
func (r *ResponseRepository) List(ctx context.Context, track models.Track, limit int) ([]models.AssessmentResponse, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `SELECT id, assessment_type, user_name, user_email, COALESCE(user_phone, ''),
		total_score, readiness_score, readiness_label, answers, created_at
		FROM assessment_responses`
	args := []interface{}{}
	if track != "" {
		query += " WHERE assessment_type = $1"
		args = append(args, string(track))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list responses: %w", ErrStoreFailed, err)
	}
	defer rows.Close()

	var out []models.AssessmentResponse
	for rows.Next() {
		var (
			rec         models.AssessmentResponse
			trackStr    string
			answersJSON []byte
		)
		if err := rows.Scan(&rec.ID, &trackStr, &rec.UserName, &rec.UserEmail, &rec.UserPhone,
			&rec.TotalScore, &rec.ReadinessScore, &rec.ReadinessLabel, &answersJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan response: %w", ErrStoreFailed, err)
		}
		rec.Track = models.Track(trackStr)
		if len(answersJSON) > 0 {
			if err := json.Unmarshal(answersJSON, &rec.Answers); err != nil {
				return nil, fmt.Errorf("%w: decode answers of %s: %w", ErrStoreFailed, rec.ID, err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate responses: %w", ErrStoreFailed, err)
	}
	return out, nil
}
