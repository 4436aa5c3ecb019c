package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ipo-readiness/internal/assessment"
	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "assessment:session:"
	fieldTrack       = "track"
	fieldStartedAt   = "startedAt"
	answerFieldPref  = "q"
	maxWatchRetries  = 3
)

// SessionStore keeps in-progress answer sets in a redis hash per session:
// track and startedAt are written once, each answer lives in its own q<id> field.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewSessionStore(client *redis.Client, ttl time.Duration, log logger.Logger) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "session-store"}),
	}
}

func sessionKey(id string) string { return sessionKeyPrefix + id }

// Start opens a session for track.
func (s *SessionStore) Start(ctx context.Context, track models.Track) (*models.AssessmentSession, error) {
	if _, err := assessment.CatalogFor(track); err != nil {
		return nil, err
	}

	session := &models.AssessmentSession{
		ID:        uuid.New().String(),
		Track:     track,
		StartedAt: time.Now().UTC(),
	}
	key := sessionKey(session.ID)

	var created *redis.BoolCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.HSetNX(ctx, key, fieldTrack, string(track))
		pipe.HSetNX(ctx, key, fieldStartedAt, session.StartedAt.Format(time.RFC3339Nano))
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: start session: %w", ErrStoreFailed, err)
	}
	if !created.Val() {
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, session.ID)
	}

	s.logger.Info("session started", map[string]interface{}{
		"sessionId": session.ID,
		"track":     track,
	})
	return session, nil
}

// RecordAnswer stores the catalog weight for label, replacing any earlier answer
// to the same question, and returns the updated session.
func (s *SessionStore) RecordAnswer(ctx context.Context, sessionID string, questionID int, label string) (*models.AssessmentSession, error) {
	key := sessionKey(sessionID)

	txf := func(tx *redis.Tx) error {
		track, err := tx.HGet(ctx, key, fieldTrack).Result()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		if err != nil {
			return fmt.Errorf("%w: read session: %w", ErrStoreFailed, err)
		}

		catalog, err := assessment.CatalogFor(models.Track(track))
		if err != nil {
			return err
		}
		answer, err := catalog.Answer(questionID, label)
		if err != nil {
			return err
		}
		data, err := json.Marshal(answer)
		if err != nil {
			return fmt.Errorf("%w: marshal answer: %w", ErrStoreFailed, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, answerField(questionID), data)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < maxWatchRetries; i++ {
		err = s.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: record answer: %w", ErrStoreFailed, err)
	}

	s.logger.Debug("answer recorded", map[string]interface{}{
		"sessionId":  sessionID,
		"questionId": questionID,
	})
	return s.Load(ctx, sessionID)
}

// Load returns the session with its answers in question order.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*models.AssessmentSession, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: load session: %w", ErrStoreFailed, err)
	}
	track, ok := fields[fieldTrack]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	session := &models.AssessmentSession{ID: sessionID, Track: models.Track(track)}
	if raw, ok := fields[fieldStartedAt]; ok {
		startedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: decode %s of %s: %w", ErrStoreFailed, fieldStartedAt, sessionID, err)
		}
		session.StartedAt = startedAt
	}

	for field, raw := range fields {
		if !isAnswerField(field) {
			continue
		}
		var a models.Answer
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("%w: decode %s of %s: %w", ErrStoreFailed, field, sessionID, err)
		}
		session.Answers = append(session.Answers, a)
	}
	session.Answers = assessment.Ordered(session.Answers)
	return session, nil
}

// Discard drops the session. Discarding a missing session is not an error.
func (s *SessionStore) Discard(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: discard session: %w", ErrStoreFailed, err)
	}
	return nil
}

func answerField(questionID int) string {
	return answerFieldPref + strconv.Itoa(questionID)
}

func isAnswerField(field string) bool {
	if !strings.HasPrefix(field, answerFieldPref) {
		return false
	}
	_, err := strconv.Atoi(strings.TrimPrefix(field, answerFieldPref))
	return err == nil
}

// isDomainError reports errors that describe the request rather than the store.
func isDomainError(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrStoreFailed) ||
		errors.Is(err, assessment.ErrUnknownTrack) ||
		errors.Is(err, assessment.ErrUnknownQuestion) ||
		errors.Is(err, assessment.ErrUnknownOption)
}
