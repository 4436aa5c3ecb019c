package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"ipo-readiness/internal/assessment"
	"ipo-readiness/internal/common/validation"
	"ipo-readiness/internal/flow"
	"ipo-readiness/internal/models"
	"ipo-readiness/internal/store"

	"github.com/gin-gonic/gin"
)

const (
	maxBodyBytes  = 64 << 10
	eventTimeout  = 2 * time.Second
	submitTimeout = 30 * time.Second
)

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   h.service,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func (h *handlers) catalog(c *gin.Context) {
	track, err := models.ParseTrack(c.Param("track"))
	if err != nil {
		fail(c, http.StatusNotFound, "unknown track")
		return
	}
	catalog, err := assessment.CatalogFor(track)
	if err != nil {
		fail(c, http.StatusNotFound, "unknown track")
		return
	}
	respondOK(c, gin.H{
		"track":     track,
		"questions": catalog.Questions(),
		"minTotal":  catalog.MinTotal(),
		"maxTotal":  catalog.MaxTotal(),
	})
}

type startSessionRequest struct {
	Track string `json:"track"`
}

func (h *handlers) startSession(c *gin.Context) {
	if h.sessions == nil {
		fail(c, http.StatusServiceUnavailable, "sessions are not available")
		return
	}
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	track, err := models.ParseTrack(req.Track)
	if err != nil {
		fail(c, http.StatusBadRequest, "unknown track")
		return
	}

	session, err := h.sessions.Start(c.Request.Context(), track)
	if err != nil {
		h.storeFailure(c, "start session", err)
		return
	}
	catalog, _ := assessment.CatalogFor(track)
	respondCreated(c, gin.H{
		"sessionId": session.ID,
		"track":     session.Track,
		"questions": catalog.Questions(),
	})
}

func (h *handlers) recordAnswer(c *gin.Context) {
	if h.sessions == nil {
		fail(c, http.StatusServiceUnavailable, "sessions are not available")
		return
	}
	doc, ok := h.readDocument(c)
	if !ok {
		return
	}
	doc["sessionId"] = c.Param("id")
	if !h.validate(c, validation.AnswerSchema, doc) {
		return
	}

	questionID := int(doc["questionId"].(float64))
	label := doc["selectedLabel"].(string)

	session, err := h.sessions.RecordAnswer(c.Request.Context(), c.Param("id"), questionID, label)
	switch {
	case err == nil:
		respondOK(c, sessionView(session))
	case errors.Is(err, assessment.ErrUnknownQuestion), errors.Is(err, assessment.ErrUnknownOption):
		fail(c, http.StatusBadRequest, "answer does not match the questionnaire", err.Error())
	default:
		h.storeFailure(c, "record answer", err)
	}
}

func (h *handlers) preview(c *gin.Context) {
	if h.sessions == nil {
		fail(c, http.StatusServiceUnavailable, "sessions are not available")
		return
	}
	session, err := h.sessions.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeFailure(c, "load session", err)
		return
	}

	points, err := assessment.GeneratePoints(session.Track, session.Answers)
	if err != nil {
		h.coreFailure(c, err)
		return
	}
	view := sessionView(session)
	view["narrativePoints"] = points

	if score, err := assessment.Score(session.Track, session.Answers); err == nil {
		view["score"] = score
		view["closingMessage"] = assessment.GenerateClosing(score.ReadinessScore)
	}
	respondOK(c, view)
}

type identityRequest struct {
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	UserPhone string `json:"userPhone"`
}

func (h *handlers) submitSession(c *gin.Context) {
	if h.sessions == nil {
		fail(c, http.StatusServiceUnavailable, "sessions are not available")
		return
	}
	session, err := h.sessions.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeFailure(c, "load session", err)
		return
	}

	doc, ok := h.readDocument(c)
	if !ok {
		return
	}
	doc["track"] = string(session.Track)
	doc["answers"] = session.Answers
	if !h.validate(c, validation.SubmissionSchema, doc) {
		return
	}

	var id identityRequest
	if !decodeDocument(c, doc, &id) {
		return
	}
	sub := flow.Submission{
		Track:    session.Track,
		Identity: models.Identity(id),
		Answers:  session.Answers,
	}
	if h.submit(c, sub) {
		if err := h.sessions.Discard(c.Request.Context(), session.ID); err != nil {
			h.logger.Warn("session not discarded", map[string]interface{}{
				"sessionId": session.ID,
				"error":     err.Error(),
			})
		}
	}
}

type submissionRequest struct {
	Track     string          `json:"track"`
	UserName  string          `json:"userName"`
	UserEmail string          `json:"userEmail"`
	UserPhone string          `json:"userPhone"`
	Answers   []models.Answer `json:"answers"`
}

func (h *handlers) sendReport(c *gin.Context) {
	doc, ok := h.readDocument(c)
	if !ok {
		return
	}
	if !h.validate(c, validation.SubmissionSchema, doc) {
		return
	}

	var req submissionRequest
	if !decodeDocument(c, doc, &req) {
		return
	}
	track, _ := models.ParseTrack(req.Track)
	h.submit(c, flow.Submission{
		Track: track,
		Identity: models.Identity{
			UserName:  req.UserName,
			UserEmail: req.UserEmail,
			UserPhone: req.UserPhone,
		},
		Answers: req.Answers,
	})
}

// submit answers the request and reports whether a result was produced.
func (h *handlers) submit(c *gin.Context, sub flow.Submission) bool {
	ctx, cancel := context.WithTimeout(c.Request.Context(), submitTimeout)
	defer cancel()

	outcome, err := h.submitter.Submit(ctx, sub)
	if err != nil {
		h.coreFailure(c, err)
		return false
	}

	resp := Response{Success: true, Data: outcome}
	if outcome.ReportSent {
		resp.Message = "Assessment report sent successfully"
	} else {
		resp.Message = "Your score is ready but the report email could not be sent"
	}
	c.JSON(http.StatusOK, resp)
	return true
}

type userEventRequest struct {
	EventType string                 `json:"eventType"`
	SessionID string                 `json:"sessionId"`
	Track     string                 `json:"track"`
	Details   map[string]interface{} `json:"details"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// logUserEvent always answers 202 for a valid event; indexing failures are only logged.
func (h *handlers) logUserEvent(c *gin.Context) {
	doc, ok := h.readDocument(c)
	if !ok {
		return
	}
	if !h.validate(c, validation.UserEventSchema, doc) {
		return
	}

	var req userEventRequest
	if !decodeDocument(c, doc, &req) {
		return
	}
	details := req.Details
	if details == nil {
		details = req.Payload
	}
	event := models.UserEvent{
		Type:      req.EventType,
		SessionID: req.SessionID,
		Track:     models.Track(req.Track),
		Details:   details,
		Timestamp: req.Timestamp,
	}

	if h.events != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), eventTimeout)
		defer cancel()
		if _, err := h.events.Record(ctx, event); err != nil {
			h.logger.Warn("user event not recorded", map[string]interface{}{
				"eventType": event.Type,
				"error":     err.Error(),
			})
		}
	}
	c.JSON(http.StatusAccepted, Response{Success: true})
}

// sessionEvents lists the newest events of a session, for funnel debugging.
func (h *handlers) sessionEvents(c *gin.Context) {
	if h.events == nil {
		fail(c, http.StatusServiceUnavailable, "event log unavailable")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		fail(c, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), eventTimeout)
	defer cancel()
	events, err := h.events.Recent(ctx, c.Param("id"), limit)
	if err != nil {
		h.logger.Error("event lookup failed", map[string]interface{}{"error": err.Error()})
		fail(c, http.StatusServiceUnavailable, "event log unavailable")
		return
	}
	if events == nil {
		events = []models.UserEvent{}
	}
	respondOK(c, gin.H{"sessionId": c.Param("id"), "events": events})
}

func (h *handlers) readDocument(c *gin.Context) (map[string]interface{}, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	doc := map[string]interface{}{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &doc); err != nil {
			fail(c, http.StatusBadRequest, "invalid request body")
			return nil, false
		}
	}
	return doc, true
}

func (h *handlers) validate(c *gin.Context, schema *validation.Schema, doc interface{}) bool {
	result, err := schema.Validate(doc)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	if !result.Valid {
		fail(c, http.StatusBadRequest, "validation failed", result.GetErrorMessages()...)
		return false
	}
	return true
}

func (h *handlers) coreFailure(c *gin.Context, err error) {
	h.logger.Error("report generation failed", map[string]interface{}{
		"route": c.FullPath(),
		"error": err.Error(),
	})
	fail(c, http.StatusUnprocessableEntity, MsgReportFailed)
}

func (h *handlers) storeFailure(c *gin.Context, op string, err error) {
	if errors.Is(err, store.ErrSessionNotFound) {
		fail(c, http.StatusNotFound, "assessment session not found or expired")
		return
	}
	h.logger.Error(op+" failed", map[string]interface{}{"error": err.Error()})
	fail(c, http.StatusServiceUnavailable, "session store unavailable")
}

func sessionView(s *models.AssessmentSession) gin.H {
	catalog, _ := assessment.CatalogFor(s.Track)
	answers := s.Answers
	if answers == nil {
		answers = []models.Answer{}
	}
	return gin.H{
		"sessionId": s.ID,
		"track":     s.Track,
		"answers":   answers,
		"answered":  len(s.Answers),
		"total":     catalog.Len(),
		"complete":  catalog.Validate(s.Answers, true) == nil,
	}
}

// decodeDocument copies a validated document into dst, answering 400 when the
// shapes disagree.
func decodeDocument(c *gin.Context, doc map[string]interface{}, dst interface{}) bool {
	if err := remarshal(doc, dst); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func remarshal(from interface{}, to interface{}) error {
	b, err := json.Marshal(from)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, to)
}
