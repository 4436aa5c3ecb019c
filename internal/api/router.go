// Package api is the public HTTP surface of the questionnaire.
package api

import (
	"context"
	"time"

	"ipo-readiness/internal/common/logger"
	"ipo-readiness/internal/common/observability"
	"ipo-readiness/internal/flow"
	"ipo-readiness/internal/models"

	"github.com/gin-gonic/gin"
)

type SessionService interface {
	Start(ctx context.Context, track models.Track) (*models.AssessmentSession, error)
	RecordAnswer(ctx context.Context, sessionID string, questionID int, label string) (*models.AssessmentSession, error)
	Load(ctx context.Context, sessionID string) (*models.AssessmentSession, error)
	Discard(ctx context.Context, sessionID string) error
}

type Submitter interface {
	Submit(ctx context.Context, sub flow.Submission) (*flow.Outcome, error)
}

type EventRecorder interface {
	Record(ctx context.Context, event models.UserEvent) (string, error)
	Recent(ctx context.Context, sessionID string, n int) ([]models.UserEvent, error)
}

type Deps struct {
	Sessions       SessionService
	Submitter      Submitter
	Events         EventRecorder
	Limiter        *RateLimiter
	AllowedOrigins []string
	ServiceName    string
	Logger         logger.Logger
	Obs            *observability.Observability
	Now            func() time.Time
}

type handlers struct {
	sessions  SessionService
	submitter Submitter
	events    EventRecorder
	service   string
	logger    logger.Logger
	now       func() time.Time
}

// NewRouter wires the routes. Sessions and Events may be nil, in which case
// their routes answer 503.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	if deps.Obs == nil {
		deps.Obs = observability.NewNoop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	log := deps.Logger.WithFields(map[string]interface{}{"component": "api"})

	h := &handlers{
		sessions:  deps.Sessions,
		submitter: deps.Submitter,
		events:    deps.Events,
		service:   deps.ServiceName,
		logger:    log,
		now:       deps.Now,
	}

	r := gin.New()
	r.Use(gin.Recovery(), Instrument(deps.Obs, log), CORS(deps.AllowedOrigins))

	r.GET("/api/health", h.health)

	limited := r.Group("/api")
	if deps.Limiter != nil {
		limited.Use(deps.Limiter.Middleware())
	}
	limited.GET("/catalog/:track", h.catalog)
	limited.POST("/assessments/sessions", h.startSession)
	limited.PUT("/assessments/sessions/:id/answers", h.recordAnswer)
	limited.GET("/assessments/sessions/:id/preview", h.preview)
	limited.POST("/assessments/sessions/:id/submit", h.submitSession)
	limited.GET("/assessments/sessions/:id/events", h.sessionEvents)
	limited.POST("/send-assessment-report", h.sendReport)
	limited.POST("/log-user-event", h.logUserEvent)

	return r
}
