package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"hidaya/internal/models"
	"hidaya/internal/service"

	"github.com/go-playground/validator/v10"
)

type HealthChecker interface {
	HealthCheck() error
}

type Handlers struct {
	VoteService       service.VoteService
	QuestionService   service.QuestionService
	AnswerService     service.AnswerService
	ModerationService service.ModerationService
	DB                HealthChecker
	Validate          *validator.Validate
}

func NewHandlers(services *service.Service, db HealthChecker) *Handlers {
	return &Handlers{
		VoteService:       services.Vote,
		QuestionService:   services.Question,
		AnswerService:     services.Answer,
		ModerationService: services.Moderation,
		DB:                db,
		Validate:          validator.New(),
	}
}

func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.HealthCheck(); err != nil {
			WriteError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	writeSuccess(w, map[string]string{"status": "ok"}, http.StatusOK)
}

type actorKey struct{}

// WithActor stores the authenticated caller in ctx.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(models.Actor)
	return actor, ok && actor.UserID != ""
}

// requireActor writes 401 and returns false when the request carries no
// identity.
func requireActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		WriteError(w, "authentication required", http.StatusUnauthorized)
	}
	return actor, ok
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	if err := h.Validate.Struct(dst); err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
