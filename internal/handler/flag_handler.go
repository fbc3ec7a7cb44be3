package handlers

import (
	"context"
	"net/http"

	"hidaya/internal/models"
	"hidaya/internal/service"

	"github.com/gorilla/mux"
)

type FlagRequest struct {
	ItemType string `json:"itemType" validate:"required,oneof=question answer message"`
	ItemID   string `json:"itemId" validate:"required"`
	Reason   string `json:"reason" validate:"required"`
}

func (h *Handlers) SubmitFlag(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req FlagRequest
	if !h.decode(w, r, &req) {
		return
	}

	flag, err := h.ModerationService.SubmitFlag(r.Context(), service.SubmitFlagRequest{
		ItemType:   models.ItemType(req.ItemType),
		ItemID:     req.ItemID,
		ReportedBy: actor.UserID,
		Reason:     req.Reason,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, flag, http.StatusCreated)
}

func (h *Handlers) ResolveFlag(w http.ResponseWriter, r *http.Request) {
	h.transitionFlag(w, r, h.ModerationService.ResolveFlag)
}

func (h *Handlers) RejectFlag(w http.ResponseWriter, r *http.Request) {
	h.transitionFlag(w, r, h.ModerationService.RejectFlag)
}

func (h *Handlers) DismissFlag(w http.ResponseWriter, r *http.Request) {
	h.transitionFlag(w, r, h.ModerationService.DismissFlag)
}

func (h *Handlers) transitionFlag(w http.ResponseWriter, r *http.Request,
	transition func(ctx context.Context, flagID string) (*models.Flag, error)) {
	flag, err := transition(r.Context(), mux.Vars(r)["flagId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, flag, http.StatusOK)
}

func (h *Handlers) DeleteFlag(w http.ResponseWriter, r *http.Request) {
	if err := h.ModerationService.DeleteFlagByAdmin(r.Context(), mux.Vars(r)["flagId"]); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "flag deleted"}, http.StatusOK)
}
