package handlers

import (
	"net/http"

	"hidaya/internal/service"

	"github.com/gorilla/mux"
)

type AnswerRequest struct {
	Text     string `json:"text" validate:"required"`
	Language string `json:"language"`
}

type AnswerTextRequest struct {
	Text string `json:"text" validate:"required"`
}

type HideAnswerRequest struct {
	Hidden *bool `json:"hidden" validate:"required"`
}

func (h *Handlers) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if !h.decode(w, r, &req) {
		return
	}

	answer, err := h.AnswerService.SubmitAnswer(r.Context(), service.SubmitAnswerRequest{
		QuestionID: mux.Vars(r)["questionId"],
		AnsweredBy: actor.UserID,
		Text:       req.Text,
		Language:   req.Language,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, answer, http.StatusCreated)
}

func (h *Handlers) ReviewAnswer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req AnswerTextRequest
	if !h.decode(w, r, &req) {
		return
	}

	answer, err := h.AnswerService.ReviewAndUpdateAnswer(r.Context(), actor.UserID, mux.Vars(r)["answerId"], req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, answer, http.StatusOK)
}

func (h *Handlers) AdminUpdateAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerTextRequest
	if !h.decode(w, r, &req) {
		return
	}

	answer, err := h.AnswerService.UpdateAnswerByAdmin(r.Context(), mux.Vars(r)["answerId"], req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, answer, http.StatusOK)
}

func (h *Handlers) AdminHideAnswer(w http.ResponseWriter, r *http.Request) {
	var req HideAnswerRequest
	if !h.decode(w, r, &req) {
		return
	}

	answer, err := h.AnswerService.HideAnswer(r.Context(), mux.Vars(r)["answerId"], *req.Hidden)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, answer, http.StatusOK)
}

func (h *Handlers) AdminDeleteAnswer(w http.ResponseWriter, r *http.Request) {
	if err := h.AnswerService.DeleteAnswer(r.Context(), mux.Vars(r)["answerId"]); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "answer deleted"}, http.StatusOK)
}
