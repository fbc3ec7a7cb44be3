package handlers

import (
	"net/http"

	"hidaya/internal/service"

	"github.com/gorilla/mux"
)

type QuestionRequest struct {
	Text     string   `json:"text" validate:"required"`
	Category string   `json:"category"`
	IsPublic bool     `json:"isPublic"`
	Tags     []string `json:"tags"`
	AIAnswer string   `json:"aiAnswer"`
}

type EditQuestionRequest struct {
	Text     string   `json:"text" validate:"required"`
	Category *string  `json:"category"`
	IsPublic *bool    `json:"isPublic"`
	Tags     []string `json:"tags"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *Handlers) SubmitQuestion(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req QuestionRequest
	if !h.decode(w, r, &req) {
		return
	}

	question, err := h.QuestionService.SubmitQuestion(r.Context(), service.SubmitQuestionRequest{
		AskedBy:  actor.UserID,
		Text:     req.Text,
		Category: req.Category,
		IsPublic: req.IsPublic,
		Tags:     req.Tags,
		AIAnswer: req.AIAnswer,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, question, http.StatusCreated)
}

func (h *Handlers) EditQuestion(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req EditQuestionRequest
	if !h.decode(w, r, &req) {
		return
	}

	question, err := h.QuestionService.EditQuestion(r.Context(), editRequest(mux.Vars(r)["questionId"], actor.UserID, req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, question, http.StatusOK)
}

func (h *Handlers) AdminUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req EditQuestionRequest
	if !h.decode(w, r, &req) {
		return
	}

	question, err := h.QuestionService.UpdateQuestionByAdmin(r.Context(), editRequest(mux.Vars(r)["questionId"], actor.UserID, req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, question, http.StatusOK)
}

func (h *Handlers) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.QuestionService.DeleteQuestion(r.Context(), actor, mux.Vars(r)["questionId"]); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "question deleted"}, http.StatusOK)
}

func editRequest(questionID, userID string, req EditQuestionRequest) service.EditQuestionRequest {
	return service.EditQuestionRequest{
		QuestionID: questionID,
		UserID:     userID,
		Text:       req.Text,
		Category:   req.Category,
		IsPublic:   req.IsPublic,
		Tags:       req.Tags,
	}
}
