package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

type VoteRequest struct {
	QuestionID string `json:"questionId" validate:"required"`
}

type VotedAnswerResponse struct {
	QuestionID string  `json:"questionId"`
	AnswerID   *string `json:"answerId"`
}

// CastVote adds, moves or removes the caller's vote depending on their current
// vote for the question.
func (h *Handlers) CastVote(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req VoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	answer, err := h.VoteService.CastVote(r.Context(), req.QuestionID, mux.Vars(r)["answerId"], actor.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, answer, http.StatusOK)
}

func (h *Handlers) GetVotedAnswer(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	questionID := mux.Vars(r)["questionId"]
	answerID, err := h.VoteService.GetVotedAnswer(r.Context(), questionID, actor.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, VotedAnswerResponse{QuestionID: questionID, AnswerID: answerID}, http.StatusOK)
}
