package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router registers every endpoint. Routes under /api/admin are wrapped with
// adminOnly.
func (h *Handlers) Router(adminOnly mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/questions", h.SubmitQuestion).Methods(http.MethodPost)
	api.HandleFunc("/questions/{questionId}", h.EditQuestion).Methods(http.MethodPut)
	api.HandleFunc("/questions/{questionId}", h.DeleteQuestion).Methods(http.MethodDelete)
	api.HandleFunc("/questions/{questionId}/answers", h.SubmitAnswer).Methods(http.MethodPost)
	api.HandleFunc("/questions/{questionId}/vote", h.GetVotedAnswer).Methods(http.MethodGet)
	api.HandleFunc("/answers/{answerId}/vote", h.CastVote).Methods(http.MethodPost)
	api.HandleFunc("/answers/{answerId}/review", h.ReviewAnswer).Methods(http.MethodPut)
	api.HandleFunc("/flags", h.SubmitFlag).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(adminOnly)
	admin.HandleFunc("/questions/{questionId}", h.AdminUpdateQuestion).Methods(http.MethodPut)
	admin.HandleFunc("/answers/{answerId}", h.AdminUpdateAnswer).Methods(http.MethodPut)
	admin.HandleFunc("/answers/{answerId}/hidden", h.AdminHideAnswer).Methods(http.MethodPut)
	admin.HandleFunc("/answers/{answerId}", h.AdminDeleteAnswer).Methods(http.MethodDelete)
	admin.HandleFunc("/flags/{flagId}/resolve", h.ResolveFlag).Methods(http.MethodPost)
	admin.HandleFunc("/flags/{flagId}/reject", h.RejectFlag).Methods(http.MethodPost)
	admin.HandleFunc("/flags/{flagId}/dismiss", h.DismissFlag).Methods(http.MethodPost)
	admin.HandleFunc("/flags/{flagId}", h.DeleteFlag).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}
