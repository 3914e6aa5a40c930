package server

import (
	"net/http"
	"slices"

	"github.com/me/jobq/pkg/model"
)

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	lq, apiErr := s.parseListQuery(r)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}

	jobs := s.sched.ListProcessedJobs()
	switch order := r.URL.Query().Get("order"); order {
	case "", "asc":
	case "desc":
		slices.Reverse(jobs)
	default:
		respondValidation(w, reqID, "invalid query parameters",
			model.FieldError{Field: "order", Message: "order must be asc or desc"})
		return
	}

	views, pg, apiErr := lq.page(jobs)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}
	respondList(w, reqID, views, pg)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	n := s.sched.ClearProcessedHistory()
	s.logger.Info("processed history cleared", "cleared", n)
	respondOK(w, reqID, clearResponse{Cleared: n})
}
