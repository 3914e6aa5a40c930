package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/me/jobq/internal/scheduler"
	"github.com/me/jobq/internal/validate"
	"github.com/me/jobq/pkg/model"
)

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	lq, apiErr := s.parseListQuery(r)
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}
	views, pg, apiErr := lq.page(s.sched.ListPendingJobs())
	if apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}
	respondList(w, reqID, views, pg)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req struct {
		Name     string `json:"name"`
		Priority *int   `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondValidation(w, reqID, "Invalid JSON body: "+err.Error())
		return
	}
	if req.Priority == nil {
		respondValidation(w, reqID, "missing required field",
			model.FieldError{Field: "priority", Message: "priority is required"})
		return
	}

	name, err := s.rules.Job(req.Name, *req.Priority)
	if err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			respondValidation(w, reqID, "Invalid job", verr.Fields...)
			return
		}
		respondValidation(w, reqID, err.Error())
		return
	}

	job, err := s.sched.AddJobIf(name, *req.Priority, s.config.MaxPending)
	if errors.Is(err, scheduler.ErrQueueFull) {
		s.logger.Warn("job rejected", "name", name, "reason", "queue full", "max_pending", s.config.MaxPending)
		respondError(w, reqID, http.StatusConflict, &model.APIError{
			Code:    model.ErrQueueFull,
			Message: fmt.Sprintf("pending queue is at capacity (%d)", s.config.MaxPending),
		})
		return
	}
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: err.Error()})
		return
	}

	s.logger.Info("job added", "job_id", job.ID, "name", job.Name, "priority", job.Priority)
	respondCreated(w, reqID, model.NewJobView(job))
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	raw := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondValidation(w, reqID, "invalid job id",
			model.FieldError{Field: "id", Message: "id must be an integer"})
		return
	}
	job, ok := s.sched.Lookup(id)
	if !ok {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("job", raw))
		return
	}
	respondOK(w, reqID, model.NewJobView(job))
}

// handlePeekJob returns data: null when nothing is pending.
func (s *Server) handlePeekJob(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	job, ok := s.sched.PeekNextJob()
	if !ok {
		respondOK(w, reqID, nil)
		return
	}
	respondOK(w, reqID, model.NewJobView(job))
}

// handleProcessJob returns data: null when nothing is pending. An empty
// queue is not an error.
func (s *Server) handleProcessJob(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	job, ok := s.sched.ProcessNextJob()
	if !ok {
		s.logger.Info("no jobs to process")
		respondOK(w, reqID, nil)
		return
	}
	s.logger.Info("job processed", "job_id", job.ID, "name", job.Name, "priority", job.Priority)
	respondOK(w, reqID, model.NewJobView(job))
}

type clearResponse struct {
	Cleared int `json:"cleared"`
}

// handleClearJobs requires ?confirm=true; the pending queue cannot be
// recovered once cleared.
func (s *Server) handleClearJobs(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if r.URL.Query().Get("confirm") != "true" {
		respondValidation(w, reqID, "confirmation required",
			model.FieldError{Field: "confirm", Message: "confirm=true is required to clear the pending queue"})
		return
	}
	n := s.sched.ClearPendingQueue()
	s.logger.Info("pending queue cleared", "cleared", n)
	respondOK(w, reqID, clearResponse{Cleared: n})
}
