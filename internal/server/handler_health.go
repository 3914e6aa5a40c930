package server

import (
	"net/http"
	"runtime"
	"time"
)

type healthResponse struct {
	Status    string         `json:"status"`
	Version   string         `json:"version"`
	GoVersion string         `json:"go_version"`
	Uptime    string         `json:"uptime"`
	Queue     queueHealth    `json:"queue"`
	Limits    map[string]int `json:"limits"`
}

type queueHealth struct {
	Pending   int `json:"pending"`
	Processed int `json:"processed"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	st := s.sched.Stats()
	respondOK(w, reqID, healthResponse{
		Status:    "healthy",
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Queue:     queueHealth{Pending: st.Pending, Processed: st.Processed},
		Limits: map[string]int{
			"min_priority": s.rules.MinPriority,
			"max_priority": s.rules.MaxPriority,
			"max_pending":  s.config.MaxPending,
		},
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondOK(w, RequestIDFromContext(r.Context()), s.sched.Stats())
}
