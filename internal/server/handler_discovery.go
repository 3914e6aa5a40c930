package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "jobq API",
		Version:     "v1",
		Description: "In-memory priority job queue. Jobs are processed one at a time, lowest priority value first, on request.",
		Endpoints: []endpointInfo{
			{"/api/v1/jobs", []string{"GET", "POST", "DELETE"}, "Pending jobs in processing order. GET accepts limit, offset, where. DELETE requires ?confirm=true"},
			{"/api/v1/jobs/{id}", []string{"GET"}, "Single job, pending or processed"},
			{"/api/v1/jobs/next", []string{"GET"}, "Job that would be processed next (null when empty)"},
			{"/api/v1/jobs/process", []string{"POST"}, "Process the next job (null when empty)"},
			{"/api/v1/history", []string{"GET", "DELETE"}, "Processed jobs. GET accepts order=asc|desc, limit, offset, where"},
			{"/api/v1/stats", []string{"GET"}, "Queue and history counts"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
