package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/me/jobq/internal/config"
	"github.com/me/jobq/internal/logging"
	"github.com/me/jobq/internal/scheduler"
	"github.com/me/jobq/internal/validate"
	"github.com/me/jobq/pkg/model"
)

func fixedClock() scheduler.Clock {
	t := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func testServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	return testServerWithConfig(t, config.DefaultServerConfig(), opts...)
}

func testServerWithConfig(t *testing.T, cfg config.ServerConfig, opts ...Option) *Server {
	t.Helper()
	sched := scheduler.NewSynchronized(scheduler.New(scheduler.WithClock(fixedClock())))
	return New(cfg, sched, logging.Discard(), opts...)
}

// envelope is used to decode the standard response envelope.
type envelope struct {
	Status     string            `json:"status"`
	RequestID  string            `json:"request_id"`
	Timestamp  string            `json:"timestamp"`
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
	Error      *model.APIError   `json:"error"`
}

func do(t *testing.T, srv *Server, method, path, body string, wantStatus int) envelope {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != wantStatus {
		t.Fatalf("%s %s: status=%d, want %d, body=%s", method, path, w.Code, wantStatus, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Errorf("%s %s: missing X-Request-ID header", method, path)
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: invalid JSON: %v", method, path, err)
	}
	return env
}

func addJob(t *testing.T, srv *Server, name string, priority int) model.JobView {
	t.Helper()
	body, _ := json.Marshal(map[string]any{"name": name, "priority": priority})
	env := do(t, srv, "POST", "/api/v1/jobs/", string(body), http.StatusCreated)
	var v model.JobView
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	return v
}

func decodeJobs(t *testing.T, env envelope) []model.JobView {
	t.Helper()
	var jobs []model.JobView
	if err := json.Unmarshal(env.Data, &jobs); err != nil {
		t.Fatalf("decode jobs: %v (%s)", err, env.Data)
	}
	return jobs
}

func jobNames(jobs []model.JobView) string {
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.Name
	}
	return strings.Join(names, ",")
}

func TestDiscovery(t *testing.T) {
	srv := testServer(t)
	env := do(t, srv, "GET", "/api/v1/", "", http.StatusOK)
	if env.Status != "ok" {
		t.Errorf("status = %q, want ok", env.Status)
	}
	if !strings.HasPrefix(env.RequestID, "req_") {
		t.Errorf("request_id = %q, want req_ prefix", env.RequestID)
	}

	var data discoveryResponse
	json.Unmarshal(env.Data, &data)
	if data.Name != "jobq API" {
		t.Errorf("name = %q, want jobq API", data.Name)
	}
	if len(data.Endpoints) != 7 {
		t.Errorf("endpoints count = %d, want 7", len(data.Endpoints))
	}
}

func TestHealth(t *testing.T) {
	srv := testServer(t)
	addJob(t, srv, "build", 2)

	env := do(t, srv, "GET", "/api/v1/health", "", http.StatusOK)
	var data healthResponse
	json.Unmarshal(env.Data, &data)
	if data.Status != "healthy" {
		t.Errorf("health status = %q, want healthy", data.Status)
	}
	if data.Version != Version {
		t.Errorf("version = %q, want %s", data.Version, Version)
	}
	if data.Queue.Pending != 1 || data.Queue.Processed != 0 {
		t.Errorf("queue = %+v, want 1 pending", data.Queue)
	}
	if data.Limits["max_priority"] != 10 {
		t.Errorf("limits = %v", data.Limits)
	}
}

func TestCreateJob(t *testing.T) {
	srv := testServer(t)
	v := addJob(t, srv, "  build  ", 2)
	if v.ID != 1 {
		t.Errorf("id = %d, want 1", v.ID)
	}
	if v.Name != "build" {
		t.Errorf("name = %q, want trimmed build", v.Name)
	}
	if v.Band != model.BandHigh {
		t.Errorf("band = %q, want high", v.Band)
	}
	if v.ProcessedAt != nil {
		t.Error("new job has processed_at")
	}
	if v.CreatedAt.IsZero() {
		t.Error("created_at is zero")
	}
}

func TestCreateJob_Validation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{"invalid json", "not json", nil},
		{"non-numeric priority", `{"name":"x","priority":"high"}`, nil},
		{"missing priority", `{"name":"x"}`, []string{"priority"}},
		{"empty name", `{"name":"  ","priority":3}`, []string{"name"}},
		{"priority too high", `{"name":"x","priority":11}`, []string{"priority"}},
		{"priority too low", `{"name":"x","priority":0}`, []string{"priority"}},
		{"both", `{"name":"","priority":99}`, []string{"name", "priority"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t)
			env := do(t, srv, "POST", "/api/v1/jobs/", tt.body, http.StatusBadRequest)
			if env.Status != "error" {
				t.Errorf("status = %q, want error", env.Status)
			}
			if env.Error == nil || env.Error.Code != model.ErrValidation {
				t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
			}
			if len(env.Error.Details) != len(tt.wantFields) {
				t.Fatalf("details = %+v, want fields %v", env.Error.Details, tt.wantFields)
			}
			for i, f := range tt.wantFields {
				if env.Error.Details[i].Field != f {
					t.Errorf("details[%d].field = %q, want %q", i, env.Error.Details[i].Field, f)
				}
			}

			st := do(t, srv, "GET", "/api/v1/stats", "", http.StatusOK)
			var stats model.Stats
			json.Unmarshal(st.Data, &stats)
			if stats.Pending != 0 || stats.NextID != 1 {
				t.Errorf("rejected job reached the scheduler: %+v", stats)
			}
		})
	}
}

func TestCreateJob_CustomRules(t *testing.T) {
	srv := testServer(t, WithRules(validate.Rules{MinPriority: 0, MaxPriority: 100}))
	v := addJob(t, srv, "wide", 50)
	if v.Priority != 50 {
		t.Errorf("priority = %d, want 50", v.Priority)
	}
}

func TestCreateJob_QueueFull(t *testing.T) {
	cfg := config.DefaultServerConfig()
	cfg.MaxPending = 2
	srv := testServerWithConfig(t, cfg)

	addJob(t, srv, "a", 1)
	addJob(t, srv, "b", 1)
	env := do(t, srv, "POST", "/api/v1/jobs/", `{"name":"c","priority":1}`, http.StatusConflict)
	if env.Error == nil || env.Error.Code != model.ErrQueueFull {
		t.Fatalf("error = %+v, want QUEUE_FULL", env.Error)
	}

	do(t, srv, "POST", "/api/v1/jobs/process", "", http.StatusOK)
	v := addJob(t, srv, "c", 1)
	if v.ID != 3 {
		t.Errorf("id = %d, want 3", v.ID)
	}
}

func TestListJobs_PriorityOrder(t *testing.T) {
	srv := testServer(t)
	addJob(t, srv, "a", 5)
	addJob(t, srv, "b", 1)
	addJob(t, srv, "c", 5)
	addJob(t, srv, "d", 3)

	env := do(t, srv, "GET", "/api/v1/jobs/", "", http.StatusOK)
	if got := jobNames(decodeJobs(t, env)); got != "b,d,a,c" {
		t.Errorf("pending = %s, want b,d,a,c", got)
	}
	if env.Pagination == nil || env.Pagination.Total != 4 || env.Pagination.HasMore {
		t.Errorf("pagination = %+v", env.Pagination)
	}
}

func TestListJobs_Empty(t *testing.T) {
	srv := testServer(t)
	env := do(t, srv, "GET", "/api/v1/jobs", "", http.StatusOK)
	if string(env.Data) != "[]" {
		t.Errorf("data = %s, want []", env.Data)
	}
}

func TestListJobs_PaginationAndFilter(t *testing.T) {
	srv := testServer(t)
	for i, p := range []int{9, 2, 7, 1, 4} {
		addJob(t, srv, string(rune('a'+i)), p)
	}

	env := do(t, srv, "GET", "/api/v1/jobs/?limit=2&offset=1", "", http.StatusOK)
	if got := jobNames(decodeJobs(t, env)); got != "b,e" {
		t.Errorf("page = %s, want b,e", got)
	}
	if !env.Pagination.HasMore || env.Pagination.Limit != 2 || env.Pagination.Offset != 1 {
		t.Errorf("pagination = %+v", env.Pagination)
	}

	env = do(t, srv, "GET", "/api/v1/jobs/?where=job.band%20%3D%3D%3D%20%22medium%22", "", http.StatusOK)
	if got := jobNames(decodeJobs(t, env)); got != "e,c" {
		t.Errorf("filtered = %s, want e,c", got)
	}
}

func TestListJobs_BadQuery(t *testing.T) {
	srv := testServer(t)
	addJob(t, srv, "a", 1)

	for _, path := range []string{
		"/api/v1/jobs/?limit=ten",
		"/api/v1/jobs/?offset=x",
		"/api/v1/jobs/?where=job.priority%20%3C",
		"/api/v1/jobs/?where=job.nope.deeper",
	} {
		env := do(t, srv, "GET", path, "", http.StatusBadRequest)
		if env.Error == nil || env.Error.Code != model.ErrValidation {
			t.Errorf("%s: error = %+v, want VALIDATION_ERROR", path, env.Error)
		}
	}
}

func TestProcessJob(t *testing.T) {
	srv := testServer(t)
	addJob(t, srv, "build", 2)
	addJob(t, srv, "test", 2)

	var first, second model.JobView
	json.Unmarshal(do(t, srv, "POST", "/api/v1/jobs/process", "", http.StatusOK).Data, &first)
	json.Unmarshal(do(t, srv, "POST", "/api/v1/jobs/process", "", http.StatusOK).Data, &second)
	if first.Name != "build" || second.Name != "test" {
		t.Errorf("processed %s then %s, want build then test", first.Name, second.Name)
	}
	if first.ProcessedAt == nil {
		t.Error("processed job has no processed_at")
	}

	env := do(t, srv, "POST", "/api/v1/jobs/process", "", http.StatusOK)
	if string(env.Data) != "null" {
		t.Errorf("process on empty queue data = %s, want null", env.Data)
	}
}

func TestPeekJob(t *testing.T) {
	srv := testServer(t)
	env := do(t, srv, "GET", "/api/v1/jobs/next", "", http.StatusOK)
	if string(env.Data) != "null" {
		t.Errorf("peek on empty queue = %s, want null", env.Data)
	}

	addJob(t, srv, "later", 6)
	addJob(t, srv, "sooner", 2)
	var v model.JobView
	json.Unmarshal(do(t, srv, "GET", "/api/v1/jobs/next", "", http.StatusOK).Data, &v)
	if v.Name != "sooner" {
		t.Errorf("next = %q, want sooner", v.Name)
	}
	if got := jobNames(decodeJobs(t, do(t, srv, "GET", "/api/v1/jobs/", "", http.StatusOK))); got != "sooner,later" {
		t.Errorf("peek changed the queue: %s", got)
	}
}

func TestGetJob(t *testing.T) {
	srv := testServer(t)
	addJob(t, srv, "a", 1)
	addJob(t, srv, "b", 2)
	do(t, srv, "POST", "/api/v1/jobs/process", "", http.StatusOK)

	var v model.JobView
	json.Unmarshal(do(t, srv, "GET", "/api/v1/jobs/1", "", http.StatusOK).Data, &v)
	if v.Name != "a" || v.ProcessedAt == nil {
		t.Errorf("job 1 = %+v, want processed a", v)
	}
	json.Unmarshal(do(t, srv, "GET", "/api/v1/jobs/2", "", http.StatusOK).Data, &v)
	if v.Name != "b" {
		t.Errorf("job 2 = %+v, want b", v)
	}

	env := do(t, srv, "GET", "/api/v1/jobs/99", "", http.StatusNotFound)
	if env.Error == nil || env.Error.Code != model.ErrNotFound {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}
	do(t, srv, "GET", "/api/v1/jobs/abc", "", http.StatusBadRequest)
}

func TestClearJobs(t *testing.T) {
	srv := testServer(t)
	addJob(t, srv, "deploy", 1)

	env := do(t, srv, "DELETE", "/api/v1/jobs/", "", http.StatusBadRequest)
	if env.Error == nil || len(env.Error.Details) != 1 || env.Error.Details[0].Field != "confirm" {
		t.Errorf("error = %+v, want confirm field error", env.Error)
	}

	env = do(t, srv, "DELETE", "/api/v1/jobs/?confirm=true", "", http.StatusOK)
	var cleared clearResponse
	json.Unmarshal(env.Data, &cleared)
	if cleared.Cleared != 1 {
		t.Errorf("cleared = %d, want 1", cleared.Cleared)
	}

	env = do(t, srv, "POST", "/api/v1/jobs/process", "", http.StatusOK)
	if string(env.Data) != "null" {
		t.Errorf("process after clear = %s, want null", env.Data)
	}
	env = do(t, srv, "GET", "/api/v1/history/", "", http.StatusOK)
	if string(env.Data) != "[]" {
		t.Errorf("history after clear = %s, want []", env.Data)
	}
}

func TestHistory_OrderAndClear(t *testing.T) {
	srv := testServer(t)
	addJob(t, srv, "low", 9)
	addJob(t, srv, "high", 1)
	addJob(t, srv, "mid", 5)
	for i := 0; i < 3; i++ {
		do(t, srv, "POST", "/api/v1/jobs/process", "", http.StatusOK)
	}

	env := do(t, srv, "GET", "/api/v1/history/", "", http.StatusOK)
	if got := jobNames(decodeJobs(t, env)); got != "high,mid,low" {
		t.Errorf("history asc = %s, want high,mid,low", got)
	}
	env = do(t, srv, "GET", "/api/v1/history/?order=desc", "", http.StatusOK)
	if got := jobNames(decodeJobs(t, env)); got != "low,mid,high" {
		t.Errorf("history desc = %s, want low,mid,high", got)
	}
	env = do(t, srv, "GET", "/api/v1/history/?where=job.priority%3E1", "", http.StatusOK)
	if got := jobNames(decodeJobs(t, env)); got != "mid,low" {
		t.Errorf("history filtered = %s, want mid,low", got)
	}
	do(t, srv, "GET", "/api/v1/history/?order=sideways", "", http.StatusBadRequest)

	env = do(t, srv, "DELETE", "/api/v1/history/", "", http.StatusOK)
	var cleared clearResponse
	json.Unmarshal(env.Data, &cleared)
	if cleared.Cleared != 3 {
		t.Errorf("cleared = %d, want 3", cleared.Cleared)
	}
}

func TestClearHistory_LeavesPending(t *testing.T) {
	srv := testServer(t)
	addJob(t, srv, "a", 1)
	addJob(t, srv, "b", 2)
	addJob(t, srv, "c", 3)

	do(t, srv, "DELETE", "/api/v1/history/", "", http.StatusOK)

	env := do(t, srv, "GET", "/api/v1/jobs/", "", http.StatusOK)
	if got := len(decodeJobs(t, env)); got != 3 {
		t.Errorf("pending = %d after clearing history, want 3", got)
	}
}

func TestStats(t *testing.T) {
	srv := testServer(t)
	addJob(t, srv, "a", 4)
	addJob(t, srv, "b", 8)
	do(t, srv, "POST", "/api/v1/jobs/process", "", http.StatusOK)

	var st model.Stats
	json.Unmarshal(do(t, srv, "GET", "/api/v1/stats", "", http.StatusOK).Data, &st)
	if st.Pending != 1 || st.Processed != 1 || st.NextID != 3 {
		t.Errorf("stats = %+v", st)
	}
	if st.Next == nil || st.Next.Name != "b" || st.Next.Band != model.BandLow {
		t.Errorf("stats.next = %+v, want b (low)", st.Next)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := testServer(t)
	env := do(t, srv, "GET", "/api/v1/nope", "", http.StatusNotFound)
	if env.Error == nil || env.Error.Code != model.ErrNotFound {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}
	do(t, srv, "PUT", "/api/v1/jobs/", "", http.StatusMethodNotAllowed)
}
