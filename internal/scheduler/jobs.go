package scheduler

import (
	"log/slog"
	"time"

	"github.com/me/jobq/internal/logging"
	"github.com/me/jobq/pkg/model"
	"github.com/me/jobq/pkg/pqueue"
)

// Clock returns the current time. Tests substitute a fixed or stepping clock.
type Clock func() time.Time

// Option configures optional JobScheduler dependencies.
type Option func(*JobScheduler)

// WithClock sets the clock used for CreatedAt and ProcessedAt.
func WithClock(c Clock) Option {
	return func(s *JobScheduler) {
		if c != nil {
			s.now = c
		}
	}
}

// WithLogger sets the logger. Records are emitted at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *JobScheduler) {
		if logger != nil {
			s.logger = logger.With("component", "scheduler")
		}
	}
}

// JobScheduler owns a pending queue, the processed history, and the ID
// counter. It is not safe for concurrent use; see Synchronized.
//
// Input is not validated here. Callers decide what a valid name or
// priority is.
type JobScheduler struct {
	queue     *pqueue.PriorityQueue[model.Job, int]
	processed []model.Job
	nextID    int64
	now       Clock
	logger    *slog.Logger
}

var _ Scheduler = (*JobScheduler)(nil)

// New creates an empty scheduler whose first job gets ID 1.
func New(opts ...Option) *JobScheduler {
	s := &JobScheduler{
		queue:  pqueue.New[model.Job, int](),
		nextID: 1,
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob creates a job with the next ID and enqueues it under priority.
func (s *JobScheduler) AddJob(name string, priority int) model.Job {
	job := model.Job{
		ID:        s.nextID,
		Name:      name,
		Priority:  priority,
		CreatedAt: s.now(),
	}
	s.nextID++
	s.queue.Enqueue(job, priority)

	s.logger.Debug("job added", "job_id", job.ID, "name", job.Name, "priority", job.Priority, "pending", s.queue.Size())
	return job
}

// ProcessNextJob dequeues the front job, stamps ProcessedAt and appends it
// to the history.
func (s *JobScheduler) ProcessNextJob() (model.Job, bool) {
	entry, ok := s.queue.Dequeue()
	if !ok {
		return model.Job{}, false
	}
	job := entry.Payload
	at := s.now()
	job.ProcessedAt = &at
	s.processed = append(s.processed, job)

	s.logger.Debug("job processed", "job_id", job.ID, "name", job.Name, "priority", job.Priority,
		"waited", at.Sub(job.CreatedAt).String())
	return cloneJob(job), true
}

// PeekNextJob returns the front pending job.
func (s *JobScheduler) PeekNextJob() (model.Job, bool) {
	entry, ok := s.queue.PeekFront()
	if !ok {
		return model.Job{}, false
	}
	return entry.Payload, true
}

// ListPendingJobs returns pending jobs front first. The result is never nil.
func (s *JobScheduler) ListPendingJobs() []model.Job {
	view := s.queue.DrainView()
	jobs := make([]model.Job, len(view))
	for i, e := range view {
		jobs[i] = e.Payload
	}
	return jobs
}

// ListProcessedJobs returns the history oldest first. Reverse it for a
// newest-first view. The result is never nil.
func (s *JobScheduler) ListProcessedJobs() []model.Job {
	jobs := make([]model.Job, len(s.processed))
	for i, j := range s.processed {
		jobs[i] = cloneJob(j)
	}
	return jobs
}

// Lookup searches the pending queue, then the history.
func (s *JobScheduler) Lookup(id int64) (model.Job, bool) {
	for _, e := range s.queue.DrainView() {
		if e.Payload.ID == id {
			return e.Payload, true
		}
	}
	for _, j := range s.processed {
		if j.ID == id {
			return cloneJob(j), true
		}
	}
	return model.Job{}, false
}

// ClearPendingQueue empties the pending queue. History and the ID counter
// are left alone.
func (s *JobScheduler) ClearPendingQueue() int {
	n := s.queue.Size()
	s.queue.Clear()
	s.logger.Debug("pending queue cleared", "dropped", n)
	return n
}

// ClearProcessedHistory empties the history. The pending queue and the ID
// counter are left alone.
func (s *JobScheduler) ClearProcessedHistory() int {
	n := len(s.processed)
	s.processed = nil
	s.logger.Debug("processed history cleared", "dropped", n)
	return n
}

// Stats reports collection sizes, the next ID and the front job.
func (s *JobScheduler) Stats() model.Stats {
	st := model.Stats{
		Pending:   s.queue.Size(),
		Processed: len(s.processed),
		NextID:    s.nextID,
	}
	if next, ok := s.PeekNextJob(); ok {
		v := model.NewJobView(next)
		st.Next = &v
	}
	return st
}

// cloneJob copies ProcessedAt so callers cannot reach into the history.
func cloneJob(j model.Job) model.Job {
	if j.ProcessedAt != nil {
		at := *j.ProcessedAt
		j.ProcessedAt = &at
	}
	return j
}
