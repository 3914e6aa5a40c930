package scheduler

import (
	"errors"
	"sync"

	"github.com/me/jobq/pkg/model"
)

// ErrQueueFull is returned by AddJobIf when the pending queue is at capacity.
var ErrQueueFull = errors.New("scheduler: pending queue is full")

// Synchronized guards a single JobScheduler with a mutex so several
// goroutines (HTTP handlers, for example) can share it.
type Synchronized struct {
	mu    sync.Mutex
	inner *JobScheduler
}

var _ Scheduler = (*Synchronized)(nil)

// NewSynchronized wraps s. The caller must not use s directly afterwards.
func NewSynchronized(s *JobScheduler) *Synchronized {
	return &Synchronized{inner: s}
}

func (g *Synchronized) AddJob(name string, priority int) model.Job {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.AddJob(name, priority)
}

// AddJobIf adds a job unless maxPending jobs are already pending.
// maxPending <= 0 means no limit. The size check and the insert happen
// under one lock.
func (g *Synchronized) AddJobIf(name string, priority, maxPending int) (model.Job, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if maxPending > 0 && g.inner.queue.Size() >= maxPending {
		return model.Job{}, ErrQueueFull
	}
	return g.inner.AddJob(name, priority), nil
}

func (g *Synchronized) ProcessNextJob() (model.Job, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.ProcessNextJob()
}

func (g *Synchronized) PeekNextJob() (model.Job, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.PeekNextJob()
}

func (g *Synchronized) ListPendingJobs() []model.Job {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.ListPendingJobs()
}

func (g *Synchronized) ListProcessedJobs() []model.Job {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.ListProcessedJobs()
}

func (g *Synchronized) Lookup(id int64) (model.Job, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.Lookup(id)
}

func (g *Synchronized) ClearPendingQueue() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.ClearPendingQueue()
}

func (g *Synchronized) ClearProcessedHistory() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.ClearProcessedHistory()
}

func (g *Synchronized) Stats() model.Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.Stats()
}
