// Package scheduler releases pending jobs one at a time, lowest priority
// value first, and remembers which jobs it has processed.
//
// Nothing here runs in the background. Every operation completes before it
// returns, and callers decide when the next job is processed.
package scheduler

import "github.com/me/jobq/pkg/model"

// Scheduler is the set of job operations shared by JobScheduler and its
// mutex-guarded wrapper.
type Scheduler interface {
	// AddJob enqueues a new job and returns it with its assigned ID.
	AddJob(name string, priority int) model.Job

	// ProcessNextJob moves the front pending job into history.
	// It returns false when nothing is pending.
	ProcessNextJob() (model.Job, bool)

	// PeekNextJob returns the job ProcessNextJob would return, without
	// changing anything.
	PeekNextJob() (model.Job, bool)

	// ListPendingJobs returns pending jobs in processing order.
	ListPendingJobs() []model.Job

	// ListProcessedJobs returns processed jobs, oldest first.
	ListProcessedJobs() []model.Job

	// Lookup finds a job by ID in either collection.
	Lookup(id int64) (model.Job, bool)

	// ClearPendingQueue drops every pending job and returns how many were dropped.
	ClearPendingQueue() int

	// ClearProcessedHistory drops the history and returns how many entries were dropped.
	ClearProcessedHistory() int

	// Stats summarizes both collections.
	Stats() model.Stats
}
