package model

import "time"

// Job is a unit of work ordered by priority. Lower priority values are
// processed first.
type Job struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Priority    int        `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// IsProcessed returns true once the job has been taken off the pending queue.
func (j Job) IsProcessed() bool {
	return j.ProcessedAt != nil
}

// Band returns the display band for the job's priority.
func (j Job) Band() PriorityBand {
	return BandFor(j.Priority)
}

// PriorityBand groups priorities for display.
type PriorityBand string

const (
	BandHigh   PriorityBand = "high"
	BandMedium PriorityBand = "medium"
	BandLow    PriorityBand = "low"
)

// String returns the string representation of the band.
func (b PriorityBand) String() string {
	return string(b)
}

// BandFor classifies a priority: 3 and below is high, 7 and below is medium,
// anything else is low.
func BandFor(priority int) PriorityBand {
	switch {
	case priority <= 3:
		return BandHigh
	case priority <= 7:
		return BandMedium
	default:
		return BandLow
	}
}

// JobView is the API representation of a Job in listings.
type JobView struct {
	Job
	Band PriorityBand `json:"band"`
}

// NewJobView wraps a job with its derived display fields.
func NewJobView(j Job) JobView {
	return JobView{Job: j, Band: j.Band()}
}

// NewJobViews converts a slice of jobs, preserving order.
func NewJobViews(jobs []Job) []JobView {
	out := make([]JobView, len(jobs))
	for i, j := range jobs {
		out[i] = NewJobView(j)
	}
	return out
}

// Stats summarizes scheduler state.
type Stats struct {
	Pending   int      `json:"pending"`
	Processed int      `json:"processed"`
	NextID    int64    `json:"next_id"`
	Next      *JobView `json:"next"`
}
