package model

import "time"

// JobStatus is the lifecycle state of an asynchronous validation job
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobComplete  JobStatus = "complete"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Terminal reports whether the job has finished
func (s JobStatus) Terminal() bool {
	return s == JobComplete || s == JobFailed || s == JobCancelled
}

// JobPhase names a stage of the worker's fixed phase sequence
type JobPhase string

const (
	PhaseQueued     JobPhase = "queued"
	PhaseValidating JobPhase = "validating"
	PhaseFinalizing JobPhase = "finalizing"
	PhaseDone       JobPhase = "done"
)

// JobProgress is the snapshot returned by a non-blocking poll
type JobProgress struct {
	JobID          string    `json:"job_id"`
	Status         JobStatus `json:"status"`
	Phase          JobPhase  `json:"phase"`
	PhasePercent   float64   `json:"phase_percent"`
	OverallPercent float64   `json:"overall_percent"`

	LinksTotal int `json:"links_total"`
	LinksDone  int `json:"links_done"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ElapsedMs   int64      `json:"elapsed_ms"`

	Error string `json:"error,omitempty"`

	Summary *ValidationSummary `json:"summary,omitempty"`
}
