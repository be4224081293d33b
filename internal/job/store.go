package job

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/model"
)

// ErrNotFound is returned when a job ID is unknown or already evicted
var ErrNotFound = errors.New("job not found")

// timeNow is injectable for tests
var timeNow = time.Now

// phaseWeights pre-assigns each phase its slice of the overall progress
// range; the slices sum to 100.
var phaseWeights = map[model.JobPhase]struct{ start, end float64 }{
	model.PhaseQueued:     {0, 10},
	model.PhaseValidating: {10, 95},
	model.PhaseFinalizing: {95, 100},
	model.PhaseDone:       {100, 100},
}

// record is one job's mutable state. All access goes through the store
// mutex; compound read-modify-write sequences hold it for their duration.
type record struct {
	id     string
	status model.JobStatus
	phase  model.JobPhase

	linksTotal int
	linksDone  int

	startedAt   time.Time
	completedAt *time.Time

	errMsg  string
	results []model.ValidationResult
	summary *model.ValidationSummary

	cancelRequested bool

	// overall percent is clamped monotone so pollers never see it decrease
	lastOverall float64
}

// Store is the in-memory job table: a mutex-guarded map with TTL
// garbage collection and a capacity bound. Construct one per process and
// inject it; there is no ambient singleton.
type Store struct {
	mu      sync.Mutex
	jobs    map[string]*record
	ttl     time.Duration
	maxJobs int
}

// NewStore creates a job store. Completed jobs are garbage-collected ttl
// after completion, and oldest-completed-first eviction triggers when the
// table exceeds maxJobs.
func NewStore(ttl time.Duration, maxJobs int) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxJobs <= 0 {
		maxJobs = 100
	}
	return &Store{
		jobs:    make(map[string]*record),
		ttl:     ttl,
		maxJobs: maxJobs,
	}
}

// Create registers a new pending job and runs the eviction pass
func (s *Store) Create(id string, linksTotal int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()

	s.jobs[id] = &record{
		id:         id,
		status:     model.JobPending,
		phase:      model.PhaseQueued,
		linksTotal: linksTotal,
		startedAt:  timeNow(),
	}
}

// evictLocked removes expired completed jobs, then enforces the capacity
// bound oldest-completed-first. Running jobs are never evicted.
func (s *Store) evictLocked() {
	now := timeNow()
	for id, rec := range s.jobs {
		if rec.completedAt != nil && now.Sub(*rec.completedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}

	if len(s.jobs) < s.maxJobs {
		return
	}

	var completed []*record
	for _, rec := range s.jobs {
		if rec.completedAt != nil {
			completed = append(completed, rec)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].completedAt.Before(*completed[j].completedAt)
	})

	for _, rec := range completed {
		if len(s.jobs) < s.maxJobs {
			break
		}
		delete(s.jobs, rec.id)
	}
}

// MarkRunning transitions a pending job into the validating phase
func (s *Store) MarkRunning(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.jobs[id]; ok && rec.status == model.JobPending {
		rec.status = model.JobRunning
		rec.phase = model.PhaseValidating
	}
}

// AppendResult appends one immutable result and advances the validating
// phase progress. The append and the progress update are one compound
// operation under the lock.
func (s *Store) AppendResult(id string, result model.ValidationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[id]
	if !ok || rec.status != model.JobRunning {
		return
	}
	rec.results = append(rec.results, result)
	rec.linksDone = len(rec.results)
}

// SetPhase moves a running job to a later phase
func (s *Store) SetPhase(id string, phase model.JobPhase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.jobs[id]; ok && rec.status == model.JobRunning {
		rec.phase = phase
	}
}

// Complete stores the terminal result set and summary. A job's summary is
// set exactly once; later calls are ignored.
func (s *Store) Complete(id string, summary *model.ValidationSummary) {
	s.finish(id, model.JobComplete, "", summary)
}

// Fail marks the job failed, retaining any partial results
func (s *Store) Fail(id string, errMsg string) {
	s.finish(id, model.JobFailed, errMsg, nil)
}

// MarkCancelled transitions the job to cancelled, retaining partial results
func (s *Store) MarkCancelled(id string) {
	s.finish(id, model.JobCancelled, "", nil)
}

func (s *Store) finish(id string, status model.JobStatus, errMsg string, summary *model.ValidationSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[id]
	if !ok || rec.status.Terminal() {
		return
	}
	now := timeNow()
	rec.status = status
	rec.phase = model.PhaseDone
	rec.completedAt = &now
	rec.errMsg = errMsg
	if summary != nil && rec.summary == nil {
		rec.summary = summary
	}
}

// RequestCancel sets the cooperative cancellation flag. The worker checks
// it between links, never mid-attempt.
func (s *Store) RequestCancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if !rec.status.Terminal() {
		rec.cancelRequested = true
	}
	return nil
}

// CancelRequested reports whether cancellation has been requested
func (s *Store) CancelRequested(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[id]
	return ok && rec.cancelRequested
}

// ReplaceResult swaps the result at index i. Used only by the fallback
// validator pass before the job completes.
func (s *Store) ReplaceResult(id string, i int, result model.ValidationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[id]
	if !ok || rec.status.Terminal() || i < 0 || i >= len(rec.results) {
		return
	}
	rec.results[i] = result
}

// Progress returns a well-formed snapshot for polling. It never blocks on
// the worker and never exposes internal state.
func (s *Store) Progress(id string) (model.JobProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[id]
	if !ok {
		return model.JobProgress{}, ErrNotFound
	}

	phasePercent := 0.0
	if rec.linksTotal > 0 && rec.phase == model.PhaseValidating {
		phasePercent = float64(rec.linksDone) / float64(rec.linksTotal) * 100
	}
	if rec.phase == model.PhaseDone {
		phasePercent = 100
	}

	weights := phaseWeights[rec.phase]
	overall := weights.start + phasePercent/100*(weights.end-weights.start)
	if rec.status == model.JobComplete {
		overall = 100
	}
	if overall < rec.lastOverall {
		overall = rec.lastOverall
	}
	rec.lastOverall = overall

	progress := model.JobProgress{
		JobID:          rec.id,
		Status:         rec.status,
		Phase:          rec.phase,
		PhasePercent:   phasePercent,
		OverallPercent: overall,
		LinksTotal:     rec.linksTotal,
		LinksDone:      rec.linksDone,
		StartedAt:      rec.startedAt,
		CompletedAt:    rec.completedAt,
		Error:          rec.errMsg,
		Summary:        rec.summary,
	}
	if rec.completedAt != nil {
		progress.ElapsedMs = rec.completedAt.Sub(rec.startedAt).Milliseconds()
	} else {
		progress.ElapsedMs = timeNow().Sub(rec.startedAt).Milliseconds()
	}
	return progress, nil
}

// Results returns a copy of the results gathered so far. Partial results
// remain available after cancellation or failure.
func (s *Store) Results(id string) ([]model.ValidationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]model.ValidationResult, len(rec.results))
	copy(out, rec.results)
	return out, nil
}

// Len reports the number of jobs currently in the table
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
