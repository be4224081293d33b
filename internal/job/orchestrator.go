package job

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/model"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/netcheck"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/summary"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/transport"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/worker"
)

// Orchestrator runs validation requests as asynchronous jobs. One worker
// per job; links inside a job are validated sequentially so a backoff
// sleep for one link never stalls other jobs.
type Orchestrator struct {
	store    *Store
	pool     *worker.Pool
	liveOpts netcheck.LiveOptions
	fallback FallbackValidator // nil when no collaborator is wired
	logger   *zap.Logger
}

// Options configures an Orchestrator
type Options struct {
	Store    *Store
	Workers  int
	LiveOpts netcheck.LiveOptions
	Fallback FallbackValidator
	Logger   *zap.Logger
}

// NewOrchestrator creates an orchestrator and starts its worker pool
func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Store == nil {
		opts.Store = NewStore(0, 0)
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	pool := worker.NewPool(opts.Workers)
	pool.Start()

	return &Orchestrator{
		store:    opts.Store,
		pool:     pool,
		liveOpts: opts.LiveOpts,
		fallback: opts.Fallback,
		logger:   opts.Logger,
	}
}

// Start registers a job for the request and hands it to a background
// worker. It returns immediately with the job ID.
func (o *Orchestrator) Start(req *model.ValidationRequest) (string, error) {
	if req == nil || len(req.Links) == 0 {
		return "", fmt.Errorf("request has no links")
	}
	req.Normalize()

	id := uuid.NewString()
	o.store.Create(id, len(req.Links))
	o.pool.Submit(&jobTask{orch: o, id: id, req: req})

	o.logger.Info("job queued",
		zap.String("job_id", id),
		zap.Int("links", len(req.Links)),
		zap.String("mode", string(req.Mode)),
		zap.String("depth", string(req.ScanDepth)))

	return id, nil
}

// Poll returns a non-blocking progress snapshot
func (o *Orchestrator) Poll(id string) (model.JobProgress, error) {
	return o.store.Progress(id)
}

// Results returns the results gathered so far, partial or final
func (o *Orchestrator) Results(id string) ([]model.ValidationResult, error) {
	return o.store.Results(id)
}

// Cancel requests cooperative cancellation. The worker notices at the next
// link boundary; cancellation is prompt but not preemptive.
func (o *Orchestrator) Cancel(id string) error {
	return o.store.RequestCancel(id)
}

// Close shuts down the worker pool, letting in-flight jobs observe
// cancellation
func (o *Orchestrator) Close() {
	o.pool.Shutdown()
}

// jobTask is the unit of work the pool executes for one job
type jobTask struct {
	orch *Orchestrator
	id   string
	req  *model.ValidationRequest
}

// Run executes the job's phase sequence: queued -> validating ->
// finalizing -> terminal.
func (t *jobTask) Run(ctx context.Context) {
	o := t.orch

	// Compose the authenticated transport once per request. An unusable
	// configuration is a job-level failure, not a per-link one.
	var composed *transport.Composed
	if !t.req.Offline() {
		var err error
		composed, err = transport.Compose(t.req.Auth, t.req.Timeout())
		if err != nil {
			o.store.Fail(t.id, fmt.Sprintf("authentication setup: %v", err))
			o.logger.Error("job failed", zap.String("job_id", t.id), zap.Error(err))
			return
		}
	}

	checker := netcheck.NewChecker(t.req, composed, o.liveOpts)
	o.store.MarkRunning(t.id)

	cancelled := false
	for _, candidate := range t.req.Links {
		// Cancellation is checked between links, never mid-attempt
		if o.store.CancelRequested(t.id) || ctx.Err() != nil {
			cancelled = true
			break
		}
		result := checker.Check(ctx, candidate)
		o.store.AppendResult(t.id, result)
	}

	if cancelled {
		o.store.MarkCancelled(t.id)
		o.logger.Info("job cancelled", zap.String("job_id", t.id))
		return
	}

	o.store.SetPhase(t.id, model.PhaseFinalizing)
	t.runFallback(ctx)

	results, err := o.store.Results(t.id)
	if err != nil {
		return
	}
	agg := summary.Aggregate(results)
	o.store.Complete(t.id, &agg)

	o.logger.Info("job complete",
		zap.String("job_id", t.id),
		zap.Int("links", agg.Total),
		zap.Float64("success_rate", agg.SuccessRate))
}

// runFallback offers BLOCKED and TIMEOUT links to the browser-automation
// collaborator, if one is wired, and applies its verdicts in place.
func (t *jobTask) runFallback(ctx context.Context) {
	o := t.orch
	if o.fallback == nil || t.req.Offline() {
		return
	}

	results, err := o.store.Results(t.id)
	if err != nil {
		return
	}

	// A URL may appear more than once in a request; every occurrence gets
	// the collaborator's verdict
	indexesByURL := make(map[string][]int)
	var urls []string
	for i, result := range results {
		if fallbackEligible(result) {
			if _, seen := indexesByURL[result.URL]; !seen {
				urls = append(urls, result.URL)
			}
			indexesByURL[result.URL] = append(indexesByURL[result.URL], i)
		}
	}
	if len(urls) == 0 {
		return
	}

	verdicts, err := o.fallback.Validate(ctx, urls)
	if err != nil {
		// Best-effort collaborator: its failure never fails the job
		o.logger.Warn("fallback validator failed", zap.String("job_id", t.id), zap.Error(err))
		return
	}

	for _, verdict := range verdicts {
		indexes, ok := indexesByURL[verdict.URL]
		if !ok || !verdict.Status.Terminal() {
			continue
		}
		for _, i := range indexes {
			updated := results[i]
			updated.Status = verdict.Status
			if verdict.HTTPStatusCode != 0 {
				updated.HTTPStatusCode = verdict.HTTPStatusCode
			}
			if verdict.FinalURL != "" {
				updated.FinalURL = verdict.FinalURL
			}
			updated.Message = "verified by fallback validator"
			o.store.ReplaceResult(t.id, i, updated)
		}
	}
}
