package worker

import (
	"context"
	"sync"
)

// Task represents a unit of background work
type Task interface {
	Run(ctx context.Context)
}

// Pool manages a fixed set of workers that execute tasks as they arrive.
// Unlike a batch pool it stays open until Shutdown; the orchestrator feeds
// it one task per validation job.
type Pool struct {
	workers    int
	tasks      chan Task
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:    workers,
		tasks:      make(chan Task, workers*2), // Buffered to prevent blocking
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.tasks:
			task.Run(p.ctx)
		}
	}
}

// Submit queues a task for execution. It blocks if all workers are busy
// and the queue is full; it is a no-op after Shutdown.
func (p *Pool) Submit(task Task) {
	select {
	case <-p.ctx.Done():
	case p.tasks <- task:
	}
}

// Shutdown cancels the pool context and waits for workers to exit. The
// task channel is never closed, so Submit stays safe during and after
// shutdown. Queued tasks that never started are dropped; in-flight tasks
// observe the cancelled context.
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
}
