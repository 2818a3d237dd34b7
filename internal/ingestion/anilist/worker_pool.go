package anilist

import (
	"context"
	"log/slog"
	"sync"
)

// Task is a unit of work run by the WorkerPool.
type Task func(ctx context.Context) error

// WorkerPool runs submitted tasks on a fixed number of goroutines. The
// client's rate limiter is shared, so more workers only hide latency.
type WorkerPool struct {
	workerCount int
	taskQueue   chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *slog.Logger

	closeMux sync.Mutex
	closed   bool

	errMux sync.Mutex
	failed int
}

// NewWorkerPool creates a pool bound to ctx. Cancelling ctx stops the workers
// after their current task.
func NewWorkerPool(ctx context.Context, workerCount int, logger *slog.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	poolCtx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		workerCount: workerCount,
		taskQueue:   make(chan Task, workerCount*2),
		ctx:         poolCtx,
		cancel:      cancel,
		logger:      logger,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
	wp.logger.Debug("worker_pool_started", "workers", wp.workerCount)
}

// Submit queues a task. It returns false once the pool is shutting down or
// Wait has closed the queue.
func (wp *WorkerPool) Submit(task Task) bool {
	wp.closeMux.Lock()
	defer wp.closeMux.Unlock()
	if wp.closed {
		return false
	}

	select {
	case wp.taskQueue <- task:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Wait closes the queue and blocks until every worker has returned. It
// reports how many tasks returned an error.
func (wp *WorkerPool) Wait() int {
	wp.closeMux.Lock()
	if !wp.closed {
		close(wp.taskQueue)
		wp.closed = true
	}
	wp.closeMux.Unlock()

	wp.wg.Wait()
	wp.cancel()

	wp.errMux.Lock()
	defer wp.errMux.Unlock()
	return wp.failed
}

// Shutdown cancels outstanding work and waits for the workers.
func (wp *WorkerPool) Shutdown() int {
	wp.cancel()
	return wp.Wait()
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		select {
		case <-wp.ctx.Done():
			wp.logger.Debug("worker_stopped", "worker", id, "reason", wp.ctx.Err())
			return
		default:
		}

		if err := task(wp.ctx); err != nil {
			wp.errMux.Lock()
			wp.failed++
			wp.errMux.Unlock()
			wp.logger.Warn("worker_task_failed", "worker", id, "error", err)
		}
	}
}
