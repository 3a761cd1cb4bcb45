// Package workerpool provides a small bounded task-queue pool used to
// parallelize independent, fixed-size units of work (block-wise BWT
// transforms) without spinning up a goroutine per block.
package workerpool

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"logpress/pkg/errors"
)

// Task is one unit of work submitted to the pool.
type Task struct {
	ID      string
	Execute func(ctx context.Context) error
	Created time.Time
}

// Worker pulls tasks off its own channel until told to quit.
type Worker struct {
	ID       int
	pool     *WorkerPool
	taskChan chan Task
	quit     chan bool
	active   int64
	logger   *logrus.Logger
}

// WorkerPool runs a fixed set of workers against a bounded task queue.
type WorkerPool struct {
	workers   []*Worker
	taskQueue chan Task
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	logger    *logrus.Logger
	config    WorkerPoolConfig

	totalTasks     int64
	activeTasks    int64
	completedTasks int64
	failedTasks    int64

	isRunning bool
	mutex     sync.RWMutex
}

// WorkerPoolConfig configures pool size and lifetime.
type WorkerPoolConfig struct {
	MaxWorkers      int           `yaml:"max_workers"`
	QueueSize       int           `yaml:"queue_size"`
	WorkerTimeout   time.Duration `yaml:"worker_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// NewWorkerPool builds a pool, applying size/timeout defaults when unset.
func NewWorkerPool(config WorkerPoolConfig, logger *logrus.Logger) *WorkerPool {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = runtime.NumCPU()
	}
	if config.QueueSize <= 0 {
		config.QueueSize = config.MaxWorkers * 10
	}
	if config.WorkerTimeout == 0 {
		config.WorkerTimeout = 30 * time.Second
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	pool := &WorkerPool{
		taskQueue: make(chan Task, config.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
		config:    config,
		workers:   make([]*Worker, 0, config.MaxWorkers),
	}

	for i := 0; i < config.MaxWorkers; i++ {
		pool.workers = append(pool.workers, &Worker{
			ID:       i,
			pool:     pool,
			taskChan: make(chan Task, 1),
			quit:     make(chan bool),
			logger:   logger,
		})
	}

	return pool
}

// Start launches every worker plus the dispatcher goroutine.
func (wp *WorkerPool) Start() error {
	wp.mutex.Lock()
	defer wp.mutex.Unlock()

	if wp.isRunning {
		return nil
	}

	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.start()
	}

	wp.wg.Add(1)
	go wp.dispatcher()

	wp.isRunning = true
	return nil
}

// Stop cancels the pool's context and waits (bounded by ShutdownTimeout)
// for in-flight tasks to drain.
func (wp *WorkerPool) Stop() error {
	wp.mutex.Lock()
	defer wp.mutex.Unlock()

	if !wp.isRunning {
		return nil
	}

	wp.cancel()
	for _, worker := range wp.workers {
		close(worker.quit)
	}

	done := make(chan bool)
	go func() {
		wp.wg.Wait()
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(wp.config.ShutdownTimeout):
		wp.logger.Warn("worker pool shutdown timed out")
	}

	wp.isRunning = false
	return nil
}

// SubmitTask enqueues task, failing fast if the queue is full.
func (wp *WorkerPool) SubmitTask(task Task) error {
	if !wp.isRunning {
		return ErrPoolNotRunning
	}

	task.Created = time.Now()
	atomic.AddInt64(&wp.totalTasks, 1)

	select {
	case wp.taskQueue <- task:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	default:
		atomic.AddInt64(&wp.failedTasks, 1)
		return ErrQueueFull
	}
}

// GetStats reports a point-in-time snapshot of the pool's counters.
func (wp *WorkerPool) GetStats() WorkerPoolStats {
	return WorkerPoolStats{
		MaxWorkers:     wp.config.MaxWorkers,
		ActiveWorkers:  wp.getActiveWorkers(),
		QueuedTasks:    len(wp.taskQueue),
		QueueSize:      wp.config.QueueSize,
		TotalTasks:     atomic.LoadInt64(&wp.totalTasks),
		ActiveTasks:    atomic.LoadInt64(&wp.activeTasks),
		CompletedTasks: atomic.LoadInt64(&wp.completedTasks),
		FailedTasks:    atomic.LoadInt64(&wp.failedTasks),
		IsRunning:      wp.isRunning,
	}
}

func (wp *WorkerPool) dispatcher() {
	defer wp.wg.Done()

	for {
		select {
		case task := <-wp.taskQueue:
			wp.assignTaskToWorker(task)
		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WorkerPool) assignTaskToWorker(task Task) {
	for _, worker := range wp.workers {
		select {
		case worker.taskChan <- task:
			return
		default:
			continue
		}
	}

	select {
	case wp.workers[0].taskChan <- task:
		return
	case <-wp.ctx.Done():
		atomic.AddInt64(&wp.failedTasks, 1)
		return
	}
}

func (wp *WorkerPool) getActiveWorkers() int {
	active := 0
	for _, worker := range wp.workers {
		if atomic.LoadInt64(&worker.active) > 0 {
			active++
		}
	}
	return active
}

func (w *Worker) start() {
	defer w.pool.wg.Done()

	for {
		select {
		case task := <-w.taskChan:
			w.executeTask(task)
		case <-w.quit:
			return
		case <-w.pool.ctx.Done():
			return
		}
	}
}

func (w *Worker) executeTask(task Task) {
	atomic.StoreInt64(&w.active, 1)
	atomic.AddInt64(&w.pool.activeTasks, 1)
	defer func() {
		atomic.StoreInt64(&w.active, 0)
		atomic.AddInt64(&w.pool.activeTasks, -1)
	}()

	taskCtx, cancel := context.WithTimeout(w.pool.ctx, w.pool.config.WorkerTimeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		atomic.AddInt64(&w.pool.failedTasks, 1)
		w.logger.WithFields(logrus.Fields{
			"worker_id": w.ID,
			"task_id":   task.ID,
			"error":     err,
		}).Error("task execution failed")
		return
	}
	atomic.AddInt64(&w.pool.completedTasks, 1)
}

// WorkerPoolStats is a point-in-time snapshot of pool activity.
type WorkerPoolStats struct {
	MaxWorkers     int   `json:"max_workers"`
	ActiveWorkers  int   `json:"active_workers"`
	QueuedTasks    int   `json:"queued_tasks"`
	QueueSize      int   `json:"queue_size"`
	TotalTasks     int64 `json:"total_tasks"`
	ActiveTasks    int64 `json:"active_tasks"`
	CompletedTasks int64 `json:"completed_tasks"`
	FailedTasks    int64 `json:"failed_tasks"`
	IsRunning      bool  `json:"is_running"`
}

var (
	ErrPoolNotRunning = errors.ResourceError("submit_task", "worker pool is not running")
	ErrQueueFull      = errors.ResourceError("submit_task", "task queue is full")
)
