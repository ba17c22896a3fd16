// Package jobs runs accepted jobs on a fixed pool of background workers.
package jobs

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/forPelevin/reelcut/internal/types"
	"github.com/forPelevin/reelcut/internal/usecase"
)

var (
	ErrQueueFull = errors.New("job queue is full")
	ErrStopped   = errors.New("dispatcher is stopped")
)

type Runner interface {
	Start(ctx context.Context, in usecase.Input) (types.Job, error)
	Process(ctx context.Context, job types.Job, in usecase.Input) (usecase.Result, error)
}

type StatusWriter interface {
	SaveStatus(ctx context.Context, jobID string, st types.JobStatus) error
}

type task struct {
	job types.Job
	in  usecase.Input
}

type Dispatcher struct {
	runner  Runner
	status  StatusWriter
	log     logrus.FieldLogger
	workers int

	mu     sync.RWMutex
	queue  chan task
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(r Runner, st StatusWriter, log logrus.FieldLogger, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{
		runner:  r,
		status:  st,
		log:     log,
		workers: workers,
		queue:   make(chan task, queueSize),
	}
}

// Run starts the workers. Jobs run on a context detached from the submitter.
func (d *Dispatcher) Run() {
	d.log.WithField("workers", d.workers).Info("dispatcher starting")
	for i := 1; i <= d.workers; i++ {
		d.wg.Add(1)
		go d.work(i)
	}
}

func (d *Dispatcher) work(id int) {
	defer d.wg.Done()
	log := d.log.WithField("worker", id)
	for t := range d.queue {
		jl := log.WithField("job_id", t.job.ID)
		jl.Info("job started")
		if _, err := d.runner.Process(context.Background(), t.job, t.in); err != nil {
			jl.WithError(err).Warn("job finished with error")
			continue
		}
		jl.Info("job finished")
	}
}

// Submit persists the job's initial state and enqueues it. The returned job is
// valid whenever Start succeeded, even if enqueueing failed.
func (d *Dispatcher) Submit(ctx context.Context, in usecase.Input) (types.Job, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return types.Job{}, ErrStopped
	}

	job, err := d.runner.Start(ctx, in)
	if err != nil {
		return types.Job{}, err
	}

	select {
	case d.queue <- task{job: job, in: in}:
		d.log.WithField("job_id", job.ID).Debug("job queued")
		return job, nil
	default:
		d.log.WithField("job_id", job.ID).Warn("job queue full")
		st := types.JobStatus{Status: types.StatusError, Error: ErrQueueFull.Error()}
		if err := d.status.SaveStatus(ctx, job.ID, st); err != nil {
			d.log.WithError(err).WithField("job_id", job.ID).Error("save queue-full status")
		}
		return job, ErrQueueFull
	}
}

// Stop rejects new jobs and waits for queued and in-flight jobs to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.log.Info("dispatcher draining")
	d.wg.Wait()
	d.log.Info("dispatcher stopped")
}
