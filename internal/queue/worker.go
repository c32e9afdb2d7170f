package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Handler runs one job. The args are the JSON blob the job was enqueued
// with.
type Handler func(ctx context.Context, args json.RawMessage) error

// Worker is a polling worker pool over the job table.
type Worker struct {
	db           *gorm.DB
	handlers     map[string]Handler
	workers      int
	jobTimeout   time.Duration
	pollInterval time.Duration
}

// WorkerOpts holds parameters for creating a Worker.
type WorkerOpts struct {
	DB           *gorm.DB
	Workers      int           // concurrent job slots, default 4
	JobTimeout   time.Duration // hard wall-clock limit per job, default 5m
	PollInterval time.Duration // idle sleep between claim attempts, default 2s
}

// NewWorker creates a worker pool. Handlers are registered with Handle
// before Run is called.
func NewWorker(opts WorkerOpts) *Worker {
	w := &Worker{
		db:           opts.DB,
		handlers:     make(map[string]Handler),
		workers:      opts.Workers,
		jobTimeout:   opts.JobTimeout,
		pollInterval: opts.PollInterval,
	}
	if w.workers <= 0 {
		w.workers = 4
	}
	if w.jobTimeout <= 0 {
		w.jobTimeout = 5 * time.Minute
	}
	if w.pollInterval <= 0 {
		w.pollInterval = 2 * time.Second
	}
	return w
}

// Handle registers the handler for a job name.
func (w *Worker) Handle(name string, h Handler) {
	w.handlers[name] = h
}

// Run blocks until ctx is cancelled, processing jobs on w.workers
// concurrent loops.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.workers; i++ {
		g.Go(func() error {
			return w.loop(ctx)
		})
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *Worker) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if worked := w.runOne(ctx); worked {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.pollInterval):
		}
	}
}

// runOne claims and executes a single job. Returns false when the queue
// was empty.
func (w *Worker) runOne(ctx context.Context) bool {
	job, err := Claim(w.db)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	if err != nil {
		log.Printf("queue: claim: %v", err)
		return false
	}

	handler, ok := w.handlers[job.Name]
	if !ok {
		err := fmt.Errorf("queue: no handler for job %q", job.Name)
		log.Print(err)
		// Unknown names never succeed; burn the remaining attempts.
		job.Attempts = job.MaxAttempts
		if merr := markFailed(w.db, job, err); merr != nil {
			log.Printf("queue: mark job %d failed: %v", job.ID, merr)
		}
		return true
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	err = handler(jobCtx, json.RawMessage(job.Args))
	cancel()

	if err != nil {
		log.Printf("queue: job %d (%s) attempt %d/%d failed: %v",
			job.ID, job.Name, job.Attempts, job.MaxAttempts, err)
		if merr := markFailed(w.db, job, err); merr != nil {
			log.Printf("queue: mark job %d failed: %v", job.ID, merr)
		}
		return true
	}

	if merr := markDone(w.db, job.ID); merr != nil {
		log.Printf("queue: mark job %d done: %v", job.ID, merr)
	}
	return true
}
