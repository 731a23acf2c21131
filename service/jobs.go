package service

import (
	"context"
	"sync"
	"time"

	"catalogo-armazones/logger"
	"catalogo-armazones/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	JobRunning  = "running"
	JobFinished = "finished"
)

// Job is the pollable state of a submitted batch
type Job struct {
	ID         string               `json:"id"`
	Kind       string               `json:"kind"`
	Status     string               `json:"status"`
	StartedAt  time.Time            `json:"startedAt"`
	FinishedAt *time.Time           `json:"finishedAt,omitempty"`
	Summary    *models.BatchSummary `json:"summary,omitempty"`
}

// BatchFunc processes one batch and returns its summary
type BatchFunc func(ctx context.Context, jobID string) models.BatchSummary

// JobRegistry runs batches in the background and keeps their summaries for polling.
// Jobs are not cancellable: each runs to completion on a background context.
type JobRegistry struct {
	mu     sync.RWMutex
	jobs   map[string]*Job
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewJobRegistry creates an empty JobRegistry
func NewJobRegistry(log *zap.Logger) *JobRegistry {
	return &JobRegistry{jobs: make(map[string]*Job), logger: logger.OrNop(log)}
}

// Submit starts run in a new goroutine. It returns the job id and a channel that
// receives the summary once, when the batch finishes.
func (r *JobRegistry) Submit(kind string, run BatchFunc) (string, <-chan models.BatchSummary) {
	id := uuid.NewString()
	job := &Job{ID: id, Kind: kind, Status: JobRunning, StartedAt: time.Now()}

	r.mu.Lock()
	r.jobs[id] = job
	r.mu.Unlock()

	done := make(chan models.BatchSummary, 1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(done)

		summary := run(context.Background(), id)
		summary.JobID = id
		summary.Kind = kind

		finished := time.Now()
		r.mu.Lock()
		job.Status = JobFinished
		job.FinishedAt = &finished
		job.Summary = &summary
		r.mu.Unlock()

		r.logger.Info("batch finished",
			zap.String("job_id", id),
			zap.String("kind", kind),
			zap.Int("total", summary.Total),
			zap.Int("succeeded", summary.Succeeded),
			zap.Int("failed", summary.Failed),
		)
		done <- summary
	}()

	r.logger.Info("batch submitted", zap.String("job_id", id), zap.String("kind", kind))
	return id, done
}

// Get returns a copy of the job with the given id
func (r *JobRegistry) Get(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Wait blocks until every submitted job has finished
func (r *JobRegistry) Wait() {
	r.wg.Wait()
}
