package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventboard/internal/domain"
)

// Dispatcher is the asynchronous notification sink: a buffered channel
// drained by a fixed worker pool. Mutations enqueue and move on; delivery
// failures are logged, never propagated. It implements
// domain.NotificationDispatcher.
type Dispatcher struct {
	email         domain.EmailService
	notifications domain.NotificationRepository
	logger        *slog.Logger

	jobs    chan domain.DispatchJob
	workers sync.WaitGroup
}

// NewDispatcher starts the worker pool. Close the dispatcher on shutdown to
// drain the queue.
func NewDispatcher(email domain.EmailService, notifications domain.NotificationRepository, logger *slog.Logger, workers, buffer int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if buffer < 1 {
		buffer = 1
	}
	d := &Dispatcher{
		email:         email,
		notifications: notifications,
		logger:        logger,
		jobs:          make(chan domain.DispatchJob, buffer),
	}
	for i := 0; i < workers; i++ {
		d.workers.Add(1)
		go func() {
			defer d.workers.Done()
			for job := range d.jobs {
				d.process(job)
				if job.Done != nil {
					job.Done.Done()
				}
			}
		}()
	}
	return d
}

// Enqueue hands a job to the worker pool. It only blocks when the buffer is
// full. Must not be called after Close. Callers that need to await a batch
// set job.Done to their own WaitGroup; engagement actions leave it nil and
// move on.
func (d *Dispatcher) Enqueue(job domain.DispatchJob) {
	d.jobs <- job
}

// Close drains the queue and stops the workers.
func (d *Dispatcher) Close() {
	close(d.jobs)
	d.workers.Wait()
}

func (d *Dispatcher) process(job domain.DispatchJob) {
	// Jobs outlive the request that enqueued them, so they carry their own
	// deadline instead of the caller's context.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	jobID := uuid.NewString()
	if job.Email != "" {
		if err := d.email.SendEventNotification(ctx, job.Kind, job.Data); err != nil {
			d.logger.Error("notification email failed",
				"job_id", jobID, "kind", string(job.Kind), "to", job.Email, "err", err)
		}
	}
	if job.UserID != "" && job.EventID != "" {
		n := &domain.Notification{
			UserID:    job.UserID,
			EventID:   job.EventID,
			Kind:      job.Kind,
			IsRead:    false,
			CreatedAt: time.Now(),
		}
		if err := d.notifications.Create(ctx, n); err != nil {
			d.logger.Error("notification record failed",
				"job_id", jobID, "kind", string(job.Kind), "user_id", job.UserID, "event_id", job.EventID, "err", err)
		}
	}
}
