package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"eventboard/internal/domain"
)

// Scheduler is the daily reconciliation sweep: it advances every
// non-cancelled event through the lifecycle state machine and fires the
// time-based notifications (24h reminder, post-completion review prompt).
type Scheduler struct {
	events         domain.EventRepository
	notifications  domain.NotificationRepository
	dispatcher     domain.NotificationDispatcher
	logger         *slog.Logger
	appURL         string
	detailPath     string
	sweepHour      int
	resendReminder bool

	// now is swappable for tests.
	now func() time.Time
}

func NewScheduler(events domain.EventRepository,
	notifications domain.NotificationRepository,
	dispatcher domain.NotificationDispatcher,
	logger *slog.Logger,
	appURL, detailPath string,
	sweepHour int,
	resendReminder bool,
) *Scheduler {
	return &Scheduler{
		events:         events,
		notifications:  notifications,
		dispatcher:     dispatcher,
		logger:         logger,
		appURL:         appURL,
		detailPath:     detailPath,
		sweepHour:      sweepHour,
		resendReminder: resendReminder,
		now:            time.Now,
	}
}

// Run sweeps once per day at the configured hour until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := s.nextRun(s.now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if err := s.SweepOnce(ctx, s.now()); err != nil {
			s.logger.Error("sweep aborted", "err", err)
		}
	}
}

func (s *Scheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.sweepHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// SweepOnce processes every non-cancelled event once. Per-event failures are
// logged and skipped; only failing to list events aborts the run. All
// notification dispatches of the run are awaited before returning, so a run
// has bounded wall-clock time, but individual dispatch failures never roll
// anything back.
func (s *Scheduler) SweepOnce(ctx context.Context, now time.Time) error {
	s.logger.Info("updating event states and sending notifications")

	events, err := s.events.List(ctx, domain.EventFilter{IncludeCompleted: true})
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	// Transitions work on date granularity. The batch group counts this
	// run's dispatches only; engagement actions enqueue into the same pool
	// concurrently and are not awaited here.
	today := truncateToDay(now)
	var batch sync.WaitGroup
	for _, event := range events {
		if err := s.sweepEvent(ctx, event, today, &batch); err != nil {
			s.logger.Error("sweep event failed", "event_id", event.ID, "err", err)
		}
	}

	batch.Wait()
	return nil
}

func (s *Scheduler) sweepEvent(ctx context.Context, event *domain.Event, today time.Time, batch *sync.WaitGroup) error {
	if event.Status == domain.StatusCancelled {
		return nil
	}

	if s.reminderDue(event, today) {
		if err := s.sendReminders(ctx, event, batch); err != nil {
			return err
		}
	}

	next := domain.NextStatus(event.Status, event.StartDate, event.EndDate, today)
	if next == event.Status {
		return nil
	}
	applied, err := s.events.UpdateStatus(ctx, event.ID, event.Status, next)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if !applied {
		// Lost to a concurrent write, typically a manual cancel. Leave the
		// event for the next run.
		s.logger.Info("status transition skipped", "event_id", event.ID, "from", string(event.Status), "to", string(next))
		return nil
	}
	s.logger.Info("event status updated", "event_id", event.ID, "from", string(event.Status), "to", string(next))

	// The guarded update makes this the first completion, so each member
	// gets the review prompt exactly once.
	if next == domain.StatusCompleted {
		return s.notifyMembers(ctx, event, domain.KindEventReview, false, batch)
	}
	return nil
}

func (s *Scheduler) reminderDue(event *domain.Event, today time.Time) bool {
	if event.StartDate == nil {
		return false
	}
	if event.Status == domain.StatusCompleted || event.Status == domain.StatusCancelled {
		return false
	}
	start := truncateToDay(*event.StartDate)
	return start.After(today) && start.Sub(today) <= 24*time.Hour
}

func (s *Scheduler) sendReminders(ctx context.Context, event *domain.Event, batch *sync.WaitGroup) error {
	return s.notifyMembers(ctx, event, domain.KindEventReminder24h, !s.resendReminder, batch)
}

// notifyMembers enqueues one (email + persisted record) job per member into
// the run's batch group. With dedupe on, members who already hold a record
// of the kind for this event are skipped.
func (s *Scheduler) notifyMembers(ctx context.Context, event *domain.Event, kind domain.NotificationKind, dedupe bool, batch *sync.WaitGroup) error {
	members, err := s.events.ListMembers(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	for _, member := range members {
		if dedupe {
			sent, err := s.notifications.Exists(ctx, event.ID, member.ID, kind)
			if err != nil {
				return fmt.Errorf("check notification: %w", err)
			}
			if sent {
				continue
			}
		}
		data := &domain.EventEmailData{
			Email:        member.Email,
			EventName:    event.Name,
			EventURL:     s.appURL + fmt.Sprintf(s.detailPath, event.ID),
			MembersCount: len(members),
		}
		if event.StartDate != nil {
			data.EventDate = event.StartDate.Format("02.01.2006")
		}
		if event.Location != nil {
			data.EventLocation = *event.Location
		}
		batch.Add(1)
		s.dispatcher.Enqueue(domain.DispatchJob{
			Kind:    kind,
			Email:   member.Email,
			Data:    data,
			UserID:  member.ID,
			EventID: event.ID,
			Done:    batch,
		})
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
