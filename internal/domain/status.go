package domain

import "time"

// NextStatus returns the status an event should hold at the given instant.
// It is the single place lifecycle transitions are derived; both the
// per-request path and the reconciliation sweep call it.
//
// StatusCancelled is sticky: once set it is returned unchanged regardless of
// dates. Completion wins ties (end <= now beats an active window). A nil
// start date means the event has no announced start yet and stays coming
// soon until its end date passes.
func NextStatus(prev EventStatus, start *time.Time, end time.Time, now time.Time) EventStatus {
	if prev == StatusCancelled {
		return StatusCancelled
	}
	if !end.After(now) {
		return StatusCompleted
	}
	if start != nil && !start.After(now) {
		return StatusActive
	}
	return StatusComingSoon
}

// StatusAtCreation decides the initial status of a new event: active if the
// start date has already arrived, else coming soon.
func StatusAtCreation(start *time.Time, now time.Time) EventStatus {
	if start != nil && !start.After(now) {
		return StatusActive
	}
	return StatusComingSoon
}
