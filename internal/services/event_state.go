package services

import (
	"time"

	"github.com/terraincognita07/sitr/internal/models"
)

// The functions in this file answer state questions by looking for the most
// recent event of a relevant kind. They never assume the slice is sorted:
// recency is decided by timestamp, then by id for identical timestamps.

type TrackingState string

const (
	StateNoDay         TrackingState = "no_day"
	StateIdle          TrackingState = "idle"
	StateProjectActive TrackingState = "project_active"
	StateOnBreak       TrackingState = "on_break"
)

// CurrentState summarises a user's log at one point in time.
type CurrentState struct {
	State           TrackingState `json:"state"`
	DayStartedAt    *time.Time    `json:"day_started_at,omitempty"`
	ActiveProjectID *uint         `json:"active_project_id,omitempty"`
	BreakStartedAt  *time.Time    `json:"break_started_at,omitempty"`
	ResumeProjectID *uint         `json:"resume_project_id,omitempty"`
}

func occursAfter(left models.Event, right models.Event) bool {
	if left.Timestamp.Equal(right.Timestamp) {
		return left.ID > right.ID
	}
	return left.Timestamp.After(right.Timestamp)
}

func latestEvent(events []models.Event, match func(models.Event) bool) (models.Event, bool) {
	var latest models.Event
	found := false
	for _, event := range events {
		if !match(event) {
			continue
		}
		if !found || occursAfter(event, latest) {
			latest = event
			found = true
		}
	}
	return latest, found
}

func isWorkdayEvent(event models.Event) bool { return event.Action.IsWorkday() }
func isBreakEvent(event models.Event) bool   { return event.Action.IsBreak() }
func isProjectEvent(event models.Event) bool { return event.Action.IsProject() }

func opensProject(action models.Action) bool {
	return action == models.ActionProjectStart || action == models.ActionProjectResume
}

func HasOpenDay(events []models.Event) bool {
	latest, ok := latestEvent(events, isWorkdayEvent)
	return ok && latest.Action == models.ActionWorkdayStart
}

func IsBreakActive(events []models.Event) bool {
	latest, ok := latestEvent(events, isBreakEvent)
	return ok && latest.Action == models.ActionBreakStart
}

// ActiveProjectID ignores workday and break events: a project paused by a
// break stays active until a Project End is recorded.
func ActiveProjectID(events []models.Event) (uint, bool) {
	latest, ok := latestEvent(events, isProjectEvent)
	if !ok || !opensProject(latest.Action) || latest.ProjectID == nil {
		return 0, false
	}
	return *latest.ProjectID, true
}

func IsAnyProjectActive(events []models.Event) bool {
	_, ok := ActiveProjectID(events)
	return ok
}

func IsProjectActive(events []models.Event, projectID uint) bool {
	latest, ok := latestEvent(events, func(event models.Event) bool {
		return isProjectEvent(event) && event.ProjectID != nil && *event.ProjectID == projectID
	})
	return ok && opensProject(latest.Action)
}

// LastProjectBeforeBreak returns the project opened most recently before the
// currently active break. It returns false when no break is active.
func LastProjectBeforeBreak(events []models.Event) (uint, bool) {
	breakEvent, ok := latestEvent(events, isBreakEvent)
	if !ok || breakEvent.Action != models.ActionBreakStart {
		return 0, false
	}

	opened, ok := latestEvent(events, func(event models.Event) bool {
		return opensProject(event.Action) && event.ProjectID != nil && occursAfter(breakEvent, event)
	})
	if !ok {
		return 0, false
	}
	return *opened.ProjectID, true
}

func DeriveState(events []models.Event) CurrentState {
	dayEvent, ok := latestEvent(events, isWorkdayEvent)
	if !ok || dayEvent.Action != models.ActionWorkdayStart {
		return CurrentState{State: StateNoDay}
	}

	dayStarted := dayEvent.Timestamp
	state := CurrentState{State: StateIdle, DayStartedAt: &dayStarted}
	if projectID, ok := ActiveProjectID(events); ok {
		state.State = StateProjectActive
		state.ActiveProjectID = &projectID
	}
	if breakEvent, ok := latestEvent(events, isBreakEvent); ok && breakEvent.Action == models.ActionBreakStart {
		breakStarted := breakEvent.Timestamp
		state.State = StateOnBreak
		state.BreakStartedAt = &breakStarted
		if projectID, ok := LastProjectBeforeBreak(events); ok {
			state.ResumeProjectID = &projectID
		}
	}
	return state
}
