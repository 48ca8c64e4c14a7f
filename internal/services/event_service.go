package services

import (
	"context"
	"fmt"
	"time"

	"github.com/terraincognita07/sitr/internal/models"
)

type EventUserRepository interface {
	FindByID(ctx context.Context, userID uint) (models.User, error)
}

type EventRepository interface {
	ListByUserRange(ctx context.Context, userID uint, from *time.Time, to *time.Time) ([]models.Event, error)
	Latest(ctx context.Context, userID uint) (models.Event, error)
}

// Status is the current state of a user plus today's running totals.
type Status struct {
	User              models.User   `json:"user"`
	State             CurrentState  `json:"state"`
	ActiveProjectName string        `json:"active_project,omitempty"`
	ResumeProjectName string        `json:"resume_project,omitempty"`
	WorkedToday       time.Duration `json:"-"`
	BreakToday        time.Duration `json:"-"`
	LatestEvent       *models.Event `json:"latest_event,omitempty"`
}

type EventService struct {
	users  EventUserRepository
	events EventRepository
	now    func() time.Time
}

func NewEventService(users EventUserRepository, events EventRepository) *EventService {
	return &EventService{
		users:  users,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (service *EventService) WithClock(now func() time.Time) *EventService {
	if now != nil {
		service.now = now
	}
	return service
}

func (service *EventService) requireUser(ctx context.Context, userID uint) (models.User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, translateLookup(err, "load user", fmt.Sprintf("user %d not found", userID))
	}
	return user, nil
}

// Today lists the events of the current local day.
func (service *EventService) Today(ctx context.Context, userID uint, location *time.Location) ([]models.Event, error) {
	from, to := DayRange(service.now(), location)
	return service.Range(ctx, userID, &from, &to)
}

// Range lists events with from <= timestamp < to. Nil bounds are open.
func (service *EventService) Range(ctx context.Context, userID uint, from *time.Time, to *time.Time) ([]models.Event, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, invalidOperation("range end must not be before range start")
	}
	if _, err := service.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	events, err := service.events.ListByUserRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (service *EventService) Latest(ctx context.Context, userID uint) (models.Event, error) {
	if _, err := service.requireUser(ctx, userID); err != nil {
		return models.Event{}, err
	}
	event, err := service.events.Latest(ctx, userID)
	if err != nil {
		return models.Event{}, translateLookup(err, "load latest event", fmt.Sprintf("no events recorded for user %d", userID))
	}
	return event, nil
}

func (service *EventService) Status(ctx context.Context, userID uint, location *time.Location) (Status, error) {
	user, err := service.requireUser(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	events, err := service.events.ListByUserRange(ctx, userID, nil, nil)
	if err != nil {
		return Status{}, fmt.Errorf("list events: %w", err)
	}

	now := service.now()
	status := Status{User: user, State: DeriveState(events)}
	names := projectNames(events)
	if status.State.ActiveProjectID != nil {
		status.ActiveProjectName = names[*status.State.ActiveProjectID]
	}
	if status.State.ResumeProjectID != nil {
		status.ResumeProjectName = names[*status.State.ResumeProjectID]
	}
	if latest, ok := latestEvent(events, func(models.Event) bool { return true }); ok {
		status.LatestEvent = &latest
	}

	dayStart, dayEnd := DayRange(now, location)
	today := make([]models.Event, 0)
	for _, event := range events {
		if !event.Timestamp.Before(dayStart) && event.Timestamp.Before(dayEnd) {
			today = append(today, event)
		}
	}
	report := BuildReport(today, now)
	status.WorkedToday = report.TotalWork()
	status.BreakToday = report.TotalBreak()
	return status, nil
}

func projectNames(events []models.Event) map[uint]string {
	names := make(map[uint]string)
	for _, event := range events {
		if event.ProjectID != nil {
			names[*event.ProjectID] = eventProjectName(event)
		}
	}
	return names
}
