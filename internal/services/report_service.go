package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/sitr/internal/models"
)

type ReportUserRepository interface {
	FindByID(ctx context.Context, userID uint) (models.User, error)
}

type ReportProjectRepository interface {
	FindByName(ctx context.Context, userID uint, name string) (models.Project, error)
}

type ReportEventRepository interface {
	ListByUserRange(ctx context.Context, userID uint, from *time.Time, to *time.Time) ([]models.Event, error)
}

type ReportKind string

const (
	ReportDaily   ReportKind = "daily"
	ReportWeekly  ReportKind = "weekly"
	ReportProject ReportKind = "project"
)

// PeriodReport is a derived report over [From, To) in Location.
type PeriodReport struct {
	Kind     ReportKind
	User     models.User
	Project  *models.Project
	From     time.Time
	To       time.Time
	Location *time.Location
	Report   Report
	Days     []DayGroup
}

func (period PeriodReport) Title() string {
	switch period.Kind {
	case ReportWeekly:
		last := period.To.AddDate(0, 0, -1)
		return fmt.Sprintf("Weekly report %s (%s - %s)", WeekKey(period.From), period.From.Format("Jan 02"), last.Format("Jan 02, 2006"))
	case ReportProject:
		last := period.To.AddDate(0, 0, -1)
		name := ""
		if period.Project != nil {
			name = period.Project.Name
		}
		return fmt.Sprintf("Project report '%s' (%s - %s)", name, DayKey(period.From), DayKey(last))
	default:
		return "Daily report " + period.From.Format("Monday, 02 Jan 2006")
	}
}

type ReportService struct {
	users    ReportUserRepository
	projects ReportProjectRepository
	events   ReportEventRepository
	now      func() time.Time
}

func NewReportService(users ReportUserRepository, projects ReportProjectRepository, events ReportEventRepository) *ReportService {
	return &ReportService{
		users:    users,
		projects: projects,
		events:   events,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (service *ReportService) WithClock(now func() time.Time) *ReportService {
	if now != nil {
		service.now = now
	}
	return service
}

func (service *ReportService) Daily(ctx context.Context, userID uint, day time.Time, location *time.Location) (PeriodReport, error) {
	from, to := DayRange(day, location)
	return service.build(ctx, ReportDaily, userID, nil, from, to, location)
}

// Weekly covers the Monday to Sunday week containing day.
func (service *ReportService) Weekly(ctx context.Context, userID uint, day time.Time, location *time.Location) (PeriodReport, error) {
	from, to := WeekRange(day, location)
	return service.build(ctx, ReportWeekly, userID, nil, from, to, location)
}

// Project derives sessions from every event in the range and keeps those of
// the named project, so handovers to other projects still end its sessions.
func (service *ReportService) Project(ctx context.Context, userID uint, name string, fromDay time.Time, toDay time.Time, location *time.Location) (PeriodReport, error) {
	from, _ := DayRange(fromDay, location)
	_, to := DayRange(toDay, location)
	if !to.After(from) {
		return PeriodReport{}, invalidOperation("range end must not be before range start")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return PeriodReport{}, ErrProjectNameRequired
	}
	project, err := service.projects.FindByName(ctx, userID, name)
	if err != nil {
		if _, userErr := service.requireUser(ctx, userID); userErr != nil {
			return PeriodReport{}, userErr
		}
		return PeriodReport{}, translateLookup(err, "find project", fmt.Sprintf("project '%s' not found", name))
	}
	return service.build(ctx, ReportProject, userID, &project, from, to, location)
}

func (service *ReportService) requireUser(ctx context.Context, userID uint) (models.User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, translateLookup(err, "load user", fmt.Sprintf("user %d not found", userID))
	}
	return user, nil
}

func (service *ReportService) build(ctx context.Context, kind ReportKind, userID uint, project *models.Project, from time.Time, to time.Time, location *time.Location) (PeriodReport, error) {
	if location == nil {
		location = time.UTC
	}
	user, err := service.requireUser(ctx, userID)
	if err != nil {
		return PeriodReport{}, err
	}

	events, err := service.events.ListByUserRange(ctx, userID, &from, &to)
	if err != nil {
		return PeriodReport{}, fmt.Errorf("list events: %w", err)
	}

	// Sessions left open inside a past range run until the range end.
	now := service.now()
	if now.After(to) {
		now = to
	}
	report := BuildReport(events, now)
	if project != nil {
		report = report.FilterProject(project.ID)
	}

	return PeriodReport{
		Kind:     kind,
		User:     user,
		Project:  project,
		From:     from,
		To:       to,
		Location: location,
		Report:   report,
		Days:     GroupByDay(report, from, to, location),
	}, nil
}
