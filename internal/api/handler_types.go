package api

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/sitr/internal/app"
	"github.com/terraincognita07/sitr/internal/models"
	"github.com/terraincognita07/sitr/internal/services"
)

type Handler struct {
	users    *services.UserService
	projects *services.ProjectService
	tracking *services.TimeService
	events   *services.EventService
	reports  *services.ReportService
	location *time.Location
	logger   zerolog.Logger
	now      func() time.Time
}

func NewHandler(all *app.Services, location *time.Location, logger zerolog.Logger) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		users:    all.Users,
		projects: all.Projects,
		tracking: all.Time,
		events:   all.Events,
		reports:  all.Reports,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

func (handler *Handler) WithClock(now func() time.Time) *Handler {
	if now != nil {
		handler.now = now
	}
	return handler
}

type operationData struct {
	ProjectID      *uint          `json:"project_id,omitempty"`
	ProjectName    string         `json:"project_name,omitempty"`
	EndedProjectID *uint          `json:"ended_project_id,omitempty"`
	ClosedProject  bool           `json:"closed_project"`
	ClosedBreak    bool           `json:"closed_break"`
	WasCreated     bool           `json:"was_created"`
	Events         []models.Event `json:"events"`
}

type operationResponse struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Data      operationData `json:"data"`
}

type statusResponse struct {
	User               models.User           `json:"user"`
	State              services.CurrentState `json:"state"`
	ActiveProject      string                `json:"active_project,omitempty"`
	ResumeProject      string                `json:"resume_project,omitempty"`
	WorkedToday        string                `json:"worked_today"`
	BreakToday         string                `json:"break_today"`
	WorkedTodaySeconds int64                 `json:"worked_today_seconds"`
	BreakTodaySeconds  int64                 `json:"break_today_seconds"`
	LatestEvent        *models.Event         `json:"latest_event,omitempty"`
}
