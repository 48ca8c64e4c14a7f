package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/sitr/internal/models"
)

const (
	autoClosedAtEndOfDay = "Auto-closed at end of day"
	autoEndedForSwitch   = "Auto-ended for project switch"
	autoEndedForStart    = "Auto-ended for project start"
	autoEndedForResume   = "Auto-ended for project resume"
)

// Operation names used for logging and metrics labels.
const (
	OperationStartDay     = "start_day"
	OperationEndDay       = "end_day"
	OperationStartProject = "start_project"
	OperationEndProject   = "end_project"
	OperationStartBreak   = "start_break"
	OperationEndBreak     = "end_break"
	OperationContinue     = "continue_project"
)

const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type TimeUserRepository interface {
	FindByID(ctx context.Context, userID uint) (models.User, error)
	TouchLastActive(ctx context.Context, userID uint, at time.Time) error
}

type TimeProjectRepository interface {
	Get(ctx context.Context, projectID uint) (models.Project, error)
	FindByName(ctx context.Context, userID uint, name string) (models.Project, error)
	Add(ctx context.Context, project *models.Project) error
	IncrementTrackingCount(ctx context.Context, projectID uint) error
}

type TimeEventRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.Event, error)
	Add(ctx context.Context, event *models.Event) error
}

// TimeUnit is the set of repositories bound to one transaction.
type TimeUnit struct {
	Users    TimeUserRepository
	Projects TimeProjectRepository
	Events   TimeEventRepository
}

// TimeTransactor runs fn inside one transaction and commits only when fn
// returns nil.
type TimeTransactor func(ctx context.Context, fn func(unit TimeUnit) error) error

// OperationRecorder receives the outcome of every tracking operation.
type OperationRecorder interface {
	ObserveOperation(operation string, outcome string, elapsed time.Duration)
	CountEvent(action models.Action)
}

type OperationResult struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	Timestamp      time.Time      `json:"timestamp"`
	ProjectID      *uint          `json:"project_id,omitempty"`
	ProjectName    string         `json:"project_name,omitempty"`
	EndedProjectID *uint          `json:"ended_project_id,omitempty"`
	ClosedProject  bool           `json:"closed_project"`
	ClosedBreak    bool           `json:"closed_break"`
	WasCreated     bool           `json:"was_created"`
	Events         []models.Event `json:"events,omitempty"`
}

type TimeService struct {
	transact TimeTransactor
	recorder OperationRecorder
	logger   zerolog.Logger
	locks    *userLocks
	now      func() time.Time
}

func NewTimeService(transact TimeTransactor, recorder OperationRecorder, logger zerolog.Logger) *TimeService {
	return &TimeService{
		transact: transact,
		recorder: recorder,
		logger:   logger,
		locks:    &userLocks{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used to stamp events.
func (service *TimeService) WithClock(now func() time.Time) *TimeService {
	if now != nil {
		service.now = func() time.Time { return now().UTC() }
	}
	return service
}

// trackingTx is the state one operation works against. events holds the
// user's full log and grows as the operation appends.
type trackingTx struct {
	ctx      context.Context
	unit     TimeUnit
	user     models.User
	now      time.Time
	events   []models.Event
	appended []models.Event
}

func (tx *trackingTx) append(action models.Action, projectID *uint, message string) error {
	event := models.Event{
		UserID:    tx.user.ID,
		ProjectID: projectID,
		Action:    action,
		Timestamp: tx.now,
		Message:   message,
	}
	if err := tx.unit.Events.Add(tx.ctx, &event); err != nil {
		return fmt.Errorf("append %s event: %w", action, err)
	}
	tx.events = append(tx.events, event)
	tx.appended = append(tx.appended, event)
	return nil
}

func (tx *trackingTx) loadProject(projectID uint) (models.Project, error) {
	project, err := tx.unit.Projects.Get(tx.ctx, projectID)
	if err != nil {
		return models.Project{}, translateLookup(err, "load project", fmt.Sprintf("project %d not found", projectID))
	}
	return project, nil
}

// run executes one tracking operation under the user's lock and inside one
// transaction. All events an operation appends share the timestamp captured here.
func (service *TimeService) run(ctx context.Context, operation string, userID uint, apply func(tx *trackingTx) (OperationResult, error)) (OperationResult, error) {
	unlock := service.locks.lock(userID)
	defer unlock()

	started := time.Now()
	now := service.now()
	var result OperationResult
	var appended []models.Event

	err := service.transact(ctx, func(unit TimeUnit) error {
		user, err := unit.Users.FindByID(ctx, userID)
		if err != nil {
			return translateLookup(err, "load user", fmt.Sprintf("user %d not found", userID))
		}
		if user.IsArchived() {
			return ErrUserArchived
		}

		events, err := unit.Events.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}

		tx := &trackingTx{ctx: ctx, unit: unit, user: user, now: now, events: events}
		outcome, err := apply(tx)
		if err != nil {
			return err
		}
		if outcome.Success && len(tx.appended) > 0 {
			if err := unit.Users.TouchLastActive(ctx, userID, now); err != nil {
				return fmt.Errorf("stamp last active: %w", err)
			}
		}

		outcome.Timestamp = now
		outcome.Events = tx.appended
		result = outcome
		appended = tx.appended
		return nil
	})

	service.observe(operation, userID, result, appended, err, time.Since(started))
	if err != nil {
		return OperationResult{}, err
	}
	return result, nil
}

func (service *TimeService) observe(operation string, userID uint, result OperationResult, appended []models.Event, err error, elapsed time.Duration) {
	outcome := OutcomeSuccess
	switch {
	case err == nil && result.Success:
	case err == nil, errors.Is(err, ErrInvalidOperation), errors.Is(err, ErrNotFound), errors.Is(err, ErrIntegrityConflict):
		outcome = OutcomeRejected
	default:
		outcome = OutcomeError
	}

	if service.recorder != nil {
		service.recorder.ObserveOperation(operation, outcome, elapsed)
		if err == nil {
			for _, event := range appended {
				service.recorder.CountEvent(event.Action)
			}
		}
	}

	switch outcome {
	case OutcomeSuccess:
		service.logger.Debug().Str("operation", operation).Uint("user_id", userID).Int("events", len(appended)).Msg("tracking operation applied")
	case OutcomeRejected:
		message := result.Message
		if err != nil {
			message = err.Error()
		}
		service.logger.Info().Str("operation", operation).Uint("user_id", userID).Str("reason", message).Msg("tracking operation rejected")
	default:
		service.logger.Error().Err(err).Str("operation", operation).Uint("user_id", userID).Msg("tracking operation failed")
	}
}

func (service *TimeService) StartDay(ctx context.Context, userID uint) (OperationResult, error) {
	return service.run(ctx, OperationStartDay, userID, func(tx *trackingTx) (OperationResult, error) {
		if HasOpenDay(tx.events) {
			return OperationResult{}, ErrWorkdayAlreadyStarted
		}
		if err := tx.append(models.ActionWorkdayStart, nil, ""); err != nil {
			return OperationResult{}, err
		}
		return OperationResult{Success: true, Message: "Workday started"}, nil
	})
}

// EndDay closes an active break and an active project before ending the day.
func (service *TimeService) EndDay(ctx context.Context, userID uint) (OperationResult, error) {
	return service.run(ctx, OperationEndDay, userID, func(tx *trackingTx) (OperationResult, error) {
		if !HasOpenDay(tx.events) {
			return OperationResult{}, ErrNoOpenWorkdayToEnd
		}

		result := OperationResult{Success: true, Message: "Workday ended"}
		if IsBreakActive(tx.events) {
			if err := tx.append(models.ActionBreakEnd, nil, autoClosedAtEndOfDay); err != nil {
				return OperationResult{}, err
			}
			result.ClosedBreak = true
		}
		if projectID, ok := ActiveProjectID(tx.events); ok {
			if err := tx.append(models.ActionProjectEnd, &projectID, autoClosedAtEndOfDay); err != nil {
				return OperationResult{}, err
			}
			result.ClosedProject = true
			result.EndedProjectID = &projectID
		}
		if err := tx.append(models.ActionWorkdayEnd, nil, ""); err != nil {
			return OperationResult{}, err
		}
		return result, nil
	})
}

// StartProject switches to the named project, creating it when autoCreate is
// set. Starting the project that is already active is reported as an
// unsuccessful result and leaves the log untouched.
func (service *TimeService) StartProject(ctx context.Context, userID uint, name string, autoCreate bool) (OperationResult, error) {
	name = strings.TrimSpace(name)
	return service.run(ctx, OperationStartProject, userID, func(tx *trackingTx) (OperationResult, error) {
		if name == "" {
			return OperationResult{}, ErrProjectNameRequired
		}
		if !HasOpenDay(tx.events) {
			return OperationResult{}, ErrNoOpenWorkday
		}

		project, created, err := tx.resolveProject(name, autoCreate)
		if err != nil {
			return OperationResult{}, err
		}
		if project.IsArchived() {
			return OperationResult{}, invalidOperationf("project '%s' is archived", name)
		}

		result := OperationResult{
			Success:     true,
			Message:     fmt.Sprintf("Started working on '%s'", name),
			ProjectID:   &project.ID,
			ProjectName: project.Name,
			WasCreated:  created,
		}

		if activeID, ok := ActiveProjectID(tx.events); ok {
			if activeID == project.ID {
				return OperationResult{
					Success:     false,
					Message:     fmt.Sprintf("Project '%s' is already active", name),
					ProjectID:   &project.ID,
					ProjectName: project.Name,
				}, nil
			}
			if err := tx.append(models.ActionProjectEnd, &activeID, autoEndedForSwitch); err != nil {
				return OperationResult{}, err
			}
			result.EndedProjectID = &activeID
			result.ClosedProject = true
		}
		if IsBreakActive(tx.events) {
			if err := tx.append(models.ActionBreakEnd, nil, autoEndedForStart); err != nil {
				return OperationResult{}, err
			}
			result.ClosedBreak = true
		}
		if err := tx.append(models.ActionProjectStart, &project.ID, ""); err != nil {
			return OperationResult{}, err
		}
		if err := tx.unit.Projects.IncrementTrackingCount(tx.ctx, project.ID); err != nil {
			return OperationResult{}, fmt.Errorf("increment tracking count: %w", err)
		}
		return result, nil
	})
}

func (tx *trackingTx) resolveProject(name string, autoCreate bool) (models.Project, bool, error) {
	project, err := tx.unit.Projects.FindByName(tx.ctx, tx.user.ID, name)
	if err == nil {
		return project, false, nil
	}
	lookupErr := translateLookup(err, "find project", fmt.Sprintf("project '%s' not found", name))
	if !errors.Is(lookupErr, ErrNotFound) || !autoCreate {
		return models.Project{}, false, lookupErr
	}

	project = models.Project{UserID: tx.user.ID, Name: name, State: models.ProjectStateActive}
	if err := tx.unit.Projects.Add(tx.ctx, &project); err != nil {
		return models.Project{}, false, fmt.Errorf("create project: %w", err)
	}
	return project, true, nil
}

// EndProject ends the named project, or the active one when name is empty.
func (service *TimeService) EndProject(ctx context.Context, userID uint, name string) (OperationResult, error) {
	name = strings.TrimSpace(name)
	return service.run(ctx, OperationEndProject, userID, func(tx *trackingTx) (OperationResult, error) {
		var project models.Project
		if name != "" {
			found, err := tx.unit.Projects.FindByName(tx.ctx, tx.user.ID, name)
			if err != nil {
				return OperationResult{}, translateLookup(err, "find project", fmt.Sprintf("project '%s' not found", name))
			}
			if !IsProjectActive(tx.events, found.ID) {
				return OperationResult{}, invalidOperationf("project '%s' is not active", name)
			}
			project = found
		} else {
			activeID, ok := ActiveProjectID(tx.events)
			if !ok {
				return OperationResult{}, ErrNoActiveProjectToEnd
			}
			loaded, err := tx.loadProject(activeID)
			if err != nil {
				return OperationResult{}, err
			}
			project = loaded
		}

		if err := tx.append(models.ActionProjectEnd, &project.ID, ""); err != nil {
			return OperationResult{}, err
		}
		return OperationResult{
			Success:       true,
			Message:       fmt.Sprintf("Ended work on '%s'", project.Name),
			ProjectID:     &project.ID,
			ProjectName:   project.Name,
			ClosedProject: true,
		}, nil
	})
}

// StartBreak pauses the active project. The project stays active so that
// ContinueProject can resume it.
func (service *TimeService) StartBreak(ctx context.Context, userID uint, message string) (OperationResult, error) {
	message = strings.TrimSpace(message)
	return service.run(ctx, OperationStartBreak, userID, func(tx *trackingTx) (OperationResult, error) {
		activeID, ok := ActiveProjectID(tx.events)
		if !ok {
			return OperationResult{}, ErrNoActiveProjectBreak
		}
		if IsBreakActive(tx.events) {
			return OperationResult{}, ErrBreakAlreadyActive
		}
		if err := tx.append(models.ActionBreakStart, nil, message); err != nil {
			return OperationResult{}, err
		}
		return OperationResult{Success: true, Message: "Break started", ProjectID: &activeID}, nil
	})
}

func (service *TimeService) EndBreak(ctx context.Context, userID uint) (OperationResult, error) {
	return service.run(ctx, OperationEndBreak, userID, func(tx *trackingTx) (OperationResult, error) {
		if !IsBreakActive(tx.events) {
			return OperationResult{}, ErrNoActiveBreak
		}
		if err := tx.append(models.ActionBreakEnd, nil, ""); err != nil {
			return OperationResult{}, err
		}
		return OperationResult{Success: true, Message: "Break ended", ClosedBreak: true}, nil
	})
}

// ContinueProject ends the active break and resumes the project that was
// open when it started.
func (service *TimeService) ContinueProject(ctx context.Context, userID uint) (OperationResult, error) {
	return service.run(ctx, OperationContinue, userID, func(tx *trackingTx) (OperationResult, error) {
		if !IsBreakActive(tx.events) {
			return OperationResult{}, ErrNoActiveBreak
		}
		projectID, ok := LastProjectBeforeBreak(tx.events)
		if !ok {
			return OperationResult{}, ErrNoRecentProject
		}
		project, err := tx.loadProject(projectID)
		if err != nil {
			return OperationResult{}, err
		}

		if err := tx.append(models.ActionBreakEnd, nil, autoEndedForResume); err != nil {
			return OperationResult{}, err
		}
		if err := tx.append(models.ActionProjectResume, &project.ID, ""); err != nil {
			return OperationResult{}, err
		}
		return OperationResult{
			Success:     true,
			Message:     fmt.Sprintf("Resumed work on '%s'", project.Name),
			ProjectID:   &project.ID,
			ProjectName: project.Name,
			ClosedBreak: true,
		}, nil
	})
}
