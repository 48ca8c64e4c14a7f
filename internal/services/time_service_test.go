package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/terraincognita07/sitr/internal/models"
)

type trackingFixture struct {
	store    *trackingStoreStub
	clock    *testClock
	recorder *recorderStub
	service  *TimeService
	user     models.User
}

func newTrackingFixture(t *testing.T) *trackingFixture {
	t.Helper()

	store := newTrackingStoreStub()
	clock := newTestClock()
	recorder := newRecorderStub()
	service := NewTimeService(store.transact, recorder, zerolog.Nop()).WithClock(clock.Now)
	return &trackingFixture{
		store:    store,
		clock:    clock,
		recorder: recorder,
		service:  service,
		user:     store.addUser("worker@sitr.local"),
	}
}

func (fixture *trackingFixture) mustSucceed(t *testing.T, name string, result OperationResult, err error) OperationResult {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", name, err)
	}
	if !result.Success {
		t.Fatalf("%s: expected success, got %+v", name, result)
	}
	return result
}

func (fixture *trackingFixture) events() []models.Event {
	return fixture.store.eventsFor(fixture.user.ID)
}

func actionsOf(events []models.Event) []models.Action {
	actions := make([]models.Action, 0, len(events))
	for _, event := range events {
		actions = append(actions, event.Action)
	}
	return actions
}

func TestStartDayOpensDayAndRejectsSecondStart(t *testing.T) {
	fixture := newTrackingFixture(t)
	ctx := context.Background()

	result, err := fixture.service.StartDay(ctx, fixture.user.ID)
	fixture.mustSucceed(t, "start day", result, err)
	if result.Message != "Workday started" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if !result.Timestamp.Equal(fixture.clock.Now()) {
		t.Fatalf("expected timestamp %s, got %s", fixture.clock.Now(), result.Timestamp)
	}
	if !HasOpenDay(fixture.events()) {
		t.Fatal("expected open day after start_day")
	}

	fixture.clock.advance(time.Minute)
	_, err = fixture.service.StartDay(ctx, fixture.user.ID)
	if !errors.Is(err, ErrWorkdayAlreadyStarted) || !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected already-started invalid operation, got %v", err)
	}
	if len(fixture.events()) != 1 {
		t.Fatalf("expected the rejected start to append nothing, got %d events", len(fixture.events()))
	}
}

func TestEndDayClosesBreakAndProjectWithSharedTimestamp(t *testing.T) {
	fixture := newTrackingFixture(t)
	ctx := context.Background()

	fixture.service.StartDay(ctx, fixture.user.ID)
	fixture.clock.advance(time.Minute)
	fixture.service.StartProject(ctx, fixture.user.ID, "Alpha", true)
	fixture.clock.advance(time.Hour)
	fixture.service.StartBreak(ctx, fixture.user.ID, "lunch")
	before := len(fixture.events())

	endedAt := fixture.clock.advance(30 * time.Minute)
	result, err := fixture.service.EndDay(ctx, fixture.user.ID)
	fixture.mustSucceed(t, "end day", result, err)

	appended := fixture.events()[before:]
	expected := []models.Action{models.ActionBreakEnd, models.ActionProjectEnd, models.ActionWorkdayEnd}
	if !reflect.DeepEqual(actionsOf(appended), expected) {
		t.Fatalf("expected %v, got %v", expected, actionsOf(appended))
	}
	for _, event := range appended {
		if !event.Timestamp.Equal(endedAt) {
			t.Fatalf("expected every event at %s, got %s for %s", endedAt, event.Timestamp, event.Action)
		}
	}
	if appended[0].Message != "Auto-closed at end of day" || appended[1].Message != "Auto-closed at end of day" {
		t.Fatalf("expected auto-close annotations, got %q and %q", appended[0].Message, appended[1].Message)
	}
	if !result.ClosedBreak || !result.ClosedProject {
		t.Fatalf("expected closed break and project flags, got %+v", result)
	}
	alpha := fixture.store.projectByName(fixture.user.ID, "Alpha")
	if result.EndedProjectID == nil || *result.EndedProjectID != alpha.ID {
		t.Fatalf("expected ended project %d, got %v", alpha.ID, result.EndedProjectID)
	}
	if HasOpenDay(fixture.events()) {
		t.Fatal("expected no open day after end_day")
	}
	if len(result.Events) != 3 {
		t.Fatalf("expected result to carry the three appended events, got %d", len(result.Events))
	}
}

func TestEndDayWithoutOpenDayFails(t *testing.T) {
	fixture := newTrackingFixture(t)

	_, err := fixture.service.EndDay(context.Background(), fixture.user.ID)
	if !errors.Is(err, ErrNoOpenWorkdayToEnd) {
		t.Fatalf("expected no open workday error, got %v", err)
	}
	if err.Error() != "no open workday to end" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestContinueProjectWithoutBreakNeverMutates(t *testing.T) {
	fixture := newTrackingFixture(t)
	ctx := context.Background()

	fixture.service.StartDay(ctx, fixture.user.ID)
	fixture.service.StartProject(ctx, fixture.user.ID, "Alpha", true)
	before := fixture.events()
	userBefore := fixture.store.users[fixture.user.ID]

	for range 3 {
		fixture.clock.advance(time.Minute)
		_, err := fixture.service.ContinueProject(ctx, fixture.user.ID)
		if !errors.Is(err, ErrNoActiveBreak) {
			t.Fatalf("expected no active break error, got %v", err)
		}
	}
	if !reflect.DeepEqual(before, fixture.events()) {
		t.Fatal("expected event log to stay unchanged")
	}
	if !reflect.DeepEqual(userBefore, fixture.store.users[fixture.user.ID]) {
		t.Fatal("expected user to stay unchanged")
	}
}

func TestStartProjectHandoverReportsEndedProjectAndCounts(t *testing.T) {
	fixture := newTrackingFixture(t)
	ctx := context.Background()
	fixture.service.StartDay(ctx, fixture.user.ID)

	first, err := fixture.service.StartProject(ctx, fixture.user.ID, "A", true)
	fixture.mustSucceed(t, "start A", first, err)
	if !first.WasCreated {
		t.Fatal("expected A to be auto-created")
	}

	fixture.clock.advance(time.Minute)
	switched, err := fixture.service.StartProject(ctx, fixture.user.ID, "B", true)
	fixture.mustSucceed(t, "switch to B", switched, err)
	projectA := fixture.store.projectByName(fixture.user.ID, "A")
	if switched.EndedProjectID == nil || *switched.EndedProjectID != projectA.ID {
		t.Fatalf("expected ended_project_id=%d, got %v", projectA.ID, switched.EndedProjectID)
	}
	if got := fixture.store.projectByName(fixture.user.ID, "B").TrackingCount; got != 1 {
		t.Fatalf("expected B tracking_count=1, got %d", got)
	}
	handover := fixture.events()[len(fixture.events())-2]
	if handover.Action != models.ActionProjectEnd || handover.Message != "Auto-ended for project switch" {
		t.Fatalf("expected annotated handover end, got %+v", handover)
	}

	for _, name := range []string{"A", "B"} {
		fixture.clock.advance(time.Minute)
		result, err := fixture.service.StartProject(ctx, fixture.user.ID, name, true)
		fixture.mustSucceed(t, "start "+name, result, err)
		if result.WasCreated {
			t.Fatalf("expected %s to be reused", name)
		}
	}
	if got := fixture.store.projectByName(fixture.user.ID, "A").TrackingCount; got != 2 {
		t.Fatalf("expected A tracking_count=2, got %d", got)
	}
	if got := fixture.store.projectByName(fixture.user.ID, "B").TrackingCount; got != 2 {
		t.Fatalf("expected B tracking_count=2, got %d", got)
	}
}

func TestStartProjectAlreadyActiveIsUnsuccessfulNoOp(t *testing.T) {
	fixture := newTrackingFixture(t)
	ctx := context.Background()
	fixture.service.StartDay(ctx, fixture.user.ID)
	fixture.service.StartProject(ctx, fixture.user.ID, "Alpha", true)
	before := fixture.events()
	lastActive := *fixture.store.users[fixture.user.ID].LastActive

	fixture.clock.advance(time.Hour)
	result, err := fixture.service.StartProject(ctx, fixture.user.ID, "Alpha", true)
	if err != nil {
		t.Fatalf("expected no error for already-active project, got %v", err)
	}
	if result.Success {
		t.Fatal("expected unsuccessful result")
	}
	if result.Message != "Project 'Alpha' is already active" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if !reflect.DeepEqual(before, fixture.events()) {
		t.Fatal("expected no events to be appended")
	}
	if got := fixture.store.projectByName(fixture.user.ID, "Alpha").TrackingCount; got != 1 {
		t.Fatalf("expected tracking_count to stay 1, got %d", got)
	}
	if got := *fixture.store.users[fixture.user.ID].LastActive; !got.Equal(lastActive) {
		t.Fatalf("expected last_active to stay %s, got %s", lastActive, got)
	}
	if fixture.recorder.operations[OperationStartProject+"/"+OutcomeRejected] != 1 {
		t.Fatalf("expected the no-op to be recorded as rejected, got %v", fixture.recorder.operations)
	}
}

func TestStartProjectDuringBreakClosesBreak(t *testing.T) {
	fixture := newTrackingFixture(t)
	ctx := context.Background()
	fixture.service.StartDay(ctx, fixture.user.ID)
	fixture.service.StartProject(ctx, fixture.user.ID, "Alpha", true)
	fixture.service.StartBreak(ctx, fixture.user.ID, "")
	before := len(fixture.events())

	fixture.clock.advance(time.Minute)
	result, err := fixture.service.StartProject(ctx, fixture.user.ID, "Beta", true)
	fixture.mustSucceed(t, "start beta", result, err)

	expected := []models.Action{models.ActionProjectEnd, models.ActionBreakEnd, models.ActionProjectStart}
	if got := actionsOf(fixture.events()[before:]); !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	if fixture.events()[before+1].Message != "Auto-ended for project start" {
		t.Fatalf("unexpected break end annotation %q", fixture.events()[before+1].Message)
	}
	if !result.ClosedBreak || !result.ClosedProject {
		t.Fatalf("expected closed break and project, got %+v", result)
	}
	if IsBreakActive(fixture.events()) {
		t.Fatal("expected break to be closed")
	}
}

func TestStartProjectPreconditions(t *testing.T) {
	fixture := newTrackingFixture(t)
	ctx := context.Background()

	if _, err := fixture.service.StartProject(ctx, fixture.user.ID, "Alpha", true); !errors.Is(err, ErrNoOpenWorkday) {
		t.Fatalf("expected no open workday error, got %v", err)
	}
	fixture.service.StartDay(ctx, fixture.user.ID)

	if _, err := fixture.service.StartProject(ctx, fixture.user.ID, "   ", true); !errors.Is(err, ErrProjectNameRequired) {
		t.Fatalf("expected project name required, got %v", err)
	}

	_, err := fixture.service.StartProject(ctx, fixture.user.ID, "Ghost", false)
	if !errors.Is(err, ErrNotFound) || err.Error() != "project 'Ghost' not found" {
		t.Fatalf("expected project not found, got %v", err)
	}
	if fixture.store.projectByName(fixture.user.ID, "Ghost").ID != 0 {
		t.Fatal("expected no project to be created without auto-create")
	}

	fixture.store.addProject(fixture.user.ID, "Old", models.ProjectStateArchived)
	if _, err := fixture.service.StartProject(ctx, fixture.user.ID, "Old", true); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected archived project to be refused, got %v", err)
	}
}

func TestOperationsRequireExistingActiveUser(t *testing.T) {
	fixture := newTrackingFixture(t)
	ctx := context.Background()

	_, err := fixture.service.StartDay(ctx, 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}

	archived := fixture.store.addUser("gone@sitr.local")
	archived.State = models.UserStateArchived
	fixture.store.users[archived.ID] = archived
	if _, err := fixture.service.StartDay(ctx, archived.ID); !errors.Is(err, ErrUserArchived) {
		t.Fatalf("expected archived user to be refused, got %v", err)
	}
}

func TestEndProjectByNameAndDefault(t *testing.T) {
	fixture := newTrackingFixture(t)
	ctx := context.Background()
	fixture.service.StartDay(ctx, fixture.user.ID)

	if _, err := fixture.service.EndProject(ctx, fixture.user.ID, ""); !errors.Is(err, ErrNoActiveProjectToEnd) {
		t.Fatalf("expected no active project, got %v", err)
	}
	fixture.service.StartProject(ctx, fixture.user.ID, "Alpha", true)
	fixture.store.addProject(fixture.user.ID, "Beta", models.ProjectStateActive)

	_, err := fixture.service.EndProject(ctx, fixture.user.ID, "Beta")
	if !errors.Is(err, ErrInvalidOperation) || err.Error() != "project 'Beta' is not active" {
		t.Fatalf("expected Beta not active, got %v", err)
	}
	if _, err := fixture.service.EndProject(ctx, fixture.user.ID, "Nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected unknown project to be not found, got %v", err)
	}

	fixture.clock.advance(time.Hour)
	result, err := fixture.service.EndProject(ctx, fixture.user.ID, "")
	fixture.mustSucceed(t, "end project", result, err)
	if result.Message != "Ended work on 'Alpha'" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if IsAnyProjectActive(fixture.events()) {
		t.Fatal("expected no active project")
	}
}

func TestBreakPreconditions(t *testing.T) {
	fixture := newTrackingFixture(t)
	ctx := context.Background()
	fixture.service.StartDay(ctx, fixture.user.ID)

	if _, err := fixture.service.StartBreak(ctx, fixture.user.ID, ""); !errors.Is(err, ErrNoActiveProjectBreak) {
		t.Fatalf("expected no active project for break, got %v", err)
	}
	if _, err := fixture.service.EndBreak(ctx, fixture.user.ID); !errors.Is(err, ErrNoActiveBreak) {
		t.Fatalf("expected no active break, got %v", err)
	}

	fixture.service.StartProject(ctx, fixture.user.ID, "Alpha", true)
	result, err := fixture.service.StartBreak(ctx, fixture.user.ID, "  coffee ")
	fixture.mustSucceed(t, "start break", result, err)
	if last := fixture.events()[len(fixture.events())-1]; last.Message != "coffee" || last.ProjectID != nil {
		t.Fatalf("expected trimmed break message without project, got %+v", last)
	}
	if _, err := fixture.service.StartBreak(ctx, fixture.user.ID, ""); !errors.Is(err, ErrBreakAlreadyActive) {
		t.Fatalf("expected break already active, got %v", err)
	}

	result, err = fixture.service.EndBreak(ctx, fixture.user.ID)
	fixture.mustSucceed(t, "end break", result, err)
	if IsBreakActive(fixture.events()) {
		t.Fatal("expected break to be over")
	}
	if !IsAnyProjectActive(fixture.events()) {
		t.Fatal("expected project to remain active after a plain break end")
	}
}

func TestContinueProjectResumesProjectBeforeBreak(t *testing.T) {
	fixture := newTrackingFixture(t)
	ctx := context.Background()
	fixture.service.StartDay(ctx, fixture.user.ID)
	fixture.service.StartProject(ctx, fixture.user.ID, "Alpha", true)
	fixture.clock.advance(time.Hour)
	fixture.service.StartBreak(ctx, fixture.user.ID, "")
	before := len(fixture.events())

	resumedAt := fixture.clock.advance(15 * time.Minute)
	result, err := fixture.service.ContinueProject(ctx, fixture.user.ID)
	fixture.mustSucceed(t, "continue", result, err)
	if result.Message != "Resumed work on 'Alpha'" {
		t.Fatalf("unexpected message %q", result.Message)
	}

	appended := fixture.events()[before:]
	expected := []models.Action{models.ActionBreakEnd, models.ActionProjectResume}
	if !reflect.DeepEqual(actionsOf(appended), expected) {
		t.Fatalf("expected %v, got %v", expected, actionsOf(appended))
	}
	if appended[0].Message != "Auto-ended for project resume" {
		t.Fatalf("unexpected annotation %q", appended[0].Message)
	}
	for _, event := range appended {
		if !event.Timestamp.Equal(resumedAt) {
			t.Fatalf("expected shared timestamp %s, got %s", resumedAt, event.Timestamp)
		}
	}
	if got := fixture.store.projectByName(fixture.user.ID, "Alpha").TrackingCount; got != 1 {
		t.Fatalf("expected resume to leave tracking_count at 1, got %d", got)
	}
}

func TestContinueProjectWithoutRecentProject(t *testing.T) {
	fixture := newTrackingFixture(t)
	ctx := context.Background()
	fixture.service.StartDay(ctx, fixture.user.ID)
	fixture.store.events = append(fixture.store.events, models.Event{
		ID:        99,
		UserID:    fixture.user.ID,
		Action:    models.ActionBreakStart,
		Timestamp: fixture.clock.advance(time.Minute),
	})

	if _, err := fixture.service.ContinueProject(ctx, fixture.user.ID); !errors.Is(err, ErrNoRecentProject) {
		t.Fatalf("expected no recent project, got %v", err)
	}
}

func TestFailedAppendRollsBackWholeOperation(t *testing.T) {
	fixture := newTrackingFixture(t)
	ctx := context.Background()
	fixture.service.StartDay(ctx, fixture.user.ID)
	fixture.service.StartProject(ctx, fixture.user.ID, "Alpha", true)
	fixture.service.StartBreak(ctx, fixture.user.ID, "")
	before := fixture.events()

	fixture.store.failOnAction = models.ActionWorkdayEnd
	fixture.clock.advance(time.Hour)
	_, err := fixture.service.EndDay(ctx, fixture.user.ID)
	if !errors.Is(err, errStubStorage) {
		t.Fatalf("expected storage failure, got %v", err)
	}
	if errors.Is(err, ErrInvalidOperation) || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected storage failure to stay distinct from domain errors, got %v", err)
	}
	if !reflect.DeepEqual(before, fixture.events()) {
		t.Fatalf("expected rollback of the auto-closes, got %v", actionsOf(fixture.events()))
	}
	if fixture.recorder.operations[OperationEndDay+"/"+OutcomeError] != 1 {
		t.Fatalf("expected error outcome, got %v", fixture.recorder.operations)
	}
	if fixture.recorder.events[models.ActionBreakEnd] != 0 {
		t.Fatal("expected rolled back events not to be counted")
	}
}

func TestSuccessfulOperationsStampLastActiveAndRecordMetrics(t *testing.T) {
	fixture := newTrackingFixture(t)
	ctx := context.Background()

	startedAt := fixture.clock.Now()
	fixture.service.StartDay(ctx, fixture.user.ID)
	if got := fixture.store.users[fixture.user.ID].LastActive; got == nil || !got.Equal(startedAt) {
		t.Fatalf("expected last_active=%s, got %v", startedAt, got)
	}

	fixture.service.StartDay(ctx, fixture.user.ID)
	if fixture.recorder.operations[OperationStartDay+"/"+OutcomeSuccess] != 1 {
		t.Fatalf("expected one success, got %v", fixture.recorder.operations)
	}
	if fixture.recorder.operations[OperationStartDay+"/"+OutcomeRejected] != 1 {
		t.Fatalf("expected one rejection, got %v", fixture.recorder.operations)
	}
	if fixture.recorder.events[models.ActionWorkdayStart] != 1 {
		t.Fatalf("expected one counted workday start, got %v", fixture.recorder.events)
	}
}

func TestConcurrentStartDayForOneUserAppendsOnce(t *testing.T) {
	fixture := newTrackingFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fixture.service.StartDay(ctx, fixture.user.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case !errors.Is(err, ErrWorkdayAlreadyStarted):
			t.Fatalf("unexpected error %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one successful start, got %d", successes)
	}
	if len(fixture.events()) != 1 {
		t.Fatalf("expected one event, got %d", len(fixture.events()))
	}
}

func TestTrackingScenarioDerivesTwoSessions(t *testing.T) {
	fixture := newTrackingFixture(t)
	ctx := context.Background()

	t0 := fixture.clock.Now()
	result, err := fixture.service.StartDay(ctx, fixture.user.ID)
	fixture.mustSucceed(t, "start day", result, err)
	t1 := fixture.clock.advance(10 * time.Minute)
	result, err = fixture.service.StartProject(ctx, fixture.user.ID, "X", true)
	fixture.mustSucceed(t, "start X", result, err)
	t2 := fixture.clock.advance(2 * time.Hour)
	result, err = fixture.service.StartBreak(ctx, fixture.user.ID, "")
	fixture.mustSucceed(t, "start break", result, err)
	t3 := fixture.clock.advance(30 * time.Minute)
	result, err = fixture.service.ContinueProject(ctx, fixture.user.ID)
	fixture.mustSucceed(t, "continue", result, err)
	t4 := fixture.clock.advance(90 * time.Minute)
	result, err = fixture.service.EndDay(ctx, fixture.user.ID)
	fixture.mustSucceed(t, "end day", result, err)

	events, _ := (&stubTimeEvents{store: fixture.store}).ListByUser(ctx, fixture.user.ID)
	report := BuildReport(events, t4.Add(time.Hour))

	if len(report.Sessions) != 2 {
		t.Fatalf("expected two sessions, got %+v", report.Sessions)
	}
	spans := [][2]time.Time{{t1, t2}, {t3, t4}}
	for index, span := range spans {
		session := report.Sessions[index]
		if session.Project != "X" || !session.Start.Equal(span[0]) || !session.End.Equal(span[1]) || session.Ongoing {
			t.Fatalf("session %d: expected X %s-%s, got %+v", index, span[0], span[1], session)
		}
	}
	if want := t2.Sub(t1) + t4.Sub(t3); report.TotalWork() != want {
		t.Fatalf("expected total work %s, got %s", want, report.TotalWork())
	}
	if len(report.Breaks) != 1 || !report.Breaks[0].Start.Equal(t2) || report.Breaks[0].Duration != t3.Sub(t2) {
		t.Fatalf("expected one closed break %s-%s, got %+v", t2, t3, report.Breaks)
	}
	if len(report.Workdays) != 1 || !report.Workdays[0].Start.Equal(t0) || !report.Workdays[0].End.Equal(t4) {
		t.Fatalf("expected workday %s-%s, got %+v", t0, t4, report.Workdays)
	}
}
