package services

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/terraincognita07/sitr/internal/models"
	"gorm.io/gorm"
)

var errStubStorage = errors.New("stub storage failure")

// trackingStoreStub keeps users, projects and events in memory. transact
// snapshots the whole store and restores it when the callback fails.
type trackingStoreStub struct {
	users         map[uint]models.User
	projects      map[uint]models.Project
	events        []models.Event
	nextUserID    uint
	nextProjectID uint
	nextEventID   uint
	failOnAction  models.Action
	transactions  int
}

func newTrackingStoreStub() *trackingStoreStub {
	return &trackingStoreStub{
		users:         make(map[uint]models.User),
		projects:      make(map[uint]models.Project),
		events:        make([]models.Event, 0),
		nextUserID:    1,
		nextProjectID: 1,
		nextEventID:   1,
	}
}

func (stub *trackingStoreStub) addUser(email string) models.User {
	user := models.User{
		ID:        stub.nextUserID,
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		State:     models.UserStateActive,
	}
	stub.nextUserID++
	stub.users[user.ID] = user
	return user
}

func (stub *trackingStoreStub) addProject(userID uint, name string, state string) models.Project {
	project := models.Project{ID: stub.nextProjectID, UserID: userID, Name: name, State: state}
	stub.nextProjectID++
	stub.projects[project.ID] = project
	return project
}

func (stub *trackingStoreStub) projectByName(userID uint, name string) models.Project {
	for _, project := range stub.projects {
		if project.UserID == userID && project.Name == name {
			return project
		}
	}
	return models.Project{}
}

func (stub *trackingStoreStub) eventsFor(userID uint) []models.Event {
	events := make([]models.Event, 0)
	for _, event := range stub.events {
		if event.UserID == userID {
			events = append(events, event)
		}
	}
	return events
}

func (stub *trackingStoreStub) transact(ctx context.Context, fn func(unit TimeUnit) error) error {
	stub.transactions++
	users := maps.Clone(stub.users)
	projects := maps.Clone(stub.projects)
	events := slices.Clone(stub.events)
	nextProjectID, nextEventID := stub.nextProjectID, stub.nextEventID

	err := fn(TimeUnit{
		Users:    &stubTimeUsers{store: stub},
		Projects: &stubTimeProjects{store: stub},
		Events:   &stubTimeEvents{store: stub},
	})
	if err != nil {
		stub.users = users
		stub.projects = projects
		stub.events = events
		stub.nextProjectID, stub.nextEventID = nextProjectID, nextEventID
	}
	return err
}

type stubTimeUsers struct {
	store *trackingStoreStub
}

func (repo *stubTimeUsers) FindByID(ctx context.Context, userID uint) (models.User, error) {
	user, ok := repo.store.users[userID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (repo *stubTimeUsers) TouchLastActive(ctx context.Context, userID uint, at time.Time) error {
	user, ok := repo.store.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.LastActive = &at
	repo.store.users[userID] = user
	return nil
}

type stubTimeProjects struct {
	store *trackingStoreStub
}

func (repo *stubTimeProjects) Get(ctx context.Context, projectID uint) (models.Project, error) {
	project, ok := repo.store.projects[projectID]
	if !ok {
		return models.Project{}, gorm.ErrRecordNotFound
	}
	return project, nil
}

func (repo *stubTimeProjects) FindByName(ctx context.Context, userID uint, name string) (models.Project, error) {
	project := repo.store.projectByName(userID, name)
	if project.ID == 0 {
		return models.Project{}, gorm.ErrRecordNotFound
	}
	return project, nil
}

func (repo *stubTimeProjects) Add(ctx context.Context, project *models.Project) error {
	project.ID = repo.store.nextProjectID
	repo.store.nextProjectID++
	repo.store.projects[project.ID] = *project
	return nil
}

func (repo *stubTimeProjects) IncrementTrackingCount(ctx context.Context, projectID uint) error {
	project, ok := repo.store.projects[projectID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	project.TrackingCount++
	repo.store.projects[projectID] = project
	return nil
}

type stubTimeEvents struct {
	store *trackingStoreStub
}

func (repo *stubTimeEvents) ListByUser(ctx context.Context, userID uint) ([]models.Event, error) {
	events := repo.store.eventsFor(userID)
	for index := range events {
		if events[index].ProjectID != nil {
			project := repo.store.projects[*events[index].ProjectID]
			events[index].Project = &project
		}
	}
	return events, nil
}

func (repo *stubTimeEvents) Add(ctx context.Context, event *models.Event) error {
	if repo.store.failOnAction != "" && event.Action == repo.store.failOnAction {
		return errStubStorage
	}
	event.ID = repo.store.nextEventID
	repo.store.nextEventID++
	repo.store.events = append(repo.store.events, *event)
	return nil
}

// testClock hands out a fixed instant until advanced.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
}

func (clock *testClock) Now() time.Time {
	return clock.now
}

func (clock *testClock) advance(duration time.Duration) time.Time {
	clock.now = clock.now.Add(duration)
	return clock.now
}

type recorderStub struct {
	operations map[string]int
	events     map[models.Action]int
}

func newRecorderStub() *recorderStub {
	return &recorderStub{operations: make(map[string]int), events: make(map[models.Action]int)}
}

func (stub *recorderStub) ObserveOperation(operation string, outcome string, elapsed time.Duration) {
	stub.operations[operation+"/"+outcome]++
}

func (stub *recorderStub) CountEvent(action models.Action) {
	stub.events[action]++
}
