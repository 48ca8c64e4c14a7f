package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/sitr/internal/models"
)

type ProjectUserRepository interface {
	FindByID(ctx context.Context, userID uint) (models.User, error)
}

type ProjectRepository interface {
	Add(ctx context.Context, project *models.Project) error
	FindByName(ctx context.Context, userID uint, name string) (models.Project, error)
	ListByUser(ctx context.Context, userID uint, includeArchived bool, order models.ProjectOrder) ([]models.Project, error)
	Update(ctx context.Context, projectID uint, fields map[string]any) error
}

type ProjectInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

type ProjectService struct {
	users    ProjectUserRepository
	projects ProjectRepository
	now      func() time.Time
}

func NewProjectService(users ProjectUserRepository, projects ProjectRepository) *ProjectService {
	return &ProjectService{
		users:    users,
		projects: projects,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (service *ProjectService) requireUser(ctx context.Context, userID uint) (models.User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, translateLookup(err, "load user", fmt.Sprintf("user %d not found", userID))
	}
	return user, nil
}

func (service *ProjectService) Create(ctx context.Context, userID uint, name string) (models.Project, error) {
	input := ProjectInput{Name: strings.TrimSpace(name)}
	if err := ValidateInput(input); err != nil {
		return models.Project{}, err
	}
	if _, err := service.requireUser(ctx, userID); err != nil {
		return models.Project{}, err
	}

	if _, err := service.projects.FindByName(ctx, userID, input.Name); err == nil {
		return models.Project{}, conflictf("project '%s' already exists", input.Name)
	} else if lookupErr := translateLookup(err, "find project", ""); !isNotFound(lookupErr) {
		return models.Project{}, lookupErr
	}

	project := models.Project{UserID: userID, Name: input.Name, State: models.ProjectStateActive}
	if err := service.projects.Add(ctx, &project); err != nil {
		return models.Project{}, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

func (service *ProjectService) List(ctx context.Context, userID uint, includeArchived bool, order models.ProjectOrder) ([]models.Project, error) {
	if _, err := service.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if order == "" {
		order = models.ProjectOrderCreated
	}
	if !order.Valid() {
		return nil, invalidOperationf("unknown project order %q", order)
	}

	projects, err := service.projects.ListByUser(ctx, userID, includeArchived, order)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (service *ProjectService) Get(ctx context.Context, userID uint, name string) (models.Project, error) {
	name = strings.TrimSpace(name)
	project, err := service.projects.FindByName(ctx, userID, name)
	if err != nil {
		return models.Project{}, translateLookup(err, "find project", fmt.Sprintf("project '%s' not found", name))
	}
	return project, nil
}

func (service *ProjectService) Archive(ctx context.Context, userID uint, name string) (models.Project, error) {
	project, err := service.Get(ctx, userID, name)
	if err != nil {
		return models.Project{}, err
	}
	if project.IsArchived() {
		return models.Project{}, invalidOperationf("project '%s' is already archived", project.Name)
	}

	now := service.now()
	if err := service.projects.Update(ctx, project.ID, map[string]any{
		"state":       models.ProjectStateArchived,
		"archived_at": now,
	}); err != nil {
		return models.Project{}, fmt.Errorf("archive project: %w", err)
	}
	project.State = models.ProjectStateArchived
	project.ArchivedAt = &now
	return project, nil
}

func (service *ProjectService) Unarchive(ctx context.Context, userID uint, name string) (models.Project, error) {
	project, err := service.Get(ctx, userID, name)
	if err != nil {
		return models.Project{}, err
	}
	if !project.IsArchived() {
		return models.Project{}, invalidOperationf("project '%s' is not archived", project.Name)
	}

	if err := service.projects.Update(ctx, project.ID, map[string]any{
		"state":       models.ProjectStateActive,
		"archived_at": nil,
	}); err != nil {
		return models.Project{}, fmt.Errorf("unarchive project: %w", err)
	}
	project.State = models.ProjectStateActive
	project.ArchivedAt = nil
	return project, nil
}
