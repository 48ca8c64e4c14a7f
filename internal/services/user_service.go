package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/sitr/internal/models"
)

type UserRepository interface {
	Add(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID uint) (models.User, error)
	FindByNormalizedEmail(ctx context.Context, email string) (models.User, error)
	ExistsByNormalizedEmail(ctx context.Context, email string, exceptID uint) (bool, error)
	List(ctx context.Context, includeArchived bool) ([]models.User, error)
	Update(ctx context.Context, userID uint, fields map[string]any) error
}

type UserDeletionUnit struct {
	Users interface {
		Delete(ctx context.Context, userID uint) error
	}
	Projects interface {
		CountByUser(ctx context.Context, userID uint) (int64, error)
		DeleteByUser(ctx context.Context, userID uint) error
	}
	Events interface {
		CountByUser(ctx context.Context, userID uint) (int64, error)
		DeleteByUser(ctx context.Context, userID uint) error
	}
}

type UserDeletionTransactor func(ctx context.Context, fn func(unit UserDeletionUnit) error) error

type UserInput struct {
	FirstName     string `json:"first_name" validate:"required,max=100"`
	MiddleInitial string `json:"middle_initial" validate:"omitempty,len=1,alpha"`
	LastName      string `json:"last_name" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email,max=254"`
}

// UserUpdate holds optional changes; nil fields are left alone.
type UserUpdate struct {
	FirstName     *string
	MiddleInitial *string
	LastName      *string
	Email         *string
}

type UserService struct {
	users    UserRepository
	deletion UserDeletionTransactor
	now      func() time.Time
}

func NewUserService(users UserRepository, deletion UserDeletionTransactor) *UserService {
	return &UserService{
		users:    users,
		deletion: deletion,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeUserInput(input UserInput) UserInput {
	return UserInput{
		FirstName:     strings.TrimSpace(input.FirstName),
		MiddleInitial: strings.ToUpper(strings.TrimSpace(input.MiddleInitial)),
		LastName:      strings.TrimSpace(input.LastName),
		Email:         NormalizeEmail(input.Email),
	}
}

func (service *UserService) Create(ctx context.Context, input UserInput) (models.User, error) {
	input = normalizeUserInput(input)
	if err := ValidateInput(input); err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(ctx, input.Email, 0)
	if err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return models.User{}, conflictf("a user with email %s already exists", input.Email)
	}

	user := models.User{
		FirstName:     input.FirstName,
		MiddleInitial: input.MiddleInitial,
		LastName:      input.LastName,
		Email:         input.Email,
		State:         models.UserStateActive,
	}
	if err := service.users.Add(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (service *UserService) List(ctx context.Context, includeArchived bool) ([]models.User, error) {
	users, err := service.users.List(ctx, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (service *UserService) GetByID(ctx context.Context, userID uint) (models.User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, translateLookup(err, "load user", fmt.Sprintf("user %d not found", userID))
	}
	return user, nil
}

func (service *UserService) GetByEmail(ctx context.Context, email string) (models.User, error) {
	normalized := NormalizeEmail(email)
	user, err := service.users.FindByNormalizedEmail(ctx, normalized)
	if err != nil {
		return models.User{}, translateLookup(err, "load user", fmt.Sprintf("user with email %s not found", normalized))
	}
	return user, nil
}

func (service *UserService) Update(ctx context.Context, email string, update UserUpdate) (models.User, error) {
	user, err := service.GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}

	input := UserInput{
		FirstName:     user.FirstName,
		MiddleInitial: user.MiddleInitial,
		LastName:      user.LastName,
		Email:         user.Email,
	}
	if update.FirstName != nil {
		input.FirstName = *update.FirstName
	}
	if update.MiddleInitial != nil {
		input.MiddleInitial = *update.MiddleInitial
	}
	if update.LastName != nil {
		input.LastName = *update.LastName
	}
	if update.Email != nil {
		input.Email = *update.Email
	}
	input = normalizeUserInput(input)
	if err := ValidateInput(input); err != nil {
		return models.User{}, err
	}

	if input.Email != user.Email {
		exists, err := service.users.ExistsByNormalizedEmail(ctx, input.Email, user.ID)
		if err != nil {
			return models.User{}, fmt.Errorf("check email: %w", err)
		}
		if exists {
			return models.User{}, conflictf("a user with email %s already exists", input.Email)
		}
	}

	if err := service.users.Update(ctx, user.ID, map[string]any{
		"first_name":     input.FirstName,
		"middle_initial": input.MiddleInitial,
		"last_name":      input.LastName,
		"email":          input.Email,
	}); err != nil {
		return models.User{}, translateLookup(err, "update user", fmt.Sprintf("user %d not found", user.ID))
	}
	return service.GetByID(ctx, user.ID)
}

// Select marks the user as the one currently being tracked by stamping last_active.
func (service *UserService) Select(ctx context.Context, email string) (models.User, error) {
	user, err := service.GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if user.IsArchived() {
		return models.User{}, ErrUserArchived
	}

	now := service.now()
	if err := service.users.Update(ctx, user.ID, map[string]any{"last_active": now}); err != nil {
		return models.User{}, fmt.Errorf("stamp last active: %w", err)
	}
	user.LastActive = &now
	return user, nil
}

func (service *UserService) Archive(ctx context.Context, email string) (models.User, error) {
	user, err := service.GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if user.IsArchived() {
		return models.User{}, invalidOperationf("user %s is already archived", user.Email)
	}

	now := service.now()
	if err := service.users.Update(ctx, user.ID, map[string]any{
		"state":       models.UserStateArchived,
		"archived_at": now,
	}); err != nil {
		return models.User{}, fmt.Errorf("archive user: %w", err)
	}
	user.State = models.UserStateArchived
	user.ArchivedAt = &now
	return user, nil
}

func (service *UserService) Unarchive(ctx context.Context, email string) (models.User, error) {
	user, err := service.GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if !user.IsArchived() {
		return models.User{}, invalidOperationf("user %s is not archived", user.Email)
	}

	if err := service.users.Update(ctx, user.ID, map[string]any{
		"state":       models.UserStateActive,
		"archived_at": nil,
	}); err != nil {
		return models.User{}, fmt.Errorf("unarchive user: %w", err)
	}
	user.State = models.UserStateActive
	user.ArchivedAt = nil
	return user, nil
}

// Delete removes the user. Without cascade a user that still owns projects or
// events is refused with an integrity conflict; with cascade those go too.
func (service *UserService) Delete(ctx context.Context, email string, cascade bool) (models.User, error) {
	user, err := service.GetByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}

	err = service.deletion(ctx, func(unit UserDeletionUnit) error {
		if !cascade {
			projects, err := unit.Projects.CountByUser(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("count projects: %w", err)
			}
			events, err := unit.Events.CountByUser(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("count events: %w", err)
			}
			if projects > 0 || events > 0 {
				return conflictf(
					"user %s still has %d project(s) and %d event(s); archive the user or delete with cascade",
					user.Email, projects, events,
				)
			}
		} else {
			if err := unit.Events.DeleteByUser(ctx, user.ID); err != nil {
				return fmt.Errorf("delete events: %w", err)
			}
			if err := unit.Projects.DeleteByUser(ctx, user.ID); err != nil {
				return fmt.Errorf("delete projects: %w", err)
			}
		}
		if err := unit.Users.Delete(ctx, user.ID); err != nil {
			return translateLookup(err, "delete user", fmt.Sprintf("user %d not found", user.ID))
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
