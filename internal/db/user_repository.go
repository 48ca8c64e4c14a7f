package db

import (
	"context"
	"time"

	"github.com/terraincognita07/sitr/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	Store[models.User]
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{Store: NewStore[models.User](database), database: database}
}

func (repo *UserRepository) FindByID(ctx context.Context, userID uint) (models.User, error) {
	return repo.Get(ctx, userID)
}

func (repo *UserRepository) FindByNormalizedEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := repo.database.WithContext(ctx).Where("lower(trim(email)) = ?", email).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) ExistsByNormalizedEmail(ctx context.Context, email string, exceptID uint) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.User{}).
		Where("lower(trim(email)) = ? AND id <> ?", email, exceptID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) List(ctx context.Context, includeArchived bool) ([]models.User, error) {
	query := repo.database.WithContext(ctx).Order("last_name ASC, first_name ASC, id ASC")
	if !includeArchived {
		query = query.Where("state = ?", models.UserStateActive)
	}

	users := make([]models.User, 0)
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *UserRepository) TouchLastActive(ctx context.Context, userID uint, at time.Time) error {
	return repo.Update(ctx, userID, map[string]any{"last_active": at})
}
