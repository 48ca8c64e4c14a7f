package db

import (
	"context"

	"github.com/terraincognita07/sitr/internal/models"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	Store[models.Project]
	database *gorm.DB
}

func NewProjectRepository(database *gorm.DB) *ProjectRepository {
	return &ProjectRepository{Store: NewStore[models.Project](database), database: database}
}

func (repo *ProjectRepository) FindByName(ctx context.Context, userID uint, name string) (models.Project, error) {
	var project models.Project
	if err := repo.database.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&project).Error; err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (repo *ProjectRepository) ListByUser(ctx context.Context, userID uint, includeArchived bool, order models.ProjectOrder) ([]models.Project, error) {
	query := repo.database.WithContext(ctx).Where("user_id = ?", userID)
	if !includeArchived {
		query = query.Where("state = ?", models.ProjectStateActive)
	}
	switch order {
	case models.ProjectOrderName:
		query = query.Order("lower(name) ASC, id ASC")
	default:
		query = query.Order("created_at ASC, id ASC")
	}

	projects := make([]models.Project, 0)
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (repo *ProjectRepository) IncrementTrackingCount(ctx context.Context, projectID uint) error {
	result := repo.database.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("tracking_count", gorm.Expr("tracking_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (repo *ProjectRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := repo.database.WithContext(ctx).Model(&models.Project{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *ProjectRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return repo.database.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Project{}).Error
}
