package db

import (
	"context"
	"time"

	"github.com/terraincognita07/sitr/internal/models"
	"gorm.io/gorm"
)

// EventFilter narrows an ordered event query. From is inclusive, To exclusive.
type EventFilter struct {
	UserID    uint
	ProjectID *uint
	From      *time.Time
	To        *time.Time
}

type EventRepository struct {
	Store[models.Event]
	database *gorm.DB
}

func NewEventRepository(database *gorm.DB) *EventRepository {
	return &EventRepository{Store: NewStore[models.Event](database), database: database}
}

// List returns matching events ordered by timestamp then id, with their project loaded.
func (repo *EventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	query := repo.database.WithContext(ctx).
		Preload("Project").
		Where("user_id = ?", filter.UserID)
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.From != nil {
		query = query.Where("timestamp >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("timestamp < ?", filter.To.UTC())
	}

	events := make([]models.Event, 0)
	if err := query.Order("timestamp ASC, id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (repo *EventRepository) ListByUser(ctx context.Context, userID uint) ([]models.Event, error) {
	return repo.List(ctx, EventFilter{UserID: userID})
}

func (repo *EventRepository) ListByUserRange(ctx context.Context, userID uint, from *time.Time, to *time.Time) ([]models.Event, error) {
	return repo.List(ctx, EventFilter{UserID: userID, From: from, To: to})
}

func (repo *EventRepository) Latest(ctx context.Context, userID uint) (models.Event, error) {
	var event models.Event
	if err := repo.database.WithContext(ctx).
		Preload("Project").
		Where("user_id = ?", userID).
		Order("timestamp DESC, id DESC").
		First(&event).Error; err != nil {
		return models.Event{}, err
	}
	return event, nil
}

func (repo *EventRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := repo.database.WithContext(ctx).Model(&models.Event{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *EventRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return repo.database.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Event{}).Error
}
