package db

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the CRUD capability shared by every record kind. Repositories
// embed it and add their ordered queries on top.
type Store[T any] struct {
	database *gorm.DB
}

func NewStore[T any](database *gorm.DB) Store[T] {
	return Store[T]{database: database}
}

func (store Store[T]) Add(ctx context.Context, record *T) error {
	return store.database.WithContext(ctx).Omit(clause.Associations).Create(record).Error
}

func (store Store[T]) Get(ctx context.Context, id uint) (T, error) {
	var record T
	if err := store.database.WithContext(ctx).First(&record, id).Error; err != nil {
		var zero T
		return zero, err
	}
	return record, nil
}

func (store Store[T]) GetAll(ctx context.Context) ([]T, error) {
	records := make([]T, 0)
	if err := store.database.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Update applies fields to the row with id and returns gorm.ErrRecordNotFound
// when no row matched.
func (store Store[T]) Update(ctx context.Context, id uint, fields map[string]any) error {
	var model T
	result := store.database.WithContext(ctx).Model(&model).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (store Store[T]) Delete(ctx context.Context, id uint) error {
	var model T
	result := store.database.WithContext(ctx).Delete(&model, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
